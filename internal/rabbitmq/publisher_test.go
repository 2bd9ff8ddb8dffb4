package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

type ChannelMock struct{ mock.Mock }

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func TestPublishPremiumEvent(t *testing.T) {
	tests := []struct {
		name           string
		eventType      string
		wantRoutingKey string
	}{
		{name: "выдача премиума", eventType: models.EventPremiumGranted, wantRoutingKey: "granted"},
		{name: "отзыв премиума", eventType: models.EventPremiumRevoked, wantRoutingKey: "revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := new(ChannelMock)
			var captured amqp.Publishing
			ch.On("Publish", ExchangeName, tt.wantRoutingKey, false, false, mock.Anything).
				Run(func(args mock.Arguments) {
					captured = args.Get(4).(amqp.Publishing)
				}).Return(nil).Once()

			event := models.PremiumEvent{
				EventID:    "evt-1",
				Type:       tt.eventType,
				UserID:     42,
				Tier:       models.TierPaid,
				OccurredAt: time.Now().UTC(),
			}
			pub := NewPublisher(ch)
			require.NoError(t, pub.PublishPremiumEvent(context.Background(), event))

			assert.Equal(t, "application/json", captured.ContentType)
			assert.Equal(t, amqp.Persistent, captured.DeliveryMode)

			var decoded models.PremiumEvent
			require.NoError(t, json.Unmarshal(captured.Body, &decoded))
			assert.Equal(t, event.EventID, decoded.EventID)
			assert.Equal(t, event.UserID, decoded.UserID)
			ch.AssertExpectations(t)
		})
	}
}

func TestPublishPremiumEventError(t *testing.T) {
	ch := new(ChannelMock)
	ch.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed")).Once()

	pub := NewPublisher(ch)
	err := pub.PublishPremiumEvent(context.Background(), models.PremiumEvent{
		Type: models.EventPremiumGranted,
	})
	assert.Error(t, err)
}
