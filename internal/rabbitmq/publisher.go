package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Publisher публикует события премиума в обменник premium.events.
type Publisher struct {
	ch Channel
}

// Channel описывает используемую часть канала AMQP.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishPremiumEvent публикует событие изменения премиум-статуса.
// Ключ маршрутизации выбирается по типу события.
func (p *Publisher) PublishPremiumEvent(_ context.Context, event models.PremiumEvent) error {
	routingKey := "granted"
	if event.Type == models.EventPremiumRevoked {
		routingKey = "revoked"
	}
	return PublishMessage(p.ch, ExchangeName, routingKey, event)
}

// PublishMessage публикует произвольное сообщение в RabbitMQ.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
