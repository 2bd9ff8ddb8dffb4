package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

type TiersMock struct{ mock.Mock }

func (m *TiersMock) ResolveTier(ctx context.Context, userID int64) (string, *models.User, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	if args.Get(1) != nil {
		user = args.Get(1).(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

type QuotaMock struct{ mock.Mock }

func (m *QuotaMock) Remaining(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *QuotaMock) Limit() int {
	return m.Called().Int(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGuardService_Check(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(tiers *TiersMock, quota *QuotaMock)
		wantAllowed bool
		wantTier    string
		wantRemain  int
		wantMessage bool
		wantErr     bool
	}{
		{
			name: "заблокированный пользователь получает отказ",
			setupMocks: func(tiers *TiersMock, _ *QuotaMock) {
				tiers.On("ResolveTier", mock.Anything, int64(1)).
					Return(models.TierPaid, &models.User{UserID: 1, IsBanned: true}, nil).Once()
			},
			wantAllowed: false,
			wantTier:    models.TierPaid,
			wantMessage: true,
		},
		{
			name: "платный уровень без лимита",
			setupMocks: func(tiers *TiersMock, _ *QuotaMock) {
				tiers.On("ResolveTier", mock.Anything, int64(1)).
					Return(models.TierPaid, &models.User{UserID: 1, Tier: models.TierPaid}, nil).Once()
			},
			wantAllowed: true,
			wantTier:    models.TierPaid,
			wantRemain:  UnlimitedRemaining,
		},
		{
			name: "администратор без лимита",
			setupMocks: func(tiers *TiersMock, _ *QuotaMock) {
				tiers.On("ResolveTier", mock.Anything, int64(1)).
					Return(models.TierAdmin, nil, nil).Once()
			},
			wantAllowed: true,
			wantTier:    models.TierAdmin,
			wantRemain:  UnlimitedRemaining,
		},
		{
			name: "бесплатный в пределах квоты",
			setupMocks: func(tiers *TiersMock, quota *QuotaMock) {
				tiers.On("ResolveTier", mock.Anything, int64(1)).
					Return(models.TierFree, nil, nil).Once()
				quota.On("Remaining", mock.Anything, int64(1)).Return(2, nil).Once()
			},
			wantAllowed: true,
			wantTier:    models.TierFree,
			wantRemain:  2,
		},
		{
			name: "бесплатный с исчерпанной квотой",
			setupMocks: func(tiers *TiersMock, quota *QuotaMock) {
				tiers.On("ResolveTier", mock.Anything, int64(1)).
					Return(models.TierFree, nil, nil).Once()
				quota.On("Remaining", mock.Anything, int64(1)).Return(0, nil).Once()
				quota.On("Limit").Return(5)
			},
			wantAllowed: false,
			wantTier:    models.TierFree,
			wantMessage: true,
		},
		{
			name: "ошибка разрешения уровня",
			setupMocks: func(tiers *TiersMock, _ *QuotaMock) {
				tiers.On("ResolveTier", mock.Anything, int64(1)).
					Return("", nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiers := new(TiersMock)
			quota := new(QuotaMock)
			tt.setupMocks(tiers, quota)

			svc := NewGuardService(tiers, quota, newNoopLogger())
			decision, err := svc.Check(context.Background(), 1)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			assert.Equal(t, tt.wantTier, decision.Tier)
			assert.Equal(t, tt.wantRemain, decision.Remaining)
			if tt.wantMessage {
				assert.NotEmpty(t, decision.Message)
			} else {
				assert.Empty(t, decision.Message)
			}
			tiers.AssertExpectations(t)
			quota.AssertExpectations(t)
		})
	}
}
