package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) CreateCode(ctx context.Context, code models.VerificationCode, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, code, ttl)
	return args.Bool(0), args.Error(1)
}
func (m *StoreMock) GetCode(ctx context.Context, code string) (*models.VerificationCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationCode), args.Error(1)
}
func (m *StoreMock) ConsumeCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVerificationService_Issue(t *testing.T) {
	t.Run("успешный выпуск", func(t *testing.T) {
		store := new(StoreMock)
		store.On("CreateCode", mock.Anything, mock.MatchedBy(func(c models.VerificationCode) bool {
			return c.UserID == 42 && len(c.Code) == 8
		}), 30*time.Minute).Return(true, nil).Once()

		svc := NewVerificationService(store, newNoopLogger(), 30*time.Minute)
		code, err := svc.Issue(context.Background(), 42)
		require.NoError(t, err)
		assert.Len(t, code, 8)
		store.AssertExpectations(t)
	})

	t.Run("коллизия повторяет выпуск", func(t *testing.T) {
		store := new(StoreMock)
		store.On("CreateCode", mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil).Once()
		store.On("CreateCode", mock.Anything, mock.Anything, mock.Anything).
			Return(true, nil).Once()

		svc := NewVerificationService(store, newNoopLogger(), 30*time.Minute)
		code, err := svc.Issue(context.Background(), 42)
		require.NoError(t, err)
		assert.Len(t, code, 8)
		store.AssertExpectations(t)
	})
}

func TestVerificationService_Redeem(t *testing.T) {
	tests := []struct {
		name       string
		rawCode    string
		setupMocks func(store *StoreMock)
		wantErr    error
	}{
		{
			name:    "успешное погашение с нормализацией",
			rawCode: "  ab12cd34 ",
			setupMocks: func(store *StoreMock) {
				store.On("GetCode", mock.Anything, "AB12CD34").Return(&models.VerificationCode{
					Code:      "AB12CD34",
					UserID:    42,
					CreatedAt: time.Now().Add(-time.Minute),
				}, nil).Once()
				store.On("ConsumeCode", mock.Anything, "AB12CD34").Return(true, nil).Once()
			},
		},
		{
			name:    "код не найден",
			rawCode: "AB12CD34",
			setupMocks: func(store *StoreMock) {
				store.On("GetCode", mock.Anything, "AB12CD34").Return(nil, nil).Once()
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:    "чужой код",
			rawCode: "AB12CD34",
			setupMocks: func(store *StoreMock) {
				store.On("GetCode", mock.Anything, "AB12CD34").Return(&models.VerificationCode{
					Code:      "AB12CD34",
					UserID:    99,
					CreatedAt: time.Now().Add(-time.Minute),
				}, nil).Once()
			},
			wantErr: models.ErrWrongUser,
		},
		{
			name:    "истёкший код удаляется",
			rawCode: "AB12CD34",
			setupMocks: func(store *StoreMock) {
				store.On("GetCode", mock.Anything, "AB12CD34").Return(&models.VerificationCode{
					Code:      "AB12CD34",
					UserID:    42,
					CreatedAt: time.Now().Add(-time.Hour),
				}, nil).Once()
				store.On("ConsumeCode", mock.Anything, "AB12CD34").Return(true, nil).Once()
			},
			wantErr: models.ErrExpired,
		},
		{
			name:    "конкурирующее погашение",
			rawCode: "AB12CD34",
			setupMocks: func(store *StoreMock) {
				store.On("GetCode", mock.Anything, "AB12CD34").Return(&models.VerificationCode{
					Code:      "AB12CD34",
					UserID:    42,
					CreatedAt: time.Now().Add(-time.Minute),
				}, nil).Once()
				store.On("ConsumeCode", mock.Anything, "AB12CD34").Return(false, nil).Once()
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(StoreMock)
			tt.setupMocks(store)

			svc := NewVerificationService(store, newNoopLogger(), 30*time.Minute)
			err := svc.Redeem(context.Background(), 42, tt.rawCode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestVerificationService_TimeLeft(t *testing.T) {
	t.Run("остаток округляется вверх", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetCode", mock.Anything, "AB12CD34").Return(&models.VerificationCode{
			Code:      "AB12CD34",
			UserID:    42,
			CreatedAt: time.Now().Add(-10*time.Minute - 30*time.Second),
		}, nil).Once()

		svc := NewVerificationService(store, newNoopLogger(), 30*time.Minute)
		minutes, err := svc.TimeLeft(context.Background(), "ab12cd34")
		require.NoError(t, err)
		assert.Equal(t, 20, minutes)
	})

	t.Run("истёкший код", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetCode", mock.Anything, "AB12CD34").Return(&models.VerificationCode{
			Code:      "AB12CD34",
			UserID:    42,
			CreatedAt: time.Now().Add(-time.Hour),
		}, nil).Once()

		svc := NewVerificationService(store, newNoopLogger(), 30*time.Minute)
		_, err := svc.TimeLeft(context.Background(), "AB12CD34")
		assert.ErrorIs(t, err, models.ErrExpired)
	})

	t.Run("неизвестный код", func(t *testing.T) {
		store := new(StoreMock)
		store.On("GetCode", mock.Anything, "NOPE0000").Return(nil, nil).Once()

		svc := NewVerificationService(store, newNoopLogger(), 30*time.Minute)
		_, err := svc.TimeLeft(context.Background(), "nope0000")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
