package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/premium-access/internal/config"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) CreateSession(ctx context.Context, session models.AdSession, ttl time.Duration) error {
	return m.Called(ctx, session, ttl).Error(0)
}
func (m *StoreMock) GetSession(ctx context.Context, sessionID string) (*models.AdSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdSession), args.Error(1)
}
func (m *StoreMock) MarkSessionUsed(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}
func (m *StoreMock) DeleteSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type IssuerMock struct{ mock.Mock }

func (m *IssuerMock) Issue(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestService(store *StoreMock, issuer *IssuerMock) *AdSessionService {
	freshness := config.Freshness{
		SessionTTL:   5 * time.Minute,
		MinWatchTime: 30 * time.Second,
	}
	ads := config.Ads{
		AppURL: "https://bot.example.com",
		Slots:  []string{"1001,1002", "2001"},
	}
	return NewAdSessionService(store, issuer, newNoopLogger(), freshness, ads)
}

func TestAdSessionService_Create(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateSession", mock.Anything,
		mock.MatchedBy(func(s models.AdSession) bool {
			return s.UserID == 42 && len(s.SessionID) == 32 && !s.CodeGenerated
		}), 5*time.Minute).Return(nil).Once()

	svc := newTestService(store, nil)
	sessionID, link, err := svc.Create(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, sessionID, 32)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/watch-ad", parsed.Path)
	query := parsed.Query()
	assert.Equal(t, sessionID, query.Get("session"))

	// По одной рекламной ссылке на слот, зона из списка слота
	ad1, err := url.Parse(query.Get("ad1_url"))
	require.NoError(t, err)
	assert.Equal(t, "otieu.com", ad1.Host)
	zone := strings.TrimPrefix(ad1.Path, "/4/")
	assert.Contains(t, []string{"1001", "1002"}, zone)
	assert.Len(t, ad1.Query().Get("subid"), 8)

	ad2, err := url.Parse(query.Get("ad2_url"))
	require.NoError(t, err)
	assert.Equal(t, "/4/2001", ad2.Path)

	store.AssertExpectations(t)
}

func TestAdSessionService_Complete(t *testing.T) {
	sessionID := "a1b2c3d4e5f60718293a4b5c6d7e8f90"

	tests := []struct {
		name       string
		setupMocks func(store *StoreMock, issuer *IssuerMock)
		wantCode   string
		checkErr   func(t *testing.T, err error)
	}{
		{
			name: "успешное завершение",
			setupMocks: func(store *StoreMock, issuer *IssuerMock) {
				store.On("GetSession", mock.Anything, sessionID).Return(&models.AdSession{
					SessionID: sessionID,
					UserID:    42,
					CreatedAt: time.Now().Add(-time.Minute),
				}, nil).Once()
				store.On("MarkSessionUsed", mock.Anything, sessionID).Return(true, nil).Once()
				issuer.On("Issue", mock.Anything, int64(42)).Return("AB12CD34", nil).Once()
				store.On("DeleteSession", mock.Anything, sessionID).Return(nil).Once()
			},
			wantCode: "AB12CD34",
		},
		{
			name: "сессия не найдена",
			setupMocks: func(store *StoreMock, _ *IssuerMock) {
				store.On("GetSession", mock.Anything, sessionID).Return(nil, nil).Once()
			},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrNotFound)
			},
		},
		{
			name: "сессия истекла и удаляется",
			setupMocks: func(store *StoreMock, _ *IssuerMock) {
				store.On("GetSession", mock.Anything, sessionID).Return(&models.AdSession{
					SessionID: sessionID,
					UserID:    42,
					CreatedAt: time.Now().Add(-10 * time.Minute),
				}, nil).Once()
				store.On("DeleteSession", mock.Anything, sessionID).Return(nil).Once()
			},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrExpired)
			},
		},
		{
			name: "слишком рано, остаток в секундах",
			setupMocks: func(store *StoreMock, _ *IssuerMock) {
				store.On("GetSession", mock.Anything, sessionID).Return(&models.AdSession{
					SessionID: sessionID,
					UserID:    42,
					CreatedAt: time.Now().Add(-10 * time.Second),
				}, nil).Once()
			},
			checkErr: func(t *testing.T, err error) {
				var tooEarly *models.TooEarlyError
				require.ErrorAs(t, err, &tooEarly)
				assert.InDelta(t, 20, tooEarly.RemainingSeconds, 2)
			},
		},
		{
			name: "повторное использование",
			setupMocks: func(store *StoreMock, _ *IssuerMock) {
				store.On("GetSession", mock.Anything, sessionID).Return(&models.AdSession{
					SessionID: sessionID,
					UserID:    42,
					CreatedAt: time.Now().Add(-time.Minute),
				}, nil).Once()
				store.On("MarkSessionUsed", mock.Anything, sessionID).Return(false, nil).Once()
			},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrAlreadyUsed)
			},
		},
		{
			name: "ошибка выпуска кода",
			setupMocks: func(store *StoreMock, issuer *IssuerMock) {
				store.On("GetSession", mock.Anything, sessionID).Return(&models.AdSession{
					SessionID: sessionID,
					UserID:    42,
					CreatedAt: time.Now().Add(-time.Minute),
				}, nil).Once()
				store.On("MarkSessionUsed", mock.Anything, sessionID).Return(true, nil).Once()
				issuer.On("Issue", mock.Anything, int64(42)).
					Return("", errors.New("store down")).Once()
			},
			checkErr: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(StoreMock)
			issuer := new(IssuerMock)
			tt.setupMocks(store, issuer)

			svc := newTestService(store, issuer)
			code, err := svc.Complete(context.Background(), sessionID)
			if tt.checkErr != nil {
				tt.checkErr(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCode, code)
			}
			store.AssertExpectations(t)
			issuer.AssertExpectations(t)
		})
	}
}

func TestSubIDStable(t *testing.T) {
	assert.Equal(t, subIDFor(12345), subIDFor(12345))
	assert.NotEqual(t, subIDFor(12345), subIDFor(54321))
}
