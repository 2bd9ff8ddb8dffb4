package candownload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	guard "github.com/magabrotheeeer/premium-access/internal/services/guard"
)

// MockService реализует интерфейс candownload.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Check(ctx context.Context, userID int64) (*guard.Decision, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*guard.Decision), args.Error(1)
}

func TestCanDownloadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "допуск разрешён с остатком квоты",
			url:  "/users/42/can-download",
			setupMock: func(m *MockService) {
				m.On("Check", mock.Anything, int64(42)).Return(&guard.Decision{
					Allowed:   true,
					Tier:      "free",
					Remaining: 2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":true`,
		},
		{
			name: "отказ по квоте с сообщением",
			url:  "/users/42/can-download",
			setupMock: func(m *MockService) {
				m.On("Check", mock.Anything, int64(42)).Return(&guard.Decision{
					Allowed:   false,
					Tier:      "free",
					Remaining: 0,
					Message:   "Daily limit of 5 downloads reached.",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `Daily limit`,
		},
		{
			name:           "некорректный id в URL",
			url:            "/users/abc/can-download",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id`,
		},
		{
			name: "ошибка сервиса",
			url:  "/users/42/can-download",
			setupMock: func(m *MockService) {
				m.On("Check", mock.Anything, int64(42)).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not check access`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Get("/users/{id}/can-download", New(logger, svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
