package verifysession

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

// MockService реализует интерфейс verifysession.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Complete(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func TestVerifySessionHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sessionID := "a1b2c3d4e5f60718293a4b5c6d7e8f90"

	tests := []struct {
		name            string
		body            string
		setupMock       func(*MockService)
		expectedStatus  int
		wantSuccess     bool
		wantCode        string
		wantMessagePart string
	}{
		{
			name: "успешное завершение выдаёт код",
			body: `{"session":"` + sessionID + `"}`,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, sessionID).Return("AB12CD34", nil)
			},
			expectedStatus: http.StatusOK,
			wantSuccess:    true,
			wantCode:       "AB12CD34",
		},
		{
			name: "сессия не найдена",
			body: `{"session":"` + sessionID + `"}`,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, sessionID).Return("", models.ErrNotFound)
			},
			expectedStatus:  http.StatusOK,
			wantMessagePart: "not found",
		},
		{
			name: "сессия истекла",
			body: `{"session":"` + sessionID + `"}`,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, sessionID).Return("", models.ErrExpired)
			},
			expectedStatus:  http.StatusOK,
			wantMessagePart: "expired",
		},
		{
			name: "слишком рано с остатком",
			body: `{"session":"` + sessionID + `"}`,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, sessionID).
					Return("", &models.TooEarlyError{RemainingSeconds: 17})
			},
			expectedStatus:  http.StatusOK,
			wantMessagePart: "17 more seconds",
		},
		{
			name: "повторное использование",
			body: `{"session":"` + sessionID + `"}`,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, sessionID).Return("", models.ErrAlreadyUsed)
			},
			expectedStatus:  http.StatusOK,
			wantMessagePart: "already been used",
		},
		{
			name:           "некорректный JSON",
			body:           `{"session":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "слишком короткая сессия",
			body:           `{"session":"short"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "внутренняя ошибка",
			body: `{"session":"` + sessionID + `"}`,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, sessionID).Return("", errors.New("redis down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			handler := New(logger, svc)
			req := httptest.NewRequest(http.MethodPost, "/api/verify-session", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var result Result
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
				assert.Equal(t, tt.wantSuccess, result.Success)
				assert.Equal(t, tt.wantCode, result.Code)
				if tt.wantMessagePart != "" {
					assert.Contains(t, result.Message, tt.wantMessagePart)
				}
			}
			svc.AssertExpectations(t)
		})
	}
}
