package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/premium-access/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret_key", 15*time.Minute)
	token, err := maker.GenerateToken(1001, "root_admin")
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "валидный токен пропускается",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "отсутствующий заголовок",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "без префикса Bearer",
			authHeader: token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "испорченный токен",
			authHeader: "Bearer " + token + "tampered",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				adminID, ok := r.Context().Value(AdminID).(int64)
				require.True(t, ok)
				assert.Equal(t, int64(1001), adminID)
				name, ok := r.Context().Value(AdminName).(string)
				require.True(t, ok)
				assert.Equal(t, "root_admin", name)
				w.WriteHeader(http.StatusOK)
			})

			handler := JWTMiddleware(maker, newNoopLogger())(next)
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
		})
	}
}
