// Package tier реализует HTTP-обработчик разрешения уровня доступа.
//
// Handler возвращает действующий уровень пользователя с учётом членства
// в множестве администраторов и ленивого понижения истёкшего премиума.
package tier

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Handler обрабатывает запросы на разрешение уровня доступа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уровней доступа
}

// Service описывает интерфейс бизнес-логики разрешения уровня.
type Service interface {
	ResolveTier(ctx context.Context, userID int64) (string, *models.User, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить уровень доступа пользователя
// @Description Возвращает действующий уровень: free, paid или admin.
// @Tags Users
// @Produce  json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Уровень доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/tier [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.tier"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	tier, user, err := h.service.ResolveTier(r.Context(), userID)
	if err != nil {
		log.Error("failed to resolve tier", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve tier"))
		return
	}

	data := map[string]any{
		"user_id": userID,
		"tier":    tier,
	}
	if user != nil && user.SubscriptionEnd != nil {
		data["subscription_end"] = user.SubscriptionEnd.UTC().Format(time.RFC3339)
		if user.PremiumSource != nil {
			data["premium_source"] = *user.PremiumSource
		}
	}

	log.Info("resolved tier", slog.Int64("user_id", userID), slog.String("tier", tier))
	render.JSON(w, r, response.StatusOKWithData(data))
}
