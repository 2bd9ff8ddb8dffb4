// Package usage реализует HTTP-обработчик учёта выполненной загрузки.
//
// Handler вызывается после подтверждённой доставки файла и атомарно
// увеличивает дневной счётчик пользователя. Неудавшаяся загрузка
// квоту не тратит: этот вызов просто не делается.
package usage

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
)

// Handler обрабатывает запросы на учёт загрузки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис учёта квоты
}

// Service описывает интерфейс учёта загрузок.
type Service interface {
	Increment(ctx context.Context, userID int64) (int, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Учесть выполненную загрузку
// @Description Атомарно увеличивает дневной счётчик загрузок пользователя.
// @Tags Users
// @Produce  json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Новое значение счётчика"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/usage [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.usage"
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

	count, err := h.service.Increment(r.Context(), userID)
	if err != nil {
		log.Error("failed to increment usage", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record download"))
		return
	}

	log.Info("recorded download", slog.Int64("user_id", userID), slog.Int("count", count))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id":          userID,
		"files_downloaded": count,
	}))
}
