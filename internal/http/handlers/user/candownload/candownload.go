// Package candownload реализует HTTP-обработчик проверки допуска к загрузке.
//
// Handler объединяет блокировку, уровень доступа и дневную квоту в одно
// решение. Счётчик загрузок при проверке не меняется.
package candownload

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
	guard "github.com/magabrotheeeer/premium-access/internal/services/guard"
)

// Handler обрабатывает запросы на проверку допуска к загрузке.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис принятия решения о допуске
}

// Service описывает интерфейс проверки допуска.
type Service interface {
	Check(ctx context.Context, userID int64) (*guard.Decision, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить допуск пользователя к загрузке
// @Description Возвращает решение: разрешено или нет, остаток квоты и сообщение при отказе.
// @Tags Users
// @Produce  json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Решение о допуске"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/can-download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.candownload"
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

	decision, err := h.service.Check(r.Context(), userID)
	if err != nil {
		log.Error("failed to check access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check access"))
		return
	}

	log.Info("checked download access",
		slog.Int64("user_id", userID),
		slog.Bool("allowed", decision.Allowed))
	render.JSON(w, r, response.StatusOKWithData(decision))
}
