// Package timeleft реализует HTTP-обработчик запроса остатка жизни кода.
package timeleft

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Handler обрабатывает запросы остатка жизни кода.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис кодов подтверждения
}

// Service описывает интерфейс запроса остатка жизни кода.
type Service interface {
	TimeLeft(ctx context.Context, rawCode string) (int, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Остаток жизни кода подтверждения
// @Description Возвращает, сколько минут код ещё действителен.
// @Tags Codes
// @Produce  json
// @Param code path string true "Код подтверждения"
// @Success 200 {object} response.Response "Остаток в минутах"
// @Failure 404 {object} response.ErrorResponse "Код не найден"
// @Failure 410 {object} response.ErrorResponse "Срок действия кода истёк"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /codes/{code}/time-left [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.codes.timeleft"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	code := chi.URLParam(r, "code")

	minutes, err := h.service.TimeLeft(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("Code not found. Check the code and try again."))
		case errors.Is(err, models.ErrExpired):
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("This code has expired. Watch an ad to get a new one."))
		default:
			log.Error("failed to get code time left", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not get code time left"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"minutes_left": minutes,
	}))
}
