// Package adlink реализует HTTP-обработчик создания рекламной сессии.
//
// Handler создаёт сессию просмотра рекламы и возвращает её идентификатор
// вместе с посадочной ссылкой для браузера пользователя.
package adlink

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

// Handler обрабатывает запросы на создание рекламной сессии.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис рекламных сессий
}

// Service описывает интерфейс создания рекламной сессии.
type Service interface {
	Create(ctx context.Context, userID int64) (string, string, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создать рекламную сессию
// @Description Создаёт сессию просмотра рекламы и возвращает посадочную ссылку.
// @Tags Ads
// @Produce  json
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Сессия и посадочная ссылка"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/ad-link [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ads.adlink"
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

	sessionID, link, err := h.service.Create(r.Context(), userID)
	if err != nil {
		log.Error("failed to create ad session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create ad session"))
		return
	}

	log.Info("created ad session", slog.Int64("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session_id": sessionID,
		"link":       link,
	}))
}
