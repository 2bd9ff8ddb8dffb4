// Package verifysession реализует HTTP-обработчик завершения просмотра рекламы.
//
// Handler вызывается страницей просмотра из браузера, поэтому формат ответа
// фиксирован: {success, code, message}. Все исходы бизнес-логики отдаются
// со статусом 200, чтобы скрипт страницы разбирал их единообразно.
package verifysession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Handler обрабатывает завершение просмотра рекламы.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис рекламных сессий
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс завершения рекламной сессии.
type Service interface {
	Complete(ctx context.Context, sessionID string) (string, error)
}

// Request тело запроса со страницы просмотра.
type Request struct {
	Session string `json:"session" validate:"required,len=32"`
}

// Result ответ для скрипта страницы просмотра.
type Result struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Завершить просмотр рекламы
// @Description Проверяет сессию, засчитывает просмотр и выдаёт код подтверждения.
// @Tags Ads
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор сессии"
// @Success 200 {object} Result "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /verify-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ads.verifysession"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	code, err := h.service.Complete(r.Context(), req.Session)
	if err != nil {
		var tooEarly *models.TooEarlyError
		switch {
		case errors.As(err, &tooEarly):
			render.JSON(w, r, Result{
				Success: false,
				Message: fmt.Sprintf("Please watch the ad for %d more seconds.", tooEarly.RemainingSeconds),
			})
		case errors.Is(err, models.ErrNotFound):
			render.JSON(w, r, Result{
				Success: false,
				Message: "Session not found. Please request a new link.",
			})
		case errors.Is(err, models.ErrExpired):
			render.JSON(w, r, Result{
				Success: false,
				Message: "Session expired. Please request a new link.",
			})
		case errors.Is(err, models.ErrAlreadyUsed):
			render.JSON(w, r, Result{
				Success: false,
				Message: "This session has already been used.",
			})
		default:
			log.Error("failed to complete ad session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify session"))
		}
		return
	}

	log.Info("verified ad session")
	render.JSON(w, r, Result{
		Success: true,
		Code:    code,
		Message: "Ad view confirmed. Enter the code in the chat to activate premium.",
	})
}
