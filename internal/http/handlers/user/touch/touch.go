// Package touch реализует HTTP-обработчик регистрации активности пользователя.
//
// Handler принимает JSON-запрос с профильными полями, сохраняет или обновляет
// запись пользователя и отмечает последнюю активность. Уровень доступа и
// блокировка при этом не меняются.
package touch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Handler управляет HTTP-запросами на регистрацию активности.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики уровней доступа
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики регистрации активности.
type Service interface {
	TouchUser(ctx context.Context, userID int64, profile models.DummyProfile) error
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
// @Summary Зарегистрировать активность пользователя
// @Description Сохраняет профиль пользователя и отмечает последнюю активность.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param id path int true "ID пользователя"
// @Param request body models.DummyProfile true "Профильные поля"
// @Success 200 {object} response.Response "Активность зарегистрирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/touch [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.touch"
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

	var req models.DummyProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.TouchUser(r.Context(), userID, req); err != nil {
		log.Error("failed to touch user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register activity"))
		return
	}

	log.Info("touched user", slog.Int64("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id": userID,
	}))
}
