// Package redeem реализует HTTP-обработчик погашения кода подтверждения.
//
// Handler погашает одноразовый код и при успехе выдаёт пользователю
// рекламный премиум. Каждая причина отказа транслируется в свой статус
// и своё пользовательское сообщение.
package redeem

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Handler обрабатывает запросы на погашение кода.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	codes    CodeService         // Сервис кодов подтверждения
	grants   GrantService        // Сервис выдачи премиума
	validate *validator.Validate // Валидатор структуры входящих данных
}

// CodeService описывает интерфейс погашения кода.
type CodeService interface {
	Redeem(ctx context.Context, userID int64, rawCode string) error
}

// GrantService описывает интерфейс выдачи рекламного премиума.
type GrantService interface {
	GrantViaAds(ctx context.Context, userID int64) (time.Time, error)
}

// Request тело запроса на погашение кода.
type Request struct {
	Code string `json:"code" validate:"required"`
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, codes CodeService, grants GrantService) *Handler {
	return &Handler{
		log:      log,
		codes:    codes,
		grants:   grants,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Погасить код подтверждения
// @Description Погашает одноразовый код и выдаёт рекламный премиум.
// @Tags Codes
// @Accept  json
// @Produce  json
// @Param id path int true "ID пользователя"
// @Param request body Request true "Код подтверждения"
// @Success 200 {object} response.Response "Премиум выдан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 403 {object} response.ErrorResponse "Код принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Код не найден"
// @Failure 409 {object} response.ErrorResponse "Действующий премиум блокирует выдачу"
// @Failure 410 {object} response.ErrorResponse "Срок действия кода истёк"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/redeem [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.codes.redeem"
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

	if err := h.codes.Redeem(r.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("Code not found. Check the code and try again."))
		case errors.Is(err, models.ErrWrongUser):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("This code was issued to a different account."))
		case errors.Is(err, models.ErrExpired):
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("This code has expired. Watch an ad to get a new one."))
		default:
			log.Error("failed to redeem code", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not redeem code"))
		}
		return
	}

	until, err := h.grants.GrantViaAds(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Код уже погашен, но премиум из другого источника сильнее
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("You already have active premium access."))
			return
		}
		log.Error("failed to grant premium", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not grant premium"))
		return
	}

	log.Info("redeemed code and granted premium", slog.Int64("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id":       userID,
		"tier":          models.TierPaid,
		"premium_until": until.UTC().Format(time.RFC3339),
	}))
}
