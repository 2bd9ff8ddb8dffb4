// Package settier реализует HTTP-обработчик административной смены уровня.
//
// Handler безусловно устанавливает уровень пользователя: paid со сроком
// в сутках или free с очисткой премиум-полей. Доступен только с JWT
// администратора.
package settier

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

	"github.com/magabrotheeeer/premium-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
)

// Handler обрабатывает запросы на смену уровня доступа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики уровней доступа
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс административной смены уровня.
type Service interface {
	GrantViaAdmin(ctx context.Context, userID int64, tier string, days int) error
}

// Request тело запроса на смену уровня.
type Request struct {
	Tier string `json:"tier" validate:"required,oneof=free paid"`
	Days int    `json:"days" validate:"min=0"`
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
// @Summary Установить уровень доступа пользователя
// @Description Безусловно устанавливает уровень: paid на заданное число дней или free.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "ID пользователя"
// @Param request body Request true "Новый уровень и срок в днях"
// @Success 200 {object} response.Response "Уровень установлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Администратор не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/users/{id}/tier [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settier"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminID, ok := r.Context().Value(middlewarectx.AdminID).(int64)
	if !ok {
		log.Error("admin identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	if err := h.service.GrantViaAdmin(r.Context(), userID, req.Tier, req.Days); err != nil {
		log.Error("failed to set tier", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set tier"))
		return
	}

	log.Info("set user tier",
		slog.Int64("admin_id", adminID),
		slog.Int64("user_id", userID),
		slog.String("tier", req.Tier))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id": userID,
		"tier":    req.Tier,
	}))
}
