// Package setadmin реализует HTTP-обработчик назначения и снятия
// администратора. Доступен только с JWT администратора.
package setadmin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/premium-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
)

// Handler обрабатывает запросы на смену статуса администратора.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уровней доступа
}

// Service описывает интерфейс управления списком администраторов.
type Service interface {
	PromoteAdmin(ctx context.Context, userID int64) error
	DemoteAdmin(ctx context.Context, userID int64) error
}

// Request тело запроса на смену статуса администратора.
type Request struct {
	Admin bool `json:"admin"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Назначить или снять администратора
// @Description Добавляет пользователя в список администраторов или убирает из него.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "ID пользователя"
// @Param request body Request true "Флаг администратора"
// @Success 200 {object} response.Response "Статус обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Администратор не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/users/{id}/admin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setadmin"
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

	if req.Admin {
		err = h.service.PromoteAdmin(r.Context(), userID)
	} else {
		err = h.service.DemoteAdmin(r.Context(), userID)
	}
	if err != nil {
		log.Error("failed to update admin status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update admin status"))
		return
	}

	log.Info("updated admin status",
		slog.Int64("admin_id", adminID),
		slog.Int64("user_id", userID),
		slog.Bool("admin", req.Admin))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id": userID,
		"admin":   req.Admin,
	}))
}
