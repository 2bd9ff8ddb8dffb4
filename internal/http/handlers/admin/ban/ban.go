// Package ban реализует HTTP-обработчик блокировки и разблокировки
// пользователя. Доступен только с JWT администратора.
package ban

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

// Handler обрабатывает запросы на блокировку пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уровней доступа
}

// Service описывает интерфейс блокировки пользователя.
type Service interface {
	Ban(ctx context.Context, userID int64) error
	Unban(ctx context.Context, userID int64) error
}

// Request тело запроса на блокировку.
type Request struct {
	Banned bool `json:"banned"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Заблокировать или разблокировать пользователя
// @Description Устанавливает флаг блокировки пользователя.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "ID пользователя"
// @Param request body Request true "Флаг блокировки"
// @Success 200 {object} response.Response "Флаг установлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Администратор не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/users/{id}/ban [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.ban"
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

	if req.Banned {
		err = h.service.Ban(r.Context(), userID)
	} else {
		err = h.service.Unban(r.Context(), userID)
	}
	if err != nil {
		log.Error("failed to set ban flag", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set ban flag"))
		return
	}

	log.Info("set ban flag",
		slog.Int64("admin_id", adminID),
		slog.Int64("user_id", userID),
		slog.Bool("banned", req.Banned))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id": userID,
		"banned":  req.Banned,
	}))
}
