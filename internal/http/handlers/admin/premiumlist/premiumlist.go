// Package premiumlist реализует HTTP-обработчик списка премиум-пользователей.
package premiumlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/premium-access/internal/http/response"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Handler обрабатывает запросы списка премиум-пользователей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уровней доступа
}

// Service описывает интерфейс получения списка премиум-пользователей.
type Service interface {
	ListPremiumUsers(ctx context.Context) ([]*models.PremiumUser, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список премиум-пользователей
// @Description Возвращает пользователей с действующим премиумом, отсортированных по сроку окончания.
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response "Список премиум-пользователей"
// @Failure 401 {object} response.ErrorResponse "Администратор не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/premium-users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.premiumlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListPremiumUsers(r.Context())
	if err != nil {
		log.Error("failed to list premium users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list premium users"))
		return
	}

	log.Info("returned premium users", slog.Int("count", len(users)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": users,
		"count": len(users),
	}))
}
