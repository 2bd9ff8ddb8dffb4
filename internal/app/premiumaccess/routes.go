package premiumaccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/premium-access/internal/http/handlers/admin/ban"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/admin/premiumlist"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/admin/setadmin"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/admin/settier"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/ads/adlink"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/ads/verifysession"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/codes/redeem"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/codes/timeleft"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/health"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/user/candownload"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/user/tier"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/user/touch"
	"github.com/magabrotheeeer/premium-access/internal/http/handlers/user/usage"
	"github.com/magabrotheeeer/premium-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/premium-access/internal/lib/jwt"
	adsessionservice "github.com/magabrotheeeer/premium-access/internal/services/adsession"
	entitlementservice "github.com/magabrotheeeer/premium-access/internal/services/entitlement"
	guardservice "github.com/magabrotheeeer/premium-access/internal/services/guard"
	quotaservice "github.com/magabrotheeeer/premium-access/internal/services/quota"
	verificationservice "github.com/magabrotheeeer/premium-access/internal/services/verification"
)

// Services собирает сервисы приложения для регистрации маршрутов.
type Services struct {
	Entitlement  *entitlementservice.EntitlementService
	Quota        *quotaservice.QuotaService
	Guard        *guardservice.GuardService
	Verification *verificationservice.VerificationService
	AdSession    *adsessionservice.AdSessionService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker jwt.Maker, svcs *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Пользовательские конечные точки, вызываются ботом
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/users/{id}/touch", touch.New(logger, svcs.Entitlement).ServeHTTP)
			r.Get("/users/{id}/tier", tier.New(logger, svcs.Entitlement).ServeHTTP)
			r.Get("/users/{id}/can-download", candownload.New(logger, svcs.Guard).ServeHTTP)
			r.Post("/users/{id}/usage", usage.New(logger, svcs.Quota).ServeHTTP)
			r.Post("/users/{id}/ad-link", adlink.New(logger, svcs.AdSession).ServeHTTP)
			r.Post("/users/{id}/redeem", redeem.New(logger, svcs.Verification, svcs.Entitlement).ServeHTTP)
			r.Get("/codes/{code}/time-left", timeleft.New(logger, svcs.Verification).ServeHTTP)
		})

		// Группа админского API с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Post("/admin/users/{id}/tier", settier.New(logger, svcs.Entitlement).ServeHTTP)
			r.Post("/admin/users/{id}/ban", ban.New(logger, svcs.Entitlement).ServeHTTP)
			r.Post("/admin/users/{id}/admin", setadmin.New(logger, svcs.Entitlement).ServeHTTP)
			r.Get("/admin/stats", stats.New(logger, svcs.Entitlement).ServeHTTP)
			r.Get("/admin/premium-users", premiumlist.New(logger, svcs.Entitlement).ServeHTTP)
		})
	})

	// Callback с посадочной страницы рекламы (без аутентификации)
	r.With(middlewarectx.RateLimitMiddleware(logger)).
		Post("/api/verify-session", verifysession.New(logger, svcs.AdSession).ServeHTTP)

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
