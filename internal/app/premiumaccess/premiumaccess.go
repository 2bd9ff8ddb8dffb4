// Package premiumaccess собирает приложение сервиса доступа: хранилища,
// сервисы, маршруты и жизненный цикл HTTP-сервера.
package premiumaccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/premium-access/internal/cache"
	"github.com/magabrotheeeer/premium-access/internal/config"
	"github.com/magabrotheeeer/premium-access/internal/lib/jwt"
	"github.com/magabrotheeeer/premium-access/internal/lib/sl"
	"github.com/magabrotheeeer/premium-access/internal/migrations"
	"github.com/magabrotheeeer/premium-access/internal/rabbitmq"
	adsessionservice "github.com/magabrotheeeer/premium-access/internal/services/adsession"
	entitlementservice "github.com/magabrotheeeer/premium-access/internal/services/entitlement"
	guardservice "github.com/magabrotheeeer/premium-access/internal/services/guard"
	quotaservice "github.com/magabrotheeeer/premium-access/internal/services/quota"
	verificationservice "github.com/magabrotheeeer/premium-access/internal/services/verification"
	"github.com/magabrotheeeer/premium-access/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключается к PostgreSQL и Redis, прогоняет
// миграции, собирает сервисы и маршруты. Недоступность хранилищ на
// старте фатальна, все остальные сбои обрабатываются на лету.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var events entitlementservice.EventPublisher
	if cfg.Rabbit.URL != "" {
		conn, err := rabbitmq.Connect(cfg.Rabbit.URL, cfg.Rabbit.Retries, cfg.Rabbit.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetPremiumQueues())
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	}

	entitlementService := entitlementservice.NewEntitlementService(db, events, logger, cfg.PremiumDuration)
	quotaService := quotaservice.NewQuotaService(db, logger, cfg.DailyLimit)
	guardService := guardservice.NewGuardService(entitlementService, quotaService, logger)
	verificationService := verificationservice.NewVerificationService(cacheRedis, logger, cfg.CodeTTL)
	adSessionService := adsessionservice.NewAdSessionService(cacheRedis, verificationService, logger, cfg.Freshness, cfg.Ads)

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	if cfg.Env == "local" {
		// Токен для ручной проверки админского API в локальной среде
		if token, err := maker.GenerateToken(0, "local"); err != nil {
			logger.Warn("failed to generate dev admin token", sl.Err(err))
		} else {
			logger.Info("dev admin token", slog.String("token", token))
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, &Services{
		Entitlement:  entitlementService,
		Quota:        quotaService,
		Guard:        guardService,
		Verification: verificationService,
		AdSession:    adSessionService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
