// Command api serves the pharmacy inventory REST API.
//
// @title                       Pharmacy Inventory API
// @version                     1.0
// @description                 Products, expiry dashboard and JWT authentication for a pharmacy inventory.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/igloolab/pharmacy-inventory/internal/api"
	"github.com/igloolab/pharmacy-inventory/internal/api/handler"
	"github.com/igloolab/pharmacy-inventory/internal/api/middleware"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
	"github.com/igloolab/pharmacy-inventory/internal/core/service"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/config"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/db/memory"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/db/mongo"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/db/postgres"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/db/redis"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/queue"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/security"
	"github.com/igloolab/pharmacy-inventory/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

// stores is the persistence selected by STORE_DRIVER.
type stores struct {
	users    ports.UserRepository
	products ports.ProductRepository
	health   map[string]handler.Pinger
	close    func()
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "pharmacy-api",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var authLimiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()

		authLimiter = redis.NewFixedWindowLimiter(client, "auth", cfg.RateLimit.AuthMaxRequests, cfg.RateLimit.AuthWindow)
		st.health["redis"] = redis.Pinger{Client: client}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("auth rate limit backed by redis")
	}

	tokens, err := security.NewJWTIssuer(security.JWTConfig{
		AccessSecret:  cfg.JWT.Secret,
		AccessTTL:     cfg.JWT.ExpiresIn,
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshExpiresIn,
	})
	if err != nil {
		return err
	}

	authService := service.NewAuthService(st.users, security.NewBcryptHasher(cfg.BcryptCost), tokens, log)
	productService := service.NewProductService(st.products, log)
	dashboardService := service.NewDashboardService(st.products, nil)

	e := api.NewRouter(api.Deps{
		Logger:      log,
		Auth:        authService,
		Products:    productService,
		Dashboard:   dashboardService,
		Tokens:      tokens,
		AuthLimiter: authLimiter,
		Health:      st.health,
	}, api.Options{
		AllowedOrigins:      cfg.HTTP.AllowedOrigins,
		RateLimit:           api.RateLimit{Max: cfg.RateLimit.MaxRequests, Window: cfg.RateLimit.Window},
		AuthRateLimit:       api.RateLimit{Max: cfg.RateLimit.AuthMaxRequests, Window: cfg.RateLimit.AuthWindow},
		ProductsRequireAuth: cfg.HTTP.ProductsRequireAuth,
	})

	queue.NewExpiryRefresher(cfg.ExpiryMetricsInterval, dashboardService, log).Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.StoreDriver).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &stores{
			users:    s.Users,
			products: s.Products,
			health:   map[string]handler.Pinger{"mongo": s},
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := s.Close(closeCtx); err != nil {
					log.Error().Err(err).Msg("close mongo")
				}
			},
		}, nil

	case config.DriverPostgres:
		s, err := postgres.Open(ctx, postgres.Config{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info().Msg("postgres store ready, migrations applied")
		return &stores{
			users:    s.Users,
			products: s.Products,
			health:   map[string]handler.Pinger{"postgres": s},
			close: func() {
				if err := s.Close(); err != nil {
					log.Error().Err(err).Msg("close postgres")
				}
			},
		}, nil

	default:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			users:    memory.NewUserRepository(),
			products: memory.NewProductRepository(),
			health:   map[string]handler.Pinger{},
			close:    func() {},
		}, nil
	}
}
