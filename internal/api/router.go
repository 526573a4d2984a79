package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/igloolab/pharmacy-inventory/docs"
	"github.com/igloolab/pharmacy-inventory/internal/api/handler"
	"github.com/igloolab/pharmacy-inventory/internal/api/middleware"
	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

// Deps are the services and infrastructure the HTTP layer is built on.
type Deps struct {
	Logger    zerolog.Logger
	Auth      ports.AuthService
	Products  ports.ProductService
	Dashboard ports.DashboardService
	Tokens    ports.TokenVerifier

	// AuthLimiter guards register and login. Nil means a per-process
	// limiter built from Options.AuthRateLimit.
	AuthLimiter middleware.Limiter
	// Health lists the dependencies pinged by /health/ready.
	Health map[string]handler.Pinger
}

type RateLimit struct {
	Max    int
	Window time.Duration
}

type Options struct {
	AllowedOrigins      []string
	RateLimit           RateLimit
	AuthRateLimit       RateLimit
	ProductsRequireAuth bool
	// MetricsRegisterer receives the HTTP metrics. Nil means the default registry.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	// Outside the request logger, which renders errors, so it sees final statuses.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: opts.MetricsRegisterer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	globalLimit := middleware.RateLimit(
		middleware.NewMemoryLimiter(opts.RateLimit.Max, opts.RateLimit.Window), "global", deps.Logger)

	authLimiter := deps.AuthLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewMemoryLimiter(opts.AuthRateLimit.Max, opts.AuthRateLimit.Window)
	}
	authLimit := middleware.RateLimit(authLimiter, "auth", deps.Logger)
	requireAuth := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth", globalLimit)
	auth.POST("/register", authHandler.Register, authLimit)
	auth.POST("/login", authHandler.Login, authLimit)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.POST("/logout", authHandler.Logout)

	// --- Product routes ---
	productHandler := handler.NewProductHandler(deps.Products)
	var writeGuard, deleteGuard []echo.MiddlewareFunc
	if opts.ProductsRequireAuth {
		writeGuard = []echo.MiddlewareFunc{requireAuth}
		deleteGuard = []echo.MiddlewareFunc{requireAuth, middleware.RBAC(domain.RoleAdmin)}
	}
	products := e.Group("/products", globalLimit)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, writeGuard...)
	products.PUT("/:id", productHandler.Update, writeGuard...)
	products.DELETE("/:id", productHandler.Delete, deleteGuard...)

	// --- Dashboard routes ---
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	dashboard := e.Group("/dashboard", globalLimit)
	dashboard.GET("/stats", dashboardHandler.Stats)
	dashboard.GET("/expiry-status", dashboardHandler.ExpiryStatus)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health, deps.Logger)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
