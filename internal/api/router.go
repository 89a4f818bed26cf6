package api

import (
	_ "embed"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/rsandoval/tasks-api/docs"
	"github.com/rsandoval/tasks-api/internal/api/handler"
	"github.com/rsandoval/tasks-api/internal/api/middleware"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

//go:embed static/index.html
var indexHTML []byte

// Dependencies are the collaborators the HTTP layer is built on.
type Dependencies struct {
	Auth   ports.AuthService
	Tasks  ports.TaskService
	Tokens ports.TokenService
	// Users resolves token subjects on every request; usually the cached
	// repository.
	Users ports.UserRepository
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
	Logger zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	access  middleware.Access
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every route carries an access tag; untagged routes are Protected.
func NewRouter(deps Dependencies) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "tasks_api",
		Registerer: registerer,
	}))
	e.Use(middleware.Identity(deps.Tokens, deps.Users, deps.Logger))

	authHandler := handler.NewAuthHandler(deps.Auth)
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	routes := []route{
		// --- Static ---
		{http.MethodGet, "/", index, middleware.Public},
		{http.MethodGet, "/index.html", index, middleware.Public},

		// --- Auth ---
		{http.MethodPost, "/api/auth/register", authHandler.Register, middleware.Public},
		{http.MethodPost, "/api/auth/login", authHandler.Login, middleware.Public},

		// --- Tasks ---
		{http.MethodGet, "/api/tasks", taskHandler.List, middleware.Protected},
		{http.MethodGet, "/api/tasks/search", taskHandler.Search, middleware.Protected},
		{http.MethodGet, "/api/tasks/:id", taskHandler.Get, middleware.Protected},
		{http.MethodPost, "/api/tasks", taskHandler.Create, middleware.Protected},
		{http.MethodPut, "/api/tasks/:id", taskHandler.Update, middleware.Protected},
		{http.MethodDelete, "/api/tasks/:id", taskHandler.Delete, middleware.Protected},

		// --- Operations ---
		{http.MethodGet, "/health", healthHandler.Liveness, middleware.Public},
		{http.MethodGet, "/health/ready", healthDepsHandler.Readiness, middleware.Public},
		{http.MethodGet, "/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}), middleware.Public},
		{http.MethodGet, "/swagger/*", echoSwagger.WrapHandler, middleware.Public},
	}

	for _, r := range routes {
		e.Add(r.method, r.path, r.handler, middleware.Enforce(r.access))
	}

	// Unknown paths are protected too: anonymous callers get 401, not 404.
	e.RouteNotFound("/*", notFound, middleware.Enforce(middleware.Protected))

	return e
}

func notFound(echo.Context) error {
	return echo.ErrNotFound
}

func index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
