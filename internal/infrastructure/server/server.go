package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/studyplanner/core/docs"
	httpHandlers "github.com/studyplanner/core/internal/adapters/http"
	"github.com/studyplanner/core/internal/application/services"
	"github.com/studyplanner/core/internal/infrastructure/config"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/infrastructure/metrics"
	"github.com/studyplanner/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	store   ports.DocumentStore
	metrics *metrics.Metrics
	started time.Time
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance. m may be nil when metrics are disabled.
func New(cfg *config.Config, store ports.DocumentStore, appLogger *logger.Logger, m *metrics.Metrics) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}

	renderer, err := httpHandlers.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	e.Debug = cfg.App.Debug
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	scheduleService := services.NewScheduleService(store, appLogger)
	scheduleHandler := httpHandlers.NewScheduleHandler(scheduleService, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("server"),
		store:   store,
		metrics: m,
		started: time.Now(),
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled && m != nil {
		server.setupMetrics()
	}

	server.setupRoutes(scheduleHandler)

	return server, nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h *httpHandlers.ScheduleHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Calendar page and assets
	s.echo.GET("/", h.Index)
	s.echo.StaticFS("/static", httpHandlers.StaticFiles())

	// Schedule routes
	s.echo.POST("/add-task", h.AddTask)
	s.echo.POST("/add-class", h.AddClass)
	s.echo.GET("/get-events", h.GetEvents)
	s.echo.DELETE("/delete-task/:id", h.DeleteTask)
	s.echo.DELETE("/delete-class/:id", h.DeleteClass)
	s.echo.POST("/edit_task", h.EditTask)
	s.echo.POST("/edit_class", h.EditClass)

	// Subject routes
	s.echo.GET("/get-subjects", h.GetSubjects)
	s.echo.POST("/add-subject", h.AddSubject)
	s.echo.DELETE("/delete-subject/:name", h.DeleteSubject)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.store.Ping(c.Request().Context()); err != nil {
		status = "error"
		checks["store"] = map[string]interface{}{
			"status": "error",
			"driver": s.config.Store.Driver,
			"error":  err.Error(),
		}
	} else {
		checks["store"] = map[string]interface{}{
			"status": "ok",
			"driver": s.config.Store.Driver,
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"uptime": time.Since(s.started).Round(time.Second).String(),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.logger.Warnw("Readiness check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "store_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := s.config.Server.GetAddr()
	s.logger.Infow("Starting server", "address", address)

	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors. It is the single place where
// failed requests are logged at error level.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// The timeout middleware reports the error itself and then returns it.
		if c.Response().Committed {
			return
		}

		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		var ve validator.ValidationErrors
		if errors.As(err, &he) {
			code = he.Code
			msg = he.Message
			if text, ok := he.Message.(string); ok {
				msg = httpHandlers.MessageResponse{Message: text}
				if c.Echo().Debug && he.Internal != nil {
					msg = map[string]string{"message": text, "error": he.Internal.Error()}
				}
			}
		} else if errors.As(err, &ve) {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": ve.Error()}
		} else {
			msg = httpHandlers.MessageResponse{Message: http.StatusText(code)}
		}

		reqLogger := logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
		if code >= http.StatusInternalServerError {
			reqLogger.Errorw("Request failed", "error", err, "path", c.Request().URL.Path, "status", code)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, msg)
		}
		if err != nil {
			reqLogger.Errorw("Error sending response", "error", err)
		}
	}
}
