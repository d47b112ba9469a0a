package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shellmux/shellmux/internal/api/middleware"
	apihttp "github.com/shellmux/shellmux/internal/http"
	"github.com/shellmux/shellmux/internal/infrastructure/config"
	"github.com/shellmux/shellmux/internal/infrastructure/monitoring"
	"github.com/shellmux/shellmux/internal/infrastructure/tracing"
	"github.com/shellmux/shellmux/internal/logging"
	shellprovider "github.com/shellmux/shellmux/internal/providers/shell"
	"github.com/shellmux/shellmux/internal/service"
	"github.com/shellmux/shellmux/internal/session"
	"github.com/shellmux/shellmux/internal/ws"
)

// Server wraps the HTTP server and its dependencies
type Server struct {
	httpServer *http.Server
	sessions   *session.Registry
	registry   *service.Registry
	metrics    *monitoring.Metrics
	log        *logging.Logger
}

// New assembles the full service: session registry, providers, metrics,
// middleware stack, and routes.
func New(cfg *config.Config, log *logging.Logger) *Server {
	metrics := monitoring.NewMetrics()

	sessions := session.NewRegistry(session.Config{
		ShellPath:   cfg.Shell.ShellPath,
		CommandWait: cfg.Shell.CommandWait,
		ConfirmWait: cfg.Shell.ConfirmWait,
		CloseGrace:  cfg.Shell.CloseGrace,
		MaxSessions: cfg.Shell.MaxSessions,
		BufferMax:   cfg.Shell.BufferMax,
		IdleExpiry:  cfg.Shell.IdleExpiry,
	}, log)
	sessions.Bridge().Attach(monitoring.NewRecorder(metrics))

	serviceRegistry := service.NewRegistry()
	if err := serviceRegistry.Register(shellprovider.NewProvider(sessions, log, metrics)); err != nil {
		log.Error("failed to register shell provider", zap.Error(err))
	}
	stats := serviceRegistry.Stats()
	log.Info("services registered",
		zap.Any("total_services", stats["total_services"]),
		zap.Any("total_tools", stats["total_tools"]))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...)))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))
	router.Use(tracing.Middleware(tracing.New("shellmux", log.Logger)))

	handlers := apihttp.NewHandlers(serviceRegistry, sessions, metrics)
	wsHandler := ws.NewHandler(sessions, log, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Session endpoints
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.GET("/sessions/:id/output", handlers.GetSessionOutput)
	router.DELETE("/sessions/:id", handlers.CloseSession)
	router.POST("/sessions/:id/input", handlers.SubmitOperatorCommand)
	router.POST("/sessions/:id/confirmations/:request_id", handlers.ResolveConfirmation)

	// WebSocket presentation surface
	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
		sessions: sessions,
		registry: serviceRegistry,
		metrics:  metrics,
		log:      log,
	}
}

// Run starts serving and blocks until the listener stops.
func (s *Server) Run() error {
	s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight HTTP requests, then closes every live shell
// session.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.sessions.Shutdown()
	s.metrics.Close()
	return err
}
