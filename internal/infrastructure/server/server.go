package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/xweng-opaida/agent-viewer/internal/api/http"
	"github.com/xweng-opaida/agent-viewer/internal/api/middleware"
	"github.com/xweng-opaida/agent-viewer/internal/api/ws"
	"github.com/xweng-opaida/agent-viewer/internal/container"
	"github.com/xweng-opaida/agent-viewer/internal/domain/bridge"
	"github.com/xweng-opaida/agent-viewer/internal/domain/session"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/config"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/logging"
	"github.com/xweng-opaida/agent-viewer/internal/infrastructure/monitoring"
)

// Server runs the API and the bridge listener.
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *session.Registry
	manager  *session.Manager
	metrics  *monitoring.Metrics

	api       *http.Server
	bridgeSrv *http.Server
}

// NewServer builds all components from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: false,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			return nil, err
		}
		logger = l
	}

	logger.Info("Initializing agent-viewer",
		zap.String("api_port", cfg.Server.Port),
		zap.String("bridge_port", cfg.Bridge.Port),
		zap.String("image", cfg.Container.Image),
	)

	metrics := monitoring.NewMetrics()
	registry := session.NewRegistry()

	runtime := container.NewCLI(container.CLIConfig{
		Binary:         cfg.Container.DockerBin,
		CommandTimeout: cfg.Container.CommandTimeout,
		StopTimeout:    cfg.Container.StopTimeout,
	}, logger)

	launcher := container.NewScriptLauncher(container.LauncherConfig{
		ScriptPath: cfg.Container.LaunchScript,
		Timeout:    cfg.Container.LaunchTimeout,
	}, logger)

	discoverer := session.NewDiscoverer(runtime, cfg.Container.Image, logger).WithMetrics(metrics)

	displays := container.NewDisplayChooser(cfg.Ports.DisplayStart, cfg.Ports.DisplayEnd)
	manager := session.NewManager(registry, runtime, launcher, discoverer, session.ManagerConfig{
		Image:          cfg.Container.Image,
		DebugPortStart: cfg.Ports.DebugStart,
		VNCPortStart:   cfg.Ports.VNCStart,
		DisplayStart:   cfg.Ports.DisplayStart,
		DisplayEnd:     cfg.Ports.DisplayEnd,
	}, logger).
		WithMetrics(metrics).
		WithDisplayChooser(displays.Choose)

	// Session state does not survive restarts; rebuild it from the
	// runtime before serving anything.
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	discovered := manager.Refresh(seedCtx)
	cancel()
	logger.Info("Seeded registry from running containers", zap.Int("sessions", len(discovered)))

	// Request/response API engine.
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	handlers := apihttp.NewHandlers(manager, registry, logger)
	router.GET("/health", handlers.Health)
	router.GET("/api/sessions", handlers.ListSessions)
	router.POST("/api/sessions", handlers.StartSession)
	router.POST("/api/sessions/:id/stop", handlers.StopSession)
	router.POST("/api/sessions/cleanup", handlers.CleanupSessions)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if st, err := os.Stat(cfg.Server.StaticDir); err == nil && st.IsDir() {
		router.StaticFile("/", cfg.Server.StaticDir+"/index.html")
		router.Static("/static", cfg.Server.StaticDir)
	}

	// Bridge engine on its own listener.
	vncBridge := bridge.New(registry, logger).WithMetrics(metrics)
	bridgeRouter := ws.Router(ws.NewHandler(vncBridge, logger), cfg.Logging.Development)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		manager:  manager,
		metrics:  metrics,
		api: &http.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		bridgeSrv: &http.Server{
			Addr:    net.JoinHostPort(cfg.Bridge.Host, cfg.Bridge.Port),
			Handler: bridgeRouter,
		},
	}, nil
}

// Run starts both listeners and blocks until either fails.
func (s *Server) Run() error {
	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("Bridge listener starting", zap.String("addr", s.bridgeSrv.Addr))
		if err := s.bridgeSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		s.logger.Info("API server starting", zap.String("addr", s.api.Addr))
		if err := s.api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return <-errCh
}

// Close shuts both listeners down gracefully.
func (s *Server) Close() error {
	s.logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	if err := s.api.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := s.bridgeSrv.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	s.logger.Sync()
	return firstErr
}
