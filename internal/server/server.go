package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/valpere/meteopin/internal/config"
	"github.com/valpere/meteopin/internal/database"
	"github.com/valpere/meteopin/internal/middleware"
	"github.com/valpere/meteopin/internal/services"
	"github.com/valpere/meteopin/internal/version"
	"github.com/valpere/meteopin/pkg/metrics"
)

// Server wires configuration, storage, services and the gin router together.
type Server struct {
	config     *config.Config
	logger     zerolog.Logger
	services   *services.Services
	metrics    *metrics.Metrics
	db         *gorm.DB
	redis      *redis.Client
	httpServer *http.Server
}

func New(cfg *config.Config) (*Server, error) {
	// Initialize logger
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().
		Timestamp().
		Str("component", "server").
		Logger()
	if cfg.Logging.Format == "json" {
		logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logger = logger.Level(level)
	}

	// Initialize metrics
	metricsCollector := metrics.New()

	// Initialize database
	db, err := database.Connect(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis
	rdb, err := database.ConnectRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Initialize services
	svcs := services.New(db, rdb, cfg, &logger, metricsCollector)

	router := NewRouter(svcs, logger, metricsCollector, cfg.RateLimit)

	srv := &Server{
		config:   cfg,
		logger:   logger,
		services: svcs,
		metrics:  metricsCollector,
		db:       db,
		redis:    rdb,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		},
	}

	return srv, nil
}

// NewRouter builds the gin engine with all routes and middleware configured.
// Split out from New so handler tests can run against mocked services.
func NewRouter(svcs *services.Services, logger zerolog.Logger, metricsCollector *metrics.Metrics, rlCfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(logger))
	router.Use(middleware.RequestMetrics(metricsCollector))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "meteopin",
			"version":   version.Version,
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(metricsCollector.Handler()))

	handlers := NewHandlers(svcs, &logger)
	limiter := middleware.NewDeviceRateLimiter(rate.Limit(rlCfg.RequestsPerSecond), rlCfg.Burst)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter))

	api.POST("/weather", handlers.Weather)
	api.POST("/airPollution", handlers.AirPollution)

	sidemenu := api.Group("/sidemenu")
	sidemenu.POST("/locations", handlers.AddLocation)
	sidemenu.GET("/locations", handlers.ListLocations)
	sidemenu.DELETE("/locations", handlers.DeleteLocation)
	sidemenu.PATCH("/locations/sort-order", handlers.UpdateSortOrder)
	sidemenu.GET("/locations/check-duplicate", handlers.CheckDuplicate)

	return router
}

// Start serves HTTP until the context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().
		Int("port", s.config.Server.Port).
		Str("version", version.Version).
		Msg("Starting meteopin server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Stop gracefully shuts down the HTTP server and closes connections.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	if err := s.redis.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close Redis connection")
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close database connection")
		}
	}

	return nil
}
