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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/waste-chat/internal/chat"
	"github.com/richxcame/waste-chat/internal/server"
	"github.com/richxcame/waste-chat/pkg/common"
	"github.com/richxcame/waste-chat/pkg/config"
	"github.com/richxcame/waste-chat/pkg/database"
	"github.com/richxcame/waste-chat/pkg/errtrack"
	"github.com/richxcame/waste-chat/pkg/health"
	"github.com/richxcame/waste-chat/pkg/httpclient"
	"github.com/richxcame/waste-chat/pkg/i18n"
	"github.com/richxcame/waste-chat/pkg/logger"
	"github.com/richxcame/waste-chat/pkg/middleware"
	"github.com/richxcame/waste-chat/pkg/preferences"
	"github.com/richxcame/waste-chat/pkg/ratelimit"
	"github.com/richxcame/waste-chat/pkg/redis"
	"github.com/richxcame/waste-chat/pkg/resilience"
	ws "github.com/richxcame/waste-chat/pkg/websocket"
	"go.uber.org/zap"
)

const (
	serviceName    = "waste-chat-widget"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment, cfg.Server.LogLevel, zap.String("service", serviceName)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting widget service",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.Server.Environment),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("preference_store", cfg.Preferences.Store),
	)

	sentryEnabled, err := errtrack.Init(errtrack.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Server.Environment,
		Release:     serviceName + "@" + serviceVersion,
	})
	if err != nil {
		logger.Warn("Error tracking disabled", zap.Error(err))
	}
	defer errtrack.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Preferences.Store == config.StoreRedis || cfg.RateLimit.Enabled {
		rdb, err = redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
	}

	store, storeChecks, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		logger.Fatal("Failed to open preference store", zap.Error(err))
	}
	defer closeStore()
	if rdb != nil {
		if storeChecks == nil {
			storeChecks = make(map[string]health.Checker)
		}
		storeChecks["redis"] = health.RedisChecker(rdb.Client)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(rdb.Client, cfg.RateLimit)
	}

	catalog, err := loadCatalog(cfg.Widget.LocalesDir)
	if err != nil {
		logger.Fatal("Failed to load translations", zap.Error(err))
	}

	backend := newBackend(cfg)

	hub := ws.NewHub()
	go hub.Run(ctx.Done())
	if err := hub.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Warn("Failed to register websocket metrics", zap.Error(err))
	}

	sessions := server.NewRegistry(cfg.Widget.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	var onFailure chat.FailureHook
	if sentryEnabled {
		onFailure = errtrack.CaptureError
	}

	handler := server.NewHandler(store, catalog, backend, sessions, hub, server.Options{
		LangFromBrowser: cfg.Widget.LangFromBrowser,
		SecureCookies:   cfg.Server.Environment == "production",
		AllowedOrigins:  cfg.Server.AllowedOrigins(),
		OnFailure:       onFailure,
		Limiter:         limiter,
	})

	checks := healthChecks(cfg, storeChecks)
	router := setupRouter(cfg, handler, checks, sentryEnabled)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")
	handler.NotifyShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	waited := make(chan struct{})
	go func() {
		handler.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-shutdownCtx.Done():
		logger.Warn("Chat exchanges still running at shutdown")
	}

	logger.Info("Server exited")
}

// setupRouter builds the gin engine with the middleware chain and routes.
func setupRouter(cfg *config.Config, handler *server.Handler, checks map[string]func() error, sentryEnabled bool) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	if sentryEnabled {
		router.Use(errtrack.Middleware())
	}
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.SecurityHeaders(cfg.Server.Environment == "production"))

	corsConfig := cors.DefaultConfig()
	origins := cfg.Server.AllowedOrigins()
	if len(origins) == 0 || contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/ready", common.HealthCheckWithDeps(serviceName, serviceVersion, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router)
	return router
}

// openStore returns the configured preference store, its health checks and a closer.
// rdb is required for the redis store.
func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (preferences.Store, map[string]health.Checker, func(), error) {
	noop := func() {}

	switch cfg.Preferences.Store {
	case config.StoreFile:
		return preferences.NewFileStore(cfg.Preferences.File), nil, noop, nil

	case config.StoreRedis:
		if rdb == nil {
			return nil, nil, noop, errors.New("redis preference store needs a redis client")
		}
		return preferences.NewRedisStore(rdb.Client, cfg.Redis.Prefix), nil, noop, nil

	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		store := preferences.NewSQLStore(db.DB)
		if err := store.Migrate(ctx); err != nil {
			database.Close(db)
			return nil, nil, noop, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Connected to PostgreSQL database")
		checks := map[string]health.Checker{"database": health.DatabaseChecker(db.DB)}
		return store, checks, func() { database.Close(db) }, nil

	default:
		return preferences.NewMemoryStore(), nil, noop, nil
	}
}

// newBackend returns the chat backend client, behind a circuit breaker unless disabled.
func newBackend(cfg *config.Config) chat.BackendInterface {
	client := httpclient.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	if cfg.Backend.BreakerFailures == 0 {
		return client
	}
	settings := resilience.BuildSettings("chat-backend", time.Minute, cfg.Backend.BreakerCooldown, cfg.Backend.BreakerFailures, 1)
	return chat.NewGuardedBackend(client, settings)
}

func loadCatalog(dir string) (*i18n.Catalog, error) {
	catalog := i18n.Default()
	if dir == "" {
		return catalog, nil
	}
	if err := catalog.LoadYAMLDir(dir); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Loaded translation overrides", zap.String("dir", dir))
	return catalog, nil
}

// healthChecks combines the store checks with a cached check of the backend.
func healthChecks(cfg *config.Config, storeChecks map[string]health.Checker) map[string]func() error {
	backend := health.NewCachedChecker(
		health.AsyncChecker(health.HTTPEndpointChecker(cfg.Backend.BaseURL+"/health"), 3*time.Second),
		10*time.Second,
	)

	checks := map[string]func() error{
		"backend": backend.Check,
	}
	if len(storeChecks) > 0 {
		checks["storage"] = health.CompositeChecker("storage", storeChecks)
	}
	return checks
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
