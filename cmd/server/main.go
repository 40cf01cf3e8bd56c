package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/okhowto/video-catalog-go/internal/blob"
	"github.com/okhowto/video-catalog-go/internal/catalog"
	"github.com/okhowto/video-catalog-go/internal/config"
	"github.com/okhowto/video-catalog-go/internal/handler"
	"github.com/okhowto/video-catalog-go/internal/middleware"
	"github.com/okhowto/video-catalog-go/internal/service"
	"github.com/okhowto/video-catalog-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	blobs, cleanup, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize blob store", zap.Error(err))
	}
	defer cleanup()

	store := catalog.NewStore(blobs, logger.Log)

	var publisher *service.CatalogPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = service.NewCatalogPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("failed to initialize event publisher, catalog events will not be published",
				zap.Error(err),
			)
		} else {
			defer func() { _ = publisher.Close() }()
		}
	}

	if cfg.Auth.AdminToken == "" {
		logger.Log.Warn("no admin token configured - write endpoints will reject all requests")
	}

	router := newRouter(cfg, store, blobs, publisher)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("blobstore", cfg.Blobstore.Provider),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("server stopped gracefully")
	}
}

func newRouter(cfg *config.Config, store *catalog.Store, blobs blob.Store, publisher *service.CatalogPublisher) *gin.Engine {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS())

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.MethodNotAllowed)
	router.NoRoute(handler.NotFound)

	videoHandler := handler.NewVideoHandler(store, publisher)
	healthHandler := handler.NewHealthHandler(blobs, publisher)

	videos := router.Group("/api/v1/videos")
	videos.GET("/feed", videoHandler.Feed)

	admin := videos.Group("", middleware.AdminAuth(cfg.Auth.AdminToken))
	admin.GET("", videoHandler.List)
	admin.POST("/save", videoHandler.Save)
	admin.POST("/delete", videoHandler.Delete)

	router.GET("/health/live", healthHandler.LivenessProbe)
	router.GET("/health/ready", healthHandler.ReadinessProbe)

	return router
}

// newBlobStore selects and initializes the configured blob store backend.
// An empty provider leaves the store disabled so operators see 503
// BLOBS_NOT_ENABLED instead of a generic failure.
func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, func(), error) {
	noop := func() {}

	switch cfg.Blobstore.Provider {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return blob.NewRedisStore(client, cfg.Blobstore.Namespace), func() { _ = client.Close() }, nil

	case "postgres":
		pool, err := newDatabasePool(ctx, &cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		store := blob.NewPostgresStore(pool, cfg.Blobstore.Namespace)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return store, pool.Close, nil

	case "memory":
		return blob.NewMemoryStore(), noop, nil

	case "":
		logger.Log.Warn("no blob store provider configured - catalog endpoints will answer 503")
		return blob.Disabled{}, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown blob store provider %q", cfg.Blobstore.Provider)
	}
}

func newDatabasePool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnIdleTime = cfg.MaxIdleTime
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
