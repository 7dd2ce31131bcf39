package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusride/internal/clock"
	"campusride/internal/config"
	"campusride/internal/dashboard"
	"campusride/internal/directory"
	"campusride/internal/handler"
	"campusride/internal/httpmiddleware"
	"campusride/internal/logging"
	"campusride/internal/metrics"
	"campusride/internal/notify"
	"campusride/internal/queue"
	"campusride/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

type healthChecker interface {
	Healthy(ctx context.Context) bool
}

func runHTTP(cfg config.App) error {
	logger := logging.New(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir, db, err := loadDirectory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var kv store.KV
	var redisClient *store.Redis
	if cfg.StoreBackend == "redis" || cfg.QueueBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr, cfg.StorePrefix)
		defer func() { _ = redisClient.Close() }()
	}
	if cfg.StoreBackend == "redis" {
		kv = redisClient
	} else {
		kv = store.NewMemory()
	}

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	} else {
		q = queue.NewInMemory(64)
		// no separate worker drains an in-process queue
		go func() {
			if _, err := notify.Relay(ctx, q, logger); err != nil {
				logger.Error("notification relay stopped", slog.Any("error", err))
			}
		}()
	}

	m := metrics.New()
	h := handler.New(dashboard.Deps{
		Directory: dir,
		Clock:     clock.RealClock{},
		Notifier:  notify.NewPublisher(q, nil, logger),
		Logger:    logger,
	}, kv, m, handler.Options{
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
		AccessTTL:     cfg.AccessTTL,
	})

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(securityHeaders())
	r.Use(m.GinMiddleware())
	r.Use(httpmiddleware.NewClientLimiter(cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	r.GET("/healthz", func(c *gin.Context) {
		storeHealthy := true
		if hc, ok := kv.(healthChecker); ok {
			storeHealthy = hc.Healthy(c.Request.Context())
		}
		status := http.StatusOK
		if !storeHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "store": storeHealthy, "directory": cfg.DirectorySource})
	})

	h.Register(r)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", srv.Addr), slog.String("store", cfg.StoreBackend), slog.String("queue", cfg.QueueBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", slog.Any("error", err))
	}

	logger.Info("server exited")
	return nil
}

// loadDirectory returns the seed catalog, or the Postgres copy of it when
// DIRECTORY_SOURCE=postgres. The returned DB is nil for the seed source.
func loadDirectory(ctx context.Context, cfg config.App, logger *slog.Logger) (*directory.Store, *store.DB, error) {
	seed := directory.Seed(time.Now())
	if cfg.DirectorySource != "postgres" {
		return seed, nil, nil
	}

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect directory db: %w", err)
	}
	if err := directory.EnsureSchema(ctx, db.Client); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := directory.SeedPostgres(ctx, db.Client, seed); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	dir, err := directory.LoadPostgres(ctx, db.Client)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("directory loaded from postgres",
		slog.Int("users", len(dir.Users())), slog.Int("routes", len(dir.Routes())))
	return dir, db, nil
}

// corsConfig allows credentials only for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", handler.BrowserHeader},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
