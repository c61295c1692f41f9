package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantpulse/signal-monitor/internal/api"
	"github.com/quantpulse/signal-monitor/internal/config"
	"github.com/quantpulse/signal-monitor/internal/engine"
	"github.com/quantpulse/signal-monitor/internal/monitor"
	"github.com/quantpulse/signal-monitor/internal/pubsub"
	"github.com/quantpulse/signal-monitor/internal/storage"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting signal monitor service",
		logger.Int("api_port", cfg.API.Port),
		logger.Duration("monitor_interval", cfg.Monitor.Interval),
	)

	opts := []engine.Option{}

	// Optional Redis-backed notification dispatch
	if cfg.Redis.Enabled {
		redisClient, err := pubsub.NewRedisClient(pubsub.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			logger.Fatal("Failed to initialize Redis client", logger.ErrorField(err))
		}
		defer redisClient.Close()

		notifier := pubsub.NewStreamNotifier(pubsub.NotifierConfig{
			Stream:  cfg.Redis.Stream,
			Channel: cfg.Redis.Channel,
		}, redisClient)
		opts = append(opts, engine.WithNotifier(notifier))
	}

	// Optional Postgres-backed audit log
	if cfg.Audit.Enabled {
		auditLog, err := storage.NewPostgresAuditLog(storage.DatabaseConfig{
			Host:            cfg.Audit.Host,
			Port:            cfg.Audit.Port,
			User:            cfg.Audit.User,
			Password:        cfg.Audit.Password,
			Database:        cfg.Audit.Database,
			SSLMode:         cfg.Audit.SSLMode,
			MaxConnections:  cfg.Audit.MaxConnections,
			MaxIdleConns:    cfg.Audit.MaxIdleConns,
			ConnMaxLifetime: cfg.Audit.ConnMaxLifetime,
		})
		if err != nil {
			logger.Fatal("Failed to initialize audit log", logger.ErrorField(err))
		}
		defer auditLog.Close()

		opts = append(opts, engine.WithAuditLogger(auditLog))
	}

	eng := engine.New(engine.Config{
		MaxHistory:        cfg.Engine.MaxHistory,
		SideEffectTimeout: cfg.Engine.SideEffectTimeout,
	}, opts...)

	// Monitoring loop, fed by an HTTP signal feed when one is configured.
	// Without a feed, signals arrive through the API only.
	var loop *monitor.Loop
	if feedURL := os.Getenv("SIGNAL_FEED_URL"); feedURL != "" {
		feed := monitor.NewHTTPFeed(feedURL, cfg.Monitor.FetchTimeout)
		loop = monitor.NewLoop(monitor.Config{
			Interval:     cfg.Monitor.Interval,
			FetchTimeout: cfg.Monitor.FetchTimeout,
		}, eng, feed)

		if cfg.Monitor.AutoStart {
			loop.Start()
			defer loop.Stop()
		}
	} else {
		logger.Info("No SIGNAL_FEED_URL configured, monitoring loop disabled")
	}

	handler := api.NewHandler(eng, loop)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", logger.Int("port", cfg.API.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", logger.ErrorField(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", logger.ErrorField(err))
	}
}
