package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/arloliu/curvefit/curve"
	"github.com/arloliu/curvefit/events"
	"github.com/arloliu/curvefit/internal/config"
	"github.com/arloliu/curvefit/metrics"
	"github.com/arloliu/curvefit/server"
	"github.com/arloliu/curvefit/snapshot"
	"github.com/arloliu/curvefit/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store
	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("session store ready", "driver", storeName(cfg))

	// NATS (optional)
	var pub events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(ctx, cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			pub = np
			defer np.Close()
			logger.Info("connected to nats")
		}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	encodeOpts := []snapshot.EncoderOption{snapshot.WithCompression(cfg.Compression())}
	if cfg.Snapshot.BigEndian {
		encodeOpts = append(encodeOpts, snapshot.WithBigEndian())
	}

	mgr, err := server.NewManager(
		server.WithStore(st),
		server.WithPublisher(pub),
		server.WithMetrics(collector),
		server.WithLogger(logger),
		server.WithModelOptions(curve.WithBounds(cfg.Bounds()), curve.WithDeltaLimits(cfg.DeltaLimits())),
		server.WithEncoderOptions(encodeOpts...),
	)
	if err != nil {
		logger.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}
	defer mgr.Close()

	// API server
	router := server.NewRouter(mgr, server.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultSamples: cfg.Curve.DefaultSamples,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           server.NewMetricsRouter(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return store.OpenSQL(ctx, store.DriverSQLite, cfg.Database.DSN)
	case "postgres":
		return store.OpenSQL(ctx, store.DriverPostgres, cfg.Database.DSN)
	default:
		return store.NewMemoryStore(), nil
	}
}

func storeName(cfg *config.Config) string {
	if cfg.Database.Driver == "" {
		return "memory"
	}

	return cfg.Database.Driver
}
