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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/support-agent-router/cmd/mainconfig"
	"github.com/wolfman30/support-agent-router/internal/api/router"
	"github.com/wolfman30/support-agent-router/internal/app/bootstrap"
	appconfig "github.com/wolfman30/support-agent-router/internal/config"
	"github.com/wolfman30/support-agent-router/internal/http/handlers"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

func main() {
	mainconfig.LoadEnv()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting support-agent-router API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	sys, err := bootstrap.BuildSystem(ctx, cfg, bootstrap.NewClients(awsCfg), bootstrap.Options{
		Registerer: prometheus.DefaultRegisterer,
	}, logger)
	if err != nil {
		return err
	}
	defer sys.Close()

	srv := newServer(cfg, sys, promhttp.Handler(), logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newServer(cfg *appconfig.Config, sys *bootstrap.System, metricsHandler http.Handler, logger *logging.Logger) *http.Server {
	r := router.New(&router.Config{
		Logger:             logger,
		Requests:           handlers.NewRequestHandler(sys.Gate, sys.Audit, logger),
		Tickets:            handlers.NewTicketHandler(sys.Tickets, logger),
		MetricsHandler:     metricsHandler,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
