package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/portfolio/internal/adapters/http/api"
	"github.com/okian/portfolio/internal/adapters/http/site"
	"github.com/okian/portfolio/internal/adapters/http/swagger"
	"github.com/okian/portfolio/internal/adapters/mq/worker"
	"github.com/okian/portfolio/internal/adapters/repository"
	"github.com/okian/portfolio/internal/app"
	"github.com/okian/portfolio/internal/config"
	"github.com/okian/portfolio/pkg/logger"
	"github.com/okian/portfolio/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := initLogging(ctx, cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	svc := newService(cfg, log)
	// workers outlive the signal so Stop can drain queued alerts
	if err := svc.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

func newService(cfg *config.Config, log logger.Logger) *app.Service {
	var deliverer worker.Deliverer = worker.LogDeliverer{Logger: log.Named("alerts")}
	if cfg.AlertEndpoint != "" {
		deliverer = worker.NewHTTPDeliverer(cfg.AlertEndpoint, cfg.AlertTimeout())
	}
	return app.New(
		app.WithLogger(log),
		app.WithStore(repository.NewJSONFileStore(cfg.SubmissionsPath)),
		app.WithRateLimit(cfg.RateLimitMax, cfg.RateLimitWindow()),
		app.WithAlertRateLimit(cfg.AlertRateLimitMax, cfg.AlertRateLimitWindow()),
		app.WithAlertHistory(cfg.AlertHistorySize),
		app.WithDeliverer(deliverer),
		app.WithAlertQueueSize(cfg.AlertQueueSize),
		app.WithAlertWorkers(cfg.AlertWorkers),
		app.WithShellHTML(site.IndexHTML()),
	)
}

// newMux registers the API first and the page shell last so "/" only
// catches what nothing else claims.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		log.Warn(ctx, "ignoring trusted proxies", logger.Error(err))
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc,
		api.WithLogger(log.Named("api")),
		api.WithAllowedOrigin(cfg.CORSAllowedOrigin),
		api.WithJWTSecret(cfg.JWTSecret),
		api.WithTrustedProxies(proxies),
	).Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the stored-records and queue gauges.
			_ = svc.GetStats(ctx)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())
}
