package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/EcommerceGo/clientstate/internal/config"
	"github.com/utafrali/EcommerceGo/clientstate/internal/event"
	handler "github.com/utafrali/EcommerceGo/clientstate/internal/handler/http"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	"github.com/utafrali/EcommerceGo/clientstate/internal/session"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/database"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/health"
	pkgkafka "github.com/utafrali/EcommerceGo/clientstate/pkg/kafka"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/tracing"
)

// ServiceName identifies the state service in logs, traces and metrics.
const ServiceName = "clientstate-service"

// App wires together all dependencies and runs the state service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	storage        *Storage
	async          *persistence.Async
	producer       *pkgkafka.Producer
	notifier       *event.CartNotifier
	shutdownTracer tracing.ShutdownFunc
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Storage backend and its decorators.
	storage, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if storage.pool != nil {
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, storage.pool, ServiceName); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
	}
	provider, async := decorate(storage.Raw, storage.Remote(), cfg, logger)
	logger.Info("state storage ready",
		slog.String("backend", cfg.Storage),
		slog.Bool("async_writes", async != nil),
	)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		storage:        storage,
		async:          async,
		shutdownTracer: shutdownTracer,
	}

	// Kafka producer, only when brokers are configured.
	if cfg.KafkaEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.notifier = event.NewCartNotifier(a.producer, logger, event.DefaultPublishLimit)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	registry, err := session.NewRegistry(session.Options{
		Provider:     provider,
		Logger:       logger,
		Size:         cfg.SessionCacheSize,
		HistoryLimit: cfg.HistoryLimit,
		Notifier:     a.notifier,
	})
	if err != nil {
		return nil, err
	}

	// Health checks.
	healthHandler := health.NewHandler()
	storage.RegisterChecks(healthHandler)
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(registry, healthHandler, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// Handler returns the HTTP handler served by Run.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. Pending writes are flushed
// before the backend connections close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.async != nil {
		if err := a.async.Close(shutdownCtx); err != nil {
			a.logger.Error("state writer flush error", slog.String("error", err.Error()))
		}
	}

	if a.notifier != nil {
		a.notifier.Wait()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.storage.Close(); err != nil {
		a.logger.Error("storage close error", slog.String("error", err.Error()))
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
