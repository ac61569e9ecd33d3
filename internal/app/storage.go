package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/clientstate/internal/config"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/database"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/health"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/tracing"
)

// Storage is the backend selected by STATE_STORAGE together with the
// connections it owns.
type Storage struct {
	// Raw is the undecorated backend; the CLI reads and writes through it.
	Raw persistence.Provider

	rdb  *redis.Client
	pool *pgxpool.Pool
}

// OpenStorage connects to the configured backend. PostgreSQL migrations are
// applied before the provider is returned.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return &Storage{Raw: persistence.NewRedis(rdb, cfg.StateTTL), rdb: rdb}, nil

	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(cfg.DatabaseURL), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, persistence.Migrations(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return &Storage{Raw: persistence.NewPostgres(pool), pool: pool}, nil

	default:
		return &Storage{Raw: persistence.NewMemory()}, nil
	}
}

// Remote reports whether the backend lives outside the process.
func (s *Storage) Remote() bool {
	return s.rdb != nil || s.pool != nil
}

// RegisterChecks adds a readiness check for the backend connection.
func (s *Storage) RegisterChecks(h *health.Handler) {
	switch {
	case s.rdb != nil:
		h.Register("redis", func(ctx context.Context) error {
			return s.rdb.Ping(ctx).Err()
		})
	case s.pool != nil:
		h.Register("postgres", func(ctx context.Context) error {
			return s.pool.Ping(ctx)
		})
	}
}

// Close releases the backend connections.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

// decorate wraps raw with metrics and tracing, plus the circuit breaker and
// the background writer when the backend is remote. The returned Async is nil
// unless writes are asynchronous.
func decorate(raw persistence.Provider, remote bool, cfg *config.Config, logger *slog.Logger) (persistence.Provider, *persistence.Async) {
	p := persistence.WithMetrics(raw)
	p = persistence.WithTracing(p, tracing.Tracer("clientstate/persistence"))
	if !remote {
		return p, nil
	}

	if cfg.BreakerEnabled {
		bcfg := persistence.DefaultBreakerConfig(cfg.Storage)
		bcfg.Timeout = cfg.BreakerTimeout
		p = persistence.WithBreaker(p, bcfg, logger)
	}
	if !cfg.AsyncWrites {
		return p, nil
	}
	acfg := persistence.DefaultAsyncConfig()
	acfg.MaxTries = cfg.WriteTries
	async := persistence.NewAsync(p, acfg, logger)
	return async, async
}
