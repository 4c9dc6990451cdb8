// Package bootstrap opens the backing services selected by config.
// Both the API server and the operator CLI build their dependencies here
// so they always agree on drivers and migration sets.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/backend/internal/config"
	"github.com/pkordes/trip-planner/backend/internal/notify"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
	"github.com/pkordes/trip-planner/backend/migrations"
)

// Store is an open repository set plus the function that releases it.
type Store struct {
	Repos repo.Repos
	Close func()
}

// OpenStore connects the repositories for cfg.StoreDriver.
// SQLite databases are migrated on open; Postgres is migrated by the
// operator CLI ahead of deploys.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return Store{Repos: repo.NewMemoryRepos(), Close: func() {}}, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(cfg.DatabaseURL)
		if err != nil {
			return Store{}, err
		}
		if err := migrate(ctx, config.DriverSQLite, db, log); err != nil {
			db.Close()
			return Store{}, err
		}
		log.Info("sqlite store ready", "path", cfg.DatabaseURL)
		return Store{Repos: repo.NewSQLiteRepos(db), Close: func() { db.Close() }}, nil

	default:
		// New() does not open connections immediately, so ping before accepting traffic.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return Store{}, fmt.Errorf("bootstrap.OpenStore: create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return Store{}, fmt.Errorf("bootstrap.OpenStore: ping: %w", err)
		}
		log.Info("database connection established")
		return Store{Repos: repo.NewPostgresRepos(pool), Close: pool.Close}, nil
	}
}

// OpenSQL opens a database/sql handle for the configured driver, for goose.
// The memory driver has nothing to migrate.
func OpenSQL(cfg config.Config) (*sql.DB, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return repo.OpenSQLite(cfg.DatabaseURL)
	case config.DriverPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap.OpenSQL: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap.OpenSQL: ping: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("bootstrap.OpenSQL: driver %q has no schema", cfg.StoreDriver)
}

// NewProvider returns the goose provider for cfg's driver over db.
func NewProvider(cfg config.Config, db *sql.DB) (*goose.Provider, error) {
	return migrations.NewProvider(cfg.StoreDriver, db)
}

func migrate(ctx context.Context, driver string, db *sql.DB, log *slog.Logger) error {
	provider, err := migrations.NewProvider(driver, db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: migrate %s: %w", driver, err)
	}
	for _, r := range results {
		log.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// OpenRedis connects to cfg.RedisAddr. It returns nil, nil when Redis is
// not configured; callers then fall back to no event fan-out and no
// idempotency replay.
func OpenRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("bootstrap.OpenRedis: ping %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// Services is the full set of application services over one repository set.
type Services struct {
	Trips      *service.TripService
	Activities *service.ActivityService
	Bookings   *service.BookingService
	Chat       *service.ChatService
	Admin      *service.AdminService
	Auth       *service.AuthService
	Export     *service.ExportService
}

// NewServices wires every service to repos. A nil events publisher drops events.
func NewServices(repos repo.Repos, events notify.Publisher, tokens service.TokenIssuer, log *slog.Logger) Services {
	if events == nil {
		events = notify.Nop{}
	}
	fx := service.Effects{Audit: repos.Audit, Events: events, Log: log}
	store := service.NewTripStore(repos.Trips)
	return Services{
		Trips:      service.NewTripService(store, repos.Trips, repos.Users, fx),
		Activities: service.NewActivityService(store, fx),
		Bookings:   service.NewBookingService(store, fx),
		Chat:       service.NewChatService(store, fx),
		Admin:      service.NewAdminService(store, repos, fx),
		Auth:       service.NewAuthService(repos.Users, tokens, fx),
		Export:     service.NewExportService(store),
	}
}
