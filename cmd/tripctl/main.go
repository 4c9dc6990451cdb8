// Package main is the entry point for tripctl, the operator CLI.
// It reads the same environment as the API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkordes/trip-planner/backend/internal/auth"
	"github.com/pkordes/trip-planner/backend/internal/bootstrap"
	"github.com/pkordes/trip-planner/backend/internal/cli"
	"github.com/pkordes/trip-planner/backend/internal/config"
	"github.com/pkordes/trip-planner/backend/internal/notify"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// accounts joins account creation with lookup by email.
type accounts struct {
	*service.AuthService
	repo.UserRepo
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	app := &cli.App{}

	// Migrations run on their own database/sql handle so that "migrate up"
	// works against an empty Postgres schema.
	if cfg.StoreDriver != config.DriverMemory {
		db, err := bootstrap.OpenSQL(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		provider, err := bootstrap.NewProvider(cfg, db)
		if err != nil {
			return err
		}
		app.Migrations = provider
	}

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	svc := bootstrap.NewServices(store.Repos, notify.Nop{}, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), logger)
	app.Accounts = accounts{AuthService: svc.Auth, UserRepo: store.Repos.Users}
	app.Reports = svc.Admin

	rdb, err := bootstrap.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		app.Events = func(ctx context.Context, onEvent func(notify.TripEvent)) error {
			if err := notify.Subscribe(ctx, rdb, cfg.RedisChannel, logger, onEvent); err != nil {
				return err
			}
			<-ctx.Done()
			return ctx.Err()
		}
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
