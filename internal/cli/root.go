// Package cli implements tripctl, the operator command line for the trip
// planner: schema migrations, account provisioning, dashboard statistics
// and a live view of trip events.
package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
)

// Migrator is satisfied by *goose.Provider.
type Migrator interface {
	Up(ctx context.Context) ([]*goose.MigrationResult, error)
	Down(ctx context.Context) (*goose.MigrationResult, error)
	Status(ctx context.Context) ([]*goose.MigrationStatus, error)
}

// Accounts creates and looks up user accounts.
type Accounts interface {
	CreateUser(ctx context.Context, email, name, password string, role domain.UserRole) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Reports produces the admin dashboard figures.
type Reports interface {
	Statistics(ctx context.Context, actor uuid.UUID) (domain.TripStats, error)
}

// EventSource streams trip events until ctx is cancelled.
type EventSource func(ctx context.Context, onEvent func(notify.TripEvent)) error

// App holds the dependencies commands run against. Any field may be nil
// when the configured store or broker does not provide it; the commands
// that need it then fail with a clear error.
type App struct {
	Migrations Migrator
	Accounts   Accounts
	Reports    Reports
	Events     EventSource
}

// NewRootCmd creates the top-level "tripctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Operate the trip planner backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newUserCmd(app),
		newStatsCmd(app),
		newEventsCmd(app),
	)

	return root
}
