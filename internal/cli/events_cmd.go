package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/backend/internal/notify"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect live trip events",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Print trip events as JSON lines until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Events == nil {
				return fmt.Errorf("events tail: REDIS_ADDR is not set")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			err := app.Events(ctx, func(e notify.TripEvent) {
				_ = enc.Encode(e)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("events tail: %w", err)
			}
			return nil
		},
	})

	return cmd
}
