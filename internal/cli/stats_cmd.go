package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func newStatsCmd(app *App) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print trip statistics as seen on the admin dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Accounts == nil || app.Reports == nil {
				return fmt.Errorf("stats: no store configured")
			}
			email, err := domain.NormalizeEmail(as)
			if err != nil {
				return fmt.Errorf("stats: --as: %w", err)
			}
			admin, err := app.Accounts.GetByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("stats: look up %s: %w", email, err)
			}
			stats, err := app.Reports.Statistics(cmd.Context(), admin.ID)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total trips:     %d\n", stats.TotalTrips)
			fmt.Fprintf(out, "ongoing trips:   %d\n", stats.OngoingTrips)
			fmt.Fprintf(out, "completed trips: %d\n", stats.CompletedTrips)
			for _, m := range stats.MonthlyTrend {
				fmt.Fprintf(out, "  %s %d  %d\n", m.Month, m.Year, m.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Email of the admin account to report as")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}
