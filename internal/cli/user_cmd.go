package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(app))
	return cmd
}

func newUserCreateCmd(app *App) *cobra.Command {
	var (
		name     string
		password string
		admin    bool
	)

	cmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create an account, optionally with the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Accounts == nil {
				return fmt.Errorf("user create: no account store configured")
			}
			role := domain.UserRoleUser
			if admin {
				role = domain.UserRoleAdmin
			}
			u, err := app.Accounts.CreateUser(cmd.Context(), args[0], name, password, role)
			if err != nil {
				return fmt.Errorf("user create: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
