package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

// newUserAddCmd is the only way to create an ADMIN account.
func newUserAddCmd() *cobra.Command {
	var email, password string
	var admin bool
	c := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			defer cancel()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withServices(); err != nil {
				return err
			}
			role := model.RoleCustomer
			if admin {
				role = model.RoleAdmin
			}
			u, err := a.services.Auth.CreateUser(ctx, model.Credentials{Email: email, Password: password}, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d %s (%s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "email")
	c.Flags().StringVar(&password, "password", "", "password (8 to 72 characters)")
	c.Flags().BoolVar(&admin, "admin", false, "grant the ADMIN role")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
