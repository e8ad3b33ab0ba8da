package cli

import (
	"errors"
	"fmt"
	"os"

	"admin-console/internal/backend"

	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:          "login",
		Short:        "Sign in and store the session cookies",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("CONSOLE_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or CONSOLE_PASSWORD) are required")
			}

			res, err := rootOpts.client().Login(cmd.Context(), email, password)
			if err != nil {
				var apiErr *backend.APIError
				if errors.As(err, &apiErr) {
					return fmt.Errorf("sign-in failed: %s", apiErr.Message)
				}
				return fmt.Errorf("sign-in failed: %w", err)
			}

			jar, store, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			if err := store.SignIn(res.User, res.Token); err != nil {
				return err
			}
			if err := jar.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s <%s> (%s)\n", res.User.Name, res.User.Email, res.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "operator email")
	cmd.Flags().StringVar(&password, "password", "", "operator password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "logout",
		Short:        "Clear the stored session",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jar, store, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			store.SignOut()
			if err := jar.Save(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
