package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"admin-console/internal/config"
	"admin-console/internal/session"

	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in")

// NewWhoamiCommand creates the whoami command. With --watch it keeps the
// session under periodic re-validation until it expires.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:          "whoami",
		Short:        "Show the signed-in operator",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			jar, store, err := rootOpts.openStore(session.WithNavigate(func(path string) {
				fmt.Fprintf(out, "session ended, sign in again (%s)\n", path)
			}))
			if err != nil {
				return err
			}

			sess := store.Restore()
			if sess.User == nil {
				_ = jar.Save()
				return errNotSignedIn
			}
			fmt.Fprintf(out, "%s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.User.Role)

			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			err = store.Watch(ctx, interval)
			if saveErr := jar.Save(); saveErr != nil {
				return saveErr
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, session.ErrExpired) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep re-validating the session until it expires")
	cmd.Flags().DurationVar(&interval, "interval", config.Load().SessionCheckInterval, "re-validation interval (SESSION_CHECK_INTERVAL)")

	return cmd
}
