package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"admin-console/internal/backend"
	"admin-console/internal/session"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend string
	JarPath string
	Timeout time.Duration
}

// NewRootCommand creates the root command for consolectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "consolectl",
		Short: "Terminal client for the CMS admin console",
		Long: `Sign in to the CMS backend and manage content from the terminal.

The session is kept in the same three cookies the web console uses
(token, user, tokenExpiry), stored in a local cookie file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Backend == "" {
				return fmt.Errorf("backend URL is required (--backend or CONSOLE_BACKEND_URL)")
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", os.Getenv("CONSOLE_BACKEND_URL"), "CMS backend base URL")
	cmd.PersistentFlags().StringVar(&opts.JarPath, "cookies", defaultJarPath(), "cookie file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 15*time.Second, "backend request timeout")

	// Add subcommands
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

func defaultJarPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".consolectl", "cookies.json")
	}
	return filepath.Join(home, ".consolectl", "cookies.json")
}

func (o *RootOptions) client() *backend.Client {
	return backend.New(o.Backend, o.Timeout)
}

// openStore loads the cookie file and wraps it in a session store.
func (o *RootOptions) openStore(opts ...session.Option) (*session.FileJar, *session.Store, error) {
	jar, err := session.OpenFileJar(o.JarPath, nil)
	if err != nil {
		return nil, nil, err
	}
	return jar, session.NewStore(jar, opts...), nil
}

// signedIn restores the stored session or fails with errNotSignedIn.
func (o *RootOptions) signedIn() (*session.FileJar, *session.Store, session.Session, error) {
	jar, store, err := o.openStore()
	if err != nil {
		return nil, nil, session.Session{}, err
	}
	sess := store.Restore()
	if sess.User == nil {
		_ = jar.Save()
		return nil, nil, session.Session{}, errNotSignedIn
	}
	return jar, store, sess, nil
}

// rejected ends the local session after the backend refused its token.
func rejected(jar *session.FileJar, store *session.Store) error {
	store.SignOut()
	_ = jar.Save()
	return fmt.Errorf("session rejected by backend: %w", errNotSignedIn)
}
