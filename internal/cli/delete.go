package cli

import (
	"fmt"

	"admin-console/internal/backend"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "delete <resource> <id>",
		Short:        "Delete one item of a CMS resource",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, id := args[0], args[1]
			if !backend.IsResource(resource) {
				return fmt.Errorf("unknown resource %q", resource)
			}

			jar, store, sess, err := rootOpts.signedIn()
			if err != nil {
				return err
			}

			_, err = rootOpts.client().Delete(cmd.Context(), sess.Token, resource, id)
			if backend.IsUnauthorized(err) {
				return rejected(jar, store)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", resource, id)
			return nil
		},
	}
}
