package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"admin-console/internal/backend"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:          "list <resource>",
		Short:        "List a CMS resource",
		Long:         "List a CMS resource. Known resources: " + strings.Join(backend.Resources(), ", "),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := args[0]
			if !backend.IsResource(resource) {
				return fmt.Errorf("unknown resource %q", resource)
			}

			query := url.Values{}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("invalid query %q, want key=value", p)
				}
				query.Add(k, v)
			}

			jar, store, sess, err := rootOpts.signedIn()
			if err != nil {
				return err
			}

			res, err := rootOpts.client().List(cmd.Context(), sess.Token, resource, query)
			if backend.IsUnauthorized(err) {
				return rejected(jar, store)
			}
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, res.Body, "", "  "); err != nil {
				pretty.Reset()
				pretty.Write(res.Body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "query", "q", nil, "query parameter key=value (repeatable)")

	return cmd
}
