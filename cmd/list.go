// File: cmd/list.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

func newListCmd() *cobra.Command {
	var showSteps bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenario catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, sc := range scenario.Catalogue(cfg.Credentials()) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sc.ID, sc.Slug, sc.Name)
				if showSteps {
					for i, step := range sc.Steps {
						fmt.Fprintf(tw, "\t\t  %d. %s\n", i+1, step)
					}
				}
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().BoolVar(&showSteps, "steps", false, "print each scenario's steps")
	return listCmd
}
