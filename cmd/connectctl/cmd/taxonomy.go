package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newTaxonomyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the active domain taxonomy as YAML",
		Long: "Prints the taxonomy in the same format --taxonomy-file reads, " +
			"so the output is a starting point for a custom table.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, a *app) error {
				data, err := a.taxonomy.Current().Encode()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}
