package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/image-embedder/v1/embedding"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported models and their asset directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tASSET DIR")
			for _, m := range embedding.KnownModels() {
				marker := ""
				if m == embedding.DefaultModel {
					marker = " (default)"
				}
				fmt.Fprintf(tw, "%s%s\t%s\n", m, marker, m.AssetDir())
			}
			return tw.Flush()
		},
	}
}
