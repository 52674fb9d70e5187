package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ghostwriter/internal/domain/model"
)

func newTonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tones",
		Short: "List the supported reply tones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			for _, t := range model.Tones() {
				desc, _ := model.DescribeTone(t)
				_, _ = fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render(t), desc)
			}
			return w.Flush()
		},
	}
}
