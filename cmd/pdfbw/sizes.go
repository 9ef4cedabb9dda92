package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/local/pdfbw/internal/settings"
)

func newSizesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sizes",
		Short: "List the named output page sizes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %s\n", settings.Original, "keep each page's size")
			for _, name := range settings.PaperNames() {
				fmt.Fprintf(out, "%-10s %s pt\n", name, settings.PaperSizes[name])
			}
		},
	}
}
