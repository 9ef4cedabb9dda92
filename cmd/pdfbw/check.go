package main

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/local/pdfbw/internal/config"
	"github.com/local/pdfbw/internal/orchestrator"
)

func newCheckCmd(cfg *cfgpkg.Config) *cobra.Command {
	var (
		pages     int
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "check <input.pdf>",
		Short: "Report whether a PDF is already grayscale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newOrchestrator(cfg).Check(cmd.Context(), args[0], pages, threshold)
			if err != nil {
				return err
			}
			verdict := "color"
			if v.Grayscale {
				verdict = "grayscale"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d/%d sampled pages grayscale, pages %v)\n",
				args[0], verdict, v.GrayscalePages, v.Checked, oneBased(v.Pages))
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", cfg.Conversion.SamplePages, "pages to sample (0 checks all)")
	cmd.Flags().Float64Var(&threshold, "threshold", orchestrator.ConversionThreshold, "fraction of equal-channel pixels for a grayscale page")
	return cmd
}

func oneBased(pages []int) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p + 1
	}
	return out
}
