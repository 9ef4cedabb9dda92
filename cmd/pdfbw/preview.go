package main

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	cfgpkg "github.com/local/pdfbw/internal/config"
	"github.com/local/pdfbw/internal/preview"
)

func newPreviewCmd(cfg *cfgpkg.Config) *cobra.Command {
	var (
		output     string
		page       int
		width      int
		height     int
		brightness float64
		contrast   float64
		sharpness  float64
	)
	cmd := &cobra.Command{
		Use:   "preview <input.pdf>",
		Short: "Render one page with the grayscale adjustments applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cleanup, err := newResolver(cfg).Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			img, err := preview.New(nil).Render(path, page-1, width, height)
			if err != nil {
				return err
			}
			gray := preview.Enhance(img, brightness, contrast, sharpness)
			if err := imaging.Save(gray, output); err != nil {
				return fmt.Errorf("save preview: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preview %dx%d written to %s\n", gray.Bounds().Dx(), gray.Bounds().Dy(), output)
			return nil
		},
	}
	c := cfg.Conversion
	cmd.Flags().StringVarP(&output, "output", "o", "preview.png", "output image (format from extension)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number (1-based; out of range shows the first page)")
	cmd.Flags().IntVar(&width, "width", preview.DefaultWidth, "preview box width in pixels")
	cmd.Flags().IntVar(&height, "height", preview.DefaultHeight, "preview box height in pixels")
	cmd.Flags().Float64Var(&brightness, "brightness", c.Brightness, "brightness factor (0.1-3.0)")
	cmd.Flags().Float64Var(&contrast, "contrast", c.Contrast, "contrast factor (0.1-3.0)")
	cmd.Flags().Float64Var(&sharpness, "sharpness", c.Sharpness, "sharpness factor (0.1-3.0)")
	return cmd
}
