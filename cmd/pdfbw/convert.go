package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	cfgpkg "github.com/local/pdfbw/internal/config"
	"github.com/local/pdfbw/internal/orchestrator"
	"github.com/local/pdfbw/internal/settings"
)

const progressTemplate = `{{string . "msg"}} {{bar . "[" "=" ">" " " "]"}} {{percent .}}`

func newConvertCmd(cfg *cfgpkg.Config) *cobra.Command {
	var (
		output     string
		size       string
		keepOrient bool
		brightness float64
		contrast   float64
		sharpness  float64
		quality    int
		quiet      bool
	)
	cmd := &cobra.Command{
		Use:   "convert <input.pdf>",
		Short: "Convert a PDF to grayscale",
		Long: `Convert rasterizes every page of the input, converts it to grayscale and
writes a new PDF of JPEG pages. If the document is already grayscale it is
copied byte for byte instead.

The input may be a local path, a file:// URL, an http(s):// URL or an
s3://bucket/key reference.

Output size is "original", a paper name (see "pdfbw sizes") or WIDTHxHEIGHT
in points.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = defaultOutput(input)
			}

			s, err := settings.Default().WithOutputSize(size, keepOrient)
			if err != nil {
				return err
			}
			s = s.WithImageSettings(brightness, contrast, sharpness, quality)

			job, err := newOrchestrator(cfg).Start(cmd.Context(), orchestrator.Request{
				Input:    input,
				Output:   output,
				Settings: s,
			})
			if err != nil {
				return err
			}

			var bar *pb.ProgressBar
			if !quiet {
				bar = pb.New(100).
					SetTemplateString(progressTemplate).
					SetWriter(cmd.OutOrStdout()).
					Start()
			}
			for st := range job.Updates() {
				if bar != nil {
					bar.Set("msg", st.Message)
					bar.SetCurrent(int64(st.Progress))
				}
			}
			res := job.Wait()
			if bar != nil {
				bar.Finish()
			}

			if !res.OK {
				return fmt.Errorf("conversion failed (%s): %w", res.Kind(), res.Err)
			}
			if res.Copied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already grayscale; copied to %s\n", input, output)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d pages to %s\n", res.Pages, output)
			}
			return nil
		},
	}
	c := cfg.Conversion
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF (default: <input>_bw.pdf)")
	cmd.Flags().StringVarP(&size, "size", "s", c.Size, "output page size: original, A3, A4, A5, Letter, Legal or WxH points")
	cmd.Flags().BoolVar(&keepOrient, "keep-orientation", c.PreserveOrientation, "rotate the output size to match each page's orientation")
	cmd.Flags().Float64Var(&brightness, "brightness", c.Brightness, "brightness factor (0.1-3.0)")
	cmd.Flags().Float64Var(&contrast, "contrast", c.Contrast, "contrast factor (0.1-3.0)")
	cmd.Flags().Float64Var(&sharpness, "sharpness", c.Sharpness, "sharpness factor (0.1-3.0)")
	cmd.Flags().IntVarP(&quality, "quality", "q", c.Quality, "JPEG quality (10-100)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not show a progress bar")
	return cmd
}

// defaultOutput derives <name>_bw.pdf next to a local input, or in the
// working directory for remote inputs.
func defaultOutput(input string) string {
	name := strings.TrimPrefix(input, "file://")
	if i := strings.Index(name, "://"); i >= 0 {
		name = filepath.Base(name[i+3:])
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_bw.pdf"
}
