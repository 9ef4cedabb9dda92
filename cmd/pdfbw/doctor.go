package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/local/pdfbw/internal/config"
	"github.com/local/pdfbw/internal/statuscheck"
)

func newDoctorCmd(cfg *cfgpkg.Config) *cobra.Command {
	var (
		bucket string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment conversions depend on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sum := statuscheck.New(statuscheck.Options{
				TempDir:         cfg.Conversion.TempDir,
				MetricsTextfile: cfg.MetricsTextfile,
				S3Bucket:        bucket,
				S3:              s3Options(cfg),
			}).Summary(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(sum); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), sum.String())
			}
			if !sum.OK() {
				return fmt.Errorf("environment not ready")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "also check access to this S3 bucket")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
