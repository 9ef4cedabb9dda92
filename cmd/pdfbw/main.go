package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/local/pdfbw/internal/config"
	logpkg "github.com/local/pdfbw/internal/logger"
	"github.com/local/pdfbw/internal/metrics"
	"github.com/local/pdfbw/internal/orchestrator"
	"github.com/local/pdfbw/internal/source"
)

func main() {
	cfg := cfgpkg.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(&cfg).ExecuteContext(ctx)

	if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		log.Warn().Err(werr).Str("path", cfg.MetricsTextfile).Msg("failed to write metrics textfile")
	}
	logpkg.Close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *cfgpkg.Config) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "pdfbw",
		Short: "Convert PDF documents to grayscale",
		Long: `pdfbw strips color from PDF documents.

Each page is rasterized, converted to grayscale, optionally adjusted for
brightness, contrast and sharpness, and re-encoded as a JPEG page of the
requested size. Documents that are already grayscale are copied unchanged.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}
			if err := logpkg.Init(logpkg.Options{
				Level:        level,
				Pretty:       cfg.Logging.Pretty,
				File:         cfg.Logging.File,
				MaxSizeMB:    cfg.Logging.MaxSizeMB,
				MaxBackups:   cfg.Logging.MaxBackups,
				MaxAgeDays:   cfg.Logging.MaxAgeDays,
				Compress:     cfg.Logging.Compress,
				Console:      cmd.ErrOrStderr(),
				SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
				AxiomAPIKey:  cfg.Axiom.APIKey,
				AxiomOrgID:   cfg.Axiom.OrgID,
				AxiomDataset: cfg.Axiom.Dataset,
				AxiomFlush:   cfg.Axiom.FlushInterval,
			}); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			metrics.Init()
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newConvertCmd(cfg),
		newCheckCmd(cfg),
		newPreviewCmd(cfg),
		newSizesCmd(),
		newCleanupCmd(cfg),
		newDoctorCmd(cfg),
	)
	return root
}

func s3Options(cfg *cfgpkg.Config) source.S3Options {
	return source.S3Options{
		Region:      cfg.Source.AWSRegion,
		Endpoint:    cfg.Source.S3Endpoint,
		AccessKeyID: cfg.Source.AccessKeyID,
		SecretKey:   cfg.Source.SecretKey,
	}
}

func newResolver(cfg *cfgpkg.Config) *source.Resolver {
	return source.New(source.Options{
		HTTPClient: &http.Client{Timeout: cfg.Source.HTTPTimeout},
		S3:         s3Options(cfg),
		TempDir:    cfg.Conversion.TempDir,
	})
}

func newOrchestrator(cfg *cfgpkg.Config) *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Dependencies{
		Resolver:    newResolver(cfg),
		TempDir:     cfg.Conversion.TempDir,
		SamplePages: cfg.Conversion.SamplePages,
	})
}

func newCleanupCmd(cfg *cfgpkg.Config) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove temporary files left by interrupted conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := orchestrator.CleanupTemps(cfg.Conversion.TempDir, olderThan)
			if cfg.Conversion.TempDir != "" && cfg.Conversion.TempDir != os.TempDir() {
				n += orchestrator.CleanupTemps("", olderThan)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d stale entries\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "only remove entries older than this")
	return cmd
}
