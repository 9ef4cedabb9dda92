package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "pdfbw"

// Options defines logger initialization parameters.
type Options struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Console output; defaults to stderr so stdout stays free for results.
	Console io.Writer

	// Axiom
	SendToAxiom  bool
	AxiomAPIKey  string
	AxiomOrgID   string
	AxiomDataset string
	AxiomFlush   time.Duration
}

var (
	global zerolog.Logger
	ship   *shipper
)

// Init sets up global logger: console, optional file rotation, optional Axiom forwarding.
func Init(opts Options) error {
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create logs dir: %w", err)
		}
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var writers []io.Writer

	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		})
	}

	if opts.Pretty {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen})
	} else {
		writers = append(writers, console)
	}

	// Conversion runs are short; anything at info or above is worth shipping.
	if opts.SendToAxiom && opts.AxiomAPIKey != "" {
		sink, err := newAxiomSink(opts.AxiomAPIKey, opts.AxiomOrgID)
		if err != nil {
			fmt.Fprintf(console, "Axiom disabled: %v\n", err)
		} else {
			ship = newShipper(sink, opts.AxiomDataset, opts.AxiomFlush)
			writers = append(writers, &axiomWriter{ship: ship, min: zerolog.InfoLevel})
		}
	}

	out := zerolog.MultiLevelWriter(writers...)

	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	global = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	log.Logger = global
	return nil
}

// Close flushes any buffered external loggers.
func Close() {
	if ship != nil {
		if n := ship.Close(); n > 0 {
			fmt.Fprintf(os.Stderr, "Axiom: %d log events dropped\n", n)
		}
		ship = nil
	}
}

func newAxiomSink(token, orgID string) (*axiom.Client, error) {
	opts := []axiom.Option{axiom.SetToken(token)}
	if orgID != "" {
		opts = append(opts, axiom.SetOrganizationID(orgID))
	}
	return axiom.NewClient(opts...)
}

// Get returns the global logger.
func Get() *zerolog.Logger { return &global }
