// Package statuscheck verifies the local environment a conversion depends on.
package statuscheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/source"
)

// Options configures the Checker.
type Options struct {
	TempDir         string
	MetricsTextfile string
	S3Bucket        string
	S3              source.S3Options
	Opener          pdfdoc.Opener
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Renderer Status `json:"renderer"`
	TempDir  Status `json:"temp_dir"`
	Metrics  Status `json:"metrics"`
	S3       Status `json:"s3"`
}

// OK reports whether every required subsystem is ready. S3 and metrics are optional.
func (s Summary) OK() bool { return s.Renderer.OK && s.TempDir.OK }

// Checker runs the environment checks.
type Checker struct {
	opts Options
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Checker{opts: opts}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Renderer: c.checkRenderer(),
		TempDir:  checkWritableDir(c.opts.TempDir),
		Metrics:  c.checkMetrics(),
		S3:       c.checkS3(ctx),
	}
}

func (c *Checker) checkRenderer() Status {
	if pdfdoc.OrDefault(c.opts.Opener) == nil {
		return Status{OK: false, Message: "no PDF backend registered"}
	}
	return Status{OK: true, Message: "Available"}
}

func (c *Checker) checkMetrics() Status {
	if c.opts.MetricsTextfile == "" {
		return Status{OK: true, Message: "Disabled"}
	}
	dir := filepath.Dir(c.opts.MetricsTextfile)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return Status{OK: true, Message: "Directory will be created"}
	}
	return checkWritableDir(dir)
}

func checkWritableDir(dir string) Status {
	f, err := os.CreateTemp(dir, ".pdfbw-probe-*")
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	name := f.Name()
	f.Close()
	_ = os.Remove(name)
	return Status{OK: true, Message: "Writable"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
	if c.opts.S3Bucket == "" {
		return Status{OK: false, Message: "Bucket not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cli, err := source.NewS3Client(ctx, c.opts.S3)
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	_, err = cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &c.opts.S3Bucket})
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}

// String renders the summary as aligned lines.
func (s Summary) String() string {
	line := func(name string, st Status) string {
		mark := "ok"
		if !st.OK {
			mark = "--"
		}
		return fmt.Sprintf("%-9s %s  %s\n", name, mark, st.Message)
	}
	return line("renderer", s.Renderer) + line("temp dir", s.TempDir) + line("metrics", s.Metrics) + line("s3", s.S3)
}
