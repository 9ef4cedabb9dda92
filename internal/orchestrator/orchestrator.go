// Package orchestrator runs a conversion: grayscale detection, then either a
// byte copy or a full transcode, reporting progress along the way.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbw/internal/filetype"
	"github.com/local/pdfbw/internal/grayscale"
	"github.com/local/pdfbw/internal/metrics"
	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/settings"
	"github.com/local/pdfbw/internal/source"
	"github.com/local/pdfbw/internal/transcoder"
)

// ConversionThreshold is the equal-channel ratio used when deciding whether
// to skip conversion. It is looser than grayscale.DefaultThreshold.
const ConversionThreshold = 0.9

// Dependencies wires the orchestrator's collaborators. Zero values select
// the go-fitz backend, a default resolver, os.TempDir staging and three sample pages.
type Dependencies struct {
	Opener      pdfdoc.Opener
	Resolver    *source.Resolver
	TempDir     string
	SamplePages int
}

type Orchestrator struct {
	detector    *grayscale.Detector
	transcoder  *transcoder.Transcoder
	resolver    *source.Resolver
	samplePages int

	mu  sync.Mutex
	job *Job
}

func New(deps Dependencies) *Orchestrator {
	if deps.Resolver == nil {
		deps.Resolver = source.New(source.Options{TempDir: deps.TempDir})
	}
	if deps.SamplePages <= 0 {
		deps.SamplePages = grayscale.DefaultSamplePages
	}
	return &Orchestrator{
		detector:    grayscale.NewDetector(deps.Opener),
		transcoder:  transcoder.New(deps.Opener, deps.TempDir),
		resolver:    deps.Resolver,
		samplePages: deps.SamplePages,
	}
}

// Request describes one conversion.
type Request struct {
	Input    string // local path, file://, http(s):// or s3://bucket/key
	Output   string
	Settings settings.Settings
}

// Convert runs the conversion synchronously. Failures are reported through
// progress at 0% and returned in the Result; panics are recovered.
func (o *Orchestrator) Convert(ctx context.Context, req Request, progress func(Status)) (res Result) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Str("input", req.Input).Str("output", req.Output).Logger()
	start := time.Now()

	report := func(p float64, msg string) {
		if progress != nil {
			progress(Status{Progress: p, Message: msg})
		}
	}
	fail := func(err *Error) Result {
		logger.Error().Err(err).Str("kind", err.Kind.String()).Int("page", err.Page).Msg("conversion failed")
		msg := "Error: " + err.Error()
		report(0, msg)
		return Result{Message: msg, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(&Error{Kind: KindUnknown, Page: -1, Op: "convert", Err: fmt.Errorf("panic: %v", r)})
		}
		metrics.ObserveConversion(res.label(), time.Since(start))
		logger.Info().Bool("ok", res.OK).Bool("copied", res.Copied).Int("pages", res.Pages).
			Dur("took", time.Since(start)).Msg("conversion finished")
	}()

	report(0, msgChecking)

	if req.Output == "" {
		return fail(&Error{Kind: KindInvalidConfig, Page: -1, Op: "convert", Err: fmt.Errorf("output path is empty")})
	}

	path, cleanup, err := o.resolver.Resolve(ctx, req.Input)
	if err != nil {
		return fail(classify("resolve input", err))
	}
	defer cleanup()

	if sameFile(path, req.Output) {
		return fail(&Error{Kind: KindInvalidConfig, Page: -1, Op: "convert", Err: fmt.Errorf("%w: %s", errSameFile, req.Output)})
	}

	if err := filetype.RequirePDF(path); err != nil {
		return fail(classify("detect file type", err))
	}

	verdict := o.detector.Check(path, o.samplePages, ConversionThreshold)
	logger.Info().Bool("grayscale", verdict.Grayscale).Int("grayscale_pages", verdict.GrayscalePages).
		Int("checked", verdict.Checked).Msg("grayscale verdict")

	if verdict.Grayscale {
		if err := copyFile(path, req.Output); err != nil {
			return fail(classify("copy", err))
		}
		report(100, msgCopied)
		return Result{OK: true, Copied: true, Message: msgCopied}
	}

	pages, err := o.transcoder.Transcode(path, req.Output, req.Settings, report)
	if err != nil {
		return fail(classify("transcode", err))
	}
	return Result{OK: true, Pages: pages, Message: msgConverted}
}

// Check runs the detector alone. samplePages and threshold follow
// grayscale.Detector.Check.
func (o *Orchestrator) Check(ctx context.Context, input string, samplePages int, threshold float64) (grayscale.Verdict, error) {
	path, cleanup, err := o.resolver.Resolve(ctx, input)
	if err != nil {
		return grayscale.Verdict{}, classify("resolve input", err)
	}
	defer cleanup()
	if err := filetype.RequirePDF(path); err != nil {
		return grayscale.Verdict{}, classify("detect file type", err)
	}
	return o.detector.Check(path, samplePages, threshold), nil
}
