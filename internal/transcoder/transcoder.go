// Package transcoder rebuilds a PDF as grayscale JPEG pages.
package transcoder

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbw/internal/imagerender"
	"github.com/local/pdfbw/internal/metrics"
	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/settings"
)

// RenderScale is the oversampling factor applied to the target page size.
const RenderScale = 2.0

// StagingPrefix names per-run staging directories.
const StagingPrefix = "pdfbw-"

// ErrOpen marks failures to open or read the input document.
var ErrOpen = errors.New("cannot open document")

// OutputError reports that the output path could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *OutputError) Unwrap() error { return e.Err }

// ProgressFunc receives a percentage in [0, 100] and a human readable message.
type ProgressFunc func(percent float64, message string)

// Transcoder converts every page of a document into a grayscale JPEG page.
type Transcoder struct {
	opener  pdfdoc.Opener
	tempDir string
}

// New creates a Transcoder. Staging dirs go under tempDir (os.TempDir when empty).
func New(opener pdfdoc.Opener, tempDir string) *Transcoder {
	return &Transcoder{opener: pdfdoc.OrDefault(opener), tempDir: tempDir}
}

// Transcode writes a grayscale rendition of in to out and returns the page count.
func (t *Transcoder) Transcode(in, out string, s settings.Settings, progress ProgressFunc) (int, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}

	doc, err := t.opener.Open(in)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total <= 0 {
		return 0, fmt.Errorf("%w: document has no pages", ErrOpen)
	}

	base := t.tempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, StagingPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	adj := imagerender.Adjustments{
		Brightness: s.Brightness(),
		Contrast:   s.Contrast(),
		Sharpness:  s.Sharpness(),
	}
	w := newPageWriter(dir)

	log.Info().Str("input", in).Int("pages", total).Str("settings", s.String()).Str("staging", dir).Msg("transcoding document")

	for i := 0; i < total; i++ {
		start := time.Now()
		jpegBytes, target, err := t.renderPage(doc, i, s, adj)
		if err != nil {
			return 0, &pdfdoc.PageError{Page: i, Err: err}
		}
		if err := w.AddJPEG(jpegBytes, target); err != nil {
			return 0, &pdfdoc.PageError{Page: i, Err: err}
		}
		metrics.ObservePage(time.Since(start), len(jpegBytes))

		done := i + 1
		progress(float64(done)/float64(total)*100, fmt.Sprintf("Processing page %d/%d", done, total))
	}

	if err := w.Finish(out); err != nil {
		return 0, err
	}
	progress(100, "Conversion complete")
	log.Info().Str("output", out).Int("pages", total).Msg("transcode complete")
	return total, nil
}

func (t *Transcoder) renderPage(doc pdfdoc.Doc, i int, s settings.Settings, adj imagerender.Adjustments) ([]byte, settings.Dim, error) {
	src, err := doc.Bound(i)
	if err != nil {
		return nil, settings.Dim{}, err
	}
	if src.Width <= 0 || src.Height <= 0 {
		return nil, settings.Dim{}, fmt.Errorf("degenerate page size %s", src)
	}
	target := s.TargetSize(src)
	sx := target.Width / src.Width
	sy := target.Height / src.Height

	img, err := doc.Render(i, RenderScale*math.Max(sx, sy))
	if err != nil {
		return nil, settings.Dim{}, err
	}
	pw, ph := PixelSize(target)
	gray := imagerender.ToGray(imagerender.Resample(img, pw, ph))
	gray = imagerender.Enhance(gray, adj)

	jpegBytes, err := imagerender.EncodeJPEG(gray, s.Quality())
	if err != nil {
		return nil, settings.Dim{}, err
	}
	if jw, jh, err := imagerender.GetImageDimensions(jpegBytes); err != nil {
		return nil, settings.Dim{}, err
	} else if jw != pw || jh != ph {
		return nil, settings.Dim{}, fmt.Errorf("encoded page is %dx%d, want %dx%d", jw, jh, pw, ph)
	}
	log.Debug().Int("page", i+1).Str("source", src.String()).Str("target", target.String()).
		Int("width", pw).Int("height", ph).Msg("page rendered")
	return jpegBytes, target, nil
}

// PixelSize is the raster size used for a page of the given target size.
func PixelSize(target settings.Dim) (int, int) {
	w := int(math.Round(RenderScale * target.Width))
	h := int(math.Round(RenderScale * target.Height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
