// Package preview renders single pages for interactive inspection.
package preview

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfbw/internal/imagerender"
	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/settings"
)

// Default preview box in pixels.
const (
	DefaultWidth  = 300
	DefaultHeight = 400
)

// fitMargin shrinks the fitted scale so the page sits inside the box with a border.
const fitMargin = 0.9

// ErrNoPreview is returned whenever a preview cannot be produced.
var ErrNoPreview = errors.New("no preview available")

// Renderer rasterizes one page at a time. Concurrent calls are serialized.
type Renderer struct {
	opener pdfdoc.Opener
	mu     sync.Mutex
}

// New creates a Renderer. A nil opener uses the go-fitz backend.
func New(opener pdfdoc.Opener) *Renderer {
	return &Renderer{opener: pdfdoc.OrDefault(opener)}
}

// Render rasterizes page (zero-based; out-of-range indices fall back to the
// first page) scaled to fit within boxW x boxH pixels.
func (r *Renderer) Render(path string, page, boxW, boxH int) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, err := r.render(path, page, boxW, boxH)
	if err != nil {
		log.Warn().Err(err).Str("pdf", path).Int("page", page).Msg("preview failed")
		return nil, fmt.Errorf("%w: %w", ErrNoPreview, err)
	}
	return img, nil
}

func (r *Renderer) render(path string, page, boxW, boxH int) (image.Image, error) {
	if boxW <= 0 || boxH <= 0 {
		return nil, fmt.Errorf("invalid preview box %dx%d", boxW, boxH)
	}
	doc, err := r.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if n := doc.NumPage(); page < 0 || page >= n {
		page = 0
	}
	dim, err := doc.Bound(page)
	if err != nil {
		return nil, err
	}
	if dim.Width <= 0 || dim.Height <= 0 {
		return nil, fmt.Errorf("degenerate page size %s", dim)
	}
	return doc.Render(page, FitScale(dim, boxW, boxH))
}

// FitScale is the render scale that fits dim inside the box with a margin.
func FitScale(dim settings.Dim, boxW, boxH int) float64 {
	sx := float64(boxW) / dim.Width
	sy := float64(boxH) / dim.Height
	return math.Min(sx, sy) * fitMargin
}

// Enhance applies the conversion adjustments to a rendered preview without
// re-rasterizing. Factors are clamped to the accepted range.
func Enhance(img image.Image, brightness, contrast, sharpness float64) *image.Gray {
	return imagerender.Enhance(img, imagerender.Adjustments{
		Brightness: settings.ClampFactor(brightness),
		Contrast:   settings.ClampFactor(contrast),
		Sharpness:  settings.ClampFactor(sharpness),
	})
}
