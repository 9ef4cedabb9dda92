// Package grayscale decides whether a PDF already carries no color
// information by sampling a few rasterized pages.
package grayscale

import (
	"errors"
	"image"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfbw/internal/metrics"
	"github.com/local/pdfbw/internal/pdfdoc"
)

const (
	// Scale used for rendering pages for analysis
	AnalysisScale = 0.5

	// Every PixelStride-th pixel of the row-major pixel sequence is inspected
	PixelStride = 10

	// DefaultThreshold is the equal-channel ratio a page needs to count as grayscale
	DefaultThreshold = 0.95

	// DefaultSamplePages is the page budget used when none is configured
	DefaultSamplePages = 3
)

var errEmptyBitmap = errors.New("empty bitmap")

// Verdict is the outcome of sampling a document.
type Verdict struct {
	Grayscale      bool
	GrayscalePages int
	Checked        int
	Pages          []int
}

// Detector classifies documents as grayscale or color.
type Detector struct {
	opener pdfdoc.Opener
}

// NewDetector creates a detector. A nil opener uses the go-fitz backend.
func NewDetector(opener pdfdoc.Opener) *Detector {
	return &Detector{opener: pdfdoc.OrDefault(opener)}
}

// Check samples pages of the PDF at pdfPath. samplePages of 0, or at least the
// page count, checks every page. The verdict is true only if every checked
// page passes threshold. Any failure yields a negative verdict with zero counts.
func (d *Detector) Check(pdfPath string, samplePages int, threshold float64) Verdict {
	start := time.Now()
	v, err := d.check(pdfPath, samplePages, threshold)
	if err != nil {
		log.Warn().Err(err).Str("pdf", pdfPath).Msg("grayscale check failed; assuming color")
		metrics.ObserveVerdict("error")
		return Verdict{}
	}
	log.Debug().
		Str("pdf", pdfPath).
		Bool("grayscale", v.Grayscale).
		Int("grayscale_pages", v.GrayscalePages).
		Int("checked", v.Checked).
		Ints("pages", v.Pages).
		Dur("took", time.Since(start)).
		Msg("grayscale check done")
	if v.Grayscale {
		metrics.ObserveVerdict("grayscale")
	} else {
		metrics.ObserveVerdict("color")
	}
	return v
}

func (d *Detector) check(pdfPath string, samplePages int, threshold float64) (Verdict, error) {
	doc, err := d.opener.Open(pdfPath)
	if err != nil {
		return Verdict{}, err
	}
	defer doc.Close()

	pages := SamplePages(doc.NumPage(), samplePages)
	v := Verdict{Pages: pages}
	for _, p := range pages {
		img, err := doc.Render(p, AnalysisScale)
		if err != nil {
			return Verdict{}, err
		}
		gray, err := IsGrayscale(img, threshold)
		if err != nil {
			return Verdict{}, &pdfdoc.PageError{Page: p, Err: err}
		}
		if gray {
			v.GrayscalePages++
		}
		v.Checked++
	}
	v.Grayscale = v.GrayscalePages == v.Checked
	return v, nil
}

// SamplePages picks the zero-based page indices to inspect: first, last,
// middle, then pages from the start of the document while the budget allows.
// A budget of 0 or >= total selects every page. Indices are unique.
func SamplePages(total, budget int) []int {
	if total <= 0 {
		return []int{}
	}
	if budget <= 0 || budget >= total {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}

	out := []int{0}
	if total > 1 {
		out = append(out, total-1)
	}
	if total > 2 {
		out = append(out, total/2)
	}
	if total > 3 && budget > 3 {
		for i := 1; i < min(budget-2, total-2); i++ {
			out = append(out, i)
		}
	}
	return unique(out)
}

func unique(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := in[:0]
	for _, p := range in {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// IsGrayscale reports whether at least threshold of the sampled pixels have
// equal red, green and blue channels. Single-channel bitmaps are grayscale
// without sampling.
func IsGrayscale(img image.Image, threshold float64) (bool, error) {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true, nil
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	total := w * h
	if total <= 0 {
		return false, errEmptyBitmap
	}

	sampled, equal := 0, 0
	rgba, fast := img.(*image.RGBA)
	for i := 0; i < total; i += PixelStride {
		x, y := i%w, i/w
		var r, g, b uint8
		if fast {
			off := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b = rgba.Pix[off], rgba.Pix[off+1], rgba.Pix[off+2]
		} else {
			r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r, g, b = uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)
		}
		if r == g && g == b {
			equal++
		}
		sampled++
	}

	return float64(equal)/float64(sampled) >= threshold, nil
}
