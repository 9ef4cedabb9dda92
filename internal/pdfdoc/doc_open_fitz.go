package pdfdoc

import (
	"fmt"
	"image"
	"math"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbw/internal/settings"
)

// fitzOpener implements Opener using github.com/gen2brain/go-fitz.
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Doc, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &fitzDoc{doc: doc, exact: exactDims(path, doc.NumPage())}, nil
}

// Ensure default opener is set to fitz-based implementation.
func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
	setDefaultOpener(fitzOpener{})
}

// exactDims reads fractional page sizes with pdfcpu. MuPDF reports integer
// bounds only. Returns nil when pdfcpu cannot read the file.
func exactDims(path string, pages int) []types.Dim {
	dims, err := api.PageDimsFile(path)
	if err != nil || len(dims) != pages {
		log.Debug().Err(err).Str("path", path).Msg("exact page sizes unavailable; using integer bounds")
		return nil
	}
	return dims
}

// --- Adapter ---

type fitzDoc struct {
	doc   *fitz.Document
	exact []types.Dim
}

func (d *fitzDoc) NumPage() int { return d.doc.NumPage() }

func (d *fitzDoc) Bound(i int) (settings.Dim, error) {
	if err := CheckPage(i, d.doc.NumPage()); err != nil {
		return settings.Dim{}, err
	}
	r, err := d.doc.Bound(i)
	if err != nil {
		return settings.Dim{}, &PageError{Page: i, Err: err}
	}
	dim := settings.Dim{Width: float64(r.Dx()), Height: float64(r.Dy())}
	// MuPDF truncates to whole points. Only refine when both agree on the box,
	// so a CropBox smaller than the MediaBox keeps the MuPDF size.
	if i < len(d.exact) {
		e := d.exact[i]
		if math.Abs(e.Width-dim.Width) < 1 && math.Abs(e.Height-dim.Height) < 1 {
			dim = settings.Dim{Width: e.Width, Height: e.Height}
		}
	}
	return dim, nil
}

func (d *fitzDoc) Render(i int, scale float64) (image.Image, error) {
	if err := CheckPage(i, d.doc.NumPage()); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, &PageError{Page: i, Err: fmt.Errorf("invalid render scale %v", scale)}
	}
	img, err := d.doc.ImageDPI(i, DPI(scale))
	if err != nil {
		return nil, &PageError{Page: i, Err: fmt.Errorf("render: %w", err)}
	}
	log.Debug().
		Int("page", i+1).
		Float64("scale", scale).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("rasterized page")
	return img, nil
}

func (d *fitzDoc) Close() error { return d.doc.Close() }
