// Package pdfdoc abstracts the PDF rendering backend used for detection,
// transcoding and previews.
package pdfdoc

import (
	"errors"
	"fmt"
	"image"

	"github.com/local/pdfbw/internal/settings"
)

// PointsPerInch is the PDF user space unit; a render scale of 1 equals 72 dpi.
const PointsPerInch = 72.0

// Doc is an open PDF document.
type Doc interface {
	NumPage() int
	// Bound returns the natural page size in points.
	Bound(i int) (settings.Dim, error)
	// Render rasterizes page i at the given scale (1.0 = one pixel per point).
	Render(i int, scale float64) (image.Image, error)
	Close() error
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Doc, error)

func (f OpenerFunc) Open(path string) (Doc, error) { return f(path) }

// defaultOpener is provided in doc_open_fitz.go using go-fitz.
var defaultOpener Opener

// setDefaultOpener allows swapping the default opener.
func setDefaultOpener(o Opener) { defaultOpener = o }

// OrDefault returns o, or the default opener when o is nil.
func OrDefault(o Opener) Opener {
	if o == nil {
		return defaultOpener
	}
	return o
}

// Open opens path with the default opener.
func Open(path string) (Doc, error) {
	if defaultOpener == nil {
		return nil, errors.New("no PDF opener configured")
	}
	return defaultOpener.Open(path)
}

// DPI converts a render scale to dots per inch.
func DPI(scale float64) float64 { return scale * PointsPerInch }

// PageError reports a failure on a specific zero-based page.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page+1, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// CheckPage returns a PageError when i is outside [0, n).
func CheckPage(i, n int) error {
	if i < 0 || i >= n {
		return &PageError{Page: i, Err: fmt.Errorf("out of range (document has %d pages)", n)}
	}
	return nil
}
