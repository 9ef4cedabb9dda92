package transcoder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/local/pdfbw/internal/settings"
)

// pageWriter accumulates image pages into a work PDF inside a staging dir.
type pageWriter struct {
	dir   string
	work  string
	conf  *model.Configuration
	pages int
}

func newPageWriter(dir string) *pageWriter {
	return &pageWriter{
		dir:  dir,
		work: filepath.Join(dir, "work.pdf"),
		conf: model.NewDefaultConfiguration(),
	}
}

// AddJPEG appends one page of exactly size points with the JPEG filling it.
// The JPEG is staged in a temp file that is removed whatever the outcome.
func (w *pageWriter) AddJPEG(jpegBytes []byte, size settings.Dim) error {
	f, err := os.CreateTemp(w.dir, "page-*.jpg")
	if err != nil {
		return fmt.Errorf("stage page image: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(jpegBytes); err != nil {
		f.Close()
		return fmt.Errorf("stage page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("stage page image: %w", err)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: size.Width, Height: size.Height}
	imp.UserDim = true
	// Full would size the page to the image's pixel dimensions. Centering a
	// same-aspect image at relative scale 1 fills PageDim exactly.
	imp.Pos = types.Center
	imp.Scale = 1.0
	imp.ScaleAbs = false
	imp.InpUnit = types.POINTS

	if err := api.ImportImagesFile([]string{f.Name()}, w.work, imp, w.conf); err != nil {
		return fmt.Errorf("pdfcpu import failed: %w", err)
	}
	w.pages++
	return nil
}

// Finish optimizes the work document and writes it to out.
func (w *pageWriter) Finish(out string) error {
	if w.pages == 0 {
		return fmt.Errorf("no pages to write")
	}
	in, err := os.Open(w.work)
	if err != nil {
		return err
	}
	defer in.Close()

	dst, err := os.Create(out)
	if err != nil {
		return &OutputError{Path: out, Err: err}
	}
	if err := api.Optimize(in, dst, w.conf); err != nil {
		dst.Close()
		_ = os.Remove(out)
		return fmt.Errorf("optimize output: %w", err)
	}
	if err := dst.Close(); err != nil {
		return &OutputError{Path: out, Err: err}
	}
	return nil
}
