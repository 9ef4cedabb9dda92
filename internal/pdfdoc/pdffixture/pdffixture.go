// Package pdffixture builds small image-only PDFs for tests.
package pdffixture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Page describes one fixture page: its size in points and fill color.
type Page struct {
	Width, Height float64
	Fill          color.Color
}

// Color returns a page filled with a saturated color.
func Color(w, h float64) Page { return Page{Width: w, Height: h, Fill: color.RGBA{R: 200, G: 40, B: 40, A: 255}} }

// Gray returns a page filled with mid gray.
func Gray(w, h float64) Page { return Page{Width: w, Height: h, Fill: color.Gray{Y: 128}} }

// Write creates name inside dir with one page per entry and returns its path.
func Write(tb testing.TB, dir, name string, pages ...Page) string {
	tb.Helper()
	api.DisableConfigDir()
	out := filepath.Join(dir, name)
	conf := model.NewDefaultConfiguration()
	for i, p := range pages {
		img := filled(p)
		imgPath := filepath.Join(dir, fmt.Sprintf("%s-page-%d.png", name, i))
		if err := imaging.Save(img, imgPath); err != nil {
			tb.Fatalf("save fixture image: %v", err)
		}
		imp := pdfcpu.DefaultImportConfig()
		imp.PageDim = &types.Dim{Width: p.Width, Height: p.Height}
		imp.UserDim = true
		imp.Pos = types.Center
		imp.Scale = 1.0
		imp.ScaleAbs = false
		imp.InpUnit = types.POINTS
		if err := api.ImportImagesFile([]string{imgPath}, out, imp, conf); err != nil {
			tb.Fatalf("build fixture pdf: %v", err)
		}
		_ = os.Remove(imgPath)
	}
	return out
}

func filled(p Page) image.Image {
	w, h := int(p.Width), int(p.Height)
	if _, ok := p.Fill.(color.Gray); ok {
		img := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(p.Fill), image.Point{}, draw.Src)
		return img
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(p.Fill), image.Point{}, draw.Src)
	return img
}
