package preview

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/settings"
)

type stubDoc struct {
	dims      []settings.Dim
	renderErr error
	page      int
	scale     float64
}

func (d *stubDoc) NumPage() int { return len(d.dims) }

func (d *stubDoc) Bound(i int) (settings.Dim, error) { return d.dims[i], nil }

func (d *stubDoc) Render(i int, scale float64) (image.Image, error) {
	d.page, d.scale = i, scale
	if d.renderErr != nil {
		return nil, d.renderErr
	}
	w := int(d.dims[i].Width * scale)
	h := int(d.dims[i].Height * scale)
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (d *stubDoc) Close() error { return nil }

func rendererFor(doc *stubDoc) *Renderer {
	return New(pdfdoc.OpenerFunc(func(string) (pdfdoc.Doc, error) { return doc, nil }))
}

func TestRenderFitsBoxWithMargin(t *testing.T) {
	doc := &stubDoc{dims: []settings.Dim{{Width: 600, Height: 800}}}
	img, err := rendererFor(doc).Render("doc.pdf", 0, DefaultWidth, DefaultHeight)
	require.NoError(t, err)

	assert.InDelta(t, 0.45, doc.scale, 1e-9)
	assert.LessOrEqual(t, img.Bounds().Dx(), DefaultWidth)
	assert.LessOrEqual(t, img.Bounds().Dy(), DefaultHeight)
}

func TestRenderClampsPageIndex(t *testing.T) {
	doc := &stubDoc{dims: []settings.Dim{{Width: 100, Height: 100}, {Width: 200, Height: 100}}}
	r := rendererFor(doc)

	for _, page := range []int{5, -1, 2} {
		_, err := r.Render("doc.pdf", page, 100, 100)
		require.NoError(t, err)
		assert.Equal(t, 0, doc.page, "page %d", page)
	}
	_, err := r.Render("doc.pdf", 1, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.page)
}

func TestRenderFailuresAreNoPreview(t *testing.T) {
	doc := &stubDoc{dims: []settings.Dim{{Width: 100, Height: 100}}, renderErr: errors.New("bad stream")}
	_, err := rendererFor(doc).Render("doc.pdf", 0, 100, 100)
	assert.ErrorIs(t, err, ErrNoPreview)

	failing := New(pdfdoc.OpenerFunc(func(string) (pdfdoc.Doc, error) { return nil, errors.New("not a pdf") }))
	_, err = failing.Render("doc.pdf", 0, 100, 100)
	assert.ErrorIs(t, err, ErrNoPreview)

	_, err = rendererFor(&stubDoc{dims: []settings.Dim{{Width: 10, Height: 10}}}).Render("doc.pdf", 0, 0, 100)
	assert.ErrorIs(t, err, ErrNoPreview)
}

func TestFitScale(t *testing.T) {
	assert.InDelta(t, 0.9, FitScale(settings.Dim{Width: 100, Height: 50}, 100, 100), 1e-9)
	assert.InDelta(t, 0.45, FitScale(settings.Dim{Width: 100, Height: 200}, 300, 100), 1e-9)
}

func TestEnhanceClampsFactors(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 50})
	src.SetGray(1, 0, color.Gray{Y: 100})

	// 10.0 clamps to 3.0: 50*3=150, 100*3=300 -> 255
	out := Enhance(src, 10, 1, 1)
	assert.Equal(t, uint8(150), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(1, 0).Y)

	same := Enhance(src, 1, 1, 1)
	assert.Equal(t, src.Pix, same.Pix)
}
