package settings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned for output size requests that are not
// "original", a known paper name or a positive width/height pair.
var ErrInvalidSize = errors.New("invalid output size")

// Original is the size token that keeps every page at its source size.
const Original = "original"

// Dim is a page size in PDF points (1/72 inch).
type Dim struct {
	Width  float64
	Height float64
}

// Landscape reports whether the page is wider than tall. Square pages are not landscape.
func (d Dim) Landscape() bool { return d.Width > d.Height }

// Swap returns the dimension with width and height exchanged.
func (d Dim) Swap() Dim { return Dim{Width: d.Height, Height: d.Width} }

func (d Dim) String() string {
	return fmt.Sprintf("%sx%s", strconv.FormatFloat(d.Width, 'f', -1, 64), strconv.FormatFloat(d.Height, 'f', -1, 64))
}

// PaperSizes maps the supported paper names to their portrait size in points.
var PaperSizes = map[string]Dim{
	"A4":     {Width: 595, Height: 842},
	"A3":     {Width: 842, Height: 1191},
	"A5":     {Width: 420, Height: 595},
	"Letter": {Width: 612, Height: 792},
	"Legal":  {Width: 612, Height: 1008},
}

// PaperNames returns the supported paper names sorted alphabetically.
func PaperNames() []string {
	names := make([]string, 0, len(PaperSizes))
	for n := range PaperSizes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Size is a requested output page size: keep original, a named paper or an explicit pair.
// The zero value keeps the original size.
type Size struct {
	name string
	dim  Dim
}

// OriginalSize keeps the source page size.
func OriginalSize() Size { return Size{} }

// Named returns the size for a known paper name (case sensitive, as listed in PaperSizes).
func Named(name string) (Size, error) {
	if name == Original {
		return Size{}, nil
	}
	d, ok := PaperSizes[name]
	if !ok {
		return Size{}, fmt.Errorf("%w: unknown paper %q", ErrInvalidSize, name)
	}
	return Size{name: name, dim: d}, nil
}

// Explicit returns a custom size in points. Both values must be positive and finite.
func Explicit(width, height float64) (Size, error) {
	if !validSide(width) || !validSide(height) {
		return Size{}, fmt.Errorf("%w: %vx%v", ErrInvalidSize, width, height)
	}
	return Size{dim: Dim{Width: width, Height: height}}, nil
}

// ParseSize parses a size token: "original", a paper name or "WxH" / "W,H" in points.
func ParseSize(token string) (Size, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return Size{}, fmt.Errorf("%w: empty", ErrInvalidSize)
	}
	if t == Original {
		return Size{}, nil
	}
	if _, ok := PaperSizes[t]; ok {
		return Named(t)
	}
	parts := strings.FieldsFunc(t, func(r rune) bool { return r == 'x' || r == 'X' || r == ',' })
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("%w: %q", ErrInvalidSize, token)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Size{}, fmt.Errorf("%w: %q", ErrInvalidSize, token)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Size{}, fmt.Errorf("%w: %q", ErrInvalidSize, token)
	}
	return Explicit(w, h)
}

// IsOriginal reports whether the size keeps the source dimensions.
func (s Size) IsOriginal() bool { return s.name == "" && s.dim == (Dim{}) }

// Name returns the paper name, or "" for original and explicit sizes.
func (s Size) Name() string { return s.name }

// Base returns the unrotated requested dimensions. It is zero for the original size.
func (s Size) Base() Dim { return s.dim }

func (s Size) String() string {
	switch {
	case s.IsOriginal():
		return Original
	case s.name != "":
		return s.name
	default:
		return s.dim.String()
	}
}

func validSide(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
