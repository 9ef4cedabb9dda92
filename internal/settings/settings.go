// Package settings holds the per-run conversion parameters and the page size
// reconciliation built on them.
package settings

import "fmt"

const (
	MinFactor = 0.1
	MaxFactor = 3.0

	MinQuality = 10
	MaxQuality = 100

	DefaultQuality = 75
)

// Settings is an immutable set of conversion parameters. Use the With*
// methods to derive a modified copy; values are clamped on the way in.
type Settings struct {
	size                Size
	preserveOrientation bool
	brightness          float64
	contrast            float64
	sharpness           float64
	quality             int
}

// Default returns original size, orientation preserved, neutral adjustments and quality 75.
func Default() Settings {
	return Settings{
		preserveOrientation: true,
		brightness:          1.0,
		contrast:            1.0,
		sharpness:           1.0,
		quality:             DefaultQuality,
	}
}

// WithOutputSize parses token and returns a copy using it. On error the
// receiver is returned unchanged together with an error wrapping ErrInvalidSize.
func (s Settings) WithOutputSize(token string, preserveOrientation bool) (Settings, error) {
	size, err := ParseSize(token)
	if err != nil {
		return s, err
	}
	return s.WithSize(size, preserveOrientation), nil
}

// WithSize returns a copy using an already validated size.
func (s Settings) WithSize(size Size, preserveOrientation bool) Settings {
	s.size = size
	s.preserveOrientation = preserveOrientation
	return s
}

// WithImageSettings returns a copy with the clamped adjustment factors and quality.
func (s Settings) WithImageSettings(brightness, contrast, sharpness float64, quality int) Settings {
	s.brightness = ClampFactor(brightness)
	s.contrast = ClampFactor(contrast)
	s.sharpness = ClampFactor(sharpness)
	s.quality = ClampQuality(quality)
	return s
}

func (s Settings) Size() Size                { return s.size }
func (s Settings) PreserveOrientation() bool { return s.preserveOrientation }
func (s Settings) Brightness() float64       { return s.brightness }
func (s Settings) Contrast() float64         { return s.contrast }
func (s Settings) Sharpness() float64        { return s.sharpness }
func (s Settings) Quality() int              { return s.quality }

// TargetSize resolves the output page size for a source page of size src.
// With orientation preservation the requested size is rotated to match the
// source's landscape/portrait classification.
func (s Settings) TargetSize(src Dim) Dim {
	if s.size.IsOriginal() {
		return src
	}
	base := s.size.Base()
	if s.preserveOrientation && src.Landscape() != base.Landscape() {
		base = base.Swap()
	}
	return base
}

func (s Settings) String() string {
	return fmt.Sprintf("size=%s preserve=%t brightness=%.2f contrast=%.2f sharpness=%.2f quality=%d",
		s.size, s.preserveOrientation, s.brightness, s.contrast, s.sharpness, s.quality)
}

// ClampFactor limits an adjustment multiplier to [MinFactor, MaxFactor].
func ClampFactor(v float64) float64 {
	if v != v { // NaN
		return 1.0
	}
	if v < MinFactor {
		return MinFactor
	}
	if v > MaxFactor {
		return MaxFactor
	}
	return v
}

// ClampQuality limits a JPEG quality to [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}
