// Package imagerender turns rasterized pages into adjusted grayscale bitmaps
// and JPEG bytes.
package imagerender

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Adjustments are the photographic multipliers applied after grayscale
// conversion. A value of 1.0 leaves the image unchanged.
type Adjustments struct {
	Brightness float64
	Contrast   float64
	Sharpness  float64
}

// smoothKernel is the 3x3 smoothing filter used as the blur reference for sharpness.
var smoothKernel = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// Enhance converts img to luminance and applies brightness, contrast and
// sharpness in that order. Each step is skipped when its factor is exactly 1.
func Enhance(img image.Image, adj Adjustments) *image.Gray {
	gray := ToGray(img)
	if adj.Brightness != 1.0 {
		gray = Brightness(gray, adj.Brightness)
	}
	if adj.Contrast != 1.0 {
		gray = Contrast(gray, adj.Contrast)
	}
	if adj.Sharpness != 1.0 {
		gray = Sharpness(gray, adj.Sharpness)
	}
	return gray
}

// Brightness scales every pixel by factor (interpolation from black).
func Brightness(img *image.Gray, factor float64) *image.Gray {
	out := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := blend(0, c.R, factor)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
	return ToGray(out)
}

// Contrast interpolates every pixel from the image's mean luminance by factor.
func Contrast(img *image.Gray, factor float64) *image.Gray {
	mean := meanLuminance(img)
	out := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := blend(mean, c.R, factor)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
	return ToGray(out)
}

// Sharpness interpolates from a smoothed copy of the image by factor.
// Values below 1 blur, values above 1 sharpen. Border pixels are left as is.
func Sharpness(img *image.Gray, factor float64) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		copyGray(out, img)
		return out
	}
	smooth := ToGray(imaging.Convolve3x3(img, smoothKernel, &imaging.ConvolveOptions{Normalize: true}))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			orig := img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				out.SetGray(x, y, color.Gray{Y: orig})
				continue
			}
			out.SetGray(x, y, color.Gray{Y: blend(smooth.GrayAt(x, y).Y, orig, factor)})
		}
	}
	return out
}

// blend returns from + alpha*(to-from), clipped to [0, 255] and truncated.
func blend(from, to uint8, alpha float64) uint8 {
	v := float64(from) + alpha*(float64(to)-float64(from))
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// meanLuminance returns the rounded average pixel value.
func meanLuminance(img *image.Gray) uint8 {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += uint64(img.GrayAt(x, y).Y)
		}
	}
	return uint8(float64(sum)/float64(n) + 0.5)
}

func copyGray(dst, src *image.Gray) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(x, y, src.GrayAt(b.Min.X+x, b.Min.Y+y))
		}
	}
}
