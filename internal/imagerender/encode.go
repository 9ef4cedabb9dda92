package imagerender

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// ToGray converts img to single-channel luminance. A *image.Gray input is returned as-is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// Resample scales img to exactly width x height pixels. The aspect ratio is
// not preserved, so callers can apply independent horizontal and vertical scales.
func Resample(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// EncodeJPEG encodes a luminance bitmap as a single-component JPEG.
// Returns JPEG bytes
func EncodeJPEG(img *image.Gray, quality int) ([]byte, error) {
	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: quality}
	if err := jpeg.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	jpegBytes := buf.Bytes()

	log.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("jpeg_size", len(jpegBytes)).
		Int("quality", quality).
		Msg("encoded page as JPEG")

	return jpegBytes, nil
}

// GetImageDimensions extracts dimensions from JPEG bytes
func GetImageDimensions(jpegBytes []byte) (width, height int, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(jpegBytes))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode JPEG: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
