// Package thumbnail scales cover images for export from a publication.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoding
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	DefaultMaxWidth    = 600
	DefaultJPEGQuality = 90
	defaultMaxPixels   = 100 * 1000 * 1000 // 100 megapixels
)

// Options controls scaling and encoding.
type Options struct {
	MaxWidth    int // 0 keeps the source width
	JPEGQuality int
	Format      string // "jpeg" or "png"; empty follows the source
}

// Image is an encoded thumbnail.
type Image struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// Make decodes input, narrows it to opts.MaxWidth keeping the aspect ratio,
// and encodes the result.
func Make(input []byte, opts Options) (Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(input))
	if err != nil {
		return Image{}, fmt.Errorf("image decode failed: %w", err)
	}
	if pixels := uint64(cfg.Width) * uint64(cfg.Height); pixels > defaultMaxPixels {
		return Image{}, fmt.Errorf("image too large to decode: %dx%d (%d pixels)", cfg.Width, cfg.Height, pixels)
	}

	src, format, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return Image{}, fmt.Errorf("image decode failed: %w", err)
	}

	processed := src
	if opts.MaxWidth > 0 && src.Bounds().Dx() > opts.MaxWidth {
		processed = imaging.Resize(src, opts.MaxWidth, 0, imaging.Lanczos)
	}

	target := strings.ToLower(opts.Format)
	if target == "" {
		target = chooseTargetFormat(format, processed)
	}

	var buf bytes.Buffer
	switch target {
	case "png":
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		err = encoder.Encode(&buf, processed)
	case "jpeg", "jpg":
		target = "jpeg"
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, processed, &jpeg.Options{Quality: quality})
	default:
		return Image{}, fmt.Errorf("unsupported output format %q", opts.Format)
	}
	if err != nil {
		return Image{}, fmt.Errorf("%s encode failed: %w", target, err)
	}

	return Image{
		Data:   buf.Bytes(),
		Width:  processed.Bounds().Dx(),
		Height: processed.Bounds().Dy(),
		Format: target,
	}, nil
}

// chooseTargetFormat keeps transparent PNGs as PNG and encodes everything
// else as JPEG.
func chooseTargetFormat(detected string, img image.Image) string {
	if strings.EqualFold(detected, "png") && hasAlpha(img) {
		return "png"
	}
	return "jpeg"
}

func hasAlpha(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a < 0xFFFF {
				return true
			}
		}
	}
	return false
}
