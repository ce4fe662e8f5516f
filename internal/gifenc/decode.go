package gifenc

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"

	"clipgif/internal/services"
)

// DecodeFrame reads a PNG or WebP still from disk.
func DecodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrImageDecode, "encode", "open frame", filepath.Base(path), err)
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		img, err = webp.Decode(f)
	case ".png":
		img, err = png.Decode(f)
	default:
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrImageDecode, "encode", "decode frame", filepath.Base(path), err)
	}
	return img, nil
}

// FrameSize reports the dimensions of a still without decoding its pixels.
func FrameSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrImageDecode, "encode", "open frame", filepath.Base(path), err)
	}
	defer f.Close()

	var cfg image.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		cfg, err = webp.DecodeConfig(f)
	case ".png":
		cfg, err = png.DecodeConfig(f)
	default:
		cfg, _, err = image.DecodeConfig(f)
	}
	if err != nil {
		return 0, 0, services.Wrap(services.ErrImageDecode, "encode", "read frame header", filepath.Base(path), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, services.Wrap(services.ErrImageDecode, "encode", "read frame header",
			fmt.Sprintf("%s has empty dimensions", filepath.Base(path)), nil)
	}
	return cfg.Width, cfg.Height, nil
}
