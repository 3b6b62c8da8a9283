package raster

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// ErrUnsupportedFormat is returned when a file extension has no known encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// jpegQuality is used for .jpg outputs. Maps are normally written as BMP or
// PNG; JPEG is lossy and will not round-trip exact colors.
const jpegQuality = 95

// encoderFor picks a bild encoder from the file extension.
func encoderFor(path string) (imgio.Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return imgio.BMPEncoder(), nil
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(jpegQuality), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Save writes r to path, choosing the format from the extension.
func Save(path string, r *Raster) error {
	return SaveImage(path, r.ToImage())
}

// SaveImage writes img to path, choosing the format from the extension.
// Missing parent directories are created.
func SaveImage(path string, img image.Image) error {
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to encode image %s: %w", path, err)
	}
	return nil
}

// Supported reports whether path has an extension the loader can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp", ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff":
		return true
	}
	return false
}
