package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"scrollsplice/internal/fileutil"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrOutputExists      = errors.New("output file exists")
)

// Format names an output encoder.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Options controls how Save encodes and places the image.
type Options struct {
	// Format overrides extension detection when set.
	Format      Format
	JPEGQuality int
	Overwrite   bool
	// Transpose swaps rows and columns before encoding.
	Transpose bool
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFor resolves the encoder for path, preferring override when non-empty.
func FormatFor(path string, override Format) (Format, error) {
	if override != "" {
		return ParseFormat(string(override))
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, jpegQuality int) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		if jpegQuality <= 0 {
			jpegQuality = jpeg.DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save encodes img to path and returns the stored size in bytes.
func Save(path string, img image.Image, opts Options) (int64, error) {
	if strings.TrimSpace(path) == "" {
		return 0, errors.New("image output path required")
	}
	format, err := FormatFor(path, opts.Format)
	if err != nil {
		return 0, err
	}

	lock, err := fileutil.TryLock(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = fileutil.Release(lock) }()

	if !opts.Overwrite && fileutil.Exists(path) {
		return 0, fmt.Errorf("%w: %s", ErrOutputExists, path)
	}

	if opts.Transpose {
		img = imaging.Transpose(img)
	}

	n, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		if err := Encode(w, img, format, opts.JPEGQuality); err != nil {
			return fmt.Errorf("encode %s: %w", format, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
