// internal/ipfs/image.go
package ipfs

import (
	"bytes"
	"errors"
	"fmt"
)

// ImageFormat is an image type accepted for token logos.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
	FormatGIF  ImageFormat = "gif"
	FormatWEBP ImageFormat = "webp"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image too large")
	ErrEmptyImage       = errors.New("image is empty")
)

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	gif87a    = []byte("GIF87a")
	gif89a    = []byte("GIF89a")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// ContentType returns the MIME type of the format.
func (f ImageFormat) ContentType() string {
	return "image/" + string(f)
}

// Extension returns the conventional file extension including the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// DetectImage identifies data by its leading magic bytes. The declared
// content type of an upload is ignored.
func DetectImage(data []byte) (ImageFormat, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG, nil
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, gif87a), bytes.HasPrefix(data, gif89a):
		return FormatGIF, nil
	case len(data) >= 12 && bytes.Equal(data[:4], riffMagic) && bytes.Equal(data[8:12], webpMagic):
		return FormatWEBP, nil
	}
	return "", ErrUnsupportedImage
}

// ValidateImage checks size limits and format.
func ValidateImage(data []byte, maxBytes int64) (ImageFormat, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrImageTooLarge, len(data), maxBytes)
	}
	return DetectImage(data)
}
