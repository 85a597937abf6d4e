package ipfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	samplePNG  = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)
	sampleJPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
	sampleGIF  = append([]byte("GIF89a"), make([]byte, 32)...)
	sampleWEBP = append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 32)...)
)

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    ImageFormat
		wantErr bool
	}{
		{"png", samplePNG, FormatPNG, false},
		{"jpeg", sampleJPEG, FormatJPEG, false},
		{"gif89a", sampleGIF, FormatGIF, false},
		{"gif87a", []byte("GIF87a......"), FormatGIF, false},
		{"webp", sampleWEBP, FormatWEBP, false},
		{"riff but not webp", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), "", true},
		{"truncated riff", []byte("RIFF\x24\x00"), "", true},
		{"svg", []byte("<svg xmlns='http://www.w3.org/2000/svg'/>"), "", true},
		{"truncated png", []byte{0x89, 0x50, 0x4E}, "", true},
		{"empty", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectImage(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateImage(t *testing.T) {
	_, err := ValidateImage(nil, 1024)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = ValidateImage(samplePNG, 10)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	format, err := ValidateImage(samplePNG, int64(len(samplePNG)))
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, format)

	_, err = ValidateImage([]byte("plain text"), 1024)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".webp", FormatWEBP.Extension())
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "logo.png", sanitizeFilename("logo.png", FormatPNG))
	assert.Equal(t, "logo.jpg", sanitizeFilename("../../etc/logo.jpeg", FormatJPEG))
	assert.Equal(t, "evil.gif", sanitizeFilename(`C:\tmp\evil.exe`, FormatGIF))
	assert.Equal(t, "token-image.webp", sanitizeFilename("", FormatWEBP))
	assert.Equal(t, "token-image.png", sanitizeFilename(".png", FormatPNG))
}
