package services

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"diagnostic-imaging-service/internal/core/domain"
)

const (
	// MaxImageBytes is the upload size ceiling (10 MiB).
	MaxImageBytes = 10 << 20

	MinDimension = 100
	MaxDimension = 10000
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// ValidateImage checks an upload before any I/O happens: extension, byte
// length, decodability and pixel dimensions, in that order, short-circuiting
// on the first failure. It is pure and deterministic; re-validating accepted
// input always succeeds. On success it returns the decoded image so the
// pipeline does not decode twice.
func ValidateImage(data []byte, declaredExt string) (image.Image, error) {
	ext := strings.ToLower(strings.TrimPrefix(declaredExt, "."))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, declaredExt)
	}

	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrImageTooLarge, len(data), MaxImageBytes)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptImage, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < MinDimension || w > MaxDimension || h < MinDimension || h > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d (allowed %d-%d px)", domain.ErrInvalidDimensions, w, h, MinDimension, MaxDimension)
	}

	return img, nil
}
