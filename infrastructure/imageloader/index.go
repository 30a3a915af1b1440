// Package imageloader decodes submitted images from a path, raw bytes or base64.
package imageloader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	apperrors "ekyc.io/application/appErrors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxBytes caps a single decoded upload.
const MaxBytes = 20 << 20

// MaxPixels caps the decoded area so small, highly compressed uploads cannot
// expand into multi-gigabyte rasters.
const MaxPixels = 40_000_000

// Load reads and decodes the image at path.
func Load(field string, path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapInputError(field, err)
	}
	return Bytes(field, raw)
}

func Bytes(field string, raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, apperrors.NewInputError(field, "image is empty")
	}
	if len(raw) > MaxBytes {
		return nil, apperrors.NewInputError(field, "image exceeds 20MB")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.WrapInputError(field, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, apperrors.NewInputError(field, fmt.Sprintf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, MaxPixels))
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.WrapInputError(field, err)
	}
	if img.Bounds().Empty() {
		return nil, apperrors.NewInputError(field, "image has no pixels")
	}
	return img, nil
}

// Base64 decodes standard base64, with or without a data URL prefix.
func Base64(field string, encoded string) (image.Image, error) {
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, apperrors.WrapInputError(field, err)
	}
	return Bytes(field, raw)
}

// Optional decodes encoded when it is set and returns nil otherwise.
func Optional(field string, encoded *string) (image.Image, error) {
	if encoded == nil || strings.TrimSpace(*encoded) == "" {
		return nil, nil
	}
	return Base64(field, *encoded)
}

// EncodeJPEG re-encodes img for collaborator requests and evidence archiving.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeBase64(img image.Image) (string, error) {
	raw, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
