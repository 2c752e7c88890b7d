// Package imageinfo reads the header of image data URIs posted by the
// cropper widget.
package imageinfo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"slices"
	"strings"

	_ "golang.org/x/image/webp"

	"image-cropper/internal/datauri"
	"image-cropper/internal/storage"
)

// DefaultMaxSize is the decoded-size ceiling IsValid applies, matching the
// image preset.
const DefaultMaxSize = 10 << 20

var supportedFormats = []string{"webp", "jpg", "jpeg", "png", "gif", "svg"}

type Info struct {
	MimeType  string  `json:"mime_type"`
	Extension string  `json:"extension"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Ratio     float64 `json:"ratio"`
	Size      int     `json:"size"`
}

// Inspect decodes an image data URI and reads its dimensions. Payloads whose
// estimated size exceeds maxSize are rejected before decoding; maxSize <= 0
// disables the check. SVG has no raster header; it is reported with zero
// dimensions.
func Inspect(dataURI string, maxSize int64) (*Info, error) {
	uri, err := datauri.Parse(dataURI)
	if err != nil {
		return nil, err
	}
	if uri.MediaType != "image" {
		return nil, fmt.Errorf("%w: expected image data, got %s", storage.ErrInvalidFormat, uri.MimeType())
	}

	if estimate := uri.EstimatedSize(); maxSize > 0 && estimate > maxSize {
		return nil, fmt.Errorf("%w: estimated %d bytes exceeds limit of %d", storage.ErrPayloadTooLarge, estimate, maxSize)
	}

	data, err := storage.DecodePayload(uri.Payload, true)
	if err != nil {
		return nil, err
	}

	info := &Info{
		MimeType:  uri.MimeType(),
		Extension: uri.Subtype,
		Size:      len(data),
	}
	if uri.Subtype == "svg+xml" {
		info.Extension = "svg"
		return info, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidPayload, err)
	}
	info.MimeType = "image/" + format
	info.Width = cfg.Width
	info.Height = cfg.Height
	if cfg.Height > 0 {
		info.Ratio = float64(cfg.Width) / float64(cfg.Height)
	}
	return info, nil
}

// IsValid reports whether dataURI holds a decodable image.
func IsValid(dataURI string) bool {
	_, err := Inspect(dataURI, DefaultMaxSize)
	return err == nil
}

func SupportedFormats() []string {
	return slices.Clone(supportedFormats)
}

func IsFormatSupported(format string) bool {
	return slices.Contains(supportedFormats, strings.ToLower(format))
}
