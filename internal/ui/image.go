package ui

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/url"
	"strings"

	"github.com/nfnt/resize"
)

// PreviewHeight matches the tallest image the page displays.
const PreviewHeight = 384

// ErrNotDataURL is returned by DecodeImageURL for anything but a data: URL.
var ErrNotDataURL = errors.New("not a data URL")

// IsDataURL reports whether s is an inline data: URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeImageURL decodes a data URL into its payload and mime type.
func DecodeImageURL(s string) ([]byte, string, error) {
	if !IsDataURL(s) {
		return nil, "", ErrNotDataURL
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL: missing payload")
	}

	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
		}
		return data, mime, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to unescape payload: %w", err)
	}
	return []byte(text), mime, nil
}

// Thumbnail scales an image down to at most maxHeight pixels tall and
// re-encodes it as PNG. Data that does not decode as an image, or is already
// small enough, is returned unchanged with ok=false.
func Thumbnail(data []byte, maxHeight uint) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, false, nil
	}
	if img.Bounds().Dy() <= int(maxHeight) {
		return data, false, nil
	}

	resized := resize.Resize(0, maxHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, false, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), true, nil
}
