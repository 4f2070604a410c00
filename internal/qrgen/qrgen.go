// Package qrgen renders QR payloads to embeddable image data URLs.
package qrgen

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder turns a payload into an image data URL. Pure transformation, no
// side effects.
type Encoder interface {
	Encode(payload string) (string, error)
}

const defaultPixelWidth = 300

// PNGEncoder encodes payloads as PNG data URLs with the highest error
// correction level, matching what restaurant-table stickers need to survive
// wear.
type PNGEncoder struct {
	PixelWidth int
}

func (e PNGEncoder) Encode(payload string) (string, error) {
	width := e.PixelWidth
	if width <= 0 {
		width = defaultPixelWidth
	}

	png, err := qrcode.Encode(payload, qrcode.Highest, width)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
