package utils

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// GenerateTrackingQR encodes link as a PNG data URI ready for <img src>.
func GenerateTrackingQR(link string) (string, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
