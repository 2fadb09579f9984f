package imagepkg

import (
	"bytes"
	"image"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// MaxQRSize is the largest QR side GenerateQRPNG renders.
const MaxQRSize = 4096

// GenerateQRPNG returns PNG bytes of a size×size QR code for text.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if size > MaxQRSize {
		return nil, &InvalidDimensionError{What: "qr", Index: -1, Width: size, Height: size}
	}
	return qrcode.Encode(text, qrcode.Medium, size)
}

// GenerateQRImage returns a QR code as an image for further composition.
func GenerateQRImage(text string, size int) (image.Image, error) {
	b, err := GenerateQRPNG(text, size)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(b))
}
