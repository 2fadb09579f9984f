package imagepkg

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	WebP Format = "webp"
	GIF  Format = "gif"
)

// DefaultQuality is used when the caller does not pick one.
const DefaultQuality = 0.92

// ParseFormat accepts png, jpg, jpeg, webp and gif, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "webp":
		return WebP, nil
	case "gif":
		return GIF, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use png, jpg, webp or gif", s)
	}
}

func (f Format) Extension() string { return string(f) }

func (f Format) MIMEType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/" + string(f)
}

// Encode writes img to w. quality is in [0,1] and only affects jpg and webp.
// PNG keeps alpha; JPEG has none, so the codec flattens transparency.
func Encode(w io.Writer, img image.Image, f Format, quality float64) error {
	if img == nil {
		return &EncodeError{Format: f, Err: fmt.Errorf("nil image")}
	}
	q := clampQuality(quality)

	var err error
	switch f {
	case PNG:
		err = imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	case JPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(q)))
	case GIF:
		err = imaging.Encode(w, img, imaging.GIF)
	case WebP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(q * 100)})
	default:
		err = fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return &EncodeError{Format: f, Err: err}
	}
	return nil
}

func clampQuality(q float64) float64 {
	if math.IsNaN(q) {
		return DefaultQuality
	}
	return math.Max(0, math.Min(1, q))
}

func jpegQuality(q float64) int {
	v := int(math.Round(q * 100))
	if v < 1 {
		return 1
	}
	return v
}
