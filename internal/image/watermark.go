package imagepkg

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type WatermarkKind string

const (
	WatermarkText WatermarkKind = "text"
	WatermarkQR   WatermarkKind = "qr"
)

type WatermarkPosition string

const (
	PosCenter      WatermarkPosition = "center"
	PosTopLeft     WatermarkPosition = "top-left"
	PosTopRight    WatermarkPosition = "top-right"
	PosBottomLeft  WatermarkPosition = "bottom-left"
	PosBottomRight WatermarkPosition = "bottom-right"
)

// WatermarkMargin is the distance kept from the edges for corner positions.
const WatermarkMargin = 50

type WatermarkOptions struct {
	Kind     WatermarkKind     `json:"kind"`
	Text     string            `json:"text"`
	Position WatermarkPosition `json:"position"`
	Opacity  float64           `json:"opacity"`
	Size     int               `json:"size"` // font px for text, side px for qr
	Color    string            `json:"color"`
}

func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		Kind:     WatermarkText,
		Text:     "Your Watermark",
		Position: PosCenter,
		Opacity:  0.5,
		Size:     48,
		Color:    "#ffffff",
	}
}

var (
	goRegular     *opentype.Font
	goRegularErr  error
	goRegularOnce sync.Once
)

func regularFace(size int) (font.Face, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	if goRegularErr != nil {
		return nil, goRegularErr
	}
	return opentype.NewFace(goRegular, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Watermark stamps text or a QR code onto a copy of img.
func Watermark(img image.Image, opt WatermarkOptions) (*image.NRGBA, error) {
	if opt.Text == "" {
		return nil, fmt.Errorf("%w: empty watermark text", ErrInvalidConfig)
	}
	if opt.Size <= 0 || opt.Size > MaxQRSize {
		return nil, fmt.Errorf("%w: watermark size must be within [1,%d], got %d", ErrInvalidConfig, MaxQRSize, opt.Size)
	}
	bounds := img.Bounds()
	layer := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch opt.Kind {
	case "", WatermarkText:
		c, err := ParseColor(opt.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: watermark: %v", ErrInvalidConfig, err)
		}
		face, err := regularFace(opt.Size)
		if err != nil {
			return nil, err
		}
		defer face.Close()

		m := face.Metrics()
		tw := font.MeasureString(face, opt.Text).Ceil()
		th := (m.Ascent + m.Descent).Ceil()
		pt := anchor(layer.Bounds().Size(), image.Pt(tw, th), opt.Position)
		d := &font.Drawer{
			Dst:  layer,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(pt.X, pt.Y+m.Ascent.Ceil()),
		}
		d.DrawString(opt.Text)
	case WatermarkQR:
		qr, err := GenerateQRImage(opt.Text, opt.Size)
		if err != nil {
			return nil, err
		}
		layer = imaging.Paste(layer, qr, anchor(layer.Bounds().Size(), qr.Bounds().Size(), opt.Position))
	default:
		return nil, fmt.Errorf("%w: unknown watermark kind %q", ErrInvalidConfig, opt.Kind)
	}

	opacity := opt.Opacity
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	return imaging.Overlay(img, layer, image.Point{}, opacity), nil
}

// anchor returns the top-left corner of a box of size box placed at pos
// inside an area of size area.
func anchor(area, box image.Point, pos WatermarkPosition) image.Point {
	left, top := WatermarkMargin, WatermarkMargin
	right, bottom := area.X-WatermarkMargin-box.X, area.Y-WatermarkMargin-box.Y
	switch pos {
	case PosTopLeft:
		return image.Pt(left, top)
	case PosTopRight:
		return image.Pt(right, top)
	case PosBottomLeft:
		return image.Pt(left, bottom)
	case PosBottomRight:
		return image.Pt(right, bottom)
	default:
		return image.Pt((area.X-box.X)/2, (area.Y-box.Y)/2)
	}
}
