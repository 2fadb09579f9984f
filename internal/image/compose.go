package imagepkg

import (
	"image"

	"github.com/disintegration/imaging"
)

// Composite merges images into a single canvas according to cfg.
//
// The background is filled first (skipped for "transparent"), then every
// image is drawn at its placement followed by its own border, and finally the
// border around the whole canvas. On error no canvas is returned.
func Composite(images []image.Image, cfg LayoutConfig) (*image.NRGBA, Layout, error) {
	if len(images) == 0 {
		return nil, Layout{}, ErrEmptyInput
	}
	sizes := make([]image.Point, len(images))
	for i, img := range images {
		if img == nil {
			return nil, Layout{}, &InvalidDimensionError{What: "image", Index: i}
		}
		sizes[i] = img.Bounds().Size()
	}
	l, err := ComputeLayout(sizes, cfg)
	if err != nil {
		return nil, Layout{}, err
	}

	// Colors were checked by Validate inside ComputeLayout.
	bg, _ := ParseColor(cfg.BackgroundColor)
	borderColor, _ := ParseColor(cfg.Border.Color)

	var canvas *image.NRGBA
	if isTransparent(cfg.BackgroundColor) {
		canvas = image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	} else {
		canvas = imaging.New(l.Width, l.Height, bg)
	}

	for i, img := range images {
		p := l.Placements[i]
		if sizes[i].X != p.Width || sizes[i].Y != p.Height {
			img = imaging.Resize(img, p.Width, p.Height, imaging.Lanczos)
		}
		canvas = imaging.Overlay(canvas, img, image.Pt(p.X, p.Y), 1.0)
		strokeRect(canvas, p.Rect(), cfg.Border, borderColor)
	}
	strokeRect(canvas, canvas.Bounds(), cfg.Border, borderColor)

	return canvas, l, nil
}
