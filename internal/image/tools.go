package imagepkg

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultBrightnessThreshold is the brightness above which RemoveBackground
// treats a pixel as background.
const DefaultBrightnessThreshold = 240

// Resize scales img to exactly w×h.
// The result is limited to MaxCanvasPixels.
func Resize(img image.Image, w, h int) (*image.NRGBA, error) {
	if err := checkCanvas(w, h); err != nil {
		return nil, &InvalidDimensionError{What: "resize", Index: -1, Width: w, Height: h}
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// ResizePercent scales both sides by pct percent.
func ResizePercent(img image.Image, pct float64) (*image.NRGBA, error) {
	b := img.Bounds()
	fw := math.Round(float64(b.Dx()) * pct / 100)
	fh := math.Round(float64(b.Dy()) * pct / 100)
	if !(fw*fh <= MaxCanvasPixels) {
		return nil, &InvalidDimensionError{What: "resize", Index: -1, Width: clampFloat(fw), Height: clampFloat(fh)}
	}
	return Resize(img, int(fw), int(fh))
}

func clampFloat(f float64) int {
	if math.IsNaN(f) || f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ResizeKeepAspect scales img to the given width or height, deriving the
// other side from the source aspect ratio. Whichever side differs from the
// source wins; width is checked first.
func ResizeKeepAspect(img image.Image, w, h int) (*image.NRGBA, error) {
	if w > MaxCanvasPixels || h > MaxCanvasPixels {
		return nil, &InvalidDimensionError{What: "resize", Index: -1, Width: w, Height: h}
	}
	b := img.Bounds()
	ratio := float64(b.Dx()) / float64(b.Dy())
	if w != b.Dx() {
		h = int(math.Round(float64(w) / ratio))
	} else {
		w = int(math.Round(float64(h) * ratio))
	}
	return Resize(img, w, h)
}

// Crop cuts r out of img. r is clipped to the image bounds.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	b := img.Bounds()
	clipped := r.Add(b.Min).Intersect(b)
	if clipped.Empty() {
		return nil, &InvalidDimensionError{What: "crop", Index: -1, Width: r.Dx(), Height: r.Dy()}
	}
	return imaging.Crop(img, clipped), nil
}

// Split cuts img into rows×cols equal parts in row-major order. Remainder
// pixels on the right and bottom edges are dropped.
func Split(img image.Image, rows, cols int) ([]*image.NRGBA, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: split needs positive rows and columns, got %dx%d", ErrInvalidConfig, rows, cols)
	}
	b := img.Bounds()
	pw, ph := b.Dx()/cols, b.Dy()/rows
	if pw <= 0 || ph <= 0 {
		return nil, &InvalidDimensionError{What: "split part", Index: -1, Width: pw, Height: ph}
	}
	parts := make([]*image.NRGBA, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r := image.Rect(col*pw, row*ph, (col+1)*pw, (row+1)*ph).Add(b.Min)
			parts = append(parts, imaging.Crop(img, r))
		}
	}
	return parts, nil
}

// Rotate turns img clockwise by degrees (a multiple of 90) and then applies
// the requested flips.
func Rotate(img image.Image, degrees int, flipH, flipV bool) (*image.NRGBA, error) {
	var out *image.NRGBA
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		out = imaging.Clone(img)
	case 90:
		out = imaging.Rotate270(img) // imaging rotates counter-clockwise
	case 180:
		out = imaging.Rotate180(img)
	case 270:
		out = imaging.Rotate90(img)
	default:
		return nil, fmt.Errorf("%w: rotation must be a multiple of 90, got %d", ErrInvalidConfig, degrees)
	}
	if flipH {
		out = imaging.FlipH(out)
	}
	if flipV {
		out = imaging.FlipV(out)
	}
	return out, nil
}

// RemoveBackground makes every pixel whose mean RGB brightness exceeds
// threshold fully transparent. It is a plain threshold, not segmentation.
func RemoveBackground(img image.Image, threshold int) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if float64(int(c.R)+int(c.G)+int(c.B))/3 > float64(threshold) {
			c.A = 0
		}
		return c
	})
}
