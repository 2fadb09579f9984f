package imagepkg

import (
	"image"
	"math"
)

// Placement is where one source image lands on the composite, in output pixels.
type Placement struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Layout is the computed canvas size and one placement per input image,
// in input order.
type Layout struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Placements []Placement `json:"placements"`
}

// ComputeLayout works out the canvas size and placements for images of the
// given sizes. It does not touch pixels.
func ComputeLayout(sizes []image.Point, cfg LayoutConfig) (Layout, error) {
	if len(sizes) == 0 {
		return Layout{}, ErrEmptyInput
	}
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}
	for i, s := range sizes {
		if s.X <= 0 || s.Y <= 0 || s.X > MaxSide || s.Y > MaxSide {
			return Layout{}, &InvalidDimensionError{What: "image", Index: i, Width: s.X, Height: s.Y}
		}
	}

	var l Layout
	switch cfg.Direction {
	case Grid:
		l = gridLayout(sizes, cfg)
	case Horizontal:
		l = horizontalLayout(sizes, cfg)
	default:
		l = verticalLayout(sizes, cfg)
	}

	if err := checkCanvas(l.Width, l.Height); err != nil {
		return Layout{}, err
	}

	if cfg.AspectRatio.active() {
		l.Width, l.Height = growToRatio(l.Width, l.Height, cfg.AspectRatio.Width, cfg.AspectRatio.Height)
		if err := checkCanvas(l.Width, l.Height); err != nil {
			return Layout{}, err
		}
	}

	if cfg.Border.Enabled && cfg.Border.Width > 0 {
		bw := cfg.Border.Width
		l.Width += 2 * bw
		l.Height += 2 * bw
		// Unlike a plain canvas grow, the layout shifts by bw too, so the outer
		// frame sits around the images instead of over the right and bottom ones.
		for i := range l.Placements {
			l.Placements[i].X += bw
			l.Placements[i].Y += bw
		}
		if err := checkCanvas(l.Width, l.Height); err != nil {
			return Layout{}, err
		}
	}
	return l, nil
}

// checkCanvas rejects empty canvases and those above MaxCanvasPixels.
func checkCanvas(w, h int) error {
	if w <= 0 || h <= 0 || w > MaxCanvasPixels || h > MaxCanvasPixels ||
		int64(w)*int64(h) > MaxCanvasPixels {
		return &InvalidDimensionError{What: "canvas", Index: -1, Width: w, Height: h}
	}
	return nil
}

func gridLayout(sizes []image.Point, cfg LayoutConfig) Layout {
	cols, rows := cfg.GridColumns, cfg.GridRows
	// Extra images get extra rows instead of falling off the canvas.
	if need := (len(sizes) + cols - 1) / cols; need > rows {
		rows = need
	}
	cellW, cellH := maxSize(sizes)
	p := cfg.Padding

	l := Layout{
		Width:      cols*cellW + (cols+1)*p,
		Height:     rows*cellH + (rows+1)*p,
		Placements: make([]Placement, 0, len(sizes)),
	}
	for i, s := range sizes {
		col, row := i%cols, i/cols
		x := col*cellW + (col+1)*p
		y := row*cellH + (row+1)*p

		w, h := s.X, s.Y
		if cfg.AutoResize {
			scale := math.Min(float64(cellW)/float64(w), float64(cellH)/float64(h))
			w, h = scaled(w, scale), scaled(h, scale)
		}
		l.Placements = append(l.Placements, Placement{
			X:      x + (cellW-w)/2,
			Y:      y + (cellH-h)/2,
			Width:  w,
			Height: h,
		})
	}
	return l
}

func horizontalLayout(sizes []image.Point, cfg LayoutConfig) Layout {
	_, rowH := maxSize(sizes)
	p := cfg.Padding

	l := Layout{Placements: make([]Placement, 0, len(sizes))}
	cursor := p
	for _, s := range sizes {
		w, h := s.X, s.Y
		if cfg.AutoResize {
			w, h = scaled(w, float64(rowH)/float64(h)), rowH
		}
		l.Placements = append(l.Placements, Placement{
			X:      cursor,
			Y:      p + alignOffset(cfg.Align, rowH-h),
			Width:  w,
			Height: h,
		})
		cursor += w + p
	}
	l.Width = cursor
	l.Height = rowH + 2*p
	return l
}

func verticalLayout(sizes []image.Point, cfg LayoutConfig) Layout {
	colW, _ := maxSize(sizes)
	p := cfg.Padding

	l := Layout{Placements: make([]Placement, 0, len(sizes))}
	cursor := p
	for _, s := range sizes {
		w, h := s.X, s.Y
		if cfg.AutoResize {
			w, h = colW, scaled(h, float64(colW)/float64(w))
		}
		l.Placements = append(l.Placements, Placement{
			X:      p + alignOffset(cfg.Align, colW-w),
			Y:      cursor,
			Width:  w,
			Height: h,
		})
		cursor += h + p
	}
	l.Width = colW + 2*p
	l.Height = cursor
	return l
}

// growToRatio enlarges the under-represented axis so that w:h == rw:rh,
// rounding up. Neither side ever shrinks. Callers keep w and h within
// MaxCanvasPixels and rw, rh within MaxSide, so the products fit in int64.
func growToRatio(w, h, rw, rh int) (int, int) {
	w64, h64, rw64, rh64 := int64(w), int64(h), int64(rw), int64(rh)
	if w64*rh64 > h64*rw64 {
		h64 = (w64*rh64 + rw64 - 1) / rw64
	} else {
		w64 = (h64*rw64 + rh64 - 1) / rh64
	}
	return clampInt(w64), clampInt(h64)
}

func clampInt(v int64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func maxSize(sizes []image.Point) (w, h int) {
	for _, s := range sizes {
		if s.X > w {
			w = s.X
		}
		if s.Y > h {
			h = s.Y
		}
	}
	return w, h
}

func scaled(n int, scale float64) int {
	v := int(math.Round(float64(n) * scale))
	if v < 1 {
		return 1
	}
	return v
}

func alignOffset(a Align, space int) int {
	switch a {
	case AlignCenter:
		return space / 2
	case AlignEnd:
		return space
	default:
		return 0
	}
}
