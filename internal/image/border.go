package imagepkg

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// dashPattern returns alternating on/off run lengths; nil means a solid line.
func dashPattern(t BorderType) []int {
	switch t {
	case BorderDashed:
		return []int{10, 5}
	case BorderDotted:
		return []int{2, 2}
	default:
		return nil
	}
}

// strokeRect draws a border of the given width just inside r. The dash phase
// runs clockwise from the top-left corner and carries over between edges.
func strokeRect(dst draw.Image, r image.Rectangle, b Border, c color.NRGBA) {
	w := b.Width
	if !b.Enabled || w <= 0 || r.Empty() {
		return
	}
	src := &image.Uniform{C: c}
	if 2*w >= r.Dx() || 2*w >= r.Dy() {
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
		return
	}

	pattern := dashPattern(b.Type)
	phase := 0

	// top, left to right
	for _, s := range dashSegments(r.Dx(), pattern, phase) {
		draw.Draw(dst, image.Rect(r.Min.X+s[0], r.Min.Y, r.Min.X+s[1], r.Min.Y+w), src, image.Point{}, draw.Over)
	}
	phase += r.Dx()
	// right, top to bottom, below the top band
	for _, s := range dashSegments(r.Dy()-w, pattern, phase) {
		draw.Draw(dst, image.Rect(r.Max.X-w, r.Min.Y+w+s[0], r.Max.X, r.Min.Y+w+s[1]), src, image.Point{}, draw.Over)
	}
	phase += r.Dy() - w
	// bottom, right to left, left of the right band
	for _, s := range dashSegments(r.Dx()-w, pattern, phase) {
		draw.Draw(dst, image.Rect(r.Max.X-w-s[1], r.Max.Y-w, r.Max.X-w-s[0], r.Max.Y), src, image.Point{}, draw.Over)
	}
	phase += r.Dx() - w
	// left, bottom to top, between the top and bottom bands
	for _, s := range dashSegments(r.Dy()-2*w, pattern, phase) {
		draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-w-s[1], r.Min.X+w, r.Max.Y-w-s[0]), src, image.Point{}, draw.Over)
	}
}

// dashSegments returns the [start, end) runs that are "on" along a line of
// the given length, starting phase pixels into the pattern.
func dashSegments(length int, pattern []int, phase int) [][2]int {
	if length <= 0 {
		return nil
	}
	if len(pattern) == 0 {
		return [][2]int{{0, length}}
	}
	period := 0
	for _, n := range pattern {
		period += n
	}
	i, off := 0, phase%period
	for off >= pattern[i] {
		off -= pattern[i]
		i = (i + 1) % len(pattern)
	}

	var out [][2]int
	for pos := 0; pos < length; {
		end := pos + pattern[i] - off
		if end > length {
			end = length
		}
		if i%2 == 0 {
			out = append(out, [2]int{pos, end})
		}
		pos, off = end, 0
		i = (i + 1) % len(pattern)
	}
	return out
}
