// Package session holds the mutable state of one merge: the ordered image
// list, the layout options, and an undo/redo history of immutable snapshots.
package session

import (
	"image"

	imagepkg "github.com/youruser/photokit/internal/image"
)

// Entry is one decoded image in a session.
type Entry struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Image image.Image `json:"-"`
}

func (e Entry) Width() int  { return e.Image.Bounds().Dx() }
func (e Entry) Height() int { return e.Image.Bounds().Dy() }

// State is a snapshot of a session. Snapshots never share mutable memory
// with the session they came from.
type State struct {
	Images  []Entry               `json:"images"`
	Options imagepkg.LayoutConfig `json:"options"`
}

// SourceImages returns the images in merge order.
func (s State) SourceImages() []image.Image {
	out := make([]image.Image, len(s.Images))
	for i, e := range s.Images {
		out[i] = e.Image
	}
	return out
}

func (s State) clone() State {
	return State{
		Images:  append([]Entry(nil), s.Images...),
		Options: cloneConfig(s.Options),
	}
}

func cloneConfig(c imagepkg.LayoutConfig) imagepkg.LayoutConfig {
	if c.AspectRatio != nil {
		r := *c.AspectRatio
		c.AspectRatio = &r
	}
	return c
}
