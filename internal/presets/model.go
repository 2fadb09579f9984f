package presets

import imagepkg "github.com/youruser/photokit/internal/image"

// Kinds of preset.
const (
	KindMerge  = "merge"
	KindResize = "resize"
)

// Orientations reported by Preset.Orientation.
const (
	Landscape = "landscape"
	Portrait  = "portrait"
	Square    = "square"
	Free      = "free"
)

// Preset is a named target size, used as an aspect ratio for merges and as
// exact dimensions for resizes.
type Preset struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (p Preset) Orientation() string {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return Free
	case p.Width > p.Height:
		return Landscape
	case p.Width < p.Height:
		return Portrait
	default:
		return Square
	}
}

// AspectRatio returns nil for a free preset.
func (p Preset) AspectRatio() *imagepkg.AspectRatio {
	if p.Orientation() == Free {
		return nil
	}
	return &imagepkg.AspectRatio{Width: p.Width, Height: p.Height}
}

// Builtin returns the presets offered without any data directory.
func Builtin() []Preset {
	return []Preset{
		{"Free", KindMerge, 0, 0},
		{"Instagram Post", KindMerge, 1080, 1080},
		{"Instagram Story", KindMerge, 1080, 1920},
		{"YouTube Thumbnail", KindMerge, 1280, 720},
		{"Facebook Post", KindMerge, 1200, 630},
		{"Twitter Post", KindMerge, 1200, 675},
		{"Square", KindMerge, 1080, 1080},
		{"16:9", KindMerge, 1920, 1080},
		{"4:3", KindMerge, 1600, 1200},
		{"3:2", KindMerge, 1800, 1200},

		{"Instagram Post", KindResize, 1080, 1080},
		{"Instagram Story", KindResize, 1080, 1920},
		{"Facebook Post", KindResize, 1200, 630},
		{"Twitter Post", KindResize, 1200, 675},
		{"YouTube Thumbnail", KindResize, 1280, 720},
		{"LinkedIn Post", KindResize, 1200, 627},
	}
}
