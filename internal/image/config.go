package imagepkg

import "fmt"

// Direction selects the layout strategy of a merge.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
	Grid       Direction = "grid"
)

// BorderType selects the stroke pattern of a border.
type BorderType string

const (
	BorderSolid  BorderType = "solid"
	BorderDashed BorderType = "dashed"
	BorderDotted BorderType = "dotted"
)

// Align positions images on the cross axis of a horizontal or vertical merge
// when they are drawn at native size.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Size limits. Layouts whose canvas would exceed MaxCanvasPixels are refused
// before anything is allocated.
const (
	// MaxSide bounds image sides, padding, border width, grid columns and rows
	// and aspect-ratio terms.
	MaxSide         = 1 << 16
	MaxCanvasPixels = 1 << 26
)

// Transparent is the background sentinel that disables the background fill.
const Transparent = "transparent"

type Border struct {
	Enabled bool       `json:"enabled"`
	Type    BorderType `json:"type"`
	Color   string     `json:"color"`
	Width   int        `json:"width"`
}

// AspectRatio is a target width:height ratio. A zero side means "free".
type AspectRatio struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (a *AspectRatio) active() bool {
	return a != nil && a.Width > 0 && a.Height > 0
}

// LayoutConfig describes how a list of images is merged into one canvas.
type LayoutConfig struct {
	Direction       Direction    `json:"direction"`
	GridColumns     int          `json:"gridColumns,omitempty"`
	GridRows        int          `json:"gridRows,omitempty"`
	AutoResize      bool         `json:"autoResize"`
	Padding         int          `json:"padding"`
	Border          Border       `json:"border"`
	BackgroundColor string       `json:"backgroundColor"`
	AspectRatio     *AspectRatio `json:"aspectRatio,omitempty"`
	Align           Align        `json:"align,omitempty"`
}

// DefaultConfig returns the configuration a fresh merge starts with.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Direction:  Horizontal,
		AutoResize: true,
		Padding:    0,
		Border: Border{
			Enabled: false,
			Type:    BorderSolid,
			Color:   "#000000",
			Width:   2,
		},
		BackgroundColor: "#ffffff",
		Align:           AlignStart,
	}
}

// Validate reports the first problem found in cfg, wrapped in ErrInvalidConfig.
func (cfg LayoutConfig) Validate() error {
	switch cfg.Direction {
	case Horizontal, Vertical:
	case Grid:
		if cfg.GridColumns <= 0 || cfg.GridRows <= 0 {
			return fmt.Errorf("%w: grid needs positive columns and rows, got %dx%d",
				ErrInvalidConfig, cfg.GridColumns, cfg.GridRows)
		}
		if cfg.GridColumns > MaxSide || cfg.GridRows > MaxSide {
			return fmt.Errorf("%w: grid %dx%d exceeds %d", ErrInvalidConfig, cfg.GridColumns, cfg.GridRows, MaxSide)
		}
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidConfig, cfg.Direction)
	}
	if cfg.Padding < 0 || cfg.Padding > MaxSide {
		return fmt.Errorf("%w: padding %d outside [0,%d]", ErrInvalidConfig, cfg.Padding, MaxSide)
	}
	switch cfg.Align {
	case "", AlignStart, AlignCenter, AlignEnd:
	default:
		return fmt.Errorf("%w: unknown align %q", ErrInvalidConfig, cfg.Align)
	}
	if a := cfg.AspectRatio; a != nil && (a.Width < 0 || a.Height < 0 || a.Width > MaxSide || a.Height > MaxSide) {
		return fmt.Errorf("%w: aspect ratio %d:%d outside [0,%d]",
			ErrInvalidConfig, a.Width, a.Height, MaxSide)
	}
	if _, err := ParseColor(cfg.BackgroundColor); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidConfig, err)
	}
	if cfg.Border.Enabled {
		if cfg.Border.Width < 0 || cfg.Border.Width > MaxSide {
			return fmt.Errorf("%w: border width %d outside [0,%d]", ErrInvalidConfig, cfg.Border.Width, MaxSide)
		}
		switch cfg.Border.Type {
		case "", BorderSolid, BorderDashed, BorderDotted:
		default:
			return fmt.Errorf("%w: unknown border type %q", ErrInvalidConfig, cfg.Border.Type)
		}
		if _, err := ParseColor(cfg.Border.Color); err != nil {
			return fmt.Errorf("%w: border: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
