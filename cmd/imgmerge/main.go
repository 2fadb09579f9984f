package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/youruser/photokit/internal/bulk"
	imagepkg "github.com/youruser/photokit/internal/image"
	"github.com/youruser/photokit/internal/presets"
	"github.com/youruser/photokit/internal/util"
)

const desc = `Merges images into one canvas side by side, stacked or on a grid.

Inputs are local files or http(s) URLs, drawn in the order given.`

type cli struct {
	Output string `short:"o" required:"" help:"Output file. With --every this is a zip archive."`

	Direction  string `short:"d" default:"horizontal" enum:"horizontal,vertical,grid" help:"Layout direction."`
	Columns    int    `default:"2" help:"Grid columns."`
	Rows       int    `default:"2" help:"Grid rows. Extra images add rows."`
	Padding    int    `short:"p" default:"0" help:"Gap around and between images, in pixels."`
	AutoResize bool   `default:"true" negatable:"" help:"Scale images to a common height, width or cell."`
	Align      string `default:"start" enum:"start,center,end" help:"Cross-axis alignment of images that are not resized."`

	Border      bool   `help:"Draw a border around every image and the canvas."`
	BorderType  string `default:"solid" enum:"solid,dashed,dotted" help:"Border stroke."`
	BorderColor string `default:"#000000" help:"Border color."`
	BorderWidth int    `default:"2" help:"Border width in pixels."`

	Background string `default:"#ffffff" help:"Background color or \"transparent\"."`
	Aspect     string `help:"Grow the canvas to a W:H ratio, e.g. 16:9."`
	Preset     string `help:"Use the aspect ratio of a merge preset, e.g. \"Instagram Story\"."`
	DataDir    string `default:"data" type:"path" help:"Directory holding custom_presets.csv."`

	Format  string  `short:"f" help:"png, jpg, webp or gif. Defaults to the output extension."`
	Quality float64 `default:"0.92" help:"Lossy quality within [0,1]."`
	Every   int     `help:"Merge every N inputs separately and write a zip archive."`

	Inputs []string `arg:"" name:"input" help:"Images to merge."`
}

func main() {
	log.SetFlags(0)
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("imgmerge"),
		kong.Description(desc),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(c.run(context.Background()))
}

func (c *cli) run(ctx context.Context) error {
	cfg, err := c.layoutConfig()
	if err != nil {
		return err
	}
	format, err := c.outputFormat()
	if err != nil {
		return err
	}
	if c.Quality < 0 || c.Quality > 1 {
		return fmt.Errorf("--quality must be within [0,1], got %v", c.Quality)
	}

	if c.Every > 0 {
		return c.runEvery(ctx, cfg, format)
	}

	imgs, err := imagepkg.DecodeAll(ctx, sources(c.Inputs))
	if err != nil {
		return err
	}
	f, err := util.CreateFile(c.Output)
	if err != nil {
		return err
	}
	defer f.Close()

	canvas, _, err := imagepkg.Composite(imgs, cfg)
	if err != nil {
		return err
	}
	if err := imagepkg.Encode(f, canvas, format, c.Quality); err != nil {
		return err
	}
	b := canvas.Bounds()
	log.Printf("wrote %s (%dx%d)", c.Output, b.Dx(), b.Dy())
	return f.Close()
}

// runEvery merges every c.Every inputs into one archive entry. Inputs that
// fail to decode only cost their own group.
func (c *cli) runEvery(ctx context.Context, cfg imagepkg.LayoutConfig, format imagepkg.Format) error {
	f, err := util.CreateFile(c.Output)
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := bulk.MergeSources(ctx, chunk(sources(c.Inputs), c.Every), cfg, format, c.Quality, f)
	if err != nil {
		return err
	}
	log.Printf("wrote %d merged images to %s", len(rep.Files), c.Output)
	for _, ge := range rep.Failed {
		log.Println("Warning:", ge)
	}
	if len(rep.Files) == 0 && len(rep.Failed) > 0 {
		return rep.Failed[0]
	}
	return f.Close()
}

func (c *cli) layoutConfig() (imagepkg.LayoutConfig, error) {
	cfg := imagepkg.DefaultConfig()
	cfg.Direction = imagepkg.Direction(c.Direction)
	if cfg.Direction == imagepkg.Grid {
		cfg.GridColumns, cfg.GridRows = c.Columns, c.Rows
	}
	cfg.AutoResize = c.AutoResize
	cfg.Padding = c.Padding
	cfg.Align = imagepkg.Align(c.Align)
	cfg.BackgroundColor = c.Background
	cfg.Border = imagepkg.Border{
		Enabled: c.Border,
		Type:    imagepkg.BorderType(c.BorderType),
		Color:   c.BorderColor,
		Width:   c.BorderWidth,
	}

	switch {
	case c.Aspect != "" && c.Preset != "":
		return cfg, fmt.Errorf("--aspect and --preset are mutually exclusive")
	case c.Aspect != "":
		r, err := parseAspect(c.Aspect)
		if err != nil {
			return cfg, err
		}
		cfg.AspectRatio = r
	case c.Preset != "":
		ps, err := presets.LoadFromDataDir(c.DataDir)
		if err != nil {
			log.Println("Warning: failed to load custom presets:", err)
		}
		p, ok := presets.Find(ps, presets.KindMerge, c.Preset)
		if !ok {
			return cfg, fmt.Errorf("unknown merge preset %q", c.Preset)
		}
		cfg.AspectRatio = p.AspectRatio()
	}
	return cfg, cfg.Validate()
}

func (c *cli) outputFormat() (imagepkg.Format, error) {
	if c.Format != "" {
		return imagepkg.ParseFormat(c.Format)
	}
	ext := filepath.Ext(c.Output)
	if c.Every > 0 && strings.EqualFold(ext, ".zip") {
		return imagepkg.PNG, nil
	}
	if ext == "" {
		return imagepkg.PNG, nil
	}
	return imagepkg.ParseFormat(ext)
}

// parseAspect reads "16:9" or "16x9".
func parseAspect(s string) (*imagepkg.AspectRatio, error) {
	w, h, ok := strings.Cut(s, ":")
	if !ok {
		w, h, ok = strings.Cut(s, "x")
	}
	if !ok {
		return nil, fmt.Errorf("aspect %q: want W:H", s)
	}
	rw, err1 := strconv.Atoi(strings.TrimSpace(w))
	rh, err2 := strconv.Atoi(strings.TrimSpace(h))
	if err1 != nil || err2 != nil || rw <= 0 || rh <= 0 {
		return nil, fmt.Errorf("aspect %q: want two positive integers", s)
	}
	return &imagepkg.AspectRatio{Width: rw, Height: rh}, nil
}

func sources(inputs []string) []imagepkg.Source {
	out := make([]imagepkg.Source, len(inputs))
	for i, in := range inputs {
		if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
			out[i] = imagepkg.URLSource(in)
		} else {
			out[i] = imagepkg.FileSource(in)
		}
	}
	return out
}

// chunk splits items into groups of n, the last one possibly shorter.
func chunk[T any](items []T, n int) [][]T {
	var out [][]T
	for len(items) > n {
		out = append(out, items[:n])
		items = items[n:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
