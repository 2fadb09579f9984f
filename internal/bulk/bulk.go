// Package bulk merges several image groups with one configuration and packs
// the results into a zip archive.
package bulk

import (
	"archive/zip"
	"context"
	"fmt"
	"image"
	"io"
	"log"

	imagepkg "github.com/youruser/photokit/internal/image"
)

// GroupError records a group that could not be merged or encoded.
type GroupError struct {
	Group int
	Err   error
}

func (e GroupError) Error() string {
	return fmt.Sprintf("group %d: %v", e.Group+1, e.Err)
}

func (e GroupError) Unwrap() error { return e.Err }

type Report struct {
	Files   []string
	Skipped []int // empty groups
	Failed  []GroupError
}

// EntryName is the archive name of the merged group i (0-based).
func EntryName(i int, f imagepkg.Format) string {
	return fmt.Sprintf("merged-%d.%s", i+1, f.Extension())
}

// Merge composites every group and writes merged-<n>.<ext> entries into a zip
// on w. A failing group is logged and reported; the rest still go out.
func Merge(ctx context.Context, groups [][]image.Image, cfg imagepkg.LayoutConfig, format imagepkg.Format, quality float64, w io.Writer) (Report, error) {
	load := func(i int) ([]image.Image, error) { return groups[i], nil }
	return merge(ctx, len(groups), load, cfg, format, quality, w)
}

// MergeSources is Merge for groups that still need decoding. Each group is
// decoded on its own, so an unreadable file fails only its group.
func MergeSources(ctx context.Context, groups [][]imagepkg.Source, cfg imagepkg.LayoutConfig, format imagepkg.Format, quality float64, w io.Writer) (Report, error) {
	load := func(i int) ([]image.Image, error) {
		if len(groups[i]) == 0 {
			return nil, nil
		}
		return imagepkg.DecodeAll(ctx, groups[i])
	}
	return merge(ctx, len(groups), load, cfg, format, quality, w)
}

func merge(ctx context.Context, n int, load func(int) ([]image.Image, error), cfg imagepkg.LayoutConfig, format imagepkg.Format, quality float64, w io.Writer) (Report, error) {
	var rep Report
	zw := zip.NewWriter(w)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return rep, err
		}
		group, err := load(i)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				zw.Close()
				return rep, ctxErr
			}
			log.Printf("bulk: decoding group %d: %v", i+1, err)
			rep.Failed = append(rep.Failed, GroupError{Group: i, Err: err})
			continue
		}
		if len(group) == 0 {
			rep.Skipped = append(rep.Skipped, i)
			continue
		}
		canvas, _, err := imagepkg.Composite(group, cfg)
		if err != nil {
			log.Printf("bulk: merging group %d: %v", i+1, err)
			rep.Failed = append(rep.Failed, GroupError{Group: i, Err: err})
			continue
		}
		name := EntryName(i, format)
		fw, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return rep, err
		}
		if err := imagepkg.Encode(fw, canvas, format, quality); err != nil {
			// the entry is already open, so the archive cannot skip it cleanly
			zw.Close()
			return rep, GroupError{Group: i, Err: err}
		}
		rep.Files = append(rep.Files, name)
	}
	if err := zw.Close(); err != nil {
		return rep, err
	}
	return rep, nil
}
