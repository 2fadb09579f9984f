package imagepkg

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/youruser/photokit/internal/util"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is one not-yet-decoded input image.
type Source struct {
	Name string
	Open func(ctx context.Context) (io.ReadCloser, error)
}

func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func(context.Context) (io.ReadCloser, error) { return os.Open(path) },
	}
}

func BytesSource(name string, b []byte) Source {
	return Source{
		Name: name,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

func URLSource(url string) Source {
	return Source{
		Name: url,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			b, err := util.GetBytes(ctx, url)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// Decode reads one image, applying any EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

// DownloadImage downloads an image from url and decodes it.
func DownloadImage(ctx context.Context, url string) (image.Image, error) {
	imgs, err := DecodeAll(ctx, []Source{URLSource(url)})
	if err != nil {
		return nil, err
	}
	return imgs[0], nil
}

// DecodeAll decodes sources concurrently. The result is in input order no
// matter which decode finishes first. The first failure cancels the others
// and is returned as a *DecodeError.
func DecodeAll(ctx context.Context, sources []Source) ([]image.Image, error) {
	out := make([]image.Image, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			img, err := decodeSource(ctx, src)
			if err != nil {
				return &DecodeError{Index: i, Name: src.Name, Err: err}
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeSource(ctx context.Context, src Source) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, err := Decode(rc)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &InvalidDimensionError{What: "image", Index: -1, Width: b.Dx(), Height: b.Dy()}
	}
	return img, nil
}
