package imagepkg

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestResizeVariants(t *testing.T) {
	src := solid(200, 100, red)

	out, err := ResizePercent(src, 50)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != image.Pt(100, 50) {
		t.Errorf("50%% = %v", out.Bounds().Size())
	}

	out, err = ResizeKeepAspect(src, 80, 100)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != image.Pt(80, 40) {
		t.Errorf("keep aspect by width = %v", out.Bounds().Size())
	}

	out, err = ResizeKeepAspect(src, 200, 30)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != image.Pt(60, 30) {
		t.Errorf("keep aspect by height = %v", out.Bounds().Size())
	}

	var dimErr *InvalidDimensionError
	if _, err := Resize(src, 0, 10); !errors.As(err, &dimErr) {
		t.Errorf("zero width: got %v", err)
	}
	if _, err := Resize(src, 1<<20, 1<<20); !errors.As(err, &dimErr) {
		t.Errorf("oversized resize: got %v", err)
	}
	if _, err := ResizePercent(src, 1e12); !errors.As(err, &dimErr) {
		t.Errorf("oversized percent: got %v", err)
	}
	if _, err := ResizePercent(src, -50); !errors.As(err, &dimErr) {
		t.Errorf("negative percent: got %v", err)
	}
	if _, err := ResizeKeepAspect(src, 1<<30, 10); !errors.As(err, &dimErr) {
		t.Errorf("oversized keep aspect: got %v", err)
	}
}

func TestCrop(t *testing.T) {
	src := solid(50, 40, green)
	out, err := Crop(src, image.Rect(40, 30, 80, 80))
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != image.Pt(10, 10) {
		t.Errorf("clipped crop = %v", out.Bounds().Size())
	}
	if _, err := Crop(src, image.Rect(60, 60, 70, 70)); err == nil {
		t.Error("crop outside image succeeded")
	}
}

func TestSplit(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 60))
	src.SetNRGBA(99, 59, red)
	src.SetNRGBA(34, 0, blue)
	parts, err := Split(src, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 6 {
		t.Fatalf("got %d parts", len(parts))
	}
	for i, p := range parts {
		if p.Bounds().Size() != image.Pt(33, 30) {
			t.Errorf("part %d size = %v", i, p.Bounds().Size())
		}
	}
	if got := parts[1].NRGBAAt(1, 0); got != blue {
		t.Errorf("part 1 origin pixel = %v, want blue", got)
	}
	if _, err := Split(src, 0, 2); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero rows: got %v", err)
	}
}

func TestRotate(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(0, 0, red)

	out, err := Rotate(src, 90, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != image.Pt(2, 4) {
		t.Fatalf("rotated size = %v", out.Bounds().Size())
	}
	// clockwise: top-left moves to top-right
	if got := out.NRGBAAt(1, 0); got != red {
		t.Errorf("rotated corner = %v, want red", got)
	}

	out, err = Rotate(src, 0, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.NRGBAAt(3, 0); got != red {
		t.Errorf("flipped corner = %v, want red", got)
	}

	out, err = Rotate(src, -90, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.NRGBAAt(0, 0); got != red {
		t.Errorf("rotated -90 and flipped corner = %v, want red", got)
	}

	if _, err := Rotate(src, 45, false, false); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("45 degrees: got %v", err)
	}
}

func TestRemoveBackground(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	src.SetNRGBA(0, 0, white)
	src.SetNRGBA(1, 0, color.NRGBA{R: 241, G: 240, B: 240, A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	out := RemoveBackground(src, DefaultBrightnessThreshold)
	for x, wantA := range []uint8{0, 0, 255} {
		if got := out.NRGBAAt(x, 0).A; got != wantA {
			t.Errorf("pixel %d alpha = %d, want %d", x, got, wantA)
		}
	}
	if src.NRGBAAt(0, 0).A != 255 {
		t.Error("source image modified")
	}
}

func TestWatermarkText(t *testing.T) {
	src := solid(400, 200, color.NRGBA{A: 255})
	opt := DefaultWatermarkOptions()
	opt.Opacity = 1
	out, err := Watermark(src, opt)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
	changed := 0
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			if out.NRGBAAt(x, y).R > 0 {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Error("no watermark pixels drawn")
	}
	if out.NRGBAAt(5, 5).R != 0 {
		t.Error("corner pixel touched by centered watermark")
	}
}

func TestWatermarkQR(t *testing.T) {
	src := solid(300, 300, red)
	out, err := Watermark(src, WatermarkOptions{
		Kind:     WatermarkQR,
		Text:     "https://example.com/photo/1",
		Position: PosBottomRight,
		Opacity:  1,
		Size:     100,
	})
	if err != nil {
		t.Fatal(err)
	}
	// the QR quiet zone is white
	if got := out.NRGBAAt(300-WatermarkMargin-2, 300-WatermarkMargin-2); got != white {
		t.Errorf("qr quiet zone = %v, want white", got)
	}
	if got := out.NRGBAAt(10, 10); got != red {
		t.Errorf("outside qr = %v, want red", got)
	}
}

func TestWatermarkRejectsEmptyText(t *testing.T) {
	opt := DefaultWatermarkOptions()
	opt.Text = ""
	if _, err := Watermark(imaging.New(10, 10, red), opt); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("got %v", err)
	}
}
