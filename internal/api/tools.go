package api

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	imagepkg "github.com/youruser/photokit/internal/image"
	"github.com/youruser/photokit/internal/presets"
)

// resize: "width"/"height", or "percent", or a resize "preset" name.
// "keepAspect" derives the missing side from the source.
func (h *Handler) resizeHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	b := img.Bounds()
	w, err := formInt(c, "width", b.Dx())
	if err != nil {
		writeError(c, err)
		return
	}
	ht, err := formInt(c, "height", b.Dy())
	if err != nil {
		writeError(c, err)
		return
	}
	pct, err := formFloat(c, "percent", 0)
	if err != nil {
		writeError(c, err)
		return
	}
	keep, err := formBool(c, "keepAspect")
	if err != nil {
		writeError(c, err)
		return
	}
	if name := c.PostForm("preset"); name != "" {
		p, ok := presets.Find(h.presets, presets.KindResize, name)
		if !ok {
			writeError(c, badRequestf("unknown preset %q", name))
			return
		}
		w, ht, keep = p.Width, p.Height, false
	}

	var out *image.NRGBA
	switch {
	case pct > 0:
		out, err = imagepkg.ResizePercent(img, pct)
	case keep:
		out, err = imagepkg.ResizeKeepAspect(img, w, ht)
	default:
		out, err = imagepkg.Resize(img, w, ht)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, out, format, quality, "resized-image")
}

// compress re-encodes at the given quality (default jpg at 0.8) and reports
// both sizes.
func (h *Handler) compressHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.JPEG, 0.8)
	if err != nil {
		writeError(c, err)
		return
	}
	buf := new(bytes.Buffer)
	if err := imagepkg.Encode(buf, img, format, quality); err != nil {
		writeError(c, err)
		return
	}
	if fh, err := c.FormFile("image"); err == nil {
		c.Header("X-Original-Size", strconv.FormatInt(fh.Size, 10))
	}
	c.Header("X-Compressed-Size", strconv.Itoa(buf.Len()))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "compressed-image."+format.Extension()))
	c.Data(http.StatusOK, format.MIMEType(), buf.Bytes())
}

func (h *Handler) convertHandler(c *gin.Context) {
	if c.PostForm("format") == "" {
		writeError(c, badRequestf("format is required"))
		return
	}
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, img, format, quality, "converted-image")
}

func (h *Handler) cropHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	var r [4]int
	for i, key := range []string{"x", "y", "width", "height"} {
		if r[i], err = formInt(c, key, 0); err != nil {
			writeError(c, err)
			return
		}
	}
	out, err := imagepkg.Crop(img, image.Rect(r[0], r[1], r[0]+r[2], r[1]+r[3]))
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, out, format, quality, "cropped-image")
}

// split answers a zip with part-1 ... part-N in row-major order.
func (h *Handler) splitHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := formInt(c, "rows", 2)
	if err != nil {
		writeError(c, err)
		return
	}
	cols, err := formInt(c, "columns", 2)
	if err != nil {
		writeError(c, err)
		return
	}
	parts, err := imagepkg.Split(img, rows, cols)
	if err != nil {
		writeError(c, err)
		return
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for i, p := range parts {
		fw, err := zw.Create(fmt.Sprintf("part-%d.%s", i+1, format.Extension()))
		if err != nil {
			writeError(c, err)
			return
		}
		if err := imagepkg.Encode(fw, p, format, quality); err != nil {
			writeError(c, err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		writeError(c, err)
		return
	}
	c.Header("X-Parts", strconv.Itoa(len(parts)))
	c.Header("Content-Disposition", `attachment; filename="split-image.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (h *Handler) rotateHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	deg, err := formInt(c, "degrees", 0)
	if err != nil {
		writeError(c, err)
		return
	}
	flipH, err := formBool(c, "flipHorizontal")
	if err != nil {
		writeError(c, err)
		return
	}
	flipV, err := formBool(c, "flipVertical")
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := imagepkg.Rotate(img, deg, flipH, flipV)
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, out, format, quality, "rotated-image")
}

func (h *Handler) watermarkHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	opt := imagepkg.DefaultWatermarkOptions()
	if v := c.PostForm("kind"); v != "" {
		opt.Kind = imagepkg.WatermarkKind(v)
	}
	if v := c.PostForm("text"); v != "" {
		opt.Text = v
	}
	if v := c.PostForm("position"); v != "" {
		opt.Position = imagepkg.WatermarkPosition(v)
	}
	if v := c.PostForm("color"); v != "" {
		opt.Color = v
	}
	if opt.Opacity, err = formFloat(c, "opacity", opt.Opacity); err != nil {
		writeError(c, err)
		return
	}
	if opt.Size, err = formInt(c, "size", opt.Size); err != nil {
		writeError(c, err)
		return
	}
	out, err := imagepkg.Watermark(img, opt)
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, out, format, quality, "watermarked-image")
}

// remove-background always answers PNG so the cleared pixels survive.
func (h *Handler) removeBackgroundHandler(c *gin.Context) {
	img, err := formImage(c)
	if err != nil {
		writeError(c, err)
		return
	}
	threshold, err := formInt(c, "threshold", imagepkg.DefaultBrightnessThreshold)
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, imagepkg.RemoveBackground(img, threshold), imagepkg.PNG, 1, "no-background")
}
