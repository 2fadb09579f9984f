package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	imagepkg "github.com/youruser/photokit/internal/image"
	"github.com/youruser/photokit/internal/presets"
	"github.com/youruser/photokit/internal/session"
)

// badRequest marks errors caused by malformed request parameters.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func badRequestf(format string, args ...any) error {
	return badRequest{fmt.Errorf(format, args...)}
}

func statusOf(err error) int {
	var (
		br     badRequest
		dimErr *imagepkg.InvalidDimensionError
		decErr *imagepkg.DecodeError
		encErr *imagepkg.EncodeError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &br),
		errors.Is(err, imagepkg.ErrEmptyInput),
		errors.Is(err, imagepkg.ErrInvalidConfig),
		errors.Is(err, session.ErrNoPreview),
		errors.As(err, &dimErr),
		errors.As(err, &decErr):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.As(err, &encErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Println("request failed:", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func writeImage(c *gin.Context, img image.Image, f imagepkg.Format, quality float64, name string) {
	buf := new(bytes.Buffer)
	if err := imagepkg.Encode(buf, img, f, quality); err != nil {
		writeError(c, err)
		return
	}
	b := img.Bounds()
	c.Header("X-Image-Width", strconv.Itoa(b.Dx()))
	c.Header("X-Image-Height", strconv.Itoa(b.Dy()))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+f.Extension()))
	c.Data(http.StatusOK, f.MIMEType(), buf.Bytes())
}

func formInt(c *gin.Context, key string, def int) (int, error) {
	v := c.PostForm(key)
	if v == "" {
		v = c.Query(key)
	}
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequestf("%s: %v", key, err)
	}
	return n, nil
}

func formFloat(c *gin.Context, key string, def float64) (float64, error) {
	v := c.PostForm(key)
	if v == "" {
		v = c.Query(key)
	}
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, badRequestf("%s: %v", key, err)
	}
	return f, nil
}

func formBool(c *gin.Context, key string) (bool, error) {
	v := c.PostForm(key)
	if v == "" {
		v = c.Query(key)
	}
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequestf("%s: %v", key, err)
	}
	return b, nil
}

// outputFormat reads "format" and "quality", falling back to def.
func outputFormat(c *gin.Context, def imagepkg.Format, defQuality float64) (imagepkg.Format, float64, error) {
	f := def
	if v := c.DefaultPostForm("format", c.Query("format")); v != "" {
		var err error
		if f, err = imagepkg.ParseFormat(v); err != nil {
			return "", 0, badRequest{err}
		}
	}
	q, err := formFloat(c, "quality", defQuality)
	if err != nil {
		return "", 0, err
	}
	if q < 0 || q > 1 {
		return "", 0, badRequestf("quality must be within [0,1], got %v", q)
	}
	return f, q, nil
}

// layoutConfig reads the "config" JSON field over the defaults and applies a
// named merge preset from "preset" as the aspect ratio.
func (h *Handler) layoutConfig(c *gin.Context) (imagepkg.LayoutConfig, error) {
	cfg := imagepkg.DefaultConfig()
	if raw := c.PostForm("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return cfg, badRequestf("config: %v", err)
		}
	}
	if name := c.PostForm("preset"); name != "" {
		p, ok := presets.Find(h.presets, presets.KindMerge, name)
		if !ok {
			return cfg, badRequestf("unknown preset %q", name)
		}
		cfg.AspectRatio = p.AspectRatio()
	}
	return cfg, cfg.Validate()
}

func uploadSources(files []*multipart.FileHeader) []imagepkg.Source {
	out := make([]imagepkg.Source, len(files))
	for i, fh := range files {
		fh := fh
		out[i] = imagepkg.Source{
			Name: fh.Filename,
			Open: func(context.Context) (io.ReadCloser, error) { return fh.Open() },
		}
	}
	return out
}

// formImages decodes the files uploaded under field, in upload order.
func formImages(c *gin.Context, field string) ([]image.Image, []string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, badRequestf("multipart form: %w", err)
	}
	files := form.File[field]
	if len(files) == 0 {
		files = form.File[field+"[]"]
	}
	if len(files) == 0 {
		return nil, nil, imagepkg.ErrEmptyInput
	}
	names := make([]string, len(files))
	for i, fh := range files {
		names[i] = fh.Filename
	}
	imgs, err := imagepkg.DecodeAll(c.Request.Context(), uploadSources(files))
	return imgs, names, err
}

// formImage decodes the single file uploaded as "image".
func formImage(c *gin.Context) (image.Image, error) {
	imgs, _, err := formImages(c, "image")
	if err != nil {
		return nil, err
	}
	if len(imgs) != 1 {
		return nil, badRequestf("expected one image, got %d", len(imgs))
	}
	return imgs[0], nil
}
