package api

import (
	"image"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/youruser/photokit/internal/bulk"
	imagepkg "github.com/youruser/photokit/internal/image"
	"github.com/youruser/photokit/internal/presets"
	"github.com/youruser/photokit/internal/session"
)

// Handler carries what the routes need.
type Handler struct {
	presets   []presets.Preset
	sessions  *session.Store
	maxUpload int64
}

func NewHandler(ps []presets.Preset, sessions *session.Store, maxUpload int64) *Handler {
	return &Handler{presets: ps, sessions: sessions, maxUpload: maxUpload}
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) presetsHandler(c *gin.Context) {
	opt := presets.FilterOptions{FreeWords: c.Query("q")}
	if v := c.Query("kind"); v != "" {
		opt.Kinds = strings.Split(v, ",")
	}
	if v := c.Query("orientation"); v != "" {
		opt.Orientations = strings.Split(v, ",")
	}
	out := presets.Filter(h.presets, opt)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "presets": out})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	size, err := formInt(c, "size", 400)
	if err != nil {
		writeError(c, err)
		return
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// merge: multipart "images" files in draw order, optional "config" JSON,
// "preset", "format" and "quality".
func (h *Handler) mergeHandler(c *gin.Context) {
	cfg, err := h.layoutConfig(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	imgs, _, err := formImages(c, "images")
	if err != nil {
		writeError(c, err)
		return
	}
	canvas, _, err := imagepkg.Composite(imgs, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	writeImage(c, canvas, format, quality, "merged-image")
}

type layoutRequest struct {
	Sizes []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"sizes"`
	Config *imagepkg.LayoutConfig `json:"config"`
}

// layout answers the canvas size and placements without drawing anything.
func (h *Handler) layoutHandler(c *gin.Context) {
	req := layoutRequest{Config: ptr(imagepkg.DefaultConfig())}
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.Config == nil {
		req.Config = ptr(imagepkg.DefaultConfig())
	}
	sizes := make([]image.Point, len(req.Sizes))
	for i, s := range req.Sizes {
		sizes[i] = image.Pt(s.Width, s.Height)
	}
	l, err := imagepkg.ComputeLayout(sizes, *req.Config)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// bulk: files under group1, group2, ... are merged separately and returned
// as a zip archive.
func (h *Handler) bulkHandler(c *gin.Context) {
	cfg, err := h.layoutConfig(c)
	if err != nil {
		writeError(c, err)
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, badRequestf("multipart form: %w", err))
		return
	}

	byIndex := map[int]string{}
	for key := range form.File {
		n, ok := groupIndex(key)
		if ok {
			byIndex[n] = key
		}
	}
	if len(byIndex) == 0 {
		writeError(c, imagepkg.ErrEmptyInput)
		return
	}
	indexes := make([]int, 0, len(byIndex))
	for n := range byIndex {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	// Groups are decoded one by one while the archive streams; an unreadable
	// upload fails its own group only.
	groups := make([][]imagepkg.Source, indexes[len(indexes)-1])
	for _, n := range indexes {
		groups[n-1] = uploadSources(form.File[byIndex[n]])
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="merged-images.zip"`)
	c.Status(http.StatusOK)
	rep, err := bulk.MergeSources(c.Request.Context(), groups, cfg, format, quality, c.Writer)
	if err != nil {
		// headers are gone; the truncated archive is all the client gets
		c.Error(err)
		return
	}
	if len(rep.Failed) > 0 {
		c.Error(rep.Failed[0])
	}
}

const maxGroups = 256

// groupIndex parses "group3" or "group3[]" into 3.
func groupIndex(key string) (int, bool) {
	key = strings.TrimSuffix(key, "[]")
	if !strings.HasPrefix(key, "group") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(key, "group"))
	if err != nil || n < 1 || n > maxGroups {
		return 0, false
	}
	return n, true
}

func ptr[T any](v T) *T { return &v }
