package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	imagepkg "github.com/youruser/photokit/internal/image"
	"github.com/youruser/photokit/internal/session"
)

// previewTimeout bounds how long a preview request waits for rendering.
const previewTimeout = 30 * time.Second

type imageView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type sessionView struct {
	ID      string                `json:"id"`
	Images  []imageView           `json:"images"`
	Options imagepkg.LayoutConfig `json:"options"`
	CanUndo bool                  `json:"canUndo"`
	CanRedo bool                  `json:"canRedo"`
}

func viewOf(s *session.Session) sessionView {
	st := s.Snapshot()
	v := sessionView{
		ID:      s.ID,
		Images:  make([]imageView, len(st.Images)),
		Options: st.Options,
		CanUndo: s.CanUndo(),
		CanRedo: s.CanRedo(),
	}
	for i, e := range st.Images {
		v.Images[i] = imageView{ID: e.ID, Name: e.Name, Width: e.Width(), Height: e.Height()}
	}
	return v
}

// lookup resolves :id or answers 404.
func (h *Handler) lookup(c *gin.Context) (*session.Session, *session.Previewer, bool) {
	s, p, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
	return s, p, ok
}

func (h *Handler) createSession(c *gin.Context) {
	s, _, err := h.sessions.Create()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(s))
}

func (h *Handler) getSession(c *gin.Context) {
	if s, _, ok := h.lookup(c); ok {
		c.JSON(http.StatusOK, viewOf(s))
	}
}

func (h *Handler) deleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// addSessionImages appends the uploaded "images" in upload order.
func (h *Handler) addSessionImages(c *gin.Context) {
	s, _, ok := h.lookup(c)
	if !ok {
		return
	}
	imgs, names, err := formImages(c, "images")
	if err != nil {
		writeError(c, err)
		return
	}
	for i, img := range imgs {
		s.AddImage(session.Entry{Name: names[i], Image: img})
	}
	c.JSON(http.StatusOK, viewOf(s))
}

func (h *Handler) removeSessionImage(c *gin.Context) {
	s, _, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := s.RemoveImage(c.Param("imageID")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}

func (h *Handler) reorderSession(c *gin.Context) {
	s, _, ok := h.lookup(c)
	if !ok {
		return
	}
	var req struct {
		From *int `json:"from" binding:"required"`
		To   *int `json:"to" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if err := s.Reorder(*req.From, *req.To); err != nil {
		writeError(c, badRequest{err})
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}

// updateSessionOptions merges a partial LayoutConfig JSON into the options.
func (h *Handler) updateSessionOptions(c *gin.Context) {
	s, _, ok := h.lookup(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, badRequestf("read body: %w", err))
		return
	}
	err = s.UpdateOptions(func(cfg *imagepkg.LayoutConfig) error {
		if err := json.Unmarshal(body, cfg); err != nil {
			return badRequestf("options: %v", err)
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}

func (h *Handler) undoSession(c *gin.Context) {
	if s, _, ok := h.lookup(c); ok {
		s.Undo()
		c.JSON(http.StatusOK, viewOf(s))
	}
}

func (h *Handler) redoSession(c *gin.Context) {
	if s, _, ok := h.lookup(c); ok {
		s.Redo()
		c.JSON(http.StatusOK, viewOf(s))
	}
}

// previewSession waits for the debounced render of the latest change.
func (h *Handler) previewSession(c *gin.Context) {
	_, p, ok := h.lookup(c)
	if !ok {
		return
	}
	format, quality, err := outputFormat(c, imagepkg.PNG, imagepkg.DefaultQuality)
	if err != nil {
		writeError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), previewTimeout)
	defer cancel()
	pv, err := p.Await(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	if pv.Err != nil {
		writeError(c, pv.Err)
		return
	}
	writeImage(c, pv.Canvas, format, quality, "merged-image")
}
