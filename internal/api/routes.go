package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	api.Use(limitBody(h.maxUpload))
	{
		api.GET("/health", health)
		api.GET("/presets", h.presetsHandler)
		api.GET("/qr", qrHandler)

		api.POST("/merge", h.mergeHandler)
		api.POST("/merge/layout", h.layoutHandler)
		api.POST("/merge/bulk", h.bulkHandler)

		tools := api.Group("/tools")
		tools.POST("/resize", h.resizeHandler)
		tools.POST("/compress", h.compressHandler)
		tools.POST("/convert", h.convertHandler)
		tools.POST("/crop", h.cropHandler)
		tools.POST("/split", h.splitHandler)
		tools.POST("/rotate", h.rotateHandler)
		tools.POST("/watermark", h.watermarkHandler)
		tools.POST("/remove-background", h.removeBackgroundHandler)

		s := api.Group("/sessions")
		s.POST("", h.createSession)
		s.GET("/:id", h.getSession)
		s.DELETE("/:id", h.deleteSession)
		s.POST("/:id/images", h.addSessionImages)
		s.DELETE("/:id/images/:imageID", h.removeSessionImage)
		s.POST("/:id/reorder", h.reorderSession)
		s.PATCH("/:id/options", h.updateSessionOptions)
		s.POST("/:id/undo", h.undoSession)
		s.POST("/:id/redo", h.redoSession)
		s.GET("/:id/preview", h.previewSession)
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
