package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/youruser/photokit/internal/api"
	"github.com/youruser/photokit/internal/config"
	"github.com/youruser/photokit/internal/presets"
	"github.com/youruser/photokit/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Custom presets are best-effort; the builtins always load.
	ps, err := presets.LoadFromDataDir(cfg.DataDir)
	if err != nil {
		log.Println("Warning: failed to load custom presets:", err)
	}

	store := session.NewStore(cfg.HistoryLimit, cfg.PreviewDebounce, nil,
		session.WithMaxSessions(cfg.MaxSessions),
		session.WithIdleTimeout(cfg.SessionIdleTimeout),
	)
	go store.Run(context.Background(), time.Minute)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	api.RegisterRoutes(r, api.NewHandler(ps, store, cfg.MaxUploadBytes))

	log.Println("starting server on http://localhost:" + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
