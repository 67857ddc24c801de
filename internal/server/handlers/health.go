package handlers

import (
	"net/http"
	"time"

	"github.com/kodepos-id/kodepos/internal/server/response"
)

// HandleHealth handles GET /health (liveness probe).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "kodepos-api",
		"version": h.version,
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once a
// non-empty dataset is indexed.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.index == nil || h.index.Len() == 0 {
		response.ServiceUnavailable(w, "Dataset not loaded")
		return
	}
	response.OK(w, map[string]any{
		"status":   "ready",
		"villages": h.index.Len(),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	})
}
