package handlers

import (
	"net/http"

	"github.com/kodepos-id/kodepos/internal/server/response"
)

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	s := h.index.Stats()
	response.OK(w, map[string]any{
		"total":            s.Total,
		"assigned":         s.Assigned(),
		"by_status":        s.ByStatus,
		"by_source":        s.BySource,
		"coverage_percent": s.CoveragePercent(),
	})
}

// HandleCoverage handles GET /api/v1/coverage.
func (h *Handlers) HandleCoverage(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.index.Coverage())
}
