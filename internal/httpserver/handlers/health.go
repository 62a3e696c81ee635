package handlers

import (
	"net/http"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
)

type healthResponse struct {
	Status      string     `json:"status"`
	DataLoaded  bool       `json:"data_loaded"`
	TotalItems  int        `json:"total_items"`
	LastUpdated *time.Time `json:"last_updated"`
}

// Health always answers 200 and tells whether data is loaded.
func Health(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := d.MemoryIndex.Stats()
		resp := healthResponse{
			Status:     "healthy",
			DataLoaded: d.MemoryIndex.Loaded(),
			TotalItems: stats.Items,
		}
		if !stats.LastUpdated.IsZero() {
			resp.LastUpdated = &stats.LastUpdated
		}
		writeJSON(w, d, http.StatusOK, resp)
	}
}
