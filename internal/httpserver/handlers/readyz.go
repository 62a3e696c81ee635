package handlers

import (
	"net/http"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
	Items int  `json:"items"`
}

// Readyz reports 503 until a snapshot with items is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		resp := readyzResponse{
			Ready: d.MemoryIndex.Loaded(),
			Items: d.MemoryIndex.Count(),
		}
		code := http.StatusOK
		if !resp.Ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, d, code, resp)
	}
}
