package handlers

import (
	"net/http"

	"github.com/allocsoc/awesome-crawler/internal/domain"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
)

// Lucky returns one random list as a single-day timeline page.
func Lucky(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireData(w, d) {
			return
		}

		list, ok := d.MemoryIndex.RandomList(d.Pick)
		if !ok {
			writeError(w, d, http.StatusServiceUnavailable, "Data not loaded")
			return
		}

		writeJSON(w, d, http.StatusOK, timelineResponse{
			Timeline: []domain.Day{domain.ListDay(list, d.TimeNow().UTC())},
			Page:     domain.Page{Number: 1, Size: 1, Total: 1, TotalPages: 1},
		})
	}
}
