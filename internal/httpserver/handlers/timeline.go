package handlers

import (
	"net/http"

	"github.com/allocsoc/awesome-crawler/internal/domain"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
)

const (
	defaultTimelineSize = 10
	maxTimelineSize     = 50
	defaultItemsSize    = 20
	maxItemsSize        = 100
)

type timelineResponse struct {
	Timeline []domain.Day `json:"timeline"`
	domain.Page
}

type itemsResponse struct {
	Items []domain.Item `json:"items"`
	domain.Page
}

// Timeline pages through the day groups, newest day first.
func Timeline(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size, detail := pageParams(r, defaultTimelineSize, maxTimelineSize)
		if detail != "" {
			writeError(w, d, http.StatusBadRequest, detail)
			return
		}
		if !requireData(w, d) {
			return
		}

		days, p := domain.Paginate(d.MemoryIndex.Timeline(), page, size)
		writeJSON(w, d, http.StatusOK, timelineResponse{Timeline: days, Page: p})
	}
}

// Items pages through all items, newest first.
func Items(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size, detail := pageParams(r, defaultItemsSize, maxItemsSize)
		if detail != "" {
			writeError(w, d, http.StatusBadRequest, detail)
			return
		}
		if !requireData(w, d) {
			return
		}

		items, p := domain.Paginate(d.MemoryIndex.Items(), page, size)
		writeJSON(w, d, http.StatusOK, itemsResponse{Items: items, Page: p})
	}
}
