package handlers

import (
	"net/http"
	"strings"

	"github.com/allocsoc/awesome-crawler/internal/domain"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
	"github.com/allocsoc/awesome-crawler/internal/logger"
)

// Search ranks items against q. sort=date (default) orders matches newest
// first, sort=relevance by score.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, d, http.StatusBadRequest, "Search query cannot be empty")
			return
		}
		order, err := domain.ParseSortOrder(r.URL.Query().Get("sort"))
		if err != nil {
			writeError(w, d, http.StatusBadRequest, err.Error())
			return
		}
		page, size, detail := pageParams(r, defaultItemsSize, maxItemsSize)
		if detail != "" {
			writeError(w, d, http.StatusBadRequest, detail)
			return
		}
		if !requireData(w, d) {
			return
		}

		matches := domain.Search(d.MemoryIndex.Items(), query, order)
		d.Logger.Debug("search",
			logger.String("query", query),
			logger.String("sort", string(order)),
			logger.Int("matches", len(matches)))

		pageMatches, p := domain.Paginate(matches, page, size)
		items := make([]domain.Item, 0, len(pageMatches))
		for _, m := range pageMatches {
			items = append(items, m.Item)
		}
		writeJSON(w, d, http.StatusOK, itemsResponse{Items: items, Page: p})
	}
}
