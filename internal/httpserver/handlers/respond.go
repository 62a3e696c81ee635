package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
	"github.com/allocsoc/awesome-crawler/internal/logger"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, d deps.Deps, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, d deps.Deps, code int, detail string) {
	writeJSON(w, d, code, errorResponse{Detail: detail})
}

// requireData answers 503 and returns false while no snapshot is served.
func requireData(w http.ResponseWriter, d deps.Deps) bool {
	if d.MemoryIndex.Loaded() {
		return true
	}
	writeError(w, d, http.StatusServiceUnavailable, "Data not loaded")
	return false
}

// pageParams reads page and size from the query string. Missing values take
// the defaults; anything out of [1, maxSize] is rejected.
func pageParams(r *http.Request, defSize, maxSize int) (page, size int, detail string) {
	q := r.URL.Query()

	page, ok := intParam(q.Get("page"), 1)
	if !ok || page < 1 {
		return 0, 0, "page must be an integer >= 1"
	}
	size, ok = intParam(q.Get("size"), defSize)
	if !ok || size < 1 || size > maxSize {
		return 0, 0, "size must be an integer between 1 and " + strconv.Itoa(maxSize)
	}
	return page, size, ""
}

func intParam(v string, def int) (int, bool) {
	if v == "" {
		return def, true
	}
	i, err := strconv.Atoi(v)
	return i, err == nil
}
