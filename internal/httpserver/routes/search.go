package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/handlers"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/mw"
)

func init() { Register(registerSearch) }

// search and lucky share one limiter.
func registerSearch(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(d.RateLimit))
	limited.Get(APIPrefix+"/search", handlers.Search(d))
	limited.Get(APIPrefix+"/lucky", handlers.Lucky(d))
}
