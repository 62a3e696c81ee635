package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/handlers"
)

func init() { Register(registerTimeline) }

func registerTimeline(r chi.Router, d deps.Deps) {
	r.Get(APIPrefix+"/timeline", handlers.Timeline(d))
	r.Get(APIPrefix+"/items", handlers.Items(d))
}
