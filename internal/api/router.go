package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/resourcehub/engine/internal/api/handlers"
	mw "github.com/resourcehub/engine/internal/api/middleware"
)

type Dependencies struct {
	HealthHandler    *handlers.HealthHandler
	ResourcesHandler *handlers.ResourcesHandler
	RateLimitRPS     float64
	RateLimitBurst   int
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	r.Use(chimid.Compress(5))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/resources", func(rr chi.Router) {
			rr.Get("/", dep.ResourcesHandler.List)
			rr.Post("/", dep.ResourcesHandler.Create)
			rr.Post("/bulk", dep.ResourcesHandler.BulkCreate)
			// static route must sit above the {id} pattern
			rr.Get("/statistics", dep.ResourcesHandler.Statistics)
			rr.Get("/{id}", dep.ResourcesHandler.Get)
			rr.Put("/{id}", dep.ResourcesHandler.Update)
			rr.Delete("/{id}", dep.ResourcesHandler.Delete)
		})
	})

	return r
}
