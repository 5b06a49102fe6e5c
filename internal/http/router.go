package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/theatre-reservations/internal/observability"
	"github.com/robertarktes/theatre-reservations/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))
		r.Use(RateLimitMiddleware(rl))

		r.Get("/v1/genres", h.ListGenres)
		r.Get("/v1/genres/{id}", h.GetGenre)
		r.Get("/v1/actors", h.ListActors)
		r.Get("/v1/actors/{id}", h.GetActor)
		r.Get("/v1/plays", h.ListPlays)
		r.Get("/v1/plays/{id}", h.GetPlay)
		r.Get("/v1/theatre-halls", h.ListHalls)
		r.Get("/v1/theatre-halls/{id}", h.GetHall)
		r.Get("/v1/performances", h.ListPerformances)
		r.Get("/v1/performances/{id}", h.GetPerformance)

		r.Get("/v1/reservations", h.ListReservations)
		r.Post("/v1/reservations", h.CreateReservation)

		r.Group(func(r chi.Router) {
			r.Use(AdminOnly)

			r.Post("/v1/genres", h.CreateGenre)
			r.Put("/v1/genres/{id}", h.UpdateGenre)
			r.Post("/v1/actors", h.CreateActor)
			r.Put("/v1/actors/{id}", h.UpdateActor)
			r.Post("/v1/plays", h.CreatePlay)
			r.Put("/v1/plays/{id}", h.UpdatePlay)
			r.Delete("/v1/plays/{id}", h.DeletePlay)
			r.Post("/v1/theatre-halls", h.CreateHall)
			r.Put("/v1/theatre-halls/{id}", h.UpdateHall)
			r.Delete("/v1/theatre-halls/{id}", h.DeleteHall)
			r.Post("/v1/performances", h.CreatePerformance)
			r.Put("/v1/performances/{id}", h.UpdatePerformance)
			r.Delete("/v1/performances/{id}", h.DeletePerformance)
			r.Post("/v1/performances/{id}/poster", h.UploadPoster)
		})
	})

	return r
}
