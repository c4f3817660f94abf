package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Router wires the API endpoints behind the standard middleware stack:
// request IDs, panic recovery, CORS, and a process-wide rate limit.
func (a *API) Router(limit rate.Limit, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimitMiddleware(limit, burst))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/allocate", a.Allocate)
		r.Post("/fairness", a.Fairness)
		r.Post("/optimize", a.Optimize)
		r.Post("/sensitivity", a.Sensitivity)
		r.Post("/audit", a.Audit)
		r.Get("/runs", a.ListRuns)
		r.Get("/runs/{id}", a.GetRun)
		r.Delete("/runs/{id}", a.DeleteRun)
	})
	return r
}

// rateLimitMiddleware applies a shared token bucket to every request.
func rateLimitMiddleware(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
