/**
 * @description
 * This file sets up the HTTP router for the portal using the go-chi/chi
 * router. It defines the API routes, applies middleware for logging, CORS,
 * authentication, and rate limiting, and maps the routes to their handlers.
 *
 * Mutation endpoints and member reads run behind separate fixed-window rate
 * limiters so one class of traffic cannot starve the other.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/middleware"
)

// NewRouter creates a new Chi router and registers the portal routes.
func NewRouter(h *Handler, jwtSecret string, mutationLimiter, readLimiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limitMutations := middleware.RateLimitMiddleware(mutationLimiter)
	limitReads := middleware.RateLimitMiddleware(readLimiter)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Portal is healthy"))
	})

	// Public routes
	r.Get("/content", h.handleGetContent)
	r.Get("/memberships", h.handleGetMemberships)
	r.Get("/events", h.handleListEvents)
	r.Get("/waivers", h.handleListWaivers)
	r.Get("/coaches", h.handleListCoaches)
	r.With(limitMutations).Post("/auth/login", h.handleLogin)

	// Member routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.With(limitReads).Get("/member/me", h.handleMe)
		r.With(limitReads).Get("/waivers/signatures", h.handleGetSignatures)

		r.With(limitMutations).Post("/member/bookings", h.handleCreateBooking)
		r.With(limitMutations).Post("/member/bookings/cancel", h.handleCancelBooking)
		r.With(limitMutations).Post("/waivers/signatures", h.handleSignWaiver)
		r.With(limitMutations).Post("/member/billing-portal", h.handleBillingPortal)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))
		r.Use(RequireRole(RoleAdmin))
		r.Use(limitMutations)

		r.Put("/admin/pricing", h.handleReplaceMemberships)
		r.Put("/admin/content", h.handleUpdateContent)
		r.Put("/admin/coaches", h.handleReplaceCoaches)
	})

	return r
}
