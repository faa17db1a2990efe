/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/attendance/*   Shift events and record queries
  /api/payroll/*      Payroll lines
  /api/employees/*    Employee management
  /api/admin/*        Manual overrides and settings

SECURITY NOTE:
  Authentication lives in upstream middleware; this layer only reads the
  already-verified actor headers and applies the capability predicate.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID", "X-Actor-Role"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Shift events and record queries
		r.Route("/attendance", func(r chi.Router) {
			r.Post("/{id}/check-in", h.CheckIn)
			r.Post("/{id}/break-start", h.BreakStart)
			r.Post("/{id}/break-end", h.BreakEnd)
			r.Post("/{id}/check-out", h.CheckOut)
			r.Get("/{id}/today", h.GetToday)
			r.Get("/{id}", h.ListRecords)
		})

		// Payroll
		r.Route("/payroll", func(r chi.Router) {
			r.Get("/", h.GetPayrollAll)
			r.Get("/{id}", h.GetPayroll)
		})

		// Employees
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Post("/attendance", h.ManualSet)
			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.PutSettings)
		})
	})

	return r
}
