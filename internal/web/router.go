package web

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/magpress/receipts/internal/auth"
	"github.com/magpress/receipts/internal/ratelimit"
	"github.com/magpress/receipts/internal/web/handlers"
	"github.com/magpress/receipts/internal/web/middleware"
)

// RouterDeps holds all dependencies needed to build the router.
type RouterDeps struct {
	AuthHandler *handlers.AuthHandler
	HomeHandler *handlers.HomeHandler
	SendHandler *handlers.SendHandler
	LogHandler  *handlers.LogHandler
	APIHandler  *handlers.APIHandler
	AuthService *auth.Service
	APILimiter  *ratelimit.Limiter
	StaticFS    fs.FS
}

// NewRouter wires all routes into a Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)

	// Serve static files
	fileServer := http.FileServer(http.FS(deps.StaticFS))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Public auth routes (with CSRF)
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.OptionalAuth(deps.AuthService))

		r.Get("/login", deps.AuthHandler.ShowLogin)
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.Post("/logout", deps.AuthHandler.HandleLogout)
	})

	// Authenticated dashboard routes (with CSRF + RequireAuth)
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth(deps.AuthService))

		r.Get("/", deps.HomeHandler.ShowIndex)
		r.Get("/send-single", deps.SendHandler.ShowSendSingle)
		r.Post("/send-single", deps.SendHandler.HandleSendSingle)
		r.Get("/send-bulk", deps.SendHandler.ShowSendBulk)
		r.Post("/send-bulk", deps.SendHandler.HandleSendBulk)
		r.Get("/log", deps.LogHandler.ShowLog)
		r.Get("/log/export.csv", deps.LogHandler.HandleExport)
	})

	// JSON API (rate limited, no CSRF; handlers enforce auth themselves)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.APILimiter))
		r.Use(middleware.OptionalAuth(deps.AuthService))

		r.Get("/api/health", deps.APIHandler.HandleHealth)
		r.Post("/api/send-email", deps.APIHandler.HandleSendEmail)
	})

	return r
}
