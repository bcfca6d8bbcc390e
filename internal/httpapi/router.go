// Package httpapi serves the form generator over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// LegacyGeneratePath is where the existing application page posts to.
const LegacyGeneratePath = "/.netlify/functions/generate"

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger      *zap.Logger
	MaxBodySize int64
}

// NewRouter wires the middleware chain and routes.
func NewRouter(service FormService, opts RouterOptions) http.Handler {
	h := NewHandlers(service)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(RequestLoggerMiddleware(opts.Logger))
	r.Use(RecoveryMiddleware)

	r.Get("/healthz", h.Healthz)
	r.Get("/plans", h.Plans)
	r.Get("/notes", h.Notes)

	r.Group(func(r chi.Router) {
		r.Use(BodyLimitMiddleware(opts.MaxBodySize))
		r.Post("/generate", h.Generate)
		r.Post(LegacyGeneratePath, h.Generate)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
