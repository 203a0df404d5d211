// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/app/handler"
	"github.com/skrylnikov/cutly/internal/app/service"
	"github.com/skrylnikov/cutly/internal/middleware"
)

// Init wires middleware and routes. The session middleware runs on every
// route so both creation policy and click attribution see the caller
// identity when one rides along.
func Init(logger *zap.Logger, useGzip bool, urlService *service.LinkService, auth *service.Auth, oidc *service.OIDC, defaultLength int) *chi.Mux {
	post := handler.NewPost(urlService, oidc, logger, defaultLength)
	get := handler.NewGet(urlService, logger)
	authHandler := handler.NewAuth(oidc, auth, logger)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithSession(auth))
	if useGzip {
		r.Use(middleware.WithGzip)
	}

	r.Post("/", post.PlainBody)
	r.Post("/api/shorten", post.JSON)
	r.Get("/ping", get.PingDB)

	r.Get("/api/auth/login", authHandler.Login)
	r.Get("/api/auth/callback", authHandler.Callback)
	r.Get("/api/auth/logout", authHandler.Logout)

	r.Get("/{shortID}", get.ByShort)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Short URL is required", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
