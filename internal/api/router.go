// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gokz/kz-api/internal/auth"
	"github.com/gokz/kz-api/internal/config"
	"github.com/gokz/kz-api/internal/gameserver"
	"github.com/gokz/kz-api/internal/middleware"
)

// NewRouter assembles the HTTP surface. The game-server upgrade endpoint is
// exempt from CORS and rate limiting; it is key-authenticated and not
// browser-facing.
func NewRouter(cfg *config.Config, sessions *auth.SessionManager, hub *gameserver.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	authHandler := NewAuthHandler(sessions)
	serversHandler := NewServersHandler(hub)

	r.Group(func(r chi.Router) {
		r.Use(corsHandler)
		r.Use(httprate.LimitByIP(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow))

		r.With(sessions.Middleware(auth.StrictnessRequireAuthentication, nil)).
			Get("/auth/session", authHandler.CurrentSession)
		r.With(sessions.Middleware(auth.StrictnessRequireAuthentication, nil)).
			Post("/auth/logout", authHandler.Logout)
		r.With(sessions.Middleware(auth.StrictnessRequireAuthentication, nil)).
			Post("/auth/logout/all", authHandler.LogoutAll)
	})

	r.Group(func(r chi.Router) {
		r.Use(corsHandler)
		r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))

		r.With(sessions.Middleware(
			auth.StrictnessRequireAuthorization,
			auth.RequirePermissions(auth.PermissionManageServers),
		)).Get("/servers", serversHandler.List)
	})

	// Game servers authenticate with an API key during the upgrade.
	r.Get("/servers/ws", hub.ServeHTTP)

	r.Get("/health", Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
