// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quick-points/cliparse"
	"github.com/danielhkuo/quick-points/coordinator"
	"github.com/danielhkuo/quick-points/handlers"
	"github.com/danielhkuo/quick-points/middleware"
)

func NewRouter(coord *coordinator.Coordinator, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(coord, cfg)
	estimateHandler := handlers.NewEstimateHandler(coord, cfg)
	userHandler := handlers.NewUserHandler(coord, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.Create))
	mux.HandleFunc("GET /sessions/{token}", middleware.WithLogging(sessionHandler.Get))
	mux.HandleFunc("DELETE /sessions/{token}", middleware.WithLogging(sessionHandler.Delete))

	// Estimation round (public, share token gated)
	mux.HandleFunc("POST /sessions/{token}/estimates", middleware.WithLogging(estimateHandler.Submit))

	// Owner controls (X-Owner-Token gated)
	mux.HandleFunc("POST /sessions/{token}/reveal", middleware.WithLogging(sessionHandler.ToggleReveal))
	mux.HandleFunc("POST /sessions/{token}/finalize", middleware.WithLogging(sessionHandler.Finalize))

	// Users and listings
	mux.HandleFunc("POST /users", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /users/{id}/sessions", middleware.WithLogging(userHandler.Sessions))
	mux.HandleFunc("GET /projects/{id}/sessions", middleware.WithLogging(sessionHandler.ProjectSessions))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quick-points API v1"))
	})

	return mux
}
