package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ibertrade/fmbridge/internal/config"
	"github.com/ibertrade/fmbridge/internal/middleware"
	syncpkg "github.com/ibertrade/fmbridge/internal/sync"
)

// Router wraps the mux router together with the sync service it
// exposes.
type Router struct {
	*mux.Router
	cfg *config.Config
	svc *syncpkg.Service
}

// NewRouter creates the HTTP surface: a health check, admin login and
// the protected sync trigger endpoints.
func NewRouter(cfg *config.Config, svc *syncpkg.Service) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		cfg:    cfg,
		svc:    svc,
	}

	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	api := r.PathPrefix("/api/sync").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))
	api.HandleFunc("/run", r.runSync).Methods("POST")
	api.HandleFunc("/pull", r.runPull).Methods("POST")
	api.HandleFunc("/push", r.runPush).Methods("POST")
	api.HandleFunc("/import", r.runImport).Methods("POST")
	api.HandleFunc("/bootstrap", r.runBootstrap).Methods("POST")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
