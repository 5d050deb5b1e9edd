package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/bands", handler.GetBands).Methods("GET")
	api.HandleFunc("/runs", handler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", handler.GetRun).Methods("GET")

	return r
}
