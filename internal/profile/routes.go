// internal/profile/routes.go

package profile

import (
    "github.com/gorilla/mux"

    "github.com/amoradating/amora-backend/internal/auth"
)

// RegisterRoutes registers all profile routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/profile").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("", handler.CreateProfile).Methods("POST")
    api.HandleFunc("", handler.GetMyProfile).Methods("GET")
    api.HandleFunc("", handler.UpdateProfile).Methods("PUT", "PATCH")
    api.HandleFunc("/media", handler.SetMedia).Methods("PUT")
    api.HandleFunc("/pause", handler.PauseProfile).Methods("POST")
    api.HandleFunc("/resume", handler.ResumeProfile).Methods("POST")

    users := router.PathPrefix("/api/v1/users").Subrouter()
    users.Use(authMiddleware.Authenticate)
    users.HandleFunc("/{id:[0-9]+}/profile", handler.GetUserProfile).Methods("GET")
}
