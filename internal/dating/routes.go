// internal/dating/routes.go

package dating

import (
    "github.com/gorilla/mux"

    "github.com/amoradating/amora-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/dating").Subrouter()
    api.Use(authMiddleware.Authenticate)

    // Discovery
    api.HandleFunc("/discover", handler.Discover).Methods("GET")
    api.HandleFunc("/compatibility/{userId:[0-9]+}", handler.GetCompatibility).Methods("GET")

    // Swipes
    api.HandleFunc("/like", handler.Like).Methods("POST")
    api.HandleFunc("/pass", handler.Pass).Methods("POST")
    api.HandleFunc("/undo", handler.Undo).Methods("POST")
    api.HandleFunc("/passes/reset", handler.ResetPasses).Methods("POST")
    api.HandleFunc("/quota", handler.GetQuota).Methods("GET")

    // Matches
    api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
    api.HandleFunc("/matches/{id:[0-9]+}/unmatch", handler.Unmatch).Methods("POST")

    // Boosts
    api.HandleFunc("/boost", handler.CreateBoost).Methods("POST")
    api.HandleFunc("/boost", handler.GetBoost).Methods("GET")
}
