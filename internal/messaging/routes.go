// internal/messaging/routes.go

package messaging

import (
    "net/http"

    "github.com/gorilla/mux"

    "github.com/amoradating/amora-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    // WebSocket endpoint; the token may arrive via query parameter
    router.Handle("/ws", authMiddleware.Authenticate(http.HandlerFunc(handler.HandleWebSocket))).Methods("GET")

    api := router.PathPrefix("/api/v1/messages").Subrouter()
    api.Use(authMiddleware.Authenticate)

    // Messages
    api.HandleFunc("", handler.SendMessage).Methods("POST")
    api.HandleFunc("/matches/{id:[0-9]+}", handler.GetMessages).Methods("GET")
    api.HandleFunc("/seen", handler.MarkSeen).Methods("POST")
    api.HandleFunc("/typing", handler.Typing).Methods("POST")
    api.HandleFunc("/{id:[0-9]+}", handler.DeleteMessage).Methods("DELETE")

    // Blocking
    api.HandleFunc("/block/{userId:[0-9]+}", handler.BlockUser).Methods("POST")
    api.HandleFunc("/unblock/{userId:[0-9]+}", handler.UnblockUser).Methods("POST")

    // Push tokens
    api.HandleFunc("/push-tokens", handler.RegisterPushToken).Methods("POST")
    api.HandleFunc("/push-tokens/{token}", handler.UnregisterPushToken).Methods("DELETE")

    // Media upload
    api.HandleFunc("/upload", handler.UploadMedia).Methods("POST")
}
