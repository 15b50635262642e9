// internal/messaging/handlers.go

package messaging

import (
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/gorilla/mux"
    "github.com/gorilla/websocket"

    "github.com/amoradating/amora-backend/internal/common/utils"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin: func(r *http.Request) bool {
        // Configure CORS as needed
        return true
    },
}

type Handler struct {
    service Service
    hub     *Hub
    storage StorageService
}

func NewHandler(service Service, hub *Hub, storage StorageService) *Handler {
    return &Handler{
        service: service,
        hub:     hub,
        storage: storage,
    }
}

// HandleWebSocket upgrades the connection and hands it to the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
    userID, ok := r.Context().Value("userID").(int64)
    if !ok {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }

    client := NewClient(h.hub, conn, userID, h.service)
    h.hub.register <- client
    client.Start()
}

// SendMessage is the REST fallback to the websocket send
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req SendMessageRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    message, err := h.service.SendMessage(r.Context(), userID, &req)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusCreated, message)
}

// GetMessages returns a page of a match's message history
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
        return
    }

    limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
    offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

    messages, err := h.service.GetMessages(r.Context(), userID, matchID, limit, offset)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    if messages == nil {
        messages = []*Message{}
    }
    utils.RespondWithData(w, http.StatusOK, messages)
}

// MarkSeen marks all messages addressed to the caller in a match as seen
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req MarkSeenRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }

    updated, err := h.service.MarkSeen(r.Context(), userID, req.MatchID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithData(w, http.StatusOK, map[string]int64{"updated": updated})
}

// Typing relays a typing indicator over REST
func (h *Handler) Typing(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req TypingRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }

    h.service.Typing(r.Context(), userID, req.MatchID, req.Typing)
    utils.MessageResponse(w, "ok", http.StatusOK)
}

// DeleteMessage deletes one of the caller's own messages
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    messageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid message ID")
        return
    }

    if err := h.service.DeleteMessage(r.Context(), userID, messageID); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "Message deleted", http.StatusOK)
}

// BlockUser blocks another user
func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    targetID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
        return
    }

    if err := h.service.BlockUser(r.Context(), userID, targetID); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "User blocked", http.StatusOK)
}

// UnblockUser removes the caller's block on another user
func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    targetID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
        return
    }

    if err := h.service.UnblockUser(r.Context(), userID, targetID); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "User unblocked", http.StatusOK)
}

// RegisterPushToken stores a device push token
func (h *Handler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req PushTokenRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    if err := h.service.RegisterPushToken(r.Context(), userID, &req); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "Token registered", http.StatusOK)
}

// UnregisterPushToken removes a device push token
func (h *Handler) UnregisterPushToken(w http.ResponseWriter, r *http.Request) {
    token := mux.Vars(r)["token"]

    if err := h.service.UnregisterPushToken(r.Context(), token); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "Token removed", http.StatusOK)
}

// UploadMedia accepts a multipart chat media upload and returns its URL
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
    if h.storage == nil {
        utils.RespondWithError(w, http.StatusServiceUnavailable, "Media storage not configured")
        return
    }

    file, header, err := r.FormFile("file")
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Missing file")
        return
    }
    defer file.Close()

    // Sniff the content type from the first bytes
    buffer := make([]byte, 512)
    n, err := file.Read(buffer)
    if err != nil && n == 0 {
        utils.RespondWithError(w, http.StatusBadRequest, "Unreadable file")
        return
    }
    contentType := http.DetectContentType(buffer[:n])
    if _, err := file.Seek(0, 0); err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process file")
        return
    }

    url, err := h.storage.UploadChatMedia(r.Context(), file, header.Filename, contentType)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    utils.RespondWithData(w, http.StatusCreated, map[string]string{"url": url})
}
