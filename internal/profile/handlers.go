// internal/profile/handlers.go

package profile

import (
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/gorilla/mux"

    "github.com/amoradating/amora-backend/internal/common/utils"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req CreateProfileRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }

    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    p, err := h.service.CreateProfile(r.Context(), userID, &req)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    p, err := h.service.GetProfile(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    userID, err := strconv.ParseInt(vars["id"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
        return
    }

    p, err := h.service.GetProfile(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req UpdateProfileRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }

    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    p, err := h.service.UpdateProfile(r.Context(), userID, &req)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) SetMedia(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var req MediaRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }

    if err := utils.ValidateStruct(req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    p, err := h.service.SetMedia(r.Context(), userID, req.Media)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) PauseProfile(w http.ResponseWriter, r *http.Request) {
    h.setPaused(w, r, true)
}

func (h *Handler) ResumeProfile(w http.ResponseWriter, r *http.Request) {
    h.setPaused(w, r, false)
}

func (h *Handler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
    userID := r.Context().Value("userID").(int64)

    if err := h.service.SetPaused(r.Context(), userID, paused); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "Profile updated", http.StatusOK)
}
