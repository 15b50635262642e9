// internal/dating/handlers.go

package dating

import (
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/gorilla/mux"

    "github.com/amoradating/amora-backend/internal/common/utils"
)

type Handler struct {
    discovery           DiscoveryService
    swipes              SwipeService
    boosts              BoostPolicy
    cfg                 SwipeConfig
    defaults            DiscoverOptions
    defaultBoostMinutes int
}

func NewHandler(discovery DiscoveryService, swipes SwipeService, boosts BoostPolicy, cfg SwipeConfig, defaults DiscoverOptions, defaultBoostMinutes int) *Handler {
    return &Handler{
        discovery:           discovery,
        swipes:              swipes,
        boosts:              boosts,
        cfg:                 cfg,
        defaults:            defaults,
        defaultBoostMinutes: defaultBoostMinutes,
    }
}

func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    opts := h.defaults
    q := r.URL.Query()

    if v := q.Get("min_score"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            opts.MinScorePercent = n
        }
    }
    if v := q.Get("max_distance_km"); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil {
            opts.MaxDistanceKm = &f
        }
    }
    if v := q.Get("sort_by"); v != "" {
        opts.SortBy = v
    }
    if v := q.Get("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            opts.Limit = n
        }
    }

    candidates, err := h.discovery.Discover(r.Context(), userID, opts)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    if candidates == nil {
        candidates = []*Candidate{}
    }
    utils.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    vars := mux.Vars(r)
    otherID, err := strconv.ParseInt(vars["userId"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
        return
    }

    result, err := h.discovery.Compatibility(r.Context(), userID, otherID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var dto SwipeRequestDTO
    if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }
    if err := utils.ValidateStruct(dto); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    result, err := h.swipes.Like(r.Context(), userID, dto.TargetID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var dto SwipeRequestDTO
    if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }
    if err := utils.ValidateStruct(dto); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    if err := h.swipes.Pass(r.Context(), userID, dto.TargetID); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "Pass recorded", http.StatusOK)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    result, err := h.swipes.Undo(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) ResetPasses(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    deleted, err := h.swipes.ResetPasses(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    matches, err := h.swipes.GetMatches(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    if matches == nil {
        matches = []*Match{}
    }
    utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    vars := mux.Vars(r)
    matchID, err := strconv.ParseInt(vars["id"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
        return
    }

    if err := h.swipes.Unmatch(r.Context(), matchID, userID); err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.MessageResponse(w, "Unmatched", http.StatusOK)
}

func (h *Handler) CreateBoost(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    var dto CreateBoostDTO
    if r.Body != nil {
        json.NewDecoder(r.Body).Decode(&dto)
    }
    if dto.DurationMinutes == 0 {
        dto.DurationMinutes = h.defaultBoostMinutes
    }

    boost, err := h.boosts.CreateBoost(r.Context(), userID, dto.DurationMinutes)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, boost)
}

func (h *Handler) GetBoost(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    boost, err := h.boosts.CurrentBoost(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
        "is_boosted": boost != nil,
        "boost":      boost,
    })
}

func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
    userID := r.Context().Value("userID").(int64)

    used, err := h.swipes.LikesUsedToday(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    limit, err := h.swipes.DailyLimit(r.Context(), userID)
    if err != nil {
        utils.RespondWithAppError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, QuotaStatusDTO{
        Used:  used,
        Limit: limit,
    })
}
