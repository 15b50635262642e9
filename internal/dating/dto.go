// internal/dating/dto.go
package dating

// DTOs for API requests/responses

type SwipeRequestDTO struct {
    TargetID int64 `json:"target_id" validate:"required"`
}

type CreateBoostDTO struct {
    DurationMinutes int `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
}

type QuotaStatusDTO struct {
    Used  int64 `json:"used"`
    Limit int   `json:"limit"`
}
