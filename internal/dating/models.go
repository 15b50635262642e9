// internal/dating/models.go

package dating

import (
    "time"
)

// Match is a mutual-like pairing between two users. The pair is stored
// normalized (user1_id < user2_id) so uniqueness holds regardless of which
// side liked first.
type Match struct {
    ID          int64      `json:"id" db:"id"`
    User1ID     int64      `json:"user1_id" db:"user1_id"`
    User2ID     int64      `json:"user2_id" db:"user2_id"`
    ChatEnabled bool       `json:"chat_enabled" db:"chat_enabled"`
    CallEnabled bool       `json:"call_enabled" db:"call_enabled"`
    Status      string     `json:"status" db:"status"` // active, expired, secured
    ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
    UnmatchedBy *int64     `json:"unmatched_by,omitempty" db:"unmatched_by"`
    MatchedAt   time.Time  `json:"matched_at" db:"matched_at"`

    // Joined field
    Partner *PartnerInfo `json:"partner,omitempty"`
}

// OtherUser returns the match member that is not userID
func (m *Match) OtherUser(userID int64) int64 {
    if m.User1ID == userID {
        return m.User2ID
    }
    return m.User1ID
}

// HasMember reports whether userID is one of the two match members
func (m *Match) HasMember(userID int64) bool {
    return m.User1ID == userID || m.User2ID == userID
}

// PartnerInfo is the slim partner view attached to match listings
type PartnerInfo struct {
    UserID int64   `json:"user_id" db:"user_id"`
    Bio    *string `json:"bio,omitempty" db:"bio"`
    Photo  *string `json:"photo,omitempty" db:"photo"`
}

// Like is a directed swipe edge
type Like struct {
    ID        int64     `json:"id" db:"id"`
    ActorID   int64     `json:"actor_id" db:"actor_id"`
    TargetID  int64     `json:"target_id" db:"target_id"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Pass is a directed swipe edge
type Pass struct {
    ID        int64     `json:"id" db:"id"`
    ActorID   int64     `json:"actor_id" db:"actor_id"`
    TargetID  int64     `json:"target_id" db:"target_id"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SwipeAction identifies the most recent like-or-pass for undo
type SwipeAction struct {
    ID        int64     `json:"id" db:"id"`
    Kind      string    `json:"kind" db:"kind"` // "like" or "pass"
    TargetID  int64     `json:"target_id" db:"target_id"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Boost is a time-boxed discovery ranking priority
type Boost struct {
    ID        int64     `json:"id" db:"id"`
    UserID    int64     `json:"user_id" db:"user_id"`
    StartTime time.Time `json:"start_time" db:"start_time"`
    EndTime   time.Time `json:"end_time" db:"end_time"`
    IsActive  bool      `json:"is_active" db:"is_active"`
}

// ActiveAt reports whether the boost is live at the given instant
func (b *Boost) ActiveAt(t time.Time) bool {
    return b.IsActive && !t.Before(b.StartTime) && t.Before(b.EndTime)
}

// SwipeResult is the outcome of a like
type SwipeResult struct {
    IsMatch      bool   `json:"is_match"`
    AlreadyLiked bool   `json:"already_liked"`
    Match        *Match `json:"match,omitempty"`
}

// UndoResult reports which action was undone
type UndoResult struct {
    Kind     string `json:"kind"`
    TargetID int64  `json:"target_id"`
}
