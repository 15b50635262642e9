// internal/messaging/models.go

package messaging

import (
    "encoding/json"
    "time"
)

// Message delivery statuses. Transitions only move forward:
// sent -> delivered -> seen.
const (
    StatusSent      = "sent"
    StatusDelivered = "delivered"
    StatusSeen      = "seen"
)

// Message represents a chat message within a match
type Message struct {
    ID         int64      `json:"id" db:"id"`
    MatchID    int64      `json:"match_id" db:"match_id"`
    SenderID   int64      `json:"sender_id" db:"sender_id"`
    ReceiverID int64      `json:"receiver_id" db:"receiver_id"`
    Text       *string    `json:"text,omitempty" db:"text"`
    MediaURL   *string    `json:"media_url,omitempty" db:"media_url"`
    Status     string     `json:"status" db:"status"`
    IsDeleted  bool       `json:"is_deleted" db:"is_deleted"`
    CreatedAt  time.Time  `json:"created_at" db:"created_at"`
    SeenAt     *time.Time `json:"seen_at,omitempty" db:"seen_at"`
}

// MatchInfo is the slice of a match the delivery protocol needs
type MatchInfo struct {
    ID          int64 `json:"id" db:"id"`
    User1ID     int64 `json:"user1_id" db:"user1_id"`
    User2ID     int64 `json:"user2_id" db:"user2_id"`
    ChatEnabled bool  `json:"chat_enabled" db:"chat_enabled"`
}

// HasMember reports whether userID is one of the two match members
func (m *MatchInfo) HasMember(userID int64) bool {
    return m.User1ID == userID || m.User2ID == userID
}

// OtherUser returns the match member that is not userID
func (m *MatchInfo) OtherUser(userID int64) int64 {
    if m.User1ID == userID {
        return m.User2ID
    }
    return m.User1ID
}

// Block is a directed block edge
type Block struct {
    BlockerID int64     `json:"blocker_id" db:"blocker_id"`
    BlockedID int64     `json:"blocked_id" db:"blocked_id"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PushToken is one registered device token
type PushToken struct {
    ID        int64     `json:"id" db:"id"`
    UserID    int64     `json:"user_id" db:"user_id"`
    Token     string    `json:"token" db:"token"`
    Platform  string    `json:"platform" db:"platform"`
    IsActive  bool      `json:"is_active" db:"is_active"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WSMessage is the envelope for every websocket frame
type WSMessage struct {
    Type      string          `json:"type"`
    Data      json.RawMessage `json:"data"`
    Timestamp time.Time       `json:"timestamp"`
}

type WSMessageType string

const (
    WSTypeMessage        WSMessageType = "message"
    WSTypeTyping         WSMessageType = "typing"
    WSTypeStopTyping     WSMessageType = "stop_typing"
    WSTypeDelivered      WSMessageType = "delivered"
    WSTypeSeen           WSMessageType = "seen"
    WSTypeMessageDeleted WSMessageType = "message_deleted"
    WSTypeJoinRoom       WSMessageType = "join_room"
    WSTypeMatch          WSMessageType = "match"
    WSTypeLiked          WSMessageType = "liked"
)

// Request DTOs
type SendMessageRequest struct {
    MatchID    int64  `json:"match_id" validate:"required"`
    ReceiverID int64  `json:"receiver_id" validate:"required"`
    Text       string `json:"text" validate:"omitempty,max=4000"`
    MediaURL   string `json:"media_url" validate:"omitempty,url"`
}

type MarkSeenRequest struct {
    MatchID int64 `json:"match_id" validate:"required"`
}

type TypingRequest struct {
    MatchID int64 `json:"match_id" validate:"required"`
    Typing  bool  `json:"typing"`
}

type PushTokenRequest struct {
    Token    string `json:"token" validate:"required"`
    Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

// Event payloads carried inside WSMessage.Data
type StatusEvent struct {
    MatchID   int64  `json:"match_id"`
    MessageID int64  `json:"message_id,omitempty"`
    Status    string `json:"status"`
    UserID    int64  `json:"user_id,omitempty"`
}

type TypingEvent struct {
    MatchID int64 `json:"match_id"`
    UserID  int64 `json:"user_id"`
}

type SeenEvent struct {
    MatchID int64     `json:"match_id"`
    UserID  int64     `json:"user_id"`
    SeenAt  time.Time `json:"seen_at"`
}
