// internal/messaging/service.go
// Message delivery protocol: validation, persistence, room fan-out,
// delivered/seen transitions, push fallback.

package messaging

import (
    "context"
    "log"
    "strconv"
    "time"

    "github.com/amoradating/amora-backend/internal/common/apperr"
)

var (
    ErrInvalidMatchID   = apperr.New(apperr.KindPreconditionFailed, "invalid match id")
    ErrMatchNotFound    = apperr.New(apperr.KindNotFound, "match not found")
    ErrAccessDenied     = apperr.New(apperr.KindForbidden, "not a member of this match")
    ErrChatDisabled     = apperr.New(apperr.KindPreconditionFailed, "chat is disabled for this match")
    ErrReceiverMismatch = apperr.New(apperr.KindPreconditionFailed, "receiver is not the other match member")
    ErrBlocked          = apperr.New(apperr.KindForbidden, "messaging is blocked between these users")
    ErrEmptyMessage     = apperr.New(apperr.KindPreconditionFailed, "message needs text or media")
    ErrMessageNotFound  = apperr.New(apperr.KindNotFound, "message not found")
    ErrNotMessageSender = apperr.New(apperr.KindForbidden, "only the sender may delete a message")
)

// Broadcaster fans frames out to rooms and users. The hub implements it;
// tests substitute a recorder.
type Broadcaster interface {
    ToRoom(matchID int64, msg WSMessage)
    ToRoomExcept(matchID, exceptUserID int64, msg WSMessage)
    ToUser(userID int64, msg WSMessage)
    IsUserOnline(userID int64) bool
}

type Service interface {
    SendMessage(ctx context.Context, senderID int64, req *SendMessageRequest) (*Message, error)
    MarkSeen(ctx context.Context, userID, matchID int64) (int64, error)
    Typing(ctx context.Context, userID, matchID int64, typing bool)
    DeleteMessage(ctx context.Context, userID, messageID int64) error
    GetMessages(ctx context.Context, userID, matchID int64, limit, offset int) ([]*Message, error)
    BlockUser(ctx context.Context, userID, targetID int64) error
    UnblockUser(ctx context.Context, userID, targetID int64) error
    RegisterPushToken(ctx context.Context, userID int64, req *PushTokenRequest) error
    UnregisterPushToken(ctx context.Context, token string) error
}

type service struct {
    repo        Repository
    broadcaster Broadcaster
    push        PushService
    pushTimeout time.Duration
}

func NewService(repo Repository, broadcaster Broadcaster, push PushService, pushTimeout time.Duration) Service {
    return &service{
        repo:        repo,
        broadcaster: broadcaster,
        push:        push,
        pushTimeout: pushTimeout,
    }
}

func (s *service) SendMessage(ctx context.Context, senderID int64, req *SendMessageRequest) (*Message, error) {
    if req.MatchID <= 0 {
        return nil, ErrInvalidMatchID
    }

    match, err := s.repo.GetMatch(ctx, req.MatchID)
    if err != nil {
        return nil, err
    }
    if !match.HasMember(senderID) {
        return nil, ErrAccessDenied
    }
    if !match.ChatEnabled {
        return nil, ErrChatDisabled
    }
    if req.ReceiverID != match.OtherUser(senderID) {
        return nil, ErrReceiverMismatch
    }

    blocked, err := s.repo.BlockExists(ctx, senderID, req.ReceiverID)
    if err != nil {
        return nil, err
    }
    if blocked {
        return nil, ErrBlocked
    }

    if req.Text == "" && req.MediaURL == "" {
        return nil, ErrEmptyMessage
    }

    message := &Message{
        MatchID:    req.MatchID,
        SenderID:   senderID,
        ReceiverID: req.ReceiverID,
        Status:     StatusSent,
    }
    if req.Text != "" {
        message.Text = &req.Text
    }
    if req.MediaURL != "" {
        message.MediaURL = &req.MediaURL
    }

    if err := s.repo.InsertMessage(ctx, message); err != nil {
        return nil, err
    }
    RecordMessageSent()

    s.broadcaster.ToRoom(match.ID, WSMessage{
        Type:      string(WSTypeMessage),
        Data:      mustMarshal(message),
        Timestamp: message.CreatedAt,
    })

    if s.broadcaster.IsUserOnline(req.ReceiverID) {
        advanced, err := s.repo.MarkDelivered(ctx, message.ID)
        if err != nil {
            log.Printf("Failed to mark message %d delivered: %v", message.ID, err)
        } else if advanced {
            message.Status = StatusDelivered
            s.broadcaster.ToRoom(match.ID, WSMessage{
                Type: string(WSTypeDelivered),
                Data: mustMarshal(StatusEvent{
                    MatchID:   match.ID,
                    MessageID: message.ID,
                    Status:    StatusDelivered,
                }),
                Timestamp: time.Now(),
            })
        }
    } else {
        s.pushNewMessage(req.ReceiverID, message)
    }

    return message, nil
}

// pushNewMessage fires a push attempt detached from the send call. The
// bounded timeout and swallowed errors keep it strictly best-effort.
func (s *service) pushNewMessage(receiverID int64, message *Message) {
    if s.push == nil {
        return
    }

    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
        defer cancel()

        body := "Sent you a message"
        if message.Text == nil && message.MediaURL != nil {
            body = "Sent you a photo"
        }

        err := s.push.SendNotification(ctx, receiverID, &PushNotification{
            Title: "New message",
            Body:  body,
            Data: map[string]string{
                "type":     string(WSTypeMessage),
                "match_id": formatID(message.MatchID),
            },
        })
        if err != nil {
            log.Printf("Push to user %d failed: %v", receiverID, err)
        }
    }()
}

func formatID(id int64) string {
    return strconv.FormatInt(id, 10)
}

func (s *service) MarkSeen(ctx context.Context, userID, matchID int64) (int64, error) {
    if matchID <= 0 {
        return 0, ErrInvalidMatchID
    }

    match, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return 0, err
    }
    if !match.HasMember(userID) {
        return 0, ErrAccessDenied
    }

    seenAt := time.Now()
    updated, err := s.repo.MarkSeenBulk(ctx, matchID, userID, seenAt)
    if err != nil {
        return 0, err
    }

    // One room event regardless of how many messages advanced
    if updated > 0 {
        s.broadcaster.ToRoom(matchID, WSMessage{
            Type: string(WSTypeSeen),
            Data: mustMarshal(SeenEvent{
                MatchID: matchID,
                UserID:  userID,
                SeenAt:  seenAt,
            }),
            Timestamp: seenAt,
        })
    }

    return updated, nil
}

// Typing relays a typing indicator to the other room members. Best-effort:
// nothing is persisted and failures are invisible to the caller.
func (s *service) Typing(ctx context.Context, userID, matchID int64, typing bool) {
    match, err := s.repo.GetMatch(ctx, matchID)
    if err != nil || !match.HasMember(userID) {
        return
    }

    eventType := WSTypeTyping
    if !typing {
        eventType = WSTypeStopTyping
    }

    s.broadcaster.ToRoomExcept(matchID, userID, WSMessage{
        Type:      string(eventType),
        Data:      mustMarshal(TypingEvent{MatchID: matchID, UserID: userID}),
        Timestamp: time.Now(),
    })
}

func (s *service) DeleteMessage(ctx context.Context, userID, messageID int64) error {
    message, err := s.repo.GetMessage(ctx, messageID)
    if err != nil {
        return err
    }
    if message.SenderID != userID {
        return ErrNotMessageSender
    }

    if err := s.repo.SoftDeleteMessage(ctx, messageID); err != nil {
        return err
    }

    s.broadcaster.ToRoom(message.MatchID, WSMessage{
        Type: string(WSTypeMessageDeleted),
        Data: mustMarshal(StatusEvent{
            MatchID:   message.MatchID,
            MessageID: messageID,
        }),
        Timestamp: time.Now(),
    })

    return nil
}

func (s *service) GetMessages(ctx context.Context, userID, matchID int64, limit, offset int) ([]*Message, error) {
    if matchID <= 0 {
        return nil, ErrInvalidMatchID
    }

    match, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return nil, err
    }
    if !match.HasMember(userID) {
        return nil, ErrAccessDenied
    }

    if limit <= 0 {
        limit = 50
    }
    return s.repo.ListByMatch(ctx, matchID, limit, offset)
}

func (s *service) BlockUser(ctx context.Context, userID, targetID int64) error {
    if err := s.repo.InsertBlock(ctx, userID, targetID); err != nil {
        return err
    }
    // Blocking also turns the match's chat off, so the disabled state is
    // visible on the match itself, not just via the block check
    return s.repo.DisableChatForPair(ctx, userID, targetID)
}

func (s *service) UnblockUser(ctx context.Context, userID, targetID int64) error {
    return s.repo.DeleteBlock(ctx, userID, targetID)
}

func (s *service) RegisterPushToken(ctx context.Context, userID int64, req *PushTokenRequest) error {
    return s.repo.UpsertPushToken(ctx, userID, req.Token, req.Platform)
}

func (s *service) UnregisterPushToken(ctx context.Context, token string) error {
    return s.repo.DeletePushToken(ctx, token)
}
