// internal/messaging/notifier.go

package messaging

import (
    "context"
    "log"
    "time"

    "github.com/amoradating/amora-backend/internal/dating"
)

// SwipeNotifier delivers match and like events raised by the swipe state
// machine: over the websocket when the user is connected, by push
// otherwise. Every path is best-effort.
type SwipeNotifier struct {
    broadcaster Broadcaster
    push        PushService
    pushTimeout time.Duration
}

func NewSwipeNotifier(broadcaster Broadcaster, push PushService, pushTimeout time.Duration) *SwipeNotifier {
    return &SwipeNotifier{
        broadcaster: broadcaster,
        push:        push,
        pushTimeout: pushTimeout,
    }
}

func (n *SwipeNotifier) NotifyMatch(userID int64, match *dating.Match) {
    if n.broadcaster.IsUserOnline(userID) {
        n.broadcaster.ToUser(userID, WSMessage{
            Type:      string(WSTypeMatch),
            Data:      mustMarshal(match),
            Timestamp: time.Now(),
        })
        return
    }

    n.sendPush(userID, &PushNotification{
        Title: "It's a match!",
        Body:  "You and someone you liked are now matched",
        Data: map[string]string{
            "type":     string(WSTypeMatch),
            "match_id": formatID(match.ID),
        },
    })
}

func (n *SwipeNotifier) NotifyLiked(targetID, likerID int64, showLiker bool) {
    payload := map[string]interface{}{"type": string(WSTypeLiked)}
    body := "Someone liked your profile"
    if showLiker {
        payload["liker_id"] = likerID
        body = "You have a new like. See who it is"
    }

    if n.broadcaster.IsUserOnline(targetID) {
        n.broadcaster.ToUser(targetID, WSMessage{
            Type:      string(WSTypeLiked),
            Data:      mustMarshal(payload),
            Timestamp: time.Now(),
        })
        return
    }

    n.sendPush(targetID, &PushNotification{
        Title: "New like",
        Body:  body,
        Data:  map[string]string{"type": string(WSTypeLiked)},
    })
}

func (n *SwipeNotifier) sendPush(userID int64, notification *PushNotification) {
    if n.push == nil {
        return
    }

    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), n.pushTimeout)
        defer cancel()

        if err := n.push.SendNotification(ctx, userID, notification); err != nil {
            log.Printf("Push to user %d failed: %v", userID, err)
        }
    }()
}
