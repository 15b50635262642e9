// internal/messaging/client.go

package messaging

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"
)

const (
    // Time allowed to write a message to the peer
    writeWait = 10 * time.Second

    // Time allowed to read the next pong message from the peer
    pongWait = 60 * time.Second

    // Send pings to peer with this period (must be less than pongWait)
    pingPeriod = (pongWait * 9) / 10

    // Maximum message size allowed from peer
    maxMessageSize = 64 * 1024 // 64KB
)

// Client is one websocket connection bound to a user
type Client struct {
    id      string
    hub     *Hub
    conn    *websocket.Conn
    send    chan []byte
    userID  int64
    service Service

    // mu guards closed. Fan-out happens from caller goroutines while the
    // hub's Run loop owns teardown, so Enqueue and Close can race.
    mu     sync.Mutex
    closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, service Service) *Client {
    return &Client{
        id:      uuid.New().String(),
        hub:     hub,
        conn:    conn,
        send:    make(chan []byte, 256),
        userID:  userID,
        service: service,
    }
}

func (c *Client) ID() string {
    return c.id
}

// Enqueue queues an outbound frame; false means the buffer is full or the
// client is already closed
func (c *Client) Enqueue(data []byte) bool {
    c.mu.Lock()
    defer c.mu.Unlock()

    if c.closed {
        return false
    }

    select {
    case c.send <- data:
        return true
    default:
        return false
    }
}

// Close is idempotent: the read pump's deferred unregister and the hub's
// slow-consumer drop can both reach it for the same connection
func (c *Client) Close() {
    c.mu.Lock()
    defer c.mu.Unlock()

    if c.closed {
        return
    }
    c.closed = true
    close(c.send)
}

func (c *Client) Start() {
    go c.writePump()
    go c.readPump()
}

func (c *Client) readPump() {
    defer func() {
        c.hub.unregister <- c
        c.conn.Close()
    }()

    c.conn.SetReadLimit(maxMessageSize)
    c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        c.conn.SetReadDeadline(time.Now().Add(pongWait))
        return nil
    })

    for {
        _, message, err := c.conn.ReadMessage()
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
                log.Printf("WebSocket error for user %d: %v", c.userID, err)
            }
            break
        }

        c.processMessage(message)
    }
}

func (c *Client) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        c.conn.Close()
    }()

    for {
        select {
        case message, ok := <-c.send:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }

            w, err := c.conn.NextWriter(websocket.TextMessage)
            if err != nil {
                return
            }
            w.Write(message)

            // Add queued frames to the current websocket message
            n := len(c.send)
            for i := 0; i < n; i++ {
                w.Write([]byte{'\n'})
                w.Write(<-c.send)
            }

            if err := w.Close(); err != nil {
                return
            }

        case <-ticker.C:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}

func (c *Client) processMessage(data []byte) {
    var msg WSMessage
    if err := json.Unmarshal(data, &msg); err != nil {
        log.Printf("Error unmarshalling frame from user %d: %v", c.userID, err)
        return
    }

    ctx := context.Background()

    switch WSMessageType(msg.Type) {
    case WSTypeJoinRoom:
        var req struct {
            MatchID int64 `json:"match_id"`
        }
        if err := json.Unmarshal(msg.Data, &req); err != nil {
            return
        }
        c.hub.JoinRoom(ctx, c, req.MatchID)

    case WSTypeMessage:
        var req SendMessageRequest
        if err := json.Unmarshal(msg.Data, &req); err != nil {
            return
        }
        if _, err := c.service.SendMessage(ctx, c.userID, &req); err != nil {
            log.Printf("Send from user %d failed: %v", c.userID, err)
        }

    case WSTypeSeen:
        var req MarkSeenRequest
        if err := json.Unmarshal(msg.Data, &req); err != nil {
            return
        }
        if _, err := c.service.MarkSeen(ctx, c.userID, req.MatchID); err != nil {
            log.Printf("Mark seen from user %d failed: %v", c.userID, err)
        }

    case WSTypeTyping:
        var req TypingRequest
        if err := json.Unmarshal(msg.Data, &req); err != nil {
            return
        }
        c.service.Typing(ctx, c.userID, req.MatchID, true)

    case WSTypeStopTyping:
        var req TypingRequest
        if err := json.Unmarshal(msg.Data, &req); err != nil {
            return
        }
        c.service.Typing(ctx, c.userID, req.MatchID, false)

    default:
        log.Printf("Unknown frame type from user %d: %s", c.userID, msg.Type)
    }
}
