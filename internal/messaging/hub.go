// internal/messaging/hub.go

package messaging

import (
    "context"
    "encoding/json"
    "log"
    "sync"
)

// Hub maintains the set of active websocket clients and fans frames out to
// rooms and users via the presence registry.
type Hub struct {
    registry *Registry

    register   chan *Client
    unregister chan *Client

    // Context for graceful shutdown
    ctx    context.Context
    cancel context.CancelFunc
    wg     sync.WaitGroup
}

func NewHub(registry *Registry) *Hub {
    ctx, cancel := context.WithCancel(context.Background())

    h := &Hub{
        registry:   registry,
        register:   make(chan *Client),
        unregister: make(chan *Client),
        ctx:        ctx,
        cancel:     cancel,
    }

    // Counted here, not in Run, so a Shutdown racing a just-started Run
    // cannot pass Wait before the loop is accounted for
    h.wg.Add(1)

    return h
}

func (h *Hub) Run() {
    defer h.wg.Done()

    for {
        select {
        case client := <-h.register:
            h.registerClient(client)

        case client := <-h.unregister:
            h.unregisterClient(client)

        case <-h.ctx.Done():
            h.cleanup()
            return
        }
    }
}

func (h *Hub) registerClient(client *Client) {
    h.registry.Authenticate(client, client.userID)
    SetActiveConnections(h.registry.ActiveConnections())
    log.Printf("User %d connected (%s). Active connections: %d",
        client.userID, client.ID(), h.registry.ActiveConnections())
}

func (h *Hub) unregisterClient(client *Client) {
    userID, wasLast := h.registry.Disconnect(client)
    client.Close()
    SetActiveConnections(h.registry.ActiveConnections())
    if wasLast {
        log.Printf("User %d disconnected (last connection)", userID)
    }
}

// JoinRoom admits a client's connection to a match delivery room
func (h *Hub) JoinRoom(ctx context.Context, client *Client, matchID int64) {
    h.registry.JoinRoom(ctx, client, matchID, client.userID)
}

// ToRoom delivers a frame to every connection in the match's room
func (h *Hub) ToRoom(matchID int64, msg WSMessage) {
    h.deliver(h.registry.RoomConnections(matchID), msg)
}

// ToRoomExcept delivers to the room, skipping exceptUserID's connections
func (h *Hub) ToRoomExcept(matchID, exceptUserID int64, msg WSMessage) {
    conns := h.registry.RoomConnections(matchID)
    filtered := conns[:0]
    for _, conn := range conns {
        if owner, ok := h.registry.OwnerOf(conn); !ok || owner != exceptUserID {
            filtered = append(filtered, conn)
        }
    }
    h.deliver(filtered, msg)
}

// ToUser delivers a frame to every connection a user holds
func (h *Hub) ToUser(userID int64, msg WSMessage) {
    h.deliver(h.registry.UserConnections(userID), msg)
}

func (h *Hub) IsUserOnline(userID int64) bool {
    return h.registry.IsOnline(userID)
}

func (h *Hub) deliver(conns []Connection, msg WSMessage) {
    if len(conns) == 0 {
        return
    }

    data, err := json.Marshal(msg)
    if err != nil {
        log.Printf("Error marshalling ws frame: %v", err)
        return
    }

    for _, conn := range conns {
        if !conn.Enqueue(data) {
            // Slow consumer; drop the connection rather than block delivery
            if client, ok := conn.(*Client); ok {
                select {
                case h.unregister <- client:
                default:
                    go func() {
                        select {
                        case h.unregister <- client:
                        case <-h.ctx.Done():
                        }
                    }()
                }
            }
        }
    }
}

func (h *Hub) cleanup() {
    for _, conn := range allConnections(h.registry) {
        if client, ok := conn.(*Client); ok {
            h.registry.Disconnect(client)
            client.Close()
        }
    }
    SetActiveConnections(0)
}

func allConnections(r *Registry) []Connection {
    r.mu.RLock()
    defer r.mu.RUnlock()

    conns := make([]Connection, 0, len(r.owner))
    for userID := range r.users {
        for _, conn := range r.users[userID] {
            conns = append(conns, conn)
        }
    }
    return conns
}

func (h *Hub) Shutdown() {
    h.cancel()
    h.wg.Wait()
}

func (h *Hub) ActiveConnections() int {
    return h.registry.ActiveConnections()
}

func mustMarshal(v interface{}) json.RawMessage {
    data, err := json.Marshal(v)
    if err != nil {
        log.Printf("Error marshalling payload: %v", err)
        return json.RawMessage(`{}`)
    }
    return data
}
