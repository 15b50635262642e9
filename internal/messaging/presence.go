// internal/messaging/presence.go
// In-memory presence registry. State lives only for the lifetime of the
// process; after a restart every user starts out offline.

package messaging

import (
    "context"
    "log"
    "sync"
)

// Connection is one live websocket attachment. Enqueue reports false when
// the connection's send buffer is full.
type Connection interface {
    ID() string
    Enqueue(data []byte) bool
}

// MatchMembership answers whether a user belongs to a match. The registry
// consults it before admitting a connection to a delivery room.
type MatchMembership interface {
    GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error)
}

// Registry tracks which users have live connections and which connections
// have joined which match rooms. All mutations are synchronous under one
// mutex; nothing here may block on I/O except JoinRoom's membership lookup,
// which runs before the lock is taken.
type Registry struct {
    membership MatchMembership

    mu    sync.RWMutex
    users map[int64]map[string]Connection // userID -> connID -> conn
    owner map[string]int64                // connID -> userID
    rooms map[int64]map[string]Connection // matchID -> connID -> conn
    joined map[string]map[int64]bool      // connID -> matchIDs
}

func NewRegistry(membership MatchMembership) *Registry {
    return &Registry{
        membership: membership,
        users:      make(map[int64]map[string]Connection),
        owner:      make(map[string]int64),
        rooms:      make(map[int64]map[string]Connection),
        joined:     make(map[string]map[int64]bool),
    }
}

// Authenticate registers conn under userID
func (r *Registry) Authenticate(conn Connection, userID int64) {
    r.mu.Lock()
    defer r.mu.Unlock()

    if r.users[userID] == nil {
        r.users[userID] = make(map[string]Connection)
    }
    r.users[userID][conn.ID()] = conn
    r.owner[conn.ID()] = userID
}

// Disconnect removes conn from its owner's set and from every room it
// joined. Returns the owning user and whether this was their last
// connection.
func (r *Registry) Disconnect(conn Connection) (userID int64, wasLast bool) {
    r.mu.Lock()
    defer r.mu.Unlock()

    connID := conn.ID()
    userID, ok := r.owner[connID]
    if !ok {
        return 0, false
    }
    delete(r.owner, connID)

    if conns := r.users[userID]; conns != nil {
        delete(conns, connID)
        if len(conns) == 0 {
            delete(r.users, userID)
            wasLast = true
        }
    }

    for matchID := range r.joined[connID] {
        if room := r.rooms[matchID]; room != nil {
            delete(room, connID)
            if len(room) == 0 {
                delete(r.rooms, matchID)
            }
        }
    }
    delete(r.joined, connID)

    return userID, wasLast
}

// IsOnline reports whether userID has at least one live connection
func (r *Registry) IsOnline(userID int64) bool {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return len(r.users[userID]) > 0
}

// JoinRoom admits conn to the match's delivery room after verifying that
// userID is a member of the match and that conn belongs to userID.
// Unauthorized joins are refused without surfacing an error so that match
// existence is never leaked to outsiders.
func (r *Registry) JoinRoom(ctx context.Context, conn Connection, matchID, userID int64) {
    match, err := r.membership.GetMatch(ctx, matchID)
    if err != nil {
        log.Printf("Refusing room join for user %d: match %d lookup failed: %v", userID, matchID, err)
        return
    }
    if !match.HasMember(userID) {
        log.Printf("Refusing room join: user %d is not a member of match %d", userID, matchID)
        return
    }

    r.mu.Lock()
    defer r.mu.Unlock()

    if r.owner[conn.ID()] != userID {
        log.Printf("Refusing room join: connection %s does not belong to user %d", conn.ID(), userID)
        return
    }

    if r.rooms[matchID] == nil {
        r.rooms[matchID] = make(map[string]Connection)
    }
    r.rooms[matchID][conn.ID()] = conn

    if r.joined[conn.ID()] == nil {
        r.joined[conn.ID()] = make(map[int64]bool)
    }
    r.joined[conn.ID()][matchID] = true
}

// RoomConnections returns a snapshot of the connections in a match room
func (r *Registry) RoomConnections(matchID int64) []Connection {
    r.mu.RLock()
    defer r.mu.RUnlock()

    conns := make([]Connection, 0, len(r.rooms[matchID]))
    for _, conn := range r.rooms[matchID] {
        conns = append(conns, conn)
    }
    return conns
}

// UserConnections returns a snapshot of one user's live connections
func (r *Registry) UserConnections(userID int64) []Connection {
    r.mu.RLock()
    defer r.mu.RUnlock()

    conns := make([]Connection, 0, len(r.users[userID]))
    for _, conn := range r.users[userID] {
        conns = append(conns, conn)
    }
    return conns
}

// OwnerOf returns the user a connection is registered under
func (r *Registry) OwnerOf(conn Connection) (int64, bool) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    userID, ok := r.owner[conn.ID()]
    return userID, ok
}

// ActiveConnections returns the total live connection count
func (r *Registry) ActiveConnections() int {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return len(r.owner)
}
