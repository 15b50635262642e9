// internal/messaging/fakes_test.go

package messaging

import (
    "context"
    "errors"
    "sync"
    "time"
)

// fakeConn is a minimal Connection for registry tests
type fakeConn struct {
    id string

    mu     sync.Mutex
    frames [][]byte
    full   bool
}

func newFakeConn(id string) *fakeConn {
    return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Enqueue(data []byte) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.full {
        return false
    }
    c.frames = append(c.frames, data)
    return true
}

func (c *fakeConn) frameCount() int {
    c.mu.Lock()
    defer c.mu.Unlock()
    return len(c.frames)
}

// fakeMembership answers match lookups from a fixed map
type fakeMembership struct {
    matches map[int64]*MatchInfo
}

func (f *fakeMembership) GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error) {
    if m, ok := f.matches[matchID]; ok {
        return m, nil
    }
    return nil, ErrMatchNotFound
}

// fakeMsgRepo is an in-memory Repository
type fakeMsgRepo struct {
    mu       sync.Mutex
    nextID   int64
    matches  map[int64]*MatchInfo
    messages map[int64]*Message
    blocks   map[[2]int64]bool
    tokens   map[string]*PushToken
}

func newFakeMsgRepo() *fakeMsgRepo {
    return &fakeMsgRepo{
        matches:  make(map[int64]*MatchInfo),
        messages: make(map[int64]*Message),
        blocks:   make(map[[2]int64]bool),
        tokens:   make(map[string]*PushToken),
    }
}

func (f *fakeMsgRepo) addMatch(id, user1, user2 int64, chatEnabled bool) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.matches[id] = &MatchInfo{ID: id, User1ID: user1, User2ID: user2, ChatEnabled: chatEnabled}
}

func (f *fakeMsgRepo) GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if m, ok := f.matches[matchID]; ok {
        copied := *m
        return &copied, nil
    }
    return nil, ErrMatchNotFound
}

func (f *fakeMsgRepo) InsertMessage(ctx context.Context, m *Message) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.nextID++
    m.ID = f.nextID
    m.CreatedAt = time.Now()
    copied := *m
    f.messages[m.ID] = &copied
    return nil
}

func (f *fakeMsgRepo) GetMessage(ctx context.Context, id int64) (*Message, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    m, ok := f.messages[id]
    if !ok || m.IsDeleted {
        return nil, ErrMessageNotFound
    }
    copied := *m
    return &copied, nil
}

func (f *fakeMsgRepo) ListByMatch(ctx context.Context, matchID int64, limit, offset int) ([]*Message, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    var out []*Message
    for id := f.nextID; id >= 1; id-- {
        m, ok := f.messages[id]
        if !ok || m.MatchID != matchID || m.IsDeleted {
            continue
        }
        copied := *m
        out = append(out, &copied)
    }
    if offset < len(out) {
        out = out[offset:]
    } else {
        out = nil
    }
    if limit > 0 && len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (f *fakeMsgRepo) MarkDelivered(ctx context.Context, messageID int64) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    m, ok := f.messages[messageID]
    if !ok || m.Status != StatusSent {
        return false, nil
    }
    m.Status = StatusDelivered
    return true, nil
}

func (f *fakeMsgRepo) MarkSeenBulk(ctx context.Context, matchID, receiverID int64, at time.Time) (int64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    var updated int64
    for _, m := range f.messages {
        if m.MatchID == matchID && m.ReceiverID == receiverID && m.Status != StatusSeen && !m.IsDeleted {
            m.Status = StatusSeen
            seenAt := at
            m.SeenAt = &seenAt
            updated++
        }
    }
    return updated, nil
}

func (f *fakeMsgRepo) SoftDeleteMessage(ctx context.Context, messageID int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    m, ok := f.messages[messageID]
    if !ok || m.IsDeleted {
        return ErrMessageNotFound
    }
    m.IsDeleted = true
    return nil
}

func (f *fakeMsgRepo) InsertBlock(ctx context.Context, blockerID, blockedID int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.blocks[[2]int64{blockerID, blockedID}] = true
    return nil
}

func (f *fakeMsgRepo) DeleteBlock(ctx context.Context, blockerID, blockedID int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    delete(f.blocks, [2]int64{blockerID, blockedID})
    return nil
}

func (f *fakeMsgRepo) DisableChatForPair(ctx context.Context, a, b int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, m := range f.matches {
        if m.HasMember(a) && m.HasMember(b) {
            m.ChatEnabled = false
        }
    }
    return nil
}

func (f *fakeMsgRepo) BlockExists(ctx context.Context, a, b int64) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.blocks[[2]int64{a, b}] || f.blocks[[2]int64{b, a}], nil
}

func (f *fakeMsgRepo) UpsertPushToken(ctx context.Context, userID int64, token, platform string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.tokens[token] = &PushToken{UserID: userID, Token: token, Platform: platform, IsActive: true}
    return nil
}

func (f *fakeMsgRepo) DeletePushToken(ctx context.Context, token string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    delete(f.tokens, token)
    return nil
}

func (f *fakeMsgRepo) GetUserPushTokens(ctx context.Context, userID int64) ([]*PushToken, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    var out []*PushToken
    for _, t := range f.tokens {
        if t.UserID == userID && t.IsActive {
            copied := *t
            out = append(out, &copied)
        }
    }
    return out, nil
}

func (f *fakeMsgRepo) messageCount(matchID int64) int {
    f.mu.Lock()
    defer f.mu.Unlock()
    n := 0
    for _, m := range f.messages {
        if m.MatchID == matchID && !m.IsDeleted {
            n++
        }
    }
    return n
}

func (f *fakeMsgRepo) status(messageID int64) string {
    f.mu.Lock()
    defer f.mu.Unlock()
    if m, ok := f.messages[messageID]; ok {
        return m.Status
    }
    return ""
}

// recordedEvent is one fan-out captured by the recording broadcaster
type recordedEvent struct {
    target  string // "room", "room_except", "user"
    matchID int64
    userID  int64 // except-user or target user
    msg     WSMessage
}

// recordingBroadcaster captures fan-outs and simulates online state
type recordingBroadcaster struct {
    mu     sync.Mutex
    events []recordedEvent
    online map[int64]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
    return &recordingBroadcaster{online: make(map[int64]bool)}
}

func (b *recordingBroadcaster) setOnline(userID int64, online bool) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.online[userID] = online
}

func (b *recordingBroadcaster) ToRoom(matchID int64, msg WSMessage) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.events = append(b.events, recordedEvent{target: "room", matchID: matchID, msg: msg})
}

func (b *recordingBroadcaster) ToRoomExcept(matchID, exceptUserID int64, msg WSMessage) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.events = append(b.events, recordedEvent{target: "room_except", matchID: matchID, userID: exceptUserID, msg: msg})
}

func (b *recordingBroadcaster) ToUser(userID int64, msg WSMessage) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.events = append(b.events, recordedEvent{target: "user", userID: userID, msg: msg})
}

func (b *recordingBroadcaster) IsUserOnline(userID int64) bool {
    b.mu.Lock()
    defer b.mu.Unlock()
    return b.online[userID]
}

func (b *recordingBroadcaster) eventTypes() []string {
    b.mu.Lock()
    defer b.mu.Unlock()
    types := make([]string, len(b.events))
    for i, e := range b.events {
        types[i] = e.msg.Type
    }
    return types
}

func (b *recordingBroadcaster) eventCount() int {
    b.mu.Lock()
    defer b.mu.Unlock()
    return len(b.events)
}

// fakePush records attempts and optionally fails
type fakePush struct {
    mu       sync.Mutex
    sent     []int64
    failWith error
    done     chan struct{}
}

func newFakePush() *fakePush {
    return &fakePush{done: make(chan struct{}, 16)}
}

func (p *fakePush) SendNotification(ctx context.Context, userID int64, notification *PushNotification) error {
    p.mu.Lock()
    p.sent = append(p.sent, userID)
    err := p.failWith
    p.mu.Unlock()
    p.done <- struct{}{}
    return err
}

func (p *fakePush) wait(t testingT) {
    select {
    case <-p.done:
    case <-time.After(2 * time.Second):
        t.Fatal("timed out waiting for push attempt")
    }
}

func (p *fakePush) sentCount() int {
    p.mu.Lock()
    defer p.mu.Unlock()
    return len(p.sent)
}

type testingT interface {
    Fatal(args ...interface{})
}

var errPushDown = errors.New("push provider unavailable")
