// internal/dating/fakes_test.go
// In-memory doubles for the dating repository and quota. All mutations are
// guarded by one mutex so the concurrency tests exercise the same atomicity
// the real store provides through unique indexes and INCR.

package dating

import (
    "context"
    "sync"
    "time"
)

type pairKey struct{ a, b int64 }

type fakeRepo struct {
    mu sync.Mutex

    nextID  int64
    likes   map[pairKey]*Like
    passes  map[pairKey]*Pass
    matches map[pairKey]*Match
    byID    map[int64]*Match
    boosts  []*Boost
    premium map[int64]bool
}

func newFakeRepo() *fakeRepo {
    return &fakeRepo{
        likes:   make(map[pairKey]*Like),
        passes:  make(map[pairKey]*Pass),
        matches: make(map[pairKey]*Match),
        byID:    make(map[int64]*Match),
        premium: make(map[int64]bool),
    }
}

func (f *fakeRepo) id() int64 {
    f.nextID++
    return f.nextID
}

func (f *fakeRepo) InsertLike(ctx context.Context, actorID, targetID int64) (*Like, bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    key := pairKey{actorID, targetID}
    if _, exists := f.likes[key]; exists {
        return nil, false, nil
    }
    like := &Like{ID: f.id(), ActorID: actorID, TargetID: targetID, CreatedAt: time.Now()}
    f.likes[key] = like
    return like, true, nil
}

func (f *fakeRepo) LikeExists(ctx context.Context, actorID, targetID int64) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    _, exists := f.likes[pairKey{actorID, targetID}]
    return exists, nil
}

func (f *fakeRepo) DeleteLike(ctx context.Context, id int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for key, like := range f.likes {
        if like.ID == id {
            delete(f.likes, key)
            return nil
        }
    }
    return nil
}

func (f *fakeRepo) InsertPass(ctx context.Context, actorID, targetID int64) (*Pass, bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    key := pairKey{actorID, targetID}
    if _, exists := f.passes[key]; exists {
        return nil, false, nil
    }
    pass := &Pass{ID: f.id(), ActorID: actorID, TargetID: targetID, CreatedAt: time.Now()}
    f.passes[key] = pass
    return pass, true, nil
}

func (f *fakeRepo) DeletePass(ctx context.Context, id int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for key, pass := range f.passes {
        if pass.ID == id {
            delete(f.passes, key)
            return nil
        }
    }
    return nil
}

func (f *fakeRepo) DeleteAllPasses(ctx context.Context, actorID int64) (int64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    var deleted int64
    for key := range f.passes {
        if key.a == actorID {
            delete(f.passes, key)
            deleted++
        }
    }
    return deleted, nil
}

func (f *fakeRepo) SwipedTargets(ctx context.Context, actorID int64) (map[int64]bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    swiped := make(map[int64]bool)
    for key := range f.likes {
        if key.a == actorID {
            swiped[key.b] = true
        }
    }
    for key := range f.passes {
        if key.a == actorID {
            swiped[key.b] = true
        }
    }
    return swiped, nil
}

func (f *fakeRepo) LastAction(ctx context.Context, actorID int64) (*SwipeAction, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    var latest *SwipeAction
    for key, like := range f.likes {
        if key.a != actorID {
            continue
        }
        if latest == nil || like.CreatedAt.After(latest.CreatedAt) {
            latest = &SwipeAction{ID: like.ID, Kind: "like", TargetID: like.TargetID, CreatedAt: like.CreatedAt}
        }
    }
    for key, pass := range f.passes {
        if key.a != actorID {
            continue
        }
        if latest == nil || pass.CreatedAt.After(latest.CreatedAt) {
            latest = &SwipeAction{ID: pass.ID, Kind: "pass", TargetID: pass.TargetID, CreatedAt: pass.CreatedAt}
        }
    }
    return latest, nil
}

func (f *fakeRepo) FindOrCreateMatch(ctx context.Context, a, b int64) (*Match, bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    low, high := normalizePair(a, b)
    key := pairKey{low, high}
    if existing, ok := f.matches[key]; ok {
        return existing, false, nil
    }

    match := &Match{
        ID:          f.id(),
        User1ID:     low,
        User2ID:     high,
        ChatEnabled: true,
        Status:      "active",
        MatchedAt:   time.Now(),
    }
    f.matches[key] = match
    f.byID[match.ID] = match
    return match, true, nil
}

func (f *fakeRepo) FindMatchByPair(ctx context.Context, a, b int64) (*Match, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    low, high := normalizePair(a, b)
    if match, ok := f.matches[pairKey{low, high}]; ok {
        return match, nil
    }
    return nil, ErrMatchNotFound
}

func (f *fakeRepo) GetMatch(ctx context.Context, id int64) (*Match, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    if match, ok := f.byID[id]; ok {
        return match, nil
    }
    return nil, ErrMatchNotFound
}

func (f *fakeRepo) GetUserMatches(ctx context.Context, userID int64) ([]*Match, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    var matches []*Match
    for _, match := range f.matches {
        if match.HasMember(userID) {
            matches = append(matches, match)
        }
    }
    return matches, nil
}

func (f *fakeRepo) SetChatEnabled(ctx context.Context, matchID int64, enabled bool, byUserID *int64) error {
    f.mu.Lock()
    defer f.mu.Unlock()

    match, ok := f.byID[matchID]
    if !ok {
        return ErrMatchNotFound
    }
    match.ChatEnabled = enabled
    match.UnmatchedBy = byUserID
    return nil
}

func (f *fakeRepo) InsertBoost(ctx context.Context, userID int64, start, end time.Time) (*Boost, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    for _, boost := range f.boosts {
        if boost.UserID == userID && boost.IsActive {
            return nil, ErrBoostAlreadyActive
        }
    }

    boost := &Boost{ID: f.id(), UserID: userID, StartTime: start, EndTime: end, IsActive: true}
    f.boosts = append(f.boosts, boost)
    return boost, nil
}

func (f *fakeRepo) ActiveBoost(ctx context.Context, userID int64, now time.Time) (*Boost, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    for _, boost := range f.boosts {
        if boost.UserID == userID && boost.ActiveAt(now) {
            return boost, nil
        }
    }
    return nil, nil
}

func (f *fakeRepo) ActiveBoostUsers(ctx context.Context, userIDs []int64, now time.Time) (map[int64]bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    boosted := make(map[int64]bool)
    for _, boost := range f.boosts {
        if !boost.ActiveAt(now) {
            continue
        }
        for _, userID := range userIDs {
            if boost.UserID == userID {
                boosted[userID] = true
            }
        }
    }
    return boosted, nil
}

func (f *fakeRepo) ExpireOldBoosts(ctx context.Context, now time.Time) (int64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    var expired int64
    for _, boost := range f.boosts {
        if boost.IsActive && !boost.EndTime.After(now) {
            boost.IsActive = false
            expired++
        }
    }
    return expired, nil
}

func (f *fakeRepo) IsPremium(ctx context.Context, userID int64) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.premium[userID], nil
}

func (f *fakeRepo) setPremium(userID int64, premium bool) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.premium[userID] = premium
}

func (f *fakeRepo) likeCount() int {
    f.mu.Lock()
    defer f.mu.Unlock()
    return len(f.likes)
}

func (f *fakeRepo) backdateSwipes(actorID int64, d time.Duration) {
    f.mu.Lock()
    defer f.mu.Unlock()

    for key, like := range f.likes {
        if key.a == actorID {
            like.CreatedAt = like.CreatedAt.Add(-d)
        }
    }
    for key, pass := range f.passes {
        if key.a == actorID {
            pass.CreatedAt = pass.CreatedAt.Add(-d)
        }
    }
}

func (f *fakeRepo) matchCount() int {
    f.mu.Lock()
    defer f.mu.Unlock()
    return len(f.matches)
}

// fakeQuota mirrors the Redis counter semantics in memory
type fakeQuota struct {
    mu   sync.Mutex
    used map[int64]int64
}

func newFakeQuota() *fakeQuota {
    return &fakeQuota{used: make(map[int64]int64)}
}

func (q *fakeQuota) Consume(ctx context.Context, userID int64, limit int) (bool, int64, error) {
    q.mu.Lock()
    defer q.mu.Unlock()

    if q.used[userID] >= int64(limit) {
        return false, q.used[userID], nil
    }
    q.used[userID]++
    return true, q.used[userID], nil
}

func (q *fakeQuota) Refund(ctx context.Context, userID int64) error {
    q.mu.Lock()
    defer q.mu.Unlock()

    if q.used[userID] > 0 {
        q.used[userID]--
    }
    return nil
}

func (q *fakeQuota) Used(ctx context.Context, userID int64) (int64, error) {
    q.mu.Lock()
    defer q.mu.Unlock()
    return q.used[userID], nil
}

// recordingNotifier captures swipe events for assertions
type recordingNotifier struct {
    mu           sync.Mutex
    matchEvents  map[int64][]*Match
    likedEvents  map[int64]int
}

func newRecordingNotifier() *recordingNotifier {
    return &recordingNotifier{
        matchEvents: make(map[int64][]*Match),
        likedEvents: make(map[int64]int),
    }
}

func (n *recordingNotifier) NotifyMatch(userID int64, match *Match) {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.matchEvents[userID] = append(n.matchEvents[userID], match)
}

func (n *recordingNotifier) NotifyLiked(targetID, likerID int64, showLiker bool) {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.likedEvents[targetID]++
}

func (n *recordingNotifier) matchesFor(userID int64) []*Match {
    n.mu.Lock()
    defer n.mu.Unlock()
    return n.matchEvents[userID]
}

func (n *recordingNotifier) likedCount(userID int64) int {
    n.mu.Lock()
    defer n.mu.Unlock()
    return n.likedEvents[userID]
}
