// internal/dating/boost.go
// Boost ranking policy: premium-gated, one active boost per user,
// lazy expiry in reads plus a periodic sweep.

package dating

import (
    "context"
    "time"

    "github.com/amoradating/amora-backend/internal/common/apperr"
)

var (
    ErrPremiumRequired    = apperr.New(apperr.KindPremiumRequired, "premium subscription required")
    ErrBoostAlreadyActive = apperr.New(apperr.KindConflict, "a boost is already active")
    ErrInvalidBoostLength = apperr.New(apperr.KindPreconditionFailed, "invalid boost duration")
)

// BoostPolicy decides boost state and creates new boosts
type BoostPolicy interface {
    IsBoosted(ctx context.Context, userID int64) (bool, error)
    BoostedAmong(ctx context.Context, userIDs []int64) (map[int64]bool, error)
    CreateBoost(ctx context.Context, userID int64, durationMinutes int) (*Boost, error)
    CurrentBoost(ctx context.Context, userID int64) (*Boost, error)
    ExpireOldBoosts(ctx context.Context) (int64, error)
}

type boostPolicy struct {
    repo       Repository
    minMinutes int
    maxMinutes int
    now        func() time.Time
}

func NewBoostPolicy(repo Repository, maxMinutes int) BoostPolicy {
    return &boostPolicy{
        repo:       repo,
        minMinutes: 1,
        maxMinutes: maxMinutes,
        now:        time.Now,
    }
}

func (b *boostPolicy) IsBoosted(ctx context.Context, userID int64) (bool, error) {
    boost, err := b.repo.ActiveBoost(ctx, userID, b.now())
    if err != nil {
        return false, err
    }
    return boost != nil, nil
}

func (b *boostPolicy) BoostedAmong(ctx context.Context, userIDs []int64) (map[int64]bool, error) {
    return b.repo.ActiveBoostUsers(ctx, userIDs, b.now())
}

func (b *boostPolicy) CreateBoost(ctx context.Context, userID int64, durationMinutes int) (*Boost, error) {
    if durationMinutes < b.minMinutes || durationMinutes > b.maxMinutes {
        return nil, ErrInvalidBoostLength
    }

    premium, err := b.repo.IsPremium(ctx, userID)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "subscription check failed", err)
    }
    if !premium {
        return nil, ErrPremiumRequired
    }

    // Flip any lapsed boost off first: the partial unique index only admits
    // one is_active row per user, and a boost past its endTime should not
    // block a new one
    if _, err := b.repo.ExpireOldBoosts(ctx, b.now()); err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "boost expiry sweep failed", err)
    }

    start := b.now()
    boost, err := b.repo.InsertBoost(ctx, userID, start, start.Add(time.Duration(durationMinutes)*time.Minute))
    if err != nil {
        return nil, err
    }

    RecordBoostCreated()
    return boost, nil
}

func (b *boostPolicy) CurrentBoost(ctx context.Context, userID int64) (*Boost, error) {
    return b.repo.ActiveBoost(ctx, userID, b.now())
}

func (b *boostPolicy) ExpireOldBoosts(ctx context.Context) (int64, error) {
    return b.repo.ExpireOldBoosts(ctx, b.now())
}
