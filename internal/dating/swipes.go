// internal/dating/swipes.go
// Swipe/match state machine: likes, passes, undo, reciprocity detection.

package dating

import (
    "context"
    "log"
    "time"

    "github.com/amoradating/amora-backend/internal/common/apperr"
)

var (
    ErrMatchNotFound     = apperr.New(apperr.KindNotFound, "match not found")
    ErrDailyLimitReached = apperr.New(apperr.KindQuotaExceeded, "daily like limit reached")
    ErrCannotSwipeSelf   = apperr.New(apperr.KindPreconditionFailed, "cannot swipe on yourself")
    ErrNothingToUndo     = apperr.New(apperr.KindNotFound, "no recent swipe to undo")
    ErrUndoWindowExpired = apperr.New(apperr.KindExpired, "undo window has passed")
    ErrNotMatchMember    = apperr.New(apperr.KindForbidden, "not a member of this match")
)

// Notifier receives swipe-driven events. Implementations are best-effort;
// the swipe path never fails on a notification.
type Notifier interface {
    NotifyMatch(userID int64, match *Match)
    NotifyLiked(targetID, likerID int64, showLiker bool)
}

// NopNotifier discards all events
type NopNotifier struct{}

func (NopNotifier) NotifyMatch(int64, *Match)        {}
func (NopNotifier) NotifyLiked(int64, int64, bool)   {}

// SwipeConfig carries the tier quotas and undo policy
type SwipeConfig struct {
    FreeDailyLikes    int
    PremiumDailyLikes int
    UndoWindow        time.Duration
    ShowLikerProfile  bool
}

type SwipeService interface {
    Like(ctx context.Context, actorID, targetID int64) (*SwipeResult, error)
    Pass(ctx context.Context, actorID, targetID int64) error
    Undo(ctx context.Context, actorID int64) (*UndoResult, error)
    ResetPasses(ctx context.Context, actorID int64) (int64, error)
    GetMatches(ctx context.Context, userID int64) ([]*Match, error)
    Unmatch(ctx context.Context, matchID, userID int64) error
    LikesUsedToday(ctx context.Context, userID int64) (int64, error)
    DailyLimit(ctx context.Context, userID int64) (int, error)
}

type swipeService struct {
    repo     Repository
    quota    LikeQuota
    notifier Notifier
    cfg      SwipeConfig
    now      func() time.Time
}

func NewSwipeService(repo Repository, quota LikeQuota, notifier Notifier, cfg SwipeConfig) SwipeService {
    if notifier == nil {
        notifier = NopNotifier{}
    }
    return &swipeService{
        repo:     repo,
        quota:    quota,
        notifier: notifier,
        cfg:      cfg,
        now:      time.Now,
    }
}

func (s *swipeService) Like(ctx context.Context, actorID, targetID int64) (*SwipeResult, error) {
    if actorID == targetID {
        return nil, ErrCannotSwipeSelf
    }

    limit, err := s.DailyLimit(ctx, actorID)
    if err != nil {
        return nil, err
    }

    // Quota is consumed up front; the increment is atomic in the store so
    // concurrent likes from the same user cannot slip past the limit
    allowed, _, err := s.quota.Consume(ctx, actorID, limit)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "quota check failed", err)
    }
    if !allowed {
        return nil, ErrDailyLimitReached
    }

    _, inserted, err := s.repo.InsertLike(ctx, actorID, targetID)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "failed to record like", err)
    }
    if !inserted {
        // Duplicate like: idempotent no-op, and the speculative quota
        // charge is returned
        if err := s.quota.Refund(ctx, actorID); err != nil {
            log.Printf("Failed to refund like quota for user %d: %v", actorID, err)
        }
        return &SwipeResult{AlreadyLiked: true}, nil
    }

    RecordSwipe("like")

    reciprocal, err := s.repo.LikeExists(ctx, targetID, actorID)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "reciprocity check failed", err)
    }

    if !reciprocal {
        s.notifier.NotifyLiked(targetID, actorID, s.showLiker(ctx, targetID))
        return &SwipeResult{}, nil
    }

    // Both directions now exist. The unique pair index inside
    // FindOrCreateMatch guarantees exactly one match even when both likes
    // race; only the side that actually created the row notifies, so the
    // pair receives one payload each.
    match, created, err := s.repo.FindOrCreateMatch(ctx, actorID, targetID)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "match creation failed", err)
    }

    if created {
        RecordMatch()
        s.notifier.NotifyMatch(actorID, match)
        s.notifier.NotifyMatch(targetID, match)
    }

    return &SwipeResult{IsMatch: true, Match: match}, nil
}

func (s *swipeService) Pass(ctx context.Context, actorID, targetID int64) error {
    if actorID == targetID {
        return ErrCannotSwipeSelf
    }

    _, _, err := s.repo.InsertPass(ctx, actorID, targetID)
    if err != nil {
        return apperr.Wrap(apperr.KindUnavailable, "failed to record pass", err)
    }

    RecordSwipe("pass")
    return nil
}

func (s *swipeService) Undo(ctx context.Context, actorID int64) (*UndoResult, error) {
    premium, err := s.repo.IsPremium(ctx, actorID)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "subscription check failed", err)
    }
    if !premium {
        return nil, ErrPremiumRequired
    }

    action, err := s.repo.LastAction(ctx, actorID)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "failed to load swipe history", err)
    }
    if action == nil {
        return nil, ErrNothingToUndo
    }
    if s.now().Sub(action.CreatedAt) > s.cfg.UndoWindow {
        return nil, ErrUndoWindowExpired
    }

    // Undoing a like never retracts a match that already formed; match
    // creation is a one-way ratchet once both likes existed.
    switch action.Kind {
    case "like":
        err = s.repo.DeleteLike(ctx, action.ID)
    default:
        err = s.repo.DeletePass(ctx, action.ID)
    }
    if err != nil {
        return nil, apperr.Wrap(apperr.KindUnavailable, "failed to undo swipe", err)
    }

    RecordSwipe("undo")
    return &UndoResult{Kind: action.Kind, TargetID: action.TargetID}, nil
}

func (s *swipeService) ResetPasses(ctx context.Context, actorID int64) (int64, error) {
    return s.repo.DeleteAllPasses(ctx, actorID)
}

func (s *swipeService) GetMatches(ctx context.Context, userID int64) ([]*Match, error) {
    return s.repo.GetUserMatches(ctx, userID)
}

func (s *swipeService) Unmatch(ctx context.Context, matchID, userID int64) error {
    match, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return err
    }
    if !match.HasMember(userID) {
        return ErrNotMatchMember
    }

    return s.repo.SetChatEnabled(ctx, matchID, false, &userID)
}

func (s *swipeService) LikesUsedToday(ctx context.Context, userID int64) (int64, error) {
    return s.quota.Used(ctx, userID)
}

// DailyLimit reports the like limit the user's tier grants today
func (s *swipeService) DailyLimit(ctx context.Context, userID int64) (int, error) {
    premium, err := s.repo.IsPremium(ctx, userID)
    if err != nil {
        return 0, apperr.Wrap(apperr.KindUnavailable, "subscription check failed", err)
    }
    if premium {
        return s.cfg.PremiumDailyLikes, nil
    }
    return s.cfg.FreeDailyLikes, nil
}

// showLiker decides whether the "someone liked you" signal reveals the
// liker. Gated by the feature flag and the target's tier.
func (s *swipeService) showLiker(ctx context.Context, targetID int64) bool {
    if !s.cfg.ShowLikerProfile {
        return false
    }
    premium, err := s.repo.IsPremium(ctx, targetID)
    if err != nil {
        return false
    }
    return premium
}
