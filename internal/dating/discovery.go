// internal/dating/discovery.go
// Candidate discovery pipeline: load, filter, score, rank, paginate.

package dating

import (
    "context"
    "log"
    "sort"
    "time"

    "github.com/amoradating/amora-backend/internal/profile"
)

// Sort orders accepted by discovery
const (
    SortByScore    = "score"
    SortByDistance = "distance"
    SortByRecency  = "recency"
)

// CandidateSource supplies the raw candidate pool. The default
// implementation loads every profile except the viewer's; swapping in a
// pre-filtered or indexed query changes nothing downstream.
type CandidateSource interface {
    GetProfile(ctx context.Context, userID int64) (*profile.Profile, error)
    ListCandidates(ctx context.Context, excludeUserID int64) ([]*profile.Profile, error)
}

// profileSource adapts the profile repository to CandidateSource
type profileSource struct {
    repo profile.Repository
}

func NewProfileCandidateSource(repo profile.Repository) CandidateSource {
    return &profileSource{repo: repo}
}

func (s *profileSource) GetProfile(ctx context.Context, userID int64) (*profile.Profile, error) {
    return s.repo.GetByUserID(ctx, userID)
}

func (s *profileSource) ListCandidates(ctx context.Context, excludeUserID int64) ([]*profile.Profile, error) {
    return s.repo.ListExcluding(ctx, excludeUserID)
}

// BlockChecker hides blocked users from discovery
type BlockChecker interface {
    BlockExists(ctx context.Context, a, b int64) (bool, error)
}

// DiscoverOptions are the per-request knobs
type DiscoverOptions struct {
    MinScorePercent int      `json:"min_score_percent"`
    MaxDistanceKm   *float64 `json:"max_distance_km,omitempty"`
    SortBy          string   `json:"sort_by"`
    Limit           int      `json:"limit"` // 0 means no limit
}

// Candidate is one ranked discovery entry
type Candidate struct {
    Profile   *profile.Profile `json:"profile"`
    Score     *ScoreResult     `json:"score"`
    IsBoosted bool             `json:"is_boosted"`
}

type DiscoveryService interface {
    Discover(ctx context.Context, viewerID int64, opts DiscoverOptions) ([]*Candidate, error)
    Compatibility(ctx context.Context, viewerID, otherID int64) (*ScoreResult, error)
}

type discoveryService struct {
    source CandidateSource
    repo   Repository
    boosts BoostPolicy
    blocks BlockChecker
}

// NewDiscoveryService builds the pipeline. blocks may be nil when discovery
// should not consult the block list.
func NewDiscoveryService(source CandidateSource, repo Repository, boosts BoostPolicy, blocks BlockChecker) DiscoveryService {
    return &discoveryService{
        source: source,
        repo:   repo,
        boosts: boosts,
        blocks: blocks,
    }
}

func (d *discoveryService) Discover(ctx context.Context, viewerID int64, opts DiscoverOptions) ([]*Candidate, error) {
    started := time.Now()

    viewer, err := d.source.GetProfile(ctx, viewerID)
    if err != nil {
        return nil, err
    }

    pool, err := d.source.ListCandidates(ctx, viewerID)
    if err != nil {
        return nil, err
    }

    swiped, err := d.repo.SwipedTargets(ctx, viewerID)
    if err != nil {
        return nil, err
    }

    var candidates []*Candidate
    for _, p := range pool {
        if swiped[p.UserID] {
            continue
        }
        if !p.Discoverable() {
            continue
        }
        if d.blockedEitherWay(ctx, viewerID, p.UserID) {
            continue
        }

        // A single bad candidate must never abort the whole feed
        score := scoreCandidate(viewer, p)
        if score == nil {
            continue
        }
        if !score.Passed || score.Percentage < opts.MinScorePercent {
            continue
        }
        // Unknown distance is never excluded by a distance filter
        if opts.MaxDistanceKm != nil && score.DistanceKm != nil && *score.DistanceKm > *opts.MaxDistanceKm {
            continue
        }

        RecordCompatibilityScore(float64(score.Percentage))
        candidates = append(candidates, &Candidate{Profile: p, Score: score})
    }

    if err := d.resolveBoosts(ctx, candidates); err != nil {
        // Boost resolution failing degrades ranking, not the result
        log.Printf("Failed to resolve boosts for discovery: %v", err)
    }

    sortCandidates(candidates, opts.SortBy)

    if opts.Limit > 0 && len(candidates) > opts.Limit {
        candidates = candidates[:opts.Limit]
    }

    ObserveDiscovery(len(candidates), time.Since(started))
    return candidates, nil
}

func (d *discoveryService) Compatibility(ctx context.Context, viewerID, otherID int64) (*ScoreResult, error) {
    viewer, err := d.source.GetProfile(ctx, viewerID)
    if err != nil {
        return nil, err
    }
    other, err := d.source.GetProfile(ctx, otherID)
    if err != nil {
        return nil, err
    }
    return ScoreProfiles(viewer, other), nil
}

// scoreCandidate wraps the scorer so a panic on one malformed profile is
// logged and skipped instead of taking the request down
func scoreCandidate(viewer, candidate *profile.Profile) (result *ScoreResult) {
    defer func() {
        if r := recover(); r != nil {
            log.Printf("Skipping candidate %d: scoring panicked: %v", candidate.UserID, r)
            result = nil
        }
    }()
    return ScoreProfiles(viewer, candidate)
}

func (d *discoveryService) blockedEitherWay(ctx context.Context, a, b int64) bool {
    if d.blocks == nil {
        return false
    }
    blocked, err := d.blocks.BlockExists(ctx, a, b)
    if err != nil {
        log.Printf("Block check failed for %d/%d: %v", a, b, err)
        return false
    }
    return blocked
}

func (d *discoveryService) resolveBoosts(ctx context.Context, candidates []*Candidate) error {
    if len(candidates) == 0 {
        return nil
    }

    userIDs := make([]int64, len(candidates))
    for i, c := range candidates {
        userIDs[i] = c.Profile.UserID
    }

    boosted, err := d.boosts.BoostedAmong(ctx, userIDs)
    if err != nil {
        return err
    }

    for _, c := range candidates {
        c.IsBoosted = boosted[c.Profile.UserID]
    }
    return nil
}

// sortCandidates orders boosted profiles first, then applies the requested
// order within each boost tier
func sortCandidates(candidates []*Candidate, sortBy string) {
    sort.SliceStable(candidates, func(i, j int) bool {
        a, b := candidates[i], candidates[j]
        if a.IsBoosted != b.IsBoosted {
            return a.IsBoosted
        }

        switch sortBy {
        case SortByDistance:
            return lessByDistance(a, b)
        case SortByRecency:
            return a.Profile.UpdatedAt.After(b.Profile.UpdatedAt)
        default:
            return a.Score.Score > b.Score.Score
        }
    })
}

// lessByDistance sorts ascending with unknown distances last
func lessByDistance(a, b *Candidate) bool {
    da, db := a.Score.DistanceKm, b.Score.DistanceKm
    switch {
    case da == nil && db == nil:
        return false
    case da == nil:
        return false
    case db == nil:
        return true
    default:
        return *da < *db
    }
}
