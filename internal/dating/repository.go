// internal/dating/repository.go

package dating

import (
    "context"
    "database/sql"
    "log"
    "time"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type Repository interface {
    // Likes
    InsertLike(ctx context.Context, actorID, targetID int64) (*Like, bool, error)
    LikeExists(ctx context.Context, actorID, targetID int64) (bool, error)
    DeleteLike(ctx context.Context, id int64) error

    // Passes
    InsertPass(ctx context.Context, actorID, targetID int64) (*Pass, bool, error)
    DeletePass(ctx context.Context, id int64) error
    DeleteAllPasses(ctx context.Context, actorID int64) (int64, error)

    // Swipe history
    SwipedTargets(ctx context.Context, actorID int64) (map[int64]bool, error)
    LastAction(ctx context.Context, actorID int64) (*SwipeAction, error)

    // Matches
    FindOrCreateMatch(ctx context.Context, a, b int64) (*Match, bool, error)
    FindMatchByPair(ctx context.Context, a, b int64) (*Match, error)
    GetMatch(ctx context.Context, id int64) (*Match, error)
    GetUserMatches(ctx context.Context, userID int64) ([]*Match, error)
    SetChatEnabled(ctx context.Context, matchID int64, enabled bool, byUserID *int64) error

    // Boosts
    InsertBoost(ctx context.Context, userID int64, start, end time.Time) (*Boost, error)
    ActiveBoost(ctx context.Context, userID int64, now time.Time) (*Boost, error)
    ActiveBoostUsers(ctx context.Context, userIDs []int64, now time.Time) (map[int64]bool, error)
    ExpireOldBoosts(ctx context.Context, now time.Time) (int64, error)

    // Premium oracle
    IsPremium(ctx context.Context, userID int64) (bool, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

// Like methods

func (r *postgresRepository) InsertLike(ctx context.Context, actorID, targetID int64) (*Like, bool, error) {
    // The unique index on (actor_id, target_id) makes duplicate likes a
    // no-op rather than a race
    query := `
        INSERT INTO likes (actor_id, target_id)
        VALUES ($1, $2)
        ON CONFLICT (actor_id, target_id) DO NOTHING
        RETURNING id, created_at
    `

    like := &Like{ActorID: actorID, TargetID: targetID}
    err := r.db.QueryRowxContext(ctx, query, actorID, targetID).Scan(&like.ID, &like.CreatedAt)
    if err == sql.ErrNoRows {
        // Conflict path: the like already existed
        return nil, false, nil
    }
    if err != nil {
        return nil, false, err
    }

    return like, true, nil
}

func (r *postgresRepository) LikeExists(ctx context.Context, actorID, targetID int64) (bool, error) {
    var exists bool
    query := `SELECT EXISTS(SELECT 1 FROM likes WHERE actor_id = $1 AND target_id = $2)`

    err := r.db.GetContext(ctx, &exists, query, actorID, targetID)
    return exists, err
}

func (r *postgresRepository) DeleteLike(ctx context.Context, id int64) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE id = $1`, id)
    return err
}

// Pass methods

func (r *postgresRepository) InsertPass(ctx context.Context, actorID, targetID int64) (*Pass, bool, error) {
    query := `
        INSERT INTO passes (actor_id, target_id)
        VALUES ($1, $2)
        ON CONFLICT (actor_id, target_id) DO NOTHING
        RETURNING id, created_at
    `

    pass := &Pass{ActorID: actorID, TargetID: targetID}
    err := r.db.QueryRowxContext(ctx, query, actorID, targetID).Scan(&pass.ID, &pass.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, false, nil
    }
    if err != nil {
        return nil, false, err
    }

    return pass, true, nil
}

func (r *postgresRepository) DeletePass(ctx context.Context, id int64) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM passes WHERE id = $1`, id)
    return err
}

func (r *postgresRepository) DeleteAllPasses(ctx context.Context, actorID int64) (int64, error) {
    res, err := r.db.ExecContext(ctx, `DELETE FROM passes WHERE actor_id = $1`, actorID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// Swipe history methods

func (r *postgresRepository) SwipedTargets(ctx context.Context, actorID int64) (map[int64]bool, error) {
    query := `
        SELECT target_id FROM likes WHERE actor_id = $1
        UNION
        SELECT target_id FROM passes WHERE actor_id = $1
    `

    rows, err := r.db.QueryxContext(ctx, query, actorID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    swiped := make(map[int64]bool)
    for rows.Next() {
        var targetID int64
        if err := rows.Scan(&targetID); err != nil {
            return nil, err
        }
        swiped[targetID] = true
    }

    return swiped, rows.Err()
}

func (r *postgresRepository) LastAction(ctx context.Context, actorID int64) (*SwipeAction, error) {
    query := `
        SELECT id, 'like' AS kind, target_id, created_at FROM likes WHERE actor_id = $1
        UNION ALL
        SELECT id, 'pass' AS kind, target_id, created_at FROM passes WHERE actor_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `

    var action SwipeAction
    err := r.db.GetContext(ctx, &action, query, actorID)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }

    return &action, nil
}

// Match methods

// normalizePair orders a pair so user1_id < user2_id
func normalizePair(a, b int64) (int64, int64) {
    if a > b {
        return b, a
    }
    return a, b
}

func (r *postgresRepository) FindOrCreateMatch(ctx context.Context, a, b int64) (*Match, bool, error) {
    low, high := normalizePair(a, b)

    // The unique index on the normalized pair guarantees exactly one match
    // even when both reciprocal likes land at the same instant. The loser
    // of the race falls through to the select.
    insert := `
        INSERT INTO matches (user1_id, user2_id, chat_enabled, status)
        VALUES ($1, $2, TRUE, 'active')
        ON CONFLICT (user1_id, user2_id) DO NOTHING
        RETURNING id, user1_id, user2_id, chat_enabled, call_enabled, status,
                  expires_at, unmatched_by, matched_at
    `

    var match Match
    err := r.db.QueryRowxContext(ctx, insert, low, high).StructScan(&match)
    if err == nil {
        return &match, true, nil
    }
    if err != sql.ErrNoRows {
        return nil, false, err
    }

    existing, err := r.FindMatchByPair(ctx, low, high)
    if err != nil {
        return nil, false, err
    }

    return existing, false, nil
}

func (r *postgresRepository) FindMatchByPair(ctx context.Context, a, b int64) (*Match, error) {
    low, high := normalizePair(a, b)

    var match Match
    query := `
        SELECT id, user1_id, user2_id, chat_enabled, call_enabled, status,
               expires_at, unmatched_by, matched_at
        FROM matches
        WHERE user1_id = $1 AND user2_id = $2
    `

    err := r.db.GetContext(ctx, &match, query, low, high)
    if err == sql.ErrNoRows {
        return nil, ErrMatchNotFound
    }
    if err != nil {
        return nil, err
    }

    return &match, nil
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
    var match Match
    query := `
        SELECT id, user1_id, user2_id, chat_enabled, call_enabled, status,
               expires_at, unmatched_by, matched_at
        FROM matches
        WHERE id = $1
    `

    err := r.db.GetContext(ctx, &match, query, id)
    if err == sql.ErrNoRows {
        return nil, ErrMatchNotFound
    }
    if err != nil {
        return nil, err
    }

    return &match, nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64) ([]*Match, error) {
    query := `
        SELECT m.id, m.user1_id, m.user2_id, m.chat_enabled, m.call_enabled,
               m.status, m.expires_at, m.unmatched_by, m.matched_at,
               p.user_id AS partner_id,
               p.basic_info->>'bio' AS partner_bio,
               p.media->0->>'url' AS partner_photo
        FROM matches m
        JOIN profiles p ON p.user_id = CASE
            WHEN m.user1_id = $1 THEN m.user2_id ELSE m.user1_id
        END
        WHERE (m.user1_id = $1 OR m.user2_id = $1)
        ORDER BY m.matched_at DESC
    `

    rows, err := r.db.QueryxContext(ctx, query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var matches []*Match
    for rows.Next() {
        var match Match
        var partner PartnerInfo

        err := rows.Scan(
            &match.ID, &match.User1ID, &match.User2ID, &match.ChatEnabled,
            &match.CallEnabled, &match.Status, &match.ExpiresAt,
            &match.UnmatchedBy, &match.MatchedAt,
            &partner.UserID, &partner.Bio, &partner.Photo,
        )
        if err != nil {
            log.Printf("Error scanning match row: %v", err)
            continue
        }

        match.Partner = &partner
        matches = append(matches, &match)
    }

    return matches, rows.Err()
}

func (r *postgresRepository) SetChatEnabled(ctx context.Context, matchID int64, enabled bool, byUserID *int64) error {
    query := `
        UPDATE matches
        SET chat_enabled = $2, unmatched_by = $3
        WHERE id = $1
    `

    res, err := r.db.ExecContext(ctx, query, matchID, enabled, byUserID)
    if err != nil {
        return err
    }

    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrMatchNotFound
    }

    return nil
}

// Boost methods

func (r *postgresRepository) InsertBoost(ctx context.Context, userID int64, start, end time.Time) (*Boost, error) {
    // A partial unique index on (user_id) WHERE is_active turns the
    // duplicate-active-boost race into a constraint violation
    query := `
        INSERT INTO boosts (user_id, start_time, end_time, is_active)
        VALUES ($1, $2, $3, TRUE)
        RETURNING id, user_id, start_time, end_time, is_active
    `

    var boost Boost
    err := r.db.QueryRowxContext(ctx, query, userID, start, end).StructScan(&boost)
    if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
        return nil, ErrBoostAlreadyActive
    }
    if err != nil {
        return nil, err
    }

    return &boost, nil
}

func (r *postgresRepository) ActiveBoost(ctx context.Context, userID int64, now time.Time) (*Boost, error) {
    var boost Boost
    query := `
        SELECT id, user_id, start_time, end_time, is_active
        FROM boosts
        WHERE user_id = $1 AND is_active = TRUE
          AND start_time <= $2 AND end_time > $2
        ORDER BY end_time DESC
        LIMIT 1
    `

    err := r.db.GetContext(ctx, &boost, query, userID, now)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }

    return &boost, nil
}

func (r *postgresRepository) ActiveBoostUsers(ctx context.Context, userIDs []int64, now time.Time) (map[int64]bool, error) {
    boosted := make(map[int64]bool)
    if len(userIDs) == 0 {
        return boosted, nil
    }

    query := `
        SELECT DISTINCT user_id
        FROM boosts
        WHERE user_id = ANY($1) AND is_active = TRUE
          AND start_time <= $2 AND end_time > $2
    `

    rows, err := r.db.QueryxContext(ctx, query, pq.Array(userIDs), now)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    for rows.Next() {
        var userID int64
        if err := rows.Scan(&userID); err != nil {
            return nil, err
        }
        boosted[userID] = true
    }

    return boosted, rows.Err()
}

func (r *postgresRepository) ExpireOldBoosts(ctx context.Context, now time.Time) (int64, error) {
    query := `UPDATE boosts SET is_active = FALSE WHERE is_active = TRUE AND end_time <= $1`

    res, err := r.db.ExecContext(ctx, query, now)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// Premium oracle

func (r *postgresRepository) IsPremium(ctx context.Context, userID int64) (bool, error) {
    var premium bool
    query := `
        SELECT EXISTS(
            SELECT 1 FROM subscriptions
            WHERE user_id = $1 AND status = 'active'
              AND (expires_at IS NULL OR expires_at > NOW())
        )
    `

    err := r.db.GetContext(ctx, &premium, query, userID)
    return premium, err
}
