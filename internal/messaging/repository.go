// internal/messaging/repository.go

package messaging

import (
    "context"
    "database/sql"
    "time"

    "github.com/jmoiron/sqlx"
)

type Repository interface {
    // Match lookups (read-only view over the dating schema)
    GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error)

    // Messages
    InsertMessage(ctx context.Context, m *Message) error
    GetMessage(ctx context.Context, id int64) (*Message, error)
    ListByMatch(ctx context.Context, matchID int64, limit, offset int) ([]*Message, error)
    MarkDelivered(ctx context.Context, messageID int64) (bool, error)
    MarkSeenBulk(ctx context.Context, matchID, receiverID int64, at time.Time) (int64, error)
    SoftDeleteMessage(ctx context.Context, messageID int64) error

    // Blocks
    InsertBlock(ctx context.Context, blockerID, blockedID int64) error
    DeleteBlock(ctx context.Context, blockerID, blockedID int64) error
    BlockExists(ctx context.Context, a, b int64) (bool, error)
    DisableChatForPair(ctx context.Context, a, b int64) error

    // Push tokens
    UpsertPushToken(ctx context.Context, userID int64, token, platform string) error
    DeletePushToken(ctx context.Context, token string) error
    GetUserPushTokens(ctx context.Context, userID int64) ([]*PushToken, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

func (r *postgresRepository) GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error) {
    var match MatchInfo
    err := r.db.GetContext(ctx, &match, `
        SELECT id, user1_id, user2_id, chat_enabled
        FROM matches
        WHERE id = $1`,
        matchID)
    if err == sql.ErrNoRows {
        return nil, ErrMatchNotFound
    }
    if err != nil {
        return nil, err
    }
    return &match, nil
}

func (r *postgresRepository) InsertMessage(ctx context.Context, m *Message) error {
    return r.db.QueryRowContext(ctx, `
        INSERT INTO messages (match_id, sender_id, receiver_id, text, media_url, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`,
        m.MatchID, m.SenderID, m.ReceiverID, m.Text, m.MediaURL, m.Status,
    ).Scan(&m.ID, &m.CreatedAt)
}

func (r *postgresRepository) GetMessage(ctx context.Context, id int64) (*Message, error) {
    var m Message
    err := r.db.GetContext(ctx, &m, `
        SELECT id, match_id, sender_id, receiver_id, text, media_url, status,
               is_deleted, created_at, seen_at
        FROM messages
        WHERE id = $1 AND NOT is_deleted`,
        id)
    if err == sql.ErrNoRows {
        return nil, ErrMessageNotFound
    }
    if err != nil {
        return nil, err
    }
    return &m, nil
}

func (r *postgresRepository) ListByMatch(ctx context.Context, matchID int64, limit, offset int) ([]*Message, error) {
    var messages []*Message
    err := r.db.SelectContext(ctx, &messages, `
        SELECT id, match_id, sender_id, receiver_id, text, media_url, status,
               is_deleted, created_at, seen_at
        FROM messages
        WHERE match_id = $1 AND NOT is_deleted
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`,
        matchID, limit, offset)
    return messages, err
}

// MarkDelivered advances a single message from sent to delivered. The
// guard keeps the transition monotonic: a message already delivered or
// seen is left untouched.
func (r *postgresRepository) MarkDelivered(ctx context.Context, messageID int64) (bool, error) {
    result, err := r.db.ExecContext(ctx, `
        UPDATE messages
        SET status = $1
        WHERE id = $2 AND status = $3`,
        StatusDelivered, messageID, StatusSent)
    if err != nil {
        return false, err
    }
    rows, err := result.RowsAffected()
    return rows > 0, err
}

// MarkSeenBulk advances every message addressed to receiverID in the match
// that has not yet been seen. Returns how many rows changed; calling it
// again immediately changes zero.
func (r *postgresRepository) MarkSeenBulk(ctx context.Context, matchID, receiverID int64, at time.Time) (int64, error) {
    result, err := r.db.ExecContext(ctx, `
        UPDATE messages
        SET status = $1, seen_at = $2
        WHERE match_id = $3 AND receiver_id = $4 AND status <> $1 AND NOT is_deleted`,
        StatusSeen, at, matchID, receiverID)
    if err != nil {
        return 0, err
    }
    return result.RowsAffected()
}

func (r *postgresRepository) SoftDeleteMessage(ctx context.Context, messageID int64) error {
    result, err := r.db.ExecContext(ctx, `
        UPDATE messages
        SET is_deleted = TRUE
        WHERE id = $1 AND NOT is_deleted`,
        messageID)
    if err != nil {
        return err
    }
    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return ErrMessageNotFound
    }
    return nil
}

func (r *postgresRepository) InsertBlock(ctx context.Context, blockerID, blockedID int64) error {
    _, err := r.db.ExecContext(ctx, `
        INSERT INTO blocks (blocker_id, blocked_id)
        VALUES ($1, $2)
        ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
        blockerID, blockedID)
    return err
}

func (r *postgresRepository) DeleteBlock(ctx context.Context, blockerID, blockedID int64) error {
    _, err := r.db.ExecContext(ctx, `
        DELETE FROM blocks
        WHERE blocker_id = $1 AND blocked_id = $2`,
        blockerID, blockedID)
    return err
}

func (r *postgresRepository) BlockExists(ctx context.Context, a, b int64) (bool, error) {
    var exists bool
    err := r.db.GetContext(ctx, &exists, `
        SELECT EXISTS (
            SELECT 1 FROM blocks
            WHERE (blocker_id = $1 AND blocked_id = $2)
               OR (blocker_id = $2 AND blocked_id = $1)
        )`,
        a, b)
    return exists, err
}

// DisableChatForPair flips chat_enabled off on the pair's match, if one
// exists. Matches store the pair normalized, so LEAST/GREATEST covers both
// argument orders.
func (r *postgresRepository) DisableChatForPair(ctx context.Context, a, b int64) error {
    _, err := r.db.ExecContext(ctx, `
        UPDATE matches
        SET chat_enabled = FALSE
        WHERE user1_id = LEAST($1, $2) AND user2_id = GREATEST($1, $2)`,
        a, b)
    return err
}

func (r *postgresRepository) UpsertPushToken(ctx context.Context, userID int64, token, platform string) error {
    _, err := r.db.ExecContext(ctx, `
        INSERT INTO push_tokens (user_id, token, platform, is_active)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (token)
        DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, is_active = TRUE`,
        userID, token, platform)
    return err
}

func (r *postgresRepository) DeletePushToken(ctx context.Context, token string) error {
    _, err := r.db.ExecContext(ctx, `
        DELETE FROM push_tokens
        WHERE token = $1`,
        token)
    return err
}

func (r *postgresRepository) GetUserPushTokens(ctx context.Context, userID int64) ([]*PushToken, error) {
    var tokens []*PushToken
    err := r.db.SelectContext(ctx, &tokens, `
        SELECT id, user_id, token, platform, is_active, created_at
        FROM push_tokens
        WHERE user_id = $1 AND is_active`,
        userID)
    return tokens, err
}
