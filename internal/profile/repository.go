// internal/profile/repository.go

package profile

import (
    "context"
    "database/sql"
    "strings"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"
)

type Repository interface {
    Create(ctx context.Context, p *Profile) error
    GetByUserID(ctx context.Context, userID int64) (*Profile, error)
    ListExcluding(ctx context.Context, excludeUserID int64) ([]*Profile, error)
    Update(ctx context.Context, p *Profile) error
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

const profileColumns = `
    user_id, basic_info, dating_preferences, lifestyle, personal_details,
    media, latitude, longitude, is_paused, is_hidden, created_at, updated_at
`

func (r *postgresRepository) Create(ctx context.Context, p *Profile) error {
    query := `
        INSERT INTO profiles (
            user_id, basic_info, dating_preferences, lifestyle,
            personal_details, media, latitude, longitude, is_paused, is_hidden
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at, updated_at
    `

    err := r.db.QueryRowxContext(
        ctx, query,
        p.UserID, p.BasicInfo, p.DatingPreferences, p.Lifestyle,
        p.PersonalDetails, p.Media, p.Location.Lat, p.Location.Lng,
        p.IsPaused, p.IsHidden,
    ).Scan(&p.CreatedAt, &p.UpdatedAt)

    if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
        return ErrProfileExists
    }

    return err
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
    query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

    row := r.db.QueryRowxContext(ctx, query, userID)
    p, err := scanProfile(row)
    if err == sql.ErrNoRows {
        return nil, ErrProfileNotFound
    }
    if err != nil {
        return nil, err
    }

    return p, nil
}

func (r *postgresRepository) ListExcluding(ctx context.Context, excludeUserID int64) ([]*Profile, error) {
    query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id != $1`

    rows, err := r.db.QueryxContext(ctx, query, excludeUserID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var profiles []*Profile
    for rows.Next() {
        p, err := scanProfile(rows)
        if err != nil {
            continue
        }
        profiles = append(profiles, p)
    }

    return profiles, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, p *Profile) error {
    query := `
        UPDATE profiles
        SET basic_info = $2, dating_preferences = $3, lifestyle = $4,
            personal_details = $5, media = $6, latitude = $7, longitude = $8,
            is_paused = $9, is_hidden = $10, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
        RETURNING updated_at
    `

    err := r.db.QueryRowxContext(
        ctx, query,
        p.UserID, p.BasicInfo, p.DatingPreferences, p.Lifestyle,
        p.PersonalDetails, p.Media, p.Location.Lat, p.Location.Lng,
        p.IsPaused, p.IsHidden,
    ).Scan(&p.UpdatedAt)

    if err == sql.ErrNoRows {
        return ErrProfileNotFound
    }

    return err
}

// rowScanner covers both *sqlx.Row and *sqlx.Rows
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*Profile, error) {
    var p Profile
    err := row.Scan(
        &p.UserID, &p.BasicInfo, &p.DatingPreferences, &p.Lifestyle,
        &p.PersonalDetails, &p.Media, &p.Location.Lat, &p.Location.Lng,
        &p.IsPaused, &p.IsHidden, &p.CreatedAt, &p.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &p, nil
}

// normalizeMediaQuery is used by the one-time migration in main to rewrite
// legacy photo galleries into the current media shape.
const normalizeMediaQuery = `
    UPDATE profiles
    SET media = (
        SELECT COALESCE(jsonb_agg(jsonb_build_object('type', 'photo', 'url', elem)), '[]'::jsonb)
        FROM jsonb_array_elements_text(media) AS elem
    )
    WHERE jsonb_typeof(media) = 'array'
      AND jsonb_array_length(media) > 0
      AND jsonb_typeof(media->0) = 'string'
`

// NormalizeLegacyMedia rewrites legacy galleries in place. Safe to run repeatedly.
func (r *postgresRepository) NormalizeLegacyMedia(ctx context.Context) (int64, error) {
    res, err := r.db.ExecContext(ctx, strings.TrimSpace(normalizeMediaQuery))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
