// internal/profile/models.go

package profile

import (
    "database/sql/driver"
    "encoding/json"
    "time"

    "github.com/amoradating/amora-backend/internal/geo"
)

// Profile represents a user's dating profile
type Profile struct {
    UserID            int64             `json:"user_id" db:"user_id"`
    BasicInfo         BasicInfo         `json:"basic_info" db:"basic_info"`
    DatingPreferences DatingPreferences `json:"dating_preferences" db:"dating_preferences"`
    Lifestyle         Lifestyle         `json:"lifestyle" db:"lifestyle"`
    PersonalDetails   PersonalDetails   `json:"personal_details" db:"personal_details"`
    Media             MediaList         `json:"media" db:"media"`
    Location          geo.Point         `json:"location"`
    IsPaused          bool              `json:"is_paused" db:"is_paused"`
    IsHidden          bool              `json:"is_hidden" db:"is_hidden"`
    CreatedAt         time.Time         `json:"created_at" db:"created_at"`
    UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// Age derives the user's age in whole years from date of birth.
// Returns 0 when the date of birth is unset.
func (p *Profile) Age() int {
    if p.BasicInfo.DateOfBirth == nil {
        return 0
    }
    now := time.Now()
    age := now.Year() - p.BasicInfo.DateOfBirth.Year()
    if now.YearDay() < p.BasicInfo.DateOfBirth.YearDay() {
        age--
    }
    return age
}

// Discoverable reports whether the profile may appear in another user's feed
func (p *Profile) Discoverable() bool {
    return !p.IsPaused && !p.IsHidden && len(p.Media) > 0
}

// BasicInfo holds core demographic attributes
type BasicInfo struct {
    Gender      string     `json:"gender,omitempty"`
    DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
    Bio         string     `json:"bio,omitempty"`
}

// Scan implements the sql.Scanner interface for BasicInfo
func (b *BasicInfo) Scan(value interface{}) error {
    if value == nil {
        return nil
    }
    if bytes, ok := value.([]byte); ok {
        return json.Unmarshal(bytes, b)
    }
    return nil
}

// Value implements the driver.Valuer interface for BasicInfo
func (b BasicInfo) Value() (driver.Value, error) {
    return json.Marshal(b)
}

// DatingPreferences holds who the user wants to meet
type DatingPreferences struct {
    WhoToDate        []string `json:"who_to_date,omitempty"` // "men", "women", "everyone", ...
    AgeMin           int      `json:"age_min,omitempty"`
    AgeMax           int      `json:"age_max,omitempty"`
    MaxDistanceKm    float64  `json:"max_distance_km,omitempty"`
    Intention        string   `json:"intention,omitempty"`
    RelationshipType string   `json:"relationship_type,omitempty"`
}

// Scan implements the sql.Scanner interface for DatingPreferences
func (d *DatingPreferences) Scan(value interface{}) error {
    if value == nil {
        return nil
    }
    if bytes, ok := value.([]byte); ok {
        return json.Unmarshal(bytes, d)
    }
    return nil
}

// Value implements the driver.Valuer interface for DatingPreferences
func (d DatingPreferences) Value() (driver.Value, error) {
    return json.Marshal(d)
}

// Lifestyle holds the enumerated lifestyle answers.
// Each field is an enumerated value or "prefer-not-to-say"; empty means unanswered.
type Lifestyle struct {
    Drink            string `json:"drink,omitempty"`
    SmokeTobacco     string `json:"smoke_tobacco,omitempty"`
    SmokeWeed        string `json:"smoke_weed,omitempty"`
    Drugs            string `json:"drugs,omitempty"`
    PoliticalBeliefs string `json:"political_beliefs,omitempty"`
    ReligiousBeliefs string `json:"religious_beliefs,omitempty"`
}

// Scan implements the sql.Scanner interface for Lifestyle
func (l *Lifestyle) Scan(value interface{}) error {
    if value == nil {
        return nil
    }
    if bytes, ok := value.([]byte); ok {
        return json.Unmarshal(bytes, l)
    }
    return nil
}

// Value implements the driver.Valuer interface for Lifestyle
func (l Lifestyle) Value() (driver.Value, error) {
    return json.Marshal(l)
}

// PersonalDetails holds longer-horizon attributes
type PersonalDetails struct {
    FamilyPlans string `json:"family_plans,omitempty"` // "want-kids", "dont-want-kids", "not-sure-yet"
    HeightCm    int    `json:"height_cm,omitempty"`
    Education   string `json:"education,omitempty"`
}

// Scan implements the sql.Scanner interface for PersonalDetails
func (p *PersonalDetails) Scan(value interface{}) error {
    if value == nil {
        return nil
    }
    if bytes, ok := value.([]byte); ok {
        return json.Unmarshal(bytes, p)
    }
    return nil
}

// Value implements the driver.Valuer interface for PersonalDetails
func (p PersonalDetails) Value() (driver.Value, error) {
    return json.Marshal(p)
}

// MediaItem is a single photo or video on a profile
type MediaItem struct {
    Type string `json:"type"` // "photo" or "video"
    URL  string `json:"url"`
}

// MediaList is the ordered media gallery.
// Older rows stored a bare list of photo URLs, or wrapped the list in a
// {"media": [...]} envelope; Scan migrates both shapes so the rest of the
// code only ever sees []MediaItem.
type MediaList []MediaItem

// Scan implements the sql.Scanner interface for MediaList
func (m *MediaList) Scan(value interface{}) error {
    if value == nil {
        return nil
    }
    bytes, ok := value.([]byte)
    if !ok {
        return nil
    }

    // Current shape: a plain list of items
    var items []MediaItem
    if err := json.Unmarshal(bytes, &items); err == nil {
        *m = migrateMedia(items, nil)
        return nil
    }

    // Legacy shape: {"media": [...]} envelope
    var wrapped struct {
        Media  []MediaItem `json:"media"`
        Photos []string    `json:"photos"`
    }
    if err := json.Unmarshal(bytes, &wrapped); err == nil {
        *m = migrateMedia(wrapped.Media, wrapped.Photos)
        return nil
    }

    // Legacy shape: bare list of photo URLs
    var urls []string
    if err := json.Unmarshal(bytes, &urls); err == nil {
        *m = migrateMedia(nil, urls)
        return nil
    }

    return nil
}

// Value implements the driver.Valuer interface for MediaList
func (m MediaList) Value() (driver.Value, error) {
    if m == nil {
        return json.Marshal([]MediaItem{})
    }
    return json.Marshal(m)
}

// migrateMedia normalizes media items and converts legacy photo URLs
func migrateMedia(items []MediaItem, legacyPhotos []string) MediaList {
    out := make(MediaList, 0, len(items)+len(legacyPhotos))
    for _, item := range items {
        if item.URL == "" {
            continue
        }
        if item.Type == "" {
            item.Type = "photo"
        }
        out = append(out, item)
    }
    for _, url := range legacyPhotos {
        if url == "" {
            continue
        }
        out = append(out, MediaItem{Type: "photo", URL: url})
    }
    return out
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
    Gender           *string  `json:"gender" validate:"omitempty,oneof=man woman other"`
    DateOfBirth      *string  `json:"date_of_birth" validate:"omitempty"`
    Bio              *string  `json:"bio" validate:"omitempty,max=500"`
    WhoToDate        []string `json:"who_to_date" validate:"omitempty,max=3,dive,oneof=men women everyone"`
    AgeMin           *int     `json:"age_min" validate:"omitempty,min=18,max=100"`
    AgeMax           *int     `json:"age_max" validate:"omitempty,min=18,max=100"`
    MaxDistanceKm    *float64 `json:"max_distance_km" validate:"omitempty,min=1,max=20000"`
    Intention        *string  `json:"intention" validate:"omitempty,max=50"`
    RelationshipType *string  `json:"relationship_type" validate:"omitempty,max=50"`
    Drink            *string  `json:"drink" validate:"omitempty,max=30"`
    SmokeTobacco     *string  `json:"smoke_tobacco" validate:"omitempty,max=30"`
    SmokeWeed        *string  `json:"smoke_weed" validate:"omitempty,max=30"`
    Drugs            *string  `json:"drugs" validate:"omitempty,max=30"`
    PoliticalBeliefs *string  `json:"political_beliefs" validate:"omitempty,max=30"`
    ReligiousBeliefs *string  `json:"religious_beliefs" validate:"omitempty,max=30"`
    FamilyPlans      *string  `json:"family_plans" validate:"omitempty,oneof=want-kids dont-want-kids not-sure-yet"`
    HeightCm         *int     `json:"height_cm" validate:"omitempty,min=100,max=250"`
    Education        *string  `json:"education" validate:"omitempty,max=200"`
    Latitude         *float64 `json:"latitude" validate:"omitempty,latitude"`
    Longitude        *float64 `json:"longitude" validate:"omitempty,longitude"`
    IsPaused         *bool    `json:"is_paused"`
    IsHidden         *bool    `json:"is_hidden"`
}

// CreateProfileRequest represents initial profile creation
type CreateProfileRequest struct {
    Gender      string   `json:"gender" validate:"required,oneof=man woman other"`
    DateOfBirth string   `json:"date_of_birth" validate:"required"`
    Bio         string   `json:"bio" validate:"omitempty,max=500"`
    WhoToDate   []string `json:"who_to_date" validate:"required,min=1,max=3,dive,oneof=men women everyone"`
    AgeMin      int      `json:"age_min" validate:"omitempty,min=18,max=100"`
    AgeMax      int      `json:"age_max" validate:"omitempty,min=18,max=100"`
    Intention   string   `json:"intention" validate:"omitempty,max=50"`
}

// MediaRequest adds or replaces the profile gallery
type MediaRequest struct {
    Media []MediaItem `json:"media" validate:"required,min=1,max=9,dive"`
}
