// internal/profile/service_test.go

package profile

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/amoradating/amora-backend/internal/common/apperr"
    "github.com/amoradating/amora-backend/internal/geo"
)

type fakeRepo struct {
    profiles map[int64]*Profile
}

func newFakeRepo() *fakeRepo {
    return &fakeRepo{profiles: make(map[int64]*Profile)}
}

func (f *fakeRepo) Create(ctx context.Context, p *Profile) error {
    if _, exists := f.profiles[p.UserID]; exists {
        return ErrProfileExists
    }
    p.CreatedAt = time.Now()
    p.UpdatedAt = p.CreatedAt
    f.profiles[p.UserID] = p
    return nil
}

func (f *fakeRepo) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
    p, ok := f.profiles[userID]
    if !ok {
        return nil, ErrProfileNotFound
    }
    copied := *p
    return &copied, nil
}

func (f *fakeRepo) ListExcluding(ctx context.Context, excludeUserID int64) ([]*Profile, error) {
    var out []*Profile
    for _, p := range f.profiles {
        if p.UserID != excludeUserID {
            copied := *p
            out = append(out, &copied)
        }
    }
    return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, p *Profile) error {
    if _, ok := f.profiles[p.UserID]; !ok {
        return ErrProfileNotFound
    }
    p.UpdatedAt = time.Now()
    f.profiles[p.UserID] = p
    return nil
}

func validCreateRequest() *CreateProfileRequest {
    return &CreateProfileRequest{
        Gender:      "woman",
        DateOfBirth: "1995-06-15",
        Bio:         "Hi there",
        WhoToDate:   []string{"men"},
        AgeMin:      25,
        AgeMax:      40,
        Intention:   "long-term",
    }
}

func TestCreateProfile(t *testing.T) {
    svc := NewService(newFakeRepo())

    p, err := svc.CreateProfile(context.Background(), 1, validCreateRequest())
    require.NoError(t, err)

    assert.Equal(t, int64(1), p.UserID)
    assert.Equal(t, "woman", p.BasicInfo.Gender)
    require.NotNil(t, p.BasicInfo.DateOfBirth)
    assert.Equal(t, 1995, p.BasicInfo.DateOfBirth.Year())
    assert.Equal(t, []string{"men"}, p.DatingPreferences.WhoToDate)
    assert.Empty(t, p.Media)
    assert.False(t, p.Discoverable(), "no media yet")
}

func TestCreateProfileDuplicate(t *testing.T) {
    svc := NewService(newFakeRepo())
    ctx := context.Background()

    _, err := svc.CreateProfile(ctx, 1, validCreateRequest())
    require.NoError(t, err)

    _, err = svc.CreateProfile(ctx, 1, validCreateRequest())
    assert.ErrorIs(t, err, ErrProfileExists)
}

func TestCreateProfileRejectsBadBirthday(t *testing.T) {
    svc := NewService(newFakeRepo())
    ctx := context.Background()

    req := validCreateRequest()
    req.DateOfBirth = "15/06/1995"
    _, err := svc.CreateProfile(ctx, 1, req)
    assert.ErrorIs(t, err, ErrInvalidBirthday)

    req = validCreateRequest()
    req.DateOfBirth = time.Now().AddDate(-17, 0, 0).Format("2006-01-02")
    _, err = svc.CreateProfile(ctx, 1, req)
    require.Error(t, err)
    assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestUpdateProfileMergesOnlyProvidedFields(t *testing.T) {
    svc := NewService(newFakeRepo())
    ctx := context.Background()

    _, err := svc.CreateProfile(ctx, 1, validCreateRequest())
    require.NoError(t, err)

    bio := "Updated bio"
    drink := "socially"
    lat, lng := 51.5074, -0.1278
    p, err := svc.UpdateProfile(ctx, 1, &UpdateProfileRequest{
        Bio:       &bio,
        Drink:     &drink,
        Latitude:  &lat,
        Longitude: &lng,
    })
    require.NoError(t, err)

    assert.Equal(t, "Updated bio", p.BasicInfo.Bio)
    assert.Equal(t, "socially", p.Lifestyle.Drink)
    assert.Equal(t, geo.Point{Lat: lat, Lng: lng}, p.Location)

    // Untouched fields survive the merge
    assert.Equal(t, "woman", p.BasicInfo.Gender)
    assert.Equal(t, "long-term", p.DatingPreferences.Intention)
    assert.Equal(t, []string{"men"}, p.DatingPreferences.WhoToDate)
}

func TestUpdateProfileNotFound(t *testing.T) {
    svc := NewService(newFakeRepo())

    _, err := svc.UpdateProfile(context.Background(), 42, &UpdateProfileRequest{})
    assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSetMediaNormalizesItems(t *testing.T) {
    svc := NewService(newFakeRepo())
    ctx := context.Background()

    _, err := svc.CreateProfile(ctx, 1, validCreateRequest())
    require.NoError(t, err)

    p, err := svc.SetMedia(ctx, 1, []MediaItem{
        {URL: "https://cdn.example.com/a.jpg"},
        {Type: "video", URL: "https://cdn.example.com/b.mp4"},
        {Type: "photo", URL: ""},
    })
    require.NoError(t, err)

    require.Len(t, p.Media, 2)
    assert.Equal(t, "photo", p.Media[0].Type)
    assert.True(t, p.Discoverable())
}

func TestSetPaused(t *testing.T) {
    repo := newFakeRepo()
    svc := NewService(repo)
    ctx := context.Background()

    _, err := svc.CreateProfile(ctx, 1, validCreateRequest())
    require.NoError(t, err)

    require.NoError(t, svc.SetPaused(ctx, 1, true))
    p, err := svc.GetProfile(ctx, 1)
    require.NoError(t, err)
    assert.True(t, p.IsPaused)

    require.NoError(t, svc.SetPaused(ctx, 1, false))
    p, err = svc.GetProfile(ctx, 1)
    require.NoError(t, err)
    assert.False(t, p.IsPaused)
}
