// internal/profile/service.go

package profile

import (
    "context"
    "time"

    "github.com/amoradating/amora-backend/internal/common/apperr"
    "github.com/amoradating/amora-backend/internal/geo"
)

var (
    ErrProfileNotFound = apperr.New(apperr.KindNotFound, "profile not found")
    ErrProfileExists   = apperr.New(apperr.KindConflict, "profile already exists for this user")
    ErrInvalidBirthday = apperr.New(apperr.KindPreconditionFailed, "invalid date of birth")
)

const minAge = 18

type Service interface {
    CreateProfile(ctx context.Context, userID int64, req *CreateProfileRequest) (*Profile, error)
    GetProfile(ctx context.Context, userID int64) (*Profile, error)
    UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)
    SetMedia(ctx context.Context, userID int64, media []MediaItem) (*Profile, error)
    SetPaused(ctx context.Context, userID int64, paused bool) error
}

type service struct {
    repo Repository
}

func NewService(repo Repository) Service {
    return &service{repo: repo}
}

func (s *service) CreateProfile(ctx context.Context, userID int64, req *CreateProfileRequest) (*Profile, error) {
    dob, err := parseBirthday(req.DateOfBirth)
    if err != nil {
        return nil, err
    }

    p := &Profile{
        UserID: userID,
        BasicInfo: BasicInfo{
            Gender:      req.Gender,
            DateOfBirth: &dob,
            Bio:         req.Bio,
        },
        DatingPreferences: DatingPreferences{
            WhoToDate: req.WhoToDate,
            AgeMin:    req.AgeMin,
            AgeMax:    req.AgeMax,
            Intention: req.Intention,
        },
        Media: MediaList{},
    }

    if err := s.repo.Create(ctx, p); err != nil {
        return nil, err
    }

    return p, nil
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
    return s.repo.GetByUserID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
    p, err := s.repo.GetByUserID(ctx, userID)
    if err != nil {
        return nil, err
    }

    applyUpdate(p, req)

    if req.DateOfBirth != nil {
        dob, err := parseBirthday(*req.DateOfBirth)
        if err != nil {
            return nil, err
        }
        p.BasicInfo.DateOfBirth = &dob
    }

    if err := s.repo.Update(ctx, p); err != nil {
        return nil, err
    }

    return p, nil
}

func (s *service) SetMedia(ctx context.Context, userID int64, media []MediaItem) (*Profile, error) {
    p, err := s.repo.GetByUserID(ctx, userID)
    if err != nil {
        return nil, err
    }

    p.Media = migrateMedia(media, nil)

    if err := s.repo.Update(ctx, p); err != nil {
        return nil, err
    }

    return p, nil
}

func (s *service) SetPaused(ctx context.Context, userID int64, paused bool) error {
    p, err := s.repo.GetByUserID(ctx, userID)
    if err != nil {
        return err
    }

    p.IsPaused = paused
    return s.repo.Update(ctx, p)
}

func applyUpdate(p *Profile, req *UpdateProfileRequest) {
    if req.Gender != nil {
        p.BasicInfo.Gender = *req.Gender
    }
    if req.Bio != nil {
        p.BasicInfo.Bio = *req.Bio
    }
    if req.WhoToDate != nil {
        p.DatingPreferences.WhoToDate = req.WhoToDate
    }
    if req.AgeMin != nil {
        p.DatingPreferences.AgeMin = *req.AgeMin
    }
    if req.AgeMax != nil {
        p.DatingPreferences.AgeMax = *req.AgeMax
    }
    if req.MaxDistanceKm != nil {
        p.DatingPreferences.MaxDistanceKm = *req.MaxDistanceKm
    }
    if req.Intention != nil {
        p.DatingPreferences.Intention = *req.Intention
    }
    if req.RelationshipType != nil {
        p.DatingPreferences.RelationshipType = *req.RelationshipType
    }
    if req.Drink != nil {
        p.Lifestyle.Drink = *req.Drink
    }
    if req.SmokeTobacco != nil {
        p.Lifestyle.SmokeTobacco = *req.SmokeTobacco
    }
    if req.SmokeWeed != nil {
        p.Lifestyle.SmokeWeed = *req.SmokeWeed
    }
    if req.Drugs != nil {
        p.Lifestyle.Drugs = *req.Drugs
    }
    if req.PoliticalBeliefs != nil {
        p.Lifestyle.PoliticalBeliefs = *req.PoliticalBeliefs
    }
    if req.ReligiousBeliefs != nil {
        p.Lifestyle.ReligiousBeliefs = *req.ReligiousBeliefs
    }
    if req.FamilyPlans != nil {
        p.PersonalDetails.FamilyPlans = *req.FamilyPlans
    }
    if req.HeightCm != nil {
        p.PersonalDetails.HeightCm = *req.HeightCm
    }
    if req.Education != nil {
        p.PersonalDetails.Education = *req.Education
    }
    if req.Latitude != nil && req.Longitude != nil {
        p.Location = geo.Point{Lat: *req.Latitude, Lng: *req.Longitude}
    }
    if req.IsPaused != nil {
        p.IsPaused = *req.IsPaused
    }
    if req.IsHidden != nil {
        p.IsHidden = *req.IsHidden
    }
}

func parseBirthday(value string) (time.Time, error) {
    dob, err := time.Parse("2006-01-02", value)
    if err != nil {
        return time.Time{}, ErrInvalidBirthday
    }
    if dob.After(time.Now().AddDate(-minAge, 0, 0)) {
        return time.Time{}, apperr.New(apperr.KindPreconditionFailed, "must be at least 18 years old")
    }
    return dob, nil
}
