// internal/auth/service.go
// Token issuance and validation

package auth

import (
    "context"
    "time"

    "github.com/amoradating/amora-backend/internal/common/apperr"
    "github.com/amoradating/amora-backend/internal/common/utils"
)

const (
    accessTokenTTL  = 24 * time.Hour
    refreshTokenTTL = 30 * 24 * time.Hour
)

// TokenPair holds an access/refresh token pair
type TokenPair struct {
    AccessToken  string `json:"access_token"`
    RefreshToken string `json:"refresh_token"`
    ExpiresIn    int64  `json:"expires_in"`
}

// Service validates and issues JWT tokens
type Service interface {
    ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
    GenerateTokenPair(ctx context.Context, userID int64) (*TokenPair, error)
    RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type service struct {
    jwtSecret string
    issuer    string
}

// NewService creates the auth service
func NewService(jwtSecret, issuer string) Service {
    return &service{
        jwtSecret: jwtSecret,
        issuer:    issuer,
    }
}

// ValidateToken parses and verifies a JWT, including expiry
func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
    claims, err := utils.ValidateJWT(token, s.jwtSecret)
    if err != nil {
        return nil, apperr.Wrap(apperr.KindExpired, "invalid or expired token", err)
    }
    return claims, nil
}

// GenerateTokenPair issues a fresh access/refresh pair for a user
func (s *service) GenerateTokenPair(ctx context.Context, userID int64) (*TokenPair, error) {
    now := time.Now()

    access, err := utils.GenerateJWT(&utils.JWTClaims{
        UserID:    userID,
        Type:      "access",
        ExpiresAt: now.Add(accessTokenTTL).Unix(),
        IssuedAt:  now.Unix(),
        Issuer:    s.issuer,
    }, s.jwtSecret)
    if err != nil {
        return nil, err
    }

    refresh, err := utils.GenerateJWT(&utils.JWTClaims{
        UserID:    userID,
        Type:      "refresh",
        ExpiresAt: now.Add(refreshTokenTTL).Unix(),
        IssuedAt:  now.Unix(),
        Issuer:    s.issuer,
    }, s.jwtSecret)
    if err != nil {
        return nil, err
    }

    return &TokenPair{
        AccessToken:  access,
        RefreshToken: refresh,
        ExpiresIn:    int64(accessTokenTTL.Seconds()),
    }, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair
func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
    claims, err := s.ValidateToken(ctx, refreshToken)
    if err != nil {
        return nil, err
    }
    if claims.Type != "refresh" {
        return nil, apperr.New(apperr.KindForbidden, "not a refresh token")
    }
    return s.GenerateTokenPair(ctx, claims.UserID)
}
