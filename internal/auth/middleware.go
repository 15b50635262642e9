// internal/auth/middleware.go
// JWT authentication middleware

package auth

import (
    "context"
    "net/http"
    "strings"

    "github.com/amoradating/amora-backend/internal/common/utils"
)

// Middleware provides authentication middleware
type Middleware struct {
    service Service
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(service Service) *Middleware {
    return &Middleware{
        service: service,
    }
}

// Authenticate is the main middleware function that protects routes
// It verifies the JWT token and adds user information to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        // 1. Extract token from Authorization header
        token := m.extractToken(r)
        if token == "" {
            utils.ErrorResponse(w, "Missing or invalid authorization header", http.StatusUnauthorized)
            return
        }

        // 2. Validate token
        claims, err := m.service.ValidateToken(r.Context(), token)
        if err != nil {
            utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
            return
        }

        // 3. Check if it's an access token (not refresh)
        if claims.Type != "access" {
            utils.ErrorResponse(w, "Invalid token type", http.StatusUnauthorized)
            return
        }

        // 4. Add user information to request context
        // This allows handlers to access user data without another database query
        ctx := context.WithValue(r.Context(), "userID", claims.UserID)

        // 5. Pass to the next handler with the updated context
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

// OptionalAuthenticate is middleware for routes where auth is optional
// It adds user context if a valid token is present, but doesn't fail if missing
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        token := m.extractToken(r)
        if token == "" {
            next.ServeHTTP(w, r)
            return
        }

        claims, err := m.service.ValidateToken(r.Context(), token)
        if err != nil {
            next.ServeHTTP(w, r)
            return
        }

        if claims.Type == "access" {
            ctx := context.WithValue(r.Context(), "userID", claims.UserID)
            r = r.WithContext(ctx)
        }

        next.ServeHTTP(w, r)
    })
}

// extractToken pulls the bearer token from the Authorization header,
// falling back to the "token" query parameter for WebSocket upgrades
func (m *Middleware) extractToken(r *http.Request) string {
    header := r.Header.Get("Authorization")
    if header != "" {
        parts := strings.SplitN(header, " ", 2)
        if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
            return parts[1]
        }
        return ""
    }

    // Browsers cannot set headers on WebSocket connections
    return r.URL.Query().Get("token")
}

// UserIDFromContext returns the authenticated user ID, if any
func UserIDFromContext(ctx context.Context) (int64, bool) {
    userID, ok := ctx.Value("userID").(int64)
    return userID, ok
}
