package middleware

// identity.go defines helpers for reading the authenticated user that
// CookieJWTAuth stored, either from the Echo context or from the request
// context.

import (
    "context"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/finance-account-api/internal/utils"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id utils.Identity) context.Context {
    return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (utils.Identity, bool) {
    id, ok := ctx.Value(identityKey{}).(utils.Identity)
    return id, ok && id.UserID != ""
}

// ClaimsFrom returns the claims stored by CookieJWTAuth, or nil when the
// route is not protected.
func ClaimsFrom(c echo.Context) *utils.Claims {
    cl, _ := c.Get(ClaimsKey).(*utils.Claims)
    return cl
}

// userID extracts a user identifier for rate limit keys.  It returns "anon"
// when no user is authenticated.
func userID(c echo.Context) string {
    if s, ok := c.Get(UserIDKey).(string); ok && s != "" {
        return s
    }
    return "anon"
}
