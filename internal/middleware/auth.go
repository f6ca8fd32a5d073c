package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/finance-account-api/internal/apperr"
    "github.com/iliyamo/finance-account-api/internal/utils"
)

// Cookie names shared by the auth handlers and the gate.
const (
    AccessCookie  = "access_token"
    RefreshCookie = "refresh_token"
)

// Context keys under which the gate stores the authenticated identity.
const (
    ClaimsKey = "claims"
    UserIDKey = "user_id"
)

// TokenValidator checks an access token.  service.SessionManager implements
// it.
type TokenValidator interface {
    Validate(token string) (*utils.Claims, error)
}

// CookieJWTAuth returns an Echo middleware that admits a request only when it
// carries a valid access token, read from the access_token cookie first and
// the Authorization bearer header second.  On success the claims are stored
// in the Echo context under "claims" and "user_id" and in the request
// context.  Every failure is reported as 403 Forbidden and the wrapped
// handler is not called.
func CookieJWTAuth(v TokenValidator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := AccessToken(c)
            if raw == "" {
                return apperr.Forbidden("token not found")
            }
            claims, err := v.Validate(raw)
            if err != nil {
                return apperr.Wrap(err, apperr.KindForbidden, "invalid or expired token")
            }

            c.Set(ClaimsKey, claims)
            c.Set(UserIDKey, claims.Subject)
            req := c.Request()
            c.SetRequest(req.WithContext(WithIdentity(req.Context(), claims.Identity())))
            return next(c)
        }
    }
}

// AccessToken returns the access token from the cookie, or failing that from
// an "Authorization: Bearer" header.  It returns "" when neither is present.
func AccessToken(c echo.Context) string {
    if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
        return ck.Value
    }
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
        return strings.TrimSpace(auth[7:])
    }
    return ""
}
