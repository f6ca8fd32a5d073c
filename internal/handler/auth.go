package handler

import (
    "context"  // provides context with cancellation for storage calls
    "strings"  // string manipulation utilities
    "time"     // token lifetimes

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/finance-account-api/internal/apperr"     // error kinds mapped to statuses
    "github.com/iliyamo/finance-account-api/internal/middleware" // cookie names and token extraction
    "github.com/iliyamo/finance-account-api/internal/service"    // session lifecycle
    "github.com/iliyamo/finance-account-api/internal/utils"      // token claims
)

// Sessions is the part of service.SessionManager the auth endpoints use.
type Sessions interface {
    Login(ctx context.Context, username, password string) (*service.Session, error)
    Refresh(ctx context.Context, token string) (*service.Renewal, error)
    Logout(ctx context.Context, token string)
    Validate(token string) (*utils.Claims, error)
    AccessTTL() time.Duration
    RefreshTTL() time.Duration
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Sessions Sessions
    Cookies  CookiePolicy
}

func NewAuthHandler(s Sessions, cookies CookiePolicy) *AuthHandler {
    return &AuthHandler{Sessions: s, Cookies: cookies}
}

// ----- DTOs -----

type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

// Login: verify credentials, set both cookies and return the pair in the body
// for clients that cannot use cookies.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return apperr.BadRequest("invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)

    ctx, cancel := requestContext(c)
    defer cancel()

    s, err := h.Sessions.Login(ctx, req.Username, req.Password)
    if err != nil {
        return err
    }

    h.Cookies.set(c, middleware.AccessCookie, s.Access.Token, h.Sessions.AccessTTL())
    h.Cookies.set(c, middleware.RefreshCookie, s.Refresh.Token, h.Sessions.RefreshTTL())

    return success(c, echo.Map{
        "access_token":  s.Access.Token,
        "refresh_token": s.Refresh.Token,
        "user":          s.User,
        "expires_in":    int64(h.Sessions.AccessTTL() / time.Second),
    })
}

// Refresh: cookie first, then JSON body.  Only a new access token is issued;
// the refresh token is echoed back unchanged.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw := readCookie(c, middleware.RefreshCookie)
    if raw == "" {
        var req refreshReq
        _ = c.Bind(&req) // a missing or malformed body just means no token
        raw = strings.TrimSpace(req.RefreshToken)
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    r, err := h.Sessions.Refresh(ctx, raw)
    if err != nil {
        return err
    }

    h.Cookies.set(c, middleware.AccessCookie, r.Access.Token, h.Sessions.AccessTTL())
    return success(c, echo.Map{
        "access_token":  r.Access.Token,
        "refresh_token": r.Refresh,
        "expires_in":    int64(h.Sessions.AccessTTL() / time.Second),
    })
}

// Logout: cookie first, then the refresh_token query parameter.  Always
// succeeds and always clears both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
    raw := readCookie(c, middleware.RefreshCookie)
    if raw == "" {
        raw = strings.TrimSpace(c.QueryParam("refresh_token"))
    }

    ctx, cancel := requestContext(c)
    defer cancel()
    h.Sessions.Logout(ctx, raw)

    h.Cookies.clear(c, middleware.AccessCookie)
    h.Cookies.clear(c, middleware.RefreshCookie)
    return success(c, echo.Map{"message": "logout successful"})
}

// Validate: cookie first, then bearer header.  Signature and expiry only.
func (h *AuthHandler) Validate(c echo.Context) error {
    claims, err := h.Sessions.Validate(middleware.AccessToken(c))
    if err != nil {
        return err
    }
    return success(c, echo.Map{"message": "token valid", "user": claims})
}
