package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// CookiePolicy decides the attributes of the session cookies.  Cloud
// deployments are served over HTTPS from another origin than the frontend,
// so they need Secure and SameSite=None; local development uses Lax.
type CookiePolicy struct {
    Secure   bool
    SameSite http.SameSite
}

func NewCookiePolicy(cloud bool) CookiePolicy {
    if cloud {
        return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
    }
    return CookiePolicy{SameSite: http.SameSiteLaxMode}
}

func (p CookiePolicy) cookie(name, value string, maxAge int) *http.Cookie {
    return &http.Cookie{
        Name:     name,
        Value:    value,
        Path:     "/",
        MaxAge:   maxAge,
        HttpOnly: true,
        Secure:   p.Secure,
        SameSite: p.SameSite,
    }
}

// set writes a session cookie that lives for ttl.
func (p CookiePolicy) set(c echo.Context, name, value string, ttl time.Duration) {
    c.SetCookie(p.cookie(name, value, int(ttl/time.Second)))
}

// clear expires a session cookie with the same attributes it was set with.
func (p CookiePolicy) clear(c echo.Context, name string) {
    ck := p.cookie(name, "", -1)
    ck.Expires = time.Unix(0, 0)
    c.SetCookie(ck)
}

func readCookie(c echo.Context, name string) string {
    if ck, err := c.Cookie(name); err == nil {
        return ck.Value
    }
    return ""
}
