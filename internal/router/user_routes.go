package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-account-api/internal/handler"
)

// RegisterUsers registers /users.  Registration is public; the profile and
// password change require a valid access token.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/users")
	g.POST("/create", u.Create)
	g.GET("/me", u.Me, gate)
	g.POST("/change-password", u.ChangePassword, gate)
}
