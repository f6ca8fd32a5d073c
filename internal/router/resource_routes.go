package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-account-api/internal/handler"
)

// RegisterResources registers the account and card endpoints.  Every route
// requires a valid access token and acts only on the caller's own rows.
func RegisterResources(e *echo.Echo, a *handler.AccountHandler, c *handler.CardHandler, gate echo.MiddlewareFunc) {
	// ---- Accounts ----
	acc := e.Group("/accounts", gate)
	acc.POST("/create", a.Create)
	acc.GET("", a.List)
	acc.GET("/user/:userId", a.List)
	acc.DELETE("/:accountId", a.Delete)

	// ---- Cards ----
	cards := e.Group("/cards", gate)
	cards.POST("/create", c.Create)
	cards.GET("", c.List)
	cards.GET("/user/:userId", c.List)
	cards.DELETE("/:cardId", c.Delete)
}
