package router // package router defines how HTTP routes are registered for the API

import (
	"net/http" // HTTP method names for CORS

	"github.com/labstack/echo/v4"                    // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware (recover, CORS, body limit)
	"go.uber.org/zap"                                // structured logging

	"github.com/iliyamo/finance-account-api/internal/handler"    // import the handlers that implement the endpoints
	"github.com/iliyamo/finance-account-api/internal/metrics"    // Prometheus collectors
	"github.com/iliyamo/finance-account-api/internal/middleware" // request logging, auth gate, rate limiting
)

// Deps carries everything the routes need.  Gate protects the user profile
// and resource routes; AuthLimiter throttles /auth and may be nil.
type Deps struct {
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	FrontendURL string
	DB          handler.Pinger

	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Accounts *handler.AccountHandler
	Cards    *handler.CardHandler

	Gate        echo.MiddlewareFunc
	AuthLimiter echo.MiddlewareFunc
}

// New builds the Echo instance with the global middleware stack and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	// Order matters: recover wraps everything, the logger sees the final status.
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log, d.Metrics))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.FrontendURL},
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("50M"))

	RegisterRoutes(e, d)
	RegisterAuth(e, d.Auth, d.AuthLimiter)
	RegisterUsers(e, d.Users, d.Gate)
	RegisterResources(e, d.Accounts, d.Cards, d.Gate)
	return e
}

// RegisterRoutes registers the operational endpoints: a health check for load
// balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
}

// RegisterAuth registers the session endpoints under /auth.  None of them
// goes through the gate; login, refresh and logout carry their own tokens.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	var mws []echo.MiddlewareFunc
	if limiter != nil {
		mws = append(mws, limiter)
	}
	g := e.Group("/auth", mws...)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.GET("/logout", a.Logout)
	g.GET("/validate", a.Validate)
}
