package handler

import (
    "context"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/finance-account-api/internal/apperr"
    "github.com/iliyamo/finance-account-api/internal/middleware"
    "github.com/iliyamo/finance-account-api/internal/model"
)

// Users is the part of service.UserService the user endpoints use.
type Users interface {
    Register(ctx context.Context, username, password string) (string, error)
    Profile(ctx context.Context, userID string) (model.PublicUser, error)
    ChangePassword(ctx context.Context, userID, current, next string) error
}

type UserHandler struct {
    Users Users
}

func NewUserHandler(u Users) *UserHandler { return &UserHandler{Users: u} }

type createUserReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type changePasswordReq struct {
    CurrentPassword string `json:"current_password"`
    NewPassword     string `json:"new_password"`
}

// Create registers a new user.  The route is public.
func (h *UserHandler) Create(c echo.Context) error {
    var req createUserReq
    if err := c.Bind(&req); err != nil {
        return apperr.BadRequest("invalid body")
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    id, err := h.Users.Register(ctx, strings.TrimSpace(req.Username), req.Password)
    if err != nil {
        return err
    }
    return success(c, echo.Map{"message": "user created", "userId": id})
}

// Me returns the authenticated user's public profile.
func (h *UserHandler) Me(c echo.Context) error {
    id, err := callerID(c)
    if err != nil {
        return err
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    p, err := h.Users.Profile(ctx, id)
    if err != nil {
        return err
    }
    return success(c, echo.Map{"id": p.ID, "username": p.Username})
}

// ChangePassword replaces the authenticated user's password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
    id, err := callerID(c)
    if err != nil {
        return err
    }
    var req changePasswordReq
    if err := c.Bind(&req); err != nil {
        return apperr.BadRequest("invalid body")
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    if err := h.Users.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
        return err
    }
    return success(c, echo.Map{"message": "password updated"})
}

// callerID returns the user id placed in the request by the auth gate.
func callerID(c echo.Context) (string, error) {
    id, ok := middleware.IdentityFrom(c.Request().Context())
    if !ok {
        return "", apperr.Unauthorized("not authenticated")
    }
    return id.UserID, nil
}
