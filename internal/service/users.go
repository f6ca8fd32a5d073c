package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/finance-account-api/internal/apperr"
	"github.com/iliyamo/finance-account-api/internal/model"
	"github.com/iliyamo/finance-account-api/internal/queue"
	"github.com/iliyamo/finance-account-api/internal/repository"
	"github.com/iliyamo/finance-account-api/internal/utils"
)

// UserService handles registration, profile lookup and password changes.
type UserService struct {
	users UserStore
	cost  int
	deps  Deps
}

func NewUserService(users UserStore, bcryptCost int, deps Deps) *UserService {
	return &UserService{users: users, cost: bcryptCost, deps: deps.withDefaults()}
}

func passwordTooLong() error {
	return apperr.BadRequest(fmt.Sprintf("password must be at most %d bytes", utils.MaxPasswordLength))
}

// Register creates a user and returns its new id.
func (s *UserService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperr.BadRequest("username and password are required")
	}
	if len(password) > utils.MaxPasswordLength {
		return "", passwordTooLong()
	}
	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		return "", apperr.Internal(err, "failed to create user")
	}
	u := &model.User{ID: uuid.NewString(), Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		s.deps.Metrics.Registration(false)
		if errors.Is(err, repository.ErrUsernameExists) {
			return "", apperr.BadRequest("username already exists")
		}
		return "", apperr.Internal(err, "failed to create user")
	}
	s.deps.Metrics.Registration(true)
	s.deps.emit(ctx, queue.EventUserRegistered, u.ID, u.Username)
	return u.ID, nil
}

// Profile returns the public identity of userID.
func (s *UserService) Profile(ctx context.Context, userID string) (model.PublicUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.PublicUser{}, apperr.NotFound("user not found")
		}
		return model.PublicUser{}, apperr.Internal(err, "failed to load user")
	}
	return u.Public(), nil
}

// ChangePassword replaces the password of userID after checking current.
// Input is validated before the store is touched, and nothing is written
// when current does not match.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apperr.BadRequest("current_password and new_password are required")
	}
	if len(next) < utils.MinPasswordLength {
		return apperr.BadRequest(fmt.Sprintf("new password must be at least %d characters", utils.MinPasswordLength))
	}
	if len(next) > utils.MaxPasswordLength {
		return passwordTooLong()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err, "failed to change password")
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		s.deps.Metrics.PasswordChange(false)
		return apperr.Unauthorized("current password is incorrect")
	}

	hash, err := utils.HashPassword(next, s.cost)
	if err != nil {
		return apperr.Internal(err, "failed to change password")
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err, "failed to change password")
	}
	s.deps.Metrics.PasswordChange(true)
	s.deps.emit(ctx, queue.EventPasswordChanged, u.ID, u.Username)
	return nil
}
