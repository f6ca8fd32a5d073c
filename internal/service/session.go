package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/finance-account-api/internal/apperr"
	"github.com/iliyamo/finance-account-api/internal/config"
	"github.com/iliyamo/finance-account-api/internal/model"
	"github.com/iliyamo/finance-account-api/internal/queue"
	"github.com/iliyamo/finance-account-api/internal/repository"
	"github.com/iliyamo/finance-account-api/internal/utils"
)

// Session is the pair of tokens handed to a client after login.
type Session struct {
	User    model.PublicUser
	Access  utils.IssuedToken
	Refresh utils.IssuedToken
}

// Renewal is the result of a refresh: a new access token and the unchanged
// refresh token.
type Renewal struct {
	Access  utils.IssuedToken
	Refresh string
}

// SessionManager issues, renews and revokes sessions.
type SessionManager struct {
	users  UserStore
	ledger RefreshLedger
	codec  *utils.TokenCodec
	ttl    config.TokenConfig
	deps   Deps
}

func NewSessionManager(users UserStore, ledger RefreshLedger, codec *utils.TokenCodec, ttl config.TokenConfig, deps Deps) *SessionManager {
	return &SessionManager{users: users, ledger: ledger, codec: codec, ttl: ttl, deps: deps.withDefaults()}
}

// AccessTTL is the lifetime of newly issued access tokens.
func (s *SessionManager) AccessTTL() time.Duration { return s.ttl.AccessTTL }

// RefreshTTL is the lifetime of newly issued refresh tokens.
func (s *SessionManager) RefreshTTL() time.Duration { return s.ttl.RefreshTTL }

// Login verifies the credentials and records a new refresh token in the
// ledger.  An unknown username and a wrong password are reported with
// different messages.
func (s *SessionManager) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, apperr.BadRequest("username and password are required")
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.loginFailed(ctx, "", username)
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Internal(err, "login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.loginFailed(ctx, u.ID, username)
		return nil, apperr.Unauthorized("invalid credentials")
	}

	id := utils.Identity{UserID: u.ID, Username: u.Username}
	access, err := s.codec.Issue(utils.AccessKind, id, s.ttl.AccessTTL)
	if err != nil {
		return nil, apperr.Internal(err, "login failed")
	}
	refresh, err := s.codec.Issue(utils.RefreshKind, id, s.ttl.RefreshTTL)
	if err != nil {
		return nil, apperr.Internal(err, "login failed")
	}
	if err := s.ledger.Insert(ctx, u.ID, refresh.Token, refresh.Exp); err != nil {
		return nil, apperr.Internal(err, "login failed")
	}

	s.deps.Metrics.Login(true)
	s.deps.emit(ctx, queue.EventLogin, u.ID, u.Username)
	s.deps.Log.Info("login", zap.String("user_id", u.ID))
	return &Session{User: u.Public(), Access: access, Refresh: refresh}, nil
}

func (s *SessionManager) loginFailed(ctx context.Context, userID, username string) {
	s.deps.Metrics.Login(false)
	s.deps.emit(ctx, queue.EventLoginFailed, userID, username)
}

// Refresh mints a new access token for a refresh token that is both present
// in the ledger and correctly signed.  The refresh token is not rotated.
func (s *SessionManager) Refresh(ctx context.Context, token string) (*Renewal, error) {
	if token == "" {
		return nil, apperr.Unauthorized("refresh token not present")
	}

	if _, err := s.ledger.FindValid(ctx, token); err != nil {
		s.deps.Metrics.Refresh(false)
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apperr.Unauthorized("invalid refresh token")
		}
		return nil, apperr.Internal(err, "refresh failed")
	}

	claims, err := s.codec.Verify(utils.RefreshKind, token)
	if err != nil {
		s.deps.Metrics.Refresh(false)
		return nil, apperr.Wrap(err, apperr.KindUnauthorized, "invalid or expired refresh token")
	}

	access, err := s.codec.Issue(utils.AccessKind, claims.Identity(), s.ttl.AccessTTL)
	if err != nil {
		return nil, apperr.Internal(err, "refresh failed")
	}
	s.deps.Metrics.Refresh(true)
	return &Renewal{Access: access, Refresh: token}, nil
}

// Logout removes token from the ledger when one is given.  It never fails;
// storage errors are logged and swallowed.  Access tokens already issued
// stay valid until they expire.
func (s *SessionManager) Logout(ctx context.Context, token string) {
	var userID, username string
	if token != "" {
		if claims, err := s.codec.Verify(utils.RefreshKind, token); err == nil {
			userID, username = claims.Subject, claims.Username
		}
		if err := s.ledger.Delete(ctx, token); err != nil {
			s.deps.Log.Warn("logout: refresh token delete failed", zap.Error(err))
		}
	}
	s.deps.Metrics.Logout()
	s.deps.emit(ctx, queue.EventLogout, userID, username)
}

// Validate checks the signature and expiry of an access token.  The ledger
// is not consulted.
func (s *SessionManager) Validate(token string) (*utils.Claims, error) {
	if token == "" {
		return nil, apperr.Unauthorized("token not found")
	}
	claims, err := s.codec.Verify(utils.AccessKind, token)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnauthorized, "invalid or expired token")
	}
	return claims, nil
}
