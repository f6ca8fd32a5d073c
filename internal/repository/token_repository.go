package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/finance-account-api/internal/model"
	"github.com/iliyamo/finance-account-api/internal/utils"
)

// ErrTokenNotFound is returned when a refresh token is absent or expired.
var ErrTokenNotFound = errors.New("refresh token not found")

// TokenRepo is the refresh token ledger.  Tokens are stored as SHA-256
// digests in the single 'token_hash' column; callers always pass the raw
// token.
type TokenRepo struct {
	DB  DBTX
	Now func() time.Time
}

func NewTokenRepo(db DBTX) *TokenRepo {
	return &TokenRepo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// Insert appends a ledger row.  Other tokens of the same user are left alone.
func (r *TokenRepo) Insert(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, utils.HashRefreshRaw(token), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// FindValid returns the ledger row for token if it expires strictly after
// the current time.  Expired rows are reported as ErrTokenNotFound.
func (r *TokenRepo) FindValid(ctx context.Context, token string) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? AND expires_at > ? LIMIT 1",
		utils.HashRefreshRaw(token), r.Now().UTC()).
		Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("select refresh token: %w", err)
	}
	return &rt, nil
}

// Delete removes the row for token.  Deleting an absent token is not an error.
func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?",
		utils.HashRefreshRaw(token)); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// DeleteExpired purges rows whose expiry has passed and reports how many
// were removed.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at <= ?", r.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return res.RowsAffected()
}
