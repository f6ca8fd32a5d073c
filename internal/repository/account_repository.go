package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/finance-account-api/internal/model"
)

// ErrAccountNotFound is returned when an account does not exist or belongs
// to another user.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepo encapsulates all database queries related to accounts.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

// Create inserts an account whose ID is already set.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = "INSERT INTO accounts (id, user_id, account_name, account_type, balance) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, a.ID, a.UserID, a.AccountName, a.AccountType, a.Balance); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// ListByUser returns all accounts of a user, oldest first.
func (r *AccountRepo) ListByUser(ctx context.Context, userID string) ([]*model.Account, error) {
	const q = `SELECT id, user_id, account_name, account_type, balance, created_at
	           FROM accounts WHERE user_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []*model.Account{}
	for rows.Next() {
		a := new(model.Account)
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountName, &a.AccountType, &a.Balance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// Delete removes an account owned by userID.  ErrAccountNotFound is returned
// when no row matched.
func (r *AccountRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Owned reports whether account id exists and belongs to userID.
func (r *AccountRepo) Owned(ctx context.Context, id, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id = ? AND user_id = ? LIMIT 1", id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check account owner: %w", err)
	}
	return true, nil
}
