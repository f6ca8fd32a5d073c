package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/finance-account-api/internal/model"
)

// ErrCardNotFound is returned when a card does not exist or belongs to
// another user.
var ErrCardNotFound = errors.New("card not found")

// CardRepo encapsulates all database queries related to cards.
type CardRepo struct {
	db DBTX
}

func NewCardRepo(db DBTX) *CardRepo {
	return &CardRepo{db: db}
}

// Create inserts a card whose ID is already set.  A nil AccountID or DueDate
// is stored as NULL.
func (r *CardRepo) Create(ctx context.Context, c *model.Card) error {
	const q = `INSERT INTO cards (id, user_id, account_id, card_type, card_name, credit_limit, current_balance, due_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var accountID sql.NullString
	if c.AccountID != nil {
		accountID = sql.NullString{String: *c.AccountID, Valid: true}
	}
	var due sql.NullTime
	if c.DueDate != nil {
		due = sql.NullTime{Time: *c.DueDate, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.UserID, accountID, c.CardType, c.CardName, c.CreditLimit, c.CurrentBalance, due); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// ListByUser returns all cards of a user, oldest first.
func (r *CardRepo) ListByUser(ctx context.Context, userID string) ([]*model.Card, error) {
	const q = `SELECT id, user_id, account_id, card_type, card_name, credit_limit, current_balance, due_date, created_at
	           FROM cards WHERE user_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	out := []*model.Card{}
	for rows.Next() {
		var (
			c         model.Card
			accountID sql.NullString
			due       sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.UserID, &accountID, &c.CardType, &c.CardName, &c.CreditLimit, &c.CurrentBalance, &due, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		if accountID.Valid {
			c.AccountID = &accountID.String
		}
		if due.Valid {
			c.DueDate = &due.Time
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return out, nil
}

// Delete removes a card owned by userID.  ErrCardNotFound is returned when
// no row matched.
func (r *CardRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if n == 0 {
		return ErrCardNotFound
	}
	return nil
}
