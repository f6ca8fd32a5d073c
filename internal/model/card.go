package model

import (
    "encoding/json"
    "time"
)

// Card is a debit or credit card owned by a user and optionally linked to
// one of the user's accounts.  This struct corresponds to a row in the
// `cards` table.  DueDate is a calendar date without time of day.
type Card struct {
    ID             string     `json:"id"`              // cards.id
    UserID         string     `json:"user_id"`         // cards.user_id
    AccountID      *string    `json:"account_id"`      // cards.account_id (nullable)
    CardType       string     `json:"card_type"`       // cards.card_type
    CardName       string     `json:"card_name"`       // cards.card_name
    CreditLimit    float64    `json:"credit_limit"`    // cards.credit_limit
    CurrentBalance float64    `json:"current_balance"` // cards.current_balance
    DueDate        *time.Time `json:"-"`               // cards.due_date (nullable)
    CreatedAt      time.Time  `json:"created_at"`      // cards.created_at
}

// DueDateLayout is the wire format of Card.DueDate.
const DueDateLayout = "2006-01-02"

// MarshalJSON renders DueDate as YYYY-MM-DD, or null when unset.
func (c Card) MarshalJSON() ([]byte, error) {
    type plain Card // plain has no methods, so no recursion
    var due *string
    if c.DueDate != nil {
        s := c.DueDate.Format(DueDateLayout)
        due = &s
    }
    return json.Marshal(struct {
        plain
        DueDate *string `json:"due_date"`
    }{plain(c), due})
}
