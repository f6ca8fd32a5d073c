package model

import "time"

// Account is a money account (checking, savings, cash...) owned by a user.
// This struct corresponds to a row in the `accounts` table.
type Account struct {
    ID          string    `json:"id"`           // accounts.id
    UserID      string    `json:"user_id"`      // accounts.user_id
    AccountName string    `json:"account_name"` // accounts.account_name
    AccountType string    `json:"account_type"` // accounts.account_type
    Balance     float64   `json:"balance"`      // accounts.balance
    CreatedAt   time.Time `json:"created_at"`   // accounts.created_at
}
