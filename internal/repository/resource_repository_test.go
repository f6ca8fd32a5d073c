package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/finance-account-api/internal/model"
)

func TestAccountRepo_CreateListDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs("acc-1", "u1", "Checking", "bank", 12.5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, &model.Account{ID: "acc-1", UserID: "u1", AccountName: "Checking", AccountType: "bank", Balance: 12.5}))

	mock.ExpectQuery(`FROM accounts WHERE user_id = \?`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "account_name", "account_type", "balance", "created_at"}).
			AddRow("acc-1", "u1", "Checking", "bank", 12.5, now))
	items, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 12.5, items[0].Balance)

	mock.ExpectExec(`DELETE FROM accounts WHERE id = \? AND user_id = \?`).
		WithArgs("acc-1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, "acc-1", "u1"))

	mock.ExpectExec(`DELETE FROM accounts`).
		WithArgs("acc-1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "acc-1", "u2"), ErrAccountNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ListEmptyIsNotNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)

	mock.ExpectQuery(`FROM accounts`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "account_name", "account_type", "balance", "created_at"}))
	items, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCardRepo_NullableColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCardRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()
	due := time.Date(2030, 5, 10, 0, 0, 0, 0, time.UTC)
	acc := "acc-1"

	mock.ExpectExec(`INSERT INTO cards`).
		WithArgs("card-1", "u1", sqlmock.AnyArg(), "credit", "Visa", 1000.0, 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, &model.Card{ID: "card-1", UserID: "u1", AccountID: &acc, CardType: "credit", CardName: "Visa", CreditLimit: 1000, DueDate: &due}))

	mock.ExpectQuery(`FROM cards WHERE user_id = \?`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "account_id", "card_type", "card_name", "credit_limit", "current_balance", "due_date", "created_at"}).
			AddRow("card-1", "u1", "acc-1", "credit", "Visa", 1000.0, 0.0, due, now).
			AddRow("card-2", "u1", nil, "debit", "Cash", 0.0, 0.0, nil, now))
	items, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].AccountID)
	assert.Equal(t, "acc-1", *items[0].AccountID)
	require.NotNil(t, items[0].DueDate)
	assert.True(t, items[0].DueDate.Equal(due))
	assert.Nil(t, items[1].AccountID)
	assert.Nil(t, items[1].DueDate)

	mock.ExpectExec(`DELETE FROM cards`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "card-9", "u1"), ErrCardNotFound)
}

func TestAccountRepo_Owned(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT 1 FROM accounts WHERE id = \? AND user_id = \?`).
		WithArgs("acc-1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	ok, err := repo.Owned(ctx, "acc-1", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT 1 FROM accounts`).
		WithArgs("acc-1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	ok, err = repo.Owned(ctx, "acc-1", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}
