//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"go.uber.org/zap"

	"github.com/iliyamo/finance-account-api/internal/config"
	"github.com/iliyamo/finance-account-api/internal/database"
	"github.com/iliyamo/finance-account-api/internal/model"
	"github.com/iliyamo/finance-account-api/internal/repository"
)

// openMySQL starts a MySQL container and returns a migrated Store.
func openMySQL(t *testing.T) *database.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("finance"),
		tcmysql.WithUsername("app"),
		tcmysql.WithPassword("secret"),
	)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	store, err := database.Open(ctx, config.DBConfig{
		User: "app", Pass: "secret", Host: host, Port: port.Port(), Name: "finance", PoolSize: 4,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, database.Migrate(ctx, store.DB, zap.NewNop()))
	return store
}

func TestMySQL_EndToEnd(t *testing.T) {
	store := openMySQL(t)
	ctx := context.Background()

	users := repository.NewUserRepo(store.DB)
	tokens := repository.NewTokenRepo(store.DB)
	accounts := repository.NewAccountRepo(store.DB)
	cards := repository.NewCardRepo(store.DB)

	u := &model.User{ID: "11111111-1111-4111-8111-111111111111", Username: "alice", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, &model.User{ID: "22222222-2222-4222-8222-222222222222", Username: "alice", PasswordHash: "x"}), repository.ErrUsernameExists)

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// same hash twice still counts as a matched row
	require.NoError(t, users.UpdatePassword(ctx, u.ID, "hash"))

	// refresh ledger
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, tokens.Insert(ctx, u.ID, "live-token", now.Add(time.Hour)))
	require.NoError(t, tokens.Insert(ctx, u.ID, "dead-token", now.Add(-time.Hour)))
	rt, err := tokens.FindValid(ctx, "live-token")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), rt.ExpiresAt, time.Second)
	_, err = tokens.FindValid(ctx, "dead-token")
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
	n, err := tokens.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// accounts and cards
	acc := &model.Account{ID: "33333333-3333-4333-8333-333333333333", UserID: u.ID, AccountName: "Checking", AccountType: "bank", Balance: 10.25}
	require.NoError(t, accounts.Create(ctx, acc))
	owned, err := accounts.Owned(ctx, acc.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, owned)

	due := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	card := &model.Card{ID: "44444444-4444-4444-8444-444444444444", UserID: u.ID, AccountID: &acc.ID, CardType: "credit", CardName: "Visa", CreditLimit: 500, DueDate: &due}
	require.NoError(t, cards.Create(ctx, card))

	require.NoError(t, accounts.Delete(ctx, acc.ID, u.ID))
	list, err := cards.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].AccountID, "deleting the account unlinks the card")
	require.NotNil(t, list[0].DueDate)
	assert.Equal(t, "2030-01-31", list[0].DueDate.Format(model.DueDateLayout))

	assert.ErrorIs(t, cards.Delete(ctx, card.ID, "someone-else"), repository.ErrCardNotFound)
	require.NoError(t, cards.Delete(ctx, card.ID, u.ID))
}
