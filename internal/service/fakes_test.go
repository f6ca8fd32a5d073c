package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/finance-account-api/internal/config"
	"github.com/iliyamo/finance-account-api/internal/model"
	"github.com/iliyamo/finance-account-api/internal/queue"
	"github.com/iliyamo/finance-account-api/internal/repository"
	"github.com/iliyamo/finance-account-api/internal/utils"
)

const testCost = bcrypt.MinCost

var testTTL = config.TokenConfig{
	AccessSecret:  "access-secret",
	RefreshSecret: "refresh-secret",
	AccessTTL:     time.Hour,
	RefreshTTL:    10 * time.Hour,
}

// clock is a manually advanced time source shared by the codec and ledger.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Now().UTC().Truncate(time.Second)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) hashOf(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].PasswordHash
}

// seed stores a user with a real bcrypt hash and returns it.
func (m *memUsers) seed(id, username, password string) *model.User {
	hash, err := utils.HashPassword(password, testCost)
	if err != nil {
		panic(err)
	}
	u := &model.User{ID: id, Username: username, PasswordHash: hash}
	if err := m.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

type memLedger struct {
	mu        sync.Mutex
	now       func() time.Time
	rows      map[string]model.RefreshToken
	deleteErr error
	findErr   error
}

func newMemLedger(now func() time.Time) *memLedger {
	return &memLedger{now: now, rows: map[string]model.RefreshToken{}}
}

func (l *memLedger) Insert(_ context.Context, userID, token string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := utils.HashRefreshRaw(token)
	if _, dup := l.rows[h]; dup {
		return errors.New("duplicate token_hash")
	}
	l.rows[h] = model.RefreshToken{ID: uint64(len(l.rows) + 1), UserID: userID, TokenHash: h, ExpiresAt: expiresAt, CreatedAt: l.now()}
	return nil
}

func (l *memLedger) FindValid(_ context.Context, token string) (*model.RefreshToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findErr != nil {
		return nil, l.findErr
	}
	rt, ok := l.rows[utils.HashRefreshRaw(token)]
	if !ok || !rt.ExpiresAt.After(l.now()) {
		return nil, repository.ErrTokenNotFound
	}
	return &rt, nil
}

func (l *memLedger) Delete(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deleteErr != nil {
		return l.deleteErr
	}
	delete(l.rows, utils.HashRefreshRaw(token))
	return nil
}

func (l *memLedger) get(token string) (model.RefreshToken, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rt, ok := l.rows[utils.HashRefreshRaw(token)]
	return rt, ok
}

func (l *memLedger) DeleteExpired(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for h, rt := range l.rows {
		if !rt.ExpiresAt.After(l.now()) {
			delete(l.rows, h)
			n++
		}
	}
	return n, nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.AuthEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

func eventOf(typ, userID string) interface{} {
	return mock.MatchedBy(func(ev queue.AuthEvent) bool {
		return ev.Type == typ && ev.UserID == userID
	})
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}
