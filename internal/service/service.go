// Package service implements the session lifecycle and user account
// operations on top of the credential store and the refresh token ledger.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/finance-account-api/internal/metrics"
	"github.com/iliyamo/finance-account-api/internal/model"
	"github.com/iliyamo/finance-account-api/internal/queue"
)

// UserStore is the credential store.  repository.UserRepo implements it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// RefreshLedger is the persistent refresh token table.  repository.TokenRepo
// implements it.
type RefreshLedger interface {
	Insert(ctx context.Context, userID, token string, expiresAt time.Time) error
	FindValid(ctx context.Context, token string) (*model.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}

// Deps are the optional collaborators shared by the services.  Zero values
// are replaced with no-op implementations.
type Deps struct {
	Events  queue.Publisher
	Metrics *metrics.Metrics
	Log     *zap.Logger
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = queue.NopPublisher{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// emit publishes an audit event.  Failures are logged and dropped.
func (d Deps) emit(ctx context.Context, typ, userID, username string) {
	ev := queue.NewAuthEvent(typ, userID, username, d.Now())
	ev.RemoteIP = RemoteIP(ctx)
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Log.Warn("audit event dropped", zap.String("type", typ), zap.Error(err))
	}
}

type remoteIPKey struct{}

// WithRemoteIP records the client address on ctx for audit events.
func WithRemoteIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, remoteIPKey{}, ip)
}

// RemoteIP returns the address stored by WithRemoteIP, or "".
func RemoteIP(ctx context.Context) string {
	ip, _ := ctx.Value(remoteIPKey{}).(string)
	return ip
}
