package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredPurger removes expired ledger rows.  repository.TokenRepo
// implements it.
type ExpiredPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// LedgerJanitor periodically deletes expired refresh tokens.  Expired rows
// are already rejected by FindValid; purging only reclaims space.
type LedgerJanitor struct {
	ledger   ExpiredPurger
	interval time.Duration
	deps     Deps
}

func NewLedgerJanitor(ledger ExpiredPurger, interval time.Duration, deps Deps) *LedgerJanitor {
	return &LedgerJanitor{ledger: ledger, interval: interval, deps: deps.withDefaults()}
}

// Run sweeps once per interval until ctx is cancelled.  A non-positive
// interval disables the janitor.
func (j *LedgerJanitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}
	t := time.NewTicker(j.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs a single purge and reports how many rows were removed.
func (j *LedgerJanitor) Sweep(ctx context.Context) int64 {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := j.ledger.DeleteExpired(sweepCtx)
	if err != nil {
		j.deps.Log.Warn("ledger purge failed", zap.Error(err))
		return 0
	}
	j.deps.Metrics.Purged(n)
	if n > 0 {
		j.deps.Log.Info("ledger purged", zap.Int64("rows", n))
	}
	return n
}
