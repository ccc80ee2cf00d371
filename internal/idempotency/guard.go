package idempotency

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// CommitGuard records committed checkout attempts in DynamoDB so an attempt
// commits at most once across API instances.
type CommitGuard struct {
	store *Store
}

// NewCommitGuard wraps store.
func NewCommitGuard(store *Store) *CommitGuard {
	return &CommitGuard{store: store}
}

// Claim takes the attempt key for orderID. False means the attempt already
// committed. When the claim can not be completed it is released as FAILED so
// the same key can be retried.
func (g *CommitGuard) Claim(ctx context.Context, key, orderID string) (bool, error) {
	ok, err := g.store.Acquire(ctx, key, orderID)
	if err != nil || !ok {
		return false, err
	}
	if err := g.store.MarkDone(ctx, key, orderID); err != nil {
		if relErr := g.store.MarkFailed(ctx, key, err.Error()); relErr != nil {
			return false, errors.Wrapf(err, "complete attempt %s (release: %v)", key, relErr)
		}
		return false, errors.Wrapf(err, "complete attempt %s", key)
	}
	return true, nil
}

// Claimed reports whether the attempt already committed.
func (g *CommitGuard) Claimed(ctx context.Context, key string) (bool, error) {
	rec, err := g.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Status != StatusFailed, nil
}

// MemoryGuard is a process-local guard used when no table is configured.
type MemoryGuard struct {
	mu     sync.Mutex
	claims map[string]string
}

// NewMemoryGuard returns an empty MemoryGuard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{claims: map[string]string{}}
}

func (g *MemoryGuard) Claim(_ context.Context, key, orderID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.claims[key]; ok {
		return false, nil
	}
	g.claims[key] = orderID
	return true, nil
}

func (g *MemoryGuard) Claimed(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.claims[key]
	return ok, nil
}
