// internal/routing/quota/ledger.go

// Package quota holds the fairness counters that balance the quota-limited
// auction channel against the other sales channels for a tracked tier.
// The ledger itself does not decide eligibility; it guarantees that a
// snapshot and the reservation derived from it are linearizable per key
// when the caller holds the key's critical section.
package quota

import (
	"context"
	"sync"
)

// Bucket names the counter an item was reserved against.
type Bucket string

const (
	// BucketLimited counts reservations on the quota-limited channel.
	BucketLimited Bucket = "limited"
	// BucketOther counts reservations on every other channel.
	BucketOther Bucket = "other"
)

// Snapshot is a point-in-time read of one fairness key's counters.
type Snapshot struct {
	LimitedChannelCount int64 `json:"limitedChannelCount"`
	OtherChannelsCount  int64 `json:"otherChannelsCount"`
}

// Allowance returns how many limited-channel reservations the current
// other-channel volume permits: floor(other / ratio).
func (s Snapshot) Allowance(ratio int) int64 {
	if ratio <= 0 {
		return 0
	}
	return s.OtherChannelsCount / int64(ratio)
}

// Exhausted reports whether the limited channel is at or over its allowance.
func (s Snapshot) Exhausted(ratio int) bool {
	return s.LimitedChannelCount >= s.Allowance(ratio)
}

// Ledger stores one counter pair per fairness key. Snapshot and Reserve for
// the same key must be invoked by a caller holding that key's lock (see
// KeyMutex); the ledger only promises that each individual operation is
// atomic and that errors surface instead of being swallowed, so callers
// can fail closed.
type Ledger interface {
	Snapshot(ctx context.Context, key string) (Snapshot, error)
	Reserve(ctx context.Context, key string, b Bucket) error
	// Release undoes a previous reservation; used when an item is
	// re-routed so its old bucket stops counting against the ratio.
	Release(ctx context.Context, key string, b Bucket) error
}

// KeyMutex provides one mutex per fairness key. Different keys proceed in
// parallel; callers on the same key serialize, which makes the
// snapshot-evaluate-reserve sequence linearizable per key.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyMutex creates an empty KeyMutex.
func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (m *KeyMutex) Lock(key string) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
