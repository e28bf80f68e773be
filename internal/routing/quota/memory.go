// internal/routing/quota/memory.go
package quota

import (
	"context"
	"sync"
)

// MemoryLedger keeps the counters in process memory. It backs tests and
// single-instance deployments; multi-instance deployments use RedisLedger
// so all instances share one counter pair per key.
type MemoryLedger struct {
	mu       sync.Mutex
	counters map[string]*Snapshot
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{counters: make(map[string]*Snapshot)}
}

func (l *MemoryLedger) get(key string) *Snapshot {
	c, ok := l.counters[key]
	if !ok {
		c = &Snapshot{}
		l.counters[key] = c
	}
	return c
}

// Snapshot returns the current counters for key.
func (l *MemoryLedger) Snapshot(_ context.Context, key string) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.get(key), nil
}

// Reserve increments the bucket's counter.
func (l *MemoryLedger) Reserve(_ context.Context, key string, b Bucket) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.get(key)
	if b == BucketLimited {
		c.LimitedChannelCount++
	} else {
		c.OtherChannelsCount++
	}
	return nil
}

// Release decrements the bucket's counter, flooring at zero.
func (l *MemoryLedger) Release(_ context.Context, key string, b Bucket) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.get(key)
	if b == BucketLimited {
		if c.LimitedChannelCount > 0 {
			c.LimitedChannelCount--
		}
	} else {
		if c.OtherChannelsCount > 0 {
			c.OtherChannelsCount--
		}
	}
	return nil
}

// Seed sets the counters for key directly. Test helper.
func (l *MemoryLedger) Seed(key string, limited, other int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counters[key] = &Snapshot{LimitedChannelCount: limited, OtherChannelsCount: other}
}
