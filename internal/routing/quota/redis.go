// internal/routing/quota/redis.go
package quota

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	stderrors "marketplace-routing/internal/common/errors"
)

const (
	redisKeyPrefix = "quota:"

	fieldLimited = "limited"
	fieldOther   = "other"
)

// RedisLedger persists the counters in a Redis hash per fairness key, so
// every service instance sees the same counts. Any Redis error is
// surfaced as a quota-ledger-unavailable StandardError; the orchestrator
// fails closed on it rather than bypassing the fairness ratio.
type RedisLedger struct {
	client redis.Cmdable
}

// NewRedisLedger creates a ledger on top of the given Redis client.
func NewRedisLedger(client redis.Cmdable) *RedisLedger {
	return &RedisLedger{client: client}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func bucketField(b Bucket) string {
	if b == BucketLimited {
		return fieldLimited
	}
	return fieldOther
}

// Snapshot reads both counters for key. Missing fields read as zero.
func (l *RedisLedger) Snapshot(ctx context.Context, key string) (Snapshot, error) {
	vals, err := l.client.HMGet(ctx, redisKey(key), fieldLimited, fieldOther).Result()
	if err != nil {
		return Snapshot{}, stderrors.NewQuotaLedgerUnavailableError(err)
	}

	var snap Snapshot
	if n, err := parseCount(vals[0]); err != nil {
		return Snapshot{}, stderrors.NewQuotaLedgerUnavailableError(err)
	} else {
		snap.LimitedChannelCount = n
	}
	if n, err := parseCount(vals[1]); err != nil {
		return Snapshot{}, stderrors.NewQuotaLedgerUnavailableError(err)
	} else {
		snap.OtherChannelsCount = n
	}
	return snap, nil
}

// Reserve increments the bucket's counter.
func (l *RedisLedger) Reserve(ctx context.Context, key string, b Bucket) error {
	if err := l.client.HIncrBy(ctx, redisKey(key), bucketField(b), 1).Err(); err != nil {
		return stderrors.NewQuotaLedgerUnavailableError(err)
	}
	return nil
}

// Release decrements the bucket's counter, flooring at zero. The caller
// holds the key's lock, so read-then-decrement cannot race another writer
// on the same key.
func (l *RedisLedger) Release(ctx context.Context, key string, b Bucket) error {
	current, err := l.client.HGet(ctx, redisKey(key), bucketField(b)).Int64()
	if err == redis.Nil || (err == nil && current <= 0) {
		return nil
	}
	if err != nil {
		return stderrors.NewQuotaLedgerUnavailableError(err)
	}
	if err := l.client.HIncrBy(ctx, redisKey(key), bucketField(b), -1).Err(); err != nil {
		return stderrors.NewQuotaLedgerUnavailableError(err)
	}
	return nil
}

func parseCount(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", s, err)
	}
	return n, nil
}
