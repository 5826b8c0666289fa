// Package cache stores serialized prediction responses. Predictions are a
// pure function of the model and the feature vector, so entries never need
// invalidation while the same model is loaded; keys embed the model
// fingerprint to keep different artifacts apart.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a byte-oriented key/value cache. Implementations never fail the
// caller: a backend error is reported as a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Key builds "prefix:fingerprint:sha1" where the digest covers the IEEE-754
// bit patterns of features in order.
func Key(prefix, fingerprint string, features []float64) string {
	buf := make([]byte, 8*len(features))
	for i, f := range features {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	sum := sha1.Sum(buf)
	return fmt.Sprintf("%s:%s:%x", prefix, fingerprint, sum[:])
}

// LRUStore is a bounded in-process cache.
type LRUStore struct {
	entries *lru.Cache[string, []byte]
}

// NewLRUStore creates an LRU holding at most size entries.
func NewLRUStore(size int) (*LRUStore, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("lru cache: %w", err)
	}
	return &LRUStore{entries: entries}, nil
}

func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool) {
	return s.entries.Get(key)
}

func (s *LRUStore) Set(_ context.Context, key string, value []byte) {
	s.entries.Add(key, value)
}

// Len reports the number of cached entries.
func (s *LRUStore) Len() int { return s.entries.Len() }

// RedisStore keeps entries in Redis with a fixed TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewRedisStore wraps rdb. A non-positive ttl defaults to ten minutes.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{rdb: rdb, ttl: ttl, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	bs, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Debug("redis cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return bs, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) {
	if err := s.rdb.SetEx(ctx, key, value, s.ttl).Err(); err != nil {
		s.log.Debug("redis cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Tiered consults Local first and Shared second, copying shared hits into
// Local. Shared may be nil.
type Tiered struct {
	Local  Store
	Shared Store
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.Local.Get(ctx, key); ok {
		return v, true
	}
	if t.Shared == nil {
		return nil, false
	}
	v, ok := t.Shared.Get(ctx, key)
	if ok {
		t.Local.Set(ctx, key, v)
	}
	return v, ok
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte) {
	t.Local.Set(ctx, key, value)
	if t.Shared != nil {
		t.Shared.Set(ctx, key, value)
	}
}
