package cache

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/kractero/cardex/cardex/logger"
	"github.com/redis/go-redis/v9"
)

const l1Size = 10000

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Store is the response cache: a small in-process LRU in front of Redis.
// Redis being down never fails a request; lookups degrade to misses and the
// query runs uncached.
type Store struct {
	rdb *redis.Client
	l1  *lru.Cache
	ttl time.Duration
}

type l1Entry struct {
	data      []byte
	expiresAt time.Time
}

// New builds a Store. An empty addr leaves Redis unconfigured and the store
// runs on the in-process layer alone.
func New(cfg Config) *Store {
	l1, _ := lru.New(l1Size)

	var rdb *redis.Client
	if cfg.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	return &Store{rdb: rdb, l1: l1, ttl: cfg.TTL}
}

// TTL exposes the configured entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get looks a key up, first in the in-process layer, then in Redis. The
// second return reports a hit. Every lookup emits a hit/miss event tagged
// with the caller's origin label.
func (s *Store) Get(ctx context.Context, key, origin string) ([]byte, bool) {
	if value, ok := s.l1.Get(key); ok {
		entry := value.(l1Entry)
		if time.Now().Before(entry.expiresAt) {
			logger.LogCache("hit", origin, key)
			return entry.data, true
		}
		s.l1.Remove(key)
	}

	if s.rdb == nil {
		logger.LogCache("miss", origin, key)
		return nil, false
	}

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.LogError("Cache backend unavailable, continuing uncached", err)
		}
		logger.LogCache("miss", origin, key)
		return nil, false
	}

	s.l1.Add(key, l1Entry{data: data, expiresAt: time.Now().Add(s.ttl)})
	logger.LogCache("hit", origin, key)
	return data, true
}

// Set stores a value under the fixed TTL. Backend errors are logged and
// swallowed; the response has already been computed.
func (s *Store) Set(ctx context.Context, key string, value []byte, origin string) {
	s.l1.Add(key, l1Entry{data: value, expiresAt: time.Now().Add(s.ttl)})

	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		logger.LogError("Failed to store cache entry", err)
	}
}

// FlushAll drops every entry in both layers. Called exactly once per
// successful daily status refresh, since every cached row carries a status
// overlay that just went stale.
func (s *Store) FlushAll(ctx context.Context) error {
	s.l1.Purge()

	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.FlushDB(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
