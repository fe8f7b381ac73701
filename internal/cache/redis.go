// internal/cache/redis.go

// Package cache provides a Redis-backed database.Store, for running several
// bot processes against one shared state server.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jason-s-yu/d20potz/internal/database"
	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to each SCAN call.
const scanBatch = 256

// Store implements database.Store on a Redis client.
type Store struct {
	rdb *redis.Client
}

// Open connects to the Redis server at addr using logical database db and
// checks the connection with a 5s timeout.
func Open(ctx context.Context, addr string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := s.rdb.Get(ctx, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to GET %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := s.rdb.Set(ctx, string(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to SET %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := s.rdb.Del(ctx, string(key)).Err(); err != nil {
		return fmt.Errorf("failed to DEL %q: %w", key, err)
	}
	return nil
}

// Scan walks the keyspace with SCAN MATCH on the shared prefix of start and
// end. Redis gives no ordering, so matches are collected, filtered to the
// range and sorted before fn runs.
func (s *Store) Scan(ctx context.Context, start, end []byte, fn database.ScanFunc) error {
	pattern := escapeGlob(commonPrefix(start, end)) + "*"

	seen := make(map[string]struct{})
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to SCAN %q: %w", pattern, err)
		}
		for _, k := range batch {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			kb := []byte(k)
			if bytes.Compare(kb, start) >= 0 && bytes.Compare(kb, end) < 0 {
				keys = append(keys, k)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to MGET scanned keys: %w", err)
	}
	for i, k := range keys {
		v, ok := values[i].(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		if err := fn([]byte(k), []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func commonPrefix(a, b []byte) []byte {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(prefix []byte) string {
	var sb strings.Builder
	for _, c := range prefix {
		switch c {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
