// Package cache keeps retrieval results in Redis so repeated lookups for the
// same article skip the graph traversal.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"newsgraph/config"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "newsgraph"

// Store is a JSON value store on top of a Redis client.
type Store struct {
	client *redis.Client
}

// NewStore connects to Redis and verifies connectivity.
func NewStore(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return &Store{client: client}, nil
}

// NewStoreFromClient wraps an existing client.
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client exposes the underlying connection for callers sharing it.
func (s *Store) Client() *redis.Client {
	return s.client
}

// Close closes the underlying Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

// Get decodes the value under key into v. It reports false on a miss.
func (s *Store) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v as JSON under key for ttl.
func (s *Store) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Key derives the cache key for one operation: newsgraph:<op>:<sha256>. The
// hash covers the request and the endpoint it was sent to.
func Key(op, endpoint string, req any) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{'|'})
	h.Write(body)
	return KeyPrefix + ":" + op + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// NormalizeURL canonicalises a document url so trivially different spellings
// share a cache entry: lowercase scheme and host, no fragment, no tracking
// parameters, no trailing slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
