package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"opshub/internal/logging"
)

// Per-domain time-to-live policy.
const (
	TTLTenants    = 30 * time.Minute
	TTLLeases     = time.Hour
	TTLProperties = 15 * time.Minute
	TTLTasks      = 10 * time.Minute
)

// Store wraps a Redis client with a degrade-to-passthrough policy: when the
// client is absent or a round trip fails, reads report a miss and writes
// report false. Callers never see a cache error.
type Store struct {
	client *redis.Client
}

// NewStore builds a Store from a Redis connection URL. An empty URL (or one
// that fails to parse) disables caching rather than failing startup.
func NewStore(redisURL string) *Store {
	if redisURL == "" {
		logging.Warn("REDIS_URL not set; continuing without cache")
		return &Store{}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Error("Invalid REDIS_URL, continuing without cache: %v", err)
		return &Store{}
	}

	return &Store{client: redis.NewClient(opt)}
}

// NewStoreWithClient wires an existing client, mainly for tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Enabled reports whether a backing client is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// Get returns the raw document stored at key, or ok=false on a miss or when
// the store is unavailable.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.Enabled() {
		return nil, false
	}

	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		logging.Debug("Cache miss for %s", key)
		return nil, false
	}
	if err != nil {
		logging.Error("Cache read failed for %s: %v", key, err)
		return nil, false
	}

	logging.Debug("Cache hit for %s", key)
	return val, true
}

// GetJSON unmarshals the document at key into out.
func (s *Store) GetJSON(ctx context.Context, key string, out any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logging.Error("Cached value at %s is not valid JSON: %v", key, err)
		return false
	}
	return true
}

// SetJSON writes one document with the given TTL. The value and its expiry
// land in a single SET command, so no key ever exists without an expiry.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	if !s.Enabled() {
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		logging.Error("Failed to marshal value for %s: %v", key, err)
		return false
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logging.Error("Cache write failed for %s: %v", key, err)
		return false
	}
	return true
}

// SetBatch writes all entries in one pipelined round trip, each with the
// given TTL. Returns false when the batch is empty or the store is
// unavailable.
func (s *Store) SetBatch(ctx context.Context, entries map[string]any, ttl time.Duration) bool {
	if !s.Enabled() || len(entries) == 0 {
		return false
	}

	pipe := s.client.Pipeline()
	for key, v := range entries {
		data, err := json.Marshal(v)
		if err != nil {
			logging.Error("Skipping unmarshalable cache entry %s: %v", key, err)
			continue
		}
		pipe.Set(ctx, key, data, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		logging.Error("Pipelined cache write failed: %v", err)
		return false
	}

	logging.Debug("Cached %d entries with ttl %s", len(entries), ttl)
	return true
}

// ScanPrefix returns every document whose key starts with "prefix:", using
// SCAN to collect keys and one pipelined MGET to read them. Failures yield
// an empty result.
func (s *Store) ScanPrefix(ctx context.Context, prefix string) [][]byte {
	if !s.Enabled() {
		return nil
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Error("Cache scan failed for prefix %s: %v", prefix, err)
		return nil
	}
	if len(keys) == 0 {
		return nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		logging.Error("Cache batch read failed for prefix %s: %v", prefix, err)
		return nil
	}

	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		if str, ok := v.(string); ok {
			out = append(out, []byte(str))
		}
	}
	return out
}

// Close releases the underlying client, if any.
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}
