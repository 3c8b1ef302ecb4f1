// Package history stores successfully copied text in Redis so it can be
// recalled later, across sessions and machines.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/logging"
)

func init() {
	// The TUI owns the terminal, so Redis must not print anything.
	redis.SetLogger(&logging.VoidLogger{})
}

// Key is the Redis list holding history items, newest first.
const Key = "lazycopy:history"

// DefaultLimit is the number of items kept when no limit is configured.
const DefaultLimit = 100

// Item is a single history record.
type Item struct {
	Text     string    `json:"text"`
	Strategy string    `json:"strategy"`
	CopiedAt time.Time `json:"copied_at"`
}

// Store is a Redis-backed copy history.
type Store struct {
	redis           *redis.Client
	limit           int64
	displayRedisURL string
}

// Option is used to set options in NewStore.
type Option func(*redis.Client)

// WithHook registers a Redis hook on the store client.
func WithHook(h redis.Hook) Option {
	return func(c *redis.Client) {
		if h != nil {
			c.AddHook(h)
		}
	}
}

// NewStore creates a history store from a Redis URL. A non-positive limit
// uses DefaultLimit.
func NewStore(redisURL string, limit int, opts ...Option) (*Store, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	// Fail fast: history is optional and must never stall a copy.
	redisOpts.MaxRetries = -1
	redisOpts.DialTimeout = 2 * time.Second
	redisOpts.ReadTimeout = 2 * time.Second
	redisOpts.WriteTimeout = 2 * time.Second
	redisOpts.PoolSize = 1

	return newStore(redis.NewClient(redisOpts), limit, sanitizeRedisURL(redisURL), opts...), nil
}

func newStore(rdb *redis.Client, limit int, displayURL string, opts ...Option) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	for _, opt := range opts {
		opt(rdb)
	}
	return &Store{
		redis:           rdb,
		limit:           int64(limit),
		displayRedisURL: displayURL,
	}
}

// DisplayRedisURL returns a sanitized URL safe for display.
func (s *Store) DisplayRedisURL() string {
	return s.displayRedisURL
}

// Limit returns the maximum number of items kept.
func (s *Store) Limit() int {
	return int(s.limit)
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.redis.Close()
}

// Record pushes an item to the front of the history and trims the list.
func (s *Store) Record(ctx context.Context, item Item) error {
	if item.CopiedAt.IsZero() {
		item.CopiedAt = time.Now()
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode history item: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, Key, payload)
	pipe.LTrim(ctx, Key, 0, s.limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Recent returns up to n items, newest first. Items that fail to decode are
// skipped.
func (s *Store) Recent(ctx context.Context, n int) ([]Item, error) {
	if n <= 0 || int64(n) > s.limit {
		n = int(s.limit)
	}

	raw, err := s.redis.LRange(ctx, Key, 0, int64(n-1)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read history: %w", err)
	}

	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		var item Item
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Clear removes all history items.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, Key).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func sanitizeRedisURL(redisURL string) string {
	if redisURL == "" {
		return ""
	}
	parsed, err := url.Parse(redisURL)
	if err != nil {
		return redisURL
	}
	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = nil
		} else {
			parsed.User = url.User(username)
		}
	}
	return parsed.String()
}
