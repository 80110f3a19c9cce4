package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when no session is stored for an identity.
var ErrNotFound = errors.New("session not found")

// Store persists sessions by customer identity.
type Store interface {
	Load(ctx context.Context, identity string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps each session as a JSON string under session:<identity>
// with a store-level expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore returns a store writing sessions with the given ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (r *RedisStore) key(identity string) string {
	return "session:" + identity
}

// Load fetches and decodes a session. Malformed cart entries are dropped and logged.
func (r *RedisStore) Load(ctx context.Context, identity string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s, results, err := Decode(data)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Err != nil {
			r.logger.Warn("dropped malformed cart entry",
				zap.String("customer", identity),
				zap.Int("index", res.Index),
				zap.Error(res.Err))
		}
	}
	if s.Identity == "" {
		s.Identity = identity
	}
	return s, nil
}

// Save writes the session and refreshes its expiry.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(s.Identity), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Ping reports store health.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
