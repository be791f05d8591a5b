package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/ports"
)

const (
	// Prefix namespaces the per-session keys that map a session id to an email.
	Prefix = "session:"
	// ActiveKey is a sorted set of session ids scored by expiry time.
	ActiveKey = "sessions:active"
)

// Store keeps the registry of live sessions in Redis. Each session is a key
// with the session's TTL, so Redis expires it without a sweeper.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

func NewStore(addr string) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Store{client: rdb, now: time.Now}
}

var _ ports.SessionStore = (*Store)(nil)

func (s *Store) Register(ctx context.Context, id, email string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	expiry := s.now().Add(ttl).Unix()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, Prefix+id, email, ttl)
	pipe.ZAdd(ctx, ActiveKey, redis.Z{Score: float64(expiry), Member: id})
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Lookup(ctx context.Context, id string) (string, error) {
	email, err := s.client.Get(ctx, Prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrUnauthenticated
		}
		return "", err
	}
	return email, nil
}

func (s *Store) Revoke(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, Prefix+id)
	pipe.ZRem(ctx, ActiveKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// Active prunes expired entries from the active index and returns how many
// sessions remain.
func (s *Store) Active(ctx context.Context) (int64, error) {
	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, ActiveKey, "-inf", strconv.FormatInt(s.now().Unix(), 10))
	card := pipe.ZCard(ctx, ActiveKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
