package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps values as plain Redis strings.
type RedisStore struct {
	client *redis.Client
	log    *logrus.Entry

	// MaxAttempts bounds the pings Initialize performs before giving up.
	MaxAttempts int
	MaxBackoff  time.Duration
}

// NewRedisStore accepts either a redis:// URL or a bare host:port address.
func NewRedisStore(addr string) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis store: empty address")
	}

	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}

	return &RedisStore{
		client:      redis.NewClient(opts),
		log:         logrus.WithField("component", "redis-store"),
		MaxAttempts: 10,
		MaxBackoff:  10 * time.Second,
	}, nil
}

// Initialize pings Redis until it answers, backing off exponentially.
func (r *RedisStore) Initialize(ctx context.Context) error {
	for i := 0; i < r.MaxAttempts; i++ {
		err := r.client.Ping(ctx).Err()
		if err == nil {
			r.log.Debugf("ping successful on attempt %d", i+1)
			return nil
		}
		r.log.Warnf("ping failed (attempt %d/%d): %v", i+1, r.MaxAttempts, err)

		backoff := time.Duration(100*(1<<uint(i))) * time.Millisecond
		if backoff > r.MaxBackoff {
			backoff = r.MaxBackoff
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("redis store: no answer after %d attempts", r.MaxAttempts)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}

	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}

	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
