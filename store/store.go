package store

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var ErrNotFound = errors.New("key not found")

// Store is a byte-oriented key-value store. Get returns ErrNotFound when
// the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	TypeMemory     = "memory"
	TypePersistent = "persistent"
	TypeRedis      = "redis"
)

type Options struct {
	Type      string
	File      string
	FileMode  os.FileMode
	Bucket    string
	RedisAddr string
}

func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case TypeMemory, "":
		return NewInMemoryStore(), nil
	case TypePersistent:
		mode := opts.FileMode
		if mode == 0 {
			mode = 0600
		}
		return NewPersistentStore(opts.File, mode, opts.Bucket)
	case TypeRedis:
		s, err := NewRedisStore(opts.RedisAddr)
		if err != nil {
			return nil, err
		}
		if err := s.Initialize(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Type)
	}
}
