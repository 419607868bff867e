package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	p, err := NewPersistentStore(filepath.Join(t.TempDir(), "cart.db"), 0600, "")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	r, err := NewRedisStore(mr.Addr())
	require.NoError(t, err)
	require.NoError(t, r.Initialize(context.Background()))

	stores := map[string]Store{
		"memory":     NewInMemoryStore(),
		"persistent": p,
		"redis":      r,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})

	return stores
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SetThenGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "k", []byte(`[{"id":"a"}]`)))
			require.NoError(t, s.Set(ctx, "k", []byte(`[]`)))

			v, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(v))
		})
	}
}

func TestInMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'z'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestPersistentStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "cart.db")

	p, err := NewPersistentStore(file, 0600, "carts")
	require.NoError(t, err)
	require.NoError(t, p.Set(ctx, "k", []byte("v1")))
	require.NoError(t, p.Close())

	p, err = NewPersistentStore(file, 0600, "carts")
	require.NoError(t, err)
	defer p.Close()

	v, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Options{Type: TypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryStore{}, s)

	s, err = New(ctx, Options{Type: TypePersistent, File: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &PersistentStore{}, s)
	s.Close()

	mr := miniredis.RunT(t)
	s, err = New(ctx, Options{Type: TypeRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	s.Close()

	_, err = New(ctx, Options{Type: "etcd"})
	assert.Error(t, err)
}

func TestRedisStore_InitializeGivesUp(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	r, err := NewRedisStore(addr)
	require.NoError(t, err)
	defer r.Close()
	r.MaxAttempts = 2
	r.MaxBackoff = 0

	assert.Error(t, r.Initialize(context.Background()))
}
