package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/pkg/kv"
)

func testStore(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "auth-storage", []byte(`{"isAuthenticated":true}`)))
	v, ok, err := s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"isAuthenticated":true}`, string(v))

	require.NoError(t, s.Set(ctx, "auth-storage", []byte(`{}`)))
	v, _, _ = s.Get(ctx, "auth-storage")
	assert.Equal(t, `{}`, string(v))

	require.NoError(t, s.Delete(ctx, "auth-storage"))
	require.NoError(t, s.Delete(ctx, "auth-storage"))
	_, ok, err = s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.Set(ctx, "", nil), kv.ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStore(t, kv.NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	t.Parallel()
	s := kv.NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", buf))
	buf[0] = 'x'

	v, _, _ := s.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(v))
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := kv.NewFileStore(filepath.Join(dir, "state"))
	require.NoError(t, err)

	testStore(t, s)
}

func TestFileStore_Persists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	first, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "auth-storage", []byte(`{"user":null}`)))

	second, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"user":null}`, string(v))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestFileStore_RejectsUnsafeKeys(t *testing.T) {
	t.Parallel()
	s, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", ".hidden"} {
		err := s.Set(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, kv.ErrInvalidKey, key)
	}
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	t.Parallel()
	_, err := kv.NewFileStore("")
	assert.ErrorIs(t, err, kv.ErrInvalidDir)
}
