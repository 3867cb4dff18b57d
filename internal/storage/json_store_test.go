package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONStore_RoundTrip(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	in := []testDoc{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	require.NoError(t, store.Save(ctx, "docs", in))

	var out []testDoc
	require.NoError(t, store.Load(ctx, "docs", &out))
	assert.Equal(t, in, out)
}

func TestJSONStore_MissingKeyLeavesValueUntouched(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	out := []testDoc{{Name: "default"}}
	require.NoError(t, store.Load(context.Background(), "absent", &out))
	assert.Equal(t, []testDoc{{Name: "default"}}, out)
}

func TestJSONStore_CorruptFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs.json"), []byte("][ definitely not json"), 0644))

	var out []testDoc
	require.NoError(t, store.Load(context.Background(), "docs", &out))
	assert.Empty(t, out)
}

func TestJSONStore_SaveOverwritesWholeDocument(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "docs", []testDoc{{Name: "a"}, {Name: "b"}}))
	require.NoError(t, store.Save(ctx, "docs", []testDoc{{Name: "c"}}))

	var out []testDoc
	require.NoError(t, store.Load(ctx, "docs", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Name)
}

func TestJSONStore_KeysAreIndependent(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "users", []testDoc{{Name: "u"}}))
	require.NoError(t, store.Save(ctx, "submissions", []testDoc{{Name: "s"}}))

	var users, subs []testDoc
	require.NoError(t, store.Load(ctx, "users", &users))
	require.NoError(t, store.Load(ctx, "submissions", &subs))
	assert.Equal(t, "u", users[0].Name)
	assert.Equal(t, "s", subs[0].Name)
}
