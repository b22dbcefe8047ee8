package object

import (
	"testing"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcs/internal/errors"
)

const helloHash = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

func newTestStore(t *testing.T) (*Store, billy.Filesystem) {
	t.Helper()

	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("objects", 0755))

	store, err := NewStore(fs, "objects", 16)
	require.NoError(t, err)

	return store, fs
}

func TestDigest(t *testing.T) {
	assert.Equal(t, helloHash, Digest([]byte("hello")))
	assert.Equal(t, Digest([]byte("hello")), Digest([]byte("hello")))
	assert.NotEqual(t, Digest([]byte("hello")), Digest([]byte("hello ")))
}

func TestValidHash(t *testing.T) {
	assert.True(t, ValidHash(helloHash))
	assert.False(t, ValidHash(""))
	assert.False(t, ValidHash("abc123"))
	assert.False(t, ValidHash(helloHash+"00"))
	assert.False(t, ValidHash("zzf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"))
}

func TestPutAndGet(t *testing.T) {
	store, _ := newTestStore(t)

	hash, err := store.Put([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, helloHash, hash)

	content, err := store.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestPutIdempotent(t *testing.T) {
	store, fs := newTestStore(t)

	first, err := store.Put([]byte("hello"))
	require.NoError(t, err)
	second, err := store.Put([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	infos, err := fs.ReadDir("objects")
	require.NoError(t, err)
	assert.Len(t, infos, 1, "duplicate content must not create a second object")
}

func TestPutEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	hash, err := store.Put(nil)
	require.NoError(t, err)
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", hash)

	content, err := store.Get(hash)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	store, fs := newTestStore(t)

	_, err := store.Put([]byte("one"))
	require.NoError(t, err)
	_, err = store.Put([]byte("two"))
	require.NoError(t, err)

	infos, err := fs.ReadDir("objects")
	require.NoError(t, err)
	for _, info := range infos {
		assert.True(t, ValidHash(info.Name()), "unexpected file %s in object directory", info.Name())
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(helloHash)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetMalformedHash(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get("not-a-hash")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetServedFromCache(t *testing.T) {
	store, fs := newTestStore(t)

	hash, err := store.Put([]byte("hello"))
	require.NoError(t, err)

	// Tamper with the file behind the store's back; the cached copy wins.
	require.NoError(t, util.WriteFile(fs, fs.Join("objects", hash), []byte("mangled"), 0644))

	content, err := store.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestExists(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.Exists(helloHash))
	assert.False(t, store.Exists("not-a-hash"))

	_, err := store.Put([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, store.Exists(helloHash))
}
