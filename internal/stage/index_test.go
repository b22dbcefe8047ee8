package stage

import (
	"testing"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcs/internal/errors"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	return NewIndex(memfs.New(), "index")
}

func TestEntriesMissingFile(t *testing.T) {
	ix := newTestIndex(t)

	entries, err := ix.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddAppends(t *testing.T) {
	ix := newTestIndex(t)

	require.NoError(t, ix.Add("a.txt", "hash-a"))
	require.NoError(t, ix.Add("b.txt", "hash-b"))

	entries, err := ix.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Path: "a.txt", Hash: "hash-a"}, entries[0])
	assert.Equal(t, Entry{Path: "b.txt", Hash: "hash-b"}, entries[1])
}

func TestAddKeepsDuplicatePaths(t *testing.T) {
	ix := newTestIndex(t)

	require.NoError(t, ix.Add("a.txt", "old"))
	require.NoError(t, ix.Add("a.txt", "new"))

	entries, err := ix.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "old", entries[0].Hash)
	assert.Equal(t, "new", entries[1].Hash)
}

func TestClear(t *testing.T) {
	ix := newTestIndex(t)

	require.NoError(t, ix.Add("a.txt", "hash-a"))
	require.NoError(t, ix.Clear())

	entries, err := ix.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The file itself stays, holding the empty list.
	data, err := util.ReadFile(ix.fs, ix.path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEntriesCorruptIndex(t *testing.T) {
	ix := newTestIndex(t)
	require.NoError(t, util.WriteFile(ix.fs, ix.path, []byte("{broken"), 0644))

	_, err := ix.Entries()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSerialization))
}

func TestEntriesRejectsUnknownFields(t *testing.T) {
	ix := newTestIndex(t)
	raw := `[{"path": "a.txt", "hash": "h", "mode": "0644"}]`
	require.NoError(t, util.WriteFile(ix.fs, ix.path, []byte(raw), 0644))

	_, err := ix.Entries()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSerialization))
}
