package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vcs/internal/repository"
)

func TestShouldIgnore(t *testing.T) {
	a := &AutoStager{root: filepath.Join(os.TempDir(), "tree"), ignoreDirs: defaultIgnoreDirs()}

	cases := []struct {
		path   string
		ignore bool
	}{
		{"notes.txt", false},
		{"src/main.go", false},
		{".vcs/index", true},
		{".vcs/objects/abc", true},
		{".git/config", true},
		{"node_modules/pkg/index.js", true},
		{"vendor/lib.go", true},
		{".hidden/file", true},
		{".env", true},
		{"docs/build", true},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.ignore, a.shouldIgnore(tc.path))
			assert.Equal(t, tc.ignore, a.shouldIgnore(filepath.Join(a.root, tc.path)))
		})
	}

	assert.False(t, a.shouldIgnore(a.root), "the root itself is never ignored")
}

func TestAutoStagerStagesWrites(t *testing.T) {
	root := t.TempDir()
	repo, err := repository.New(osfs.New(root), zap.NewNop())
	require.NoError(t, err)

	stager, err := NewAutoStager(root, repo, zap.NewNop())
	require.NoError(t, err)
	defer stager.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("draft"), 0644))

	require.Eventually(t, func() bool {
		staged, err := repo.Staged()
		if err != nil {
			return false
		}
		for _, e := range staged {
			if e.Path == "notes.txt" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond, "write should be staged automatically")
}

func TestAutoStagerIgnoresRepositoryState(t *testing.T) {
	root := t.TempDir()
	repo, err := repository.New(osfs.New(root), zap.NewNop())
	require.NoError(t, err)

	stager, err := NewAutoStager(root, repo, zap.NewNop())
	require.NoError(t, err)
	defer stager.Close()

	// Staging a file mutates .vcs; none of that may loop back in.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0644))

	require.Eventually(t, func() bool {
		staged, err := repo.Staged()
		return err == nil && len(staged) > 0
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(200 * time.Millisecond)

	staged, err := repo.Staged()
	require.NoError(t, err)
	for _, e := range staged {
		assert.Equal(t, "a.txt", e.Path, "only the work file may be staged")
	}
}
