// internal/repository/repository.go
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vcs/internal/errors"
	"vcs/internal/object"
	"vcs/internal/stage"
)

// Layout under the repository root. Objects, the staging index and HEAD
// are the only persisted state.
const (
	VCSDir     = ".vcs"
	objectsDir = ".vcs/objects"
	indexFile  = ".vcs/index"
	headFile   = ".vcs/HEAD"

	objectCacheSize = 512
)

// Repository owns the persisted state of one working tree: the object
// store, the staging index and HEAD. All file access goes through the
// filesystem handle it was opened with; mutations serialize on mu.
type Repository struct {
	fs     billy.Filesystem
	store  *object.Store
	index  *stage.Index
	logger *zap.Logger

	mu sync.Mutex
}

// InitReport records which layout paths Initialize created and which it
// found already in place.
type InitReport struct {
	Created  []string
	Existing []string
}

// Initialize ensures the repository layout exists at the root of fs:
// .vcs/, .vcs/objects/, an index holding the empty list, and an empty
// HEAD. Running it on an initialized repository changes nothing and
// reports every path as existing.
func Initialize(fs billy.Filesystem) (*InitReport, error) {
	report := &InitReport{}

	for _, dir := range []string{VCSDir, objectsDir} {
		if _, err := fs.Stat(dir); err == nil {
			report.Existing = append(report.Existing, dir)
			continue
		}
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, errors.IO(fmt.Sprintf("creating %s", dir), err)
		}
		report.Created = append(report.Created, dir)
	}

	seeds := []struct {
		path    string
		content string
	}{
		{indexFile, "[]"},
		{headFile, ""},
	}
	for _, seed := range seeds {
		if _, err := fs.Stat(seed.path); err == nil {
			report.Existing = append(report.Existing, seed.path)
			continue
		}
		if err := util.WriteFile(fs, seed.path, []byte(seed.content), 0644); err != nil {
			return nil, errors.IO(fmt.Sprintf("creating %s", seed.path), err)
		}
		report.Created = append(report.Created, seed.path)
	}

	return report, nil
}

// New opens the repository at the root of fs, creating the layout first
// when it is missing. A nil logger disables logging.
func New(fs billy.Filesystem, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := Initialize(fs); err != nil {
		return nil, fmt.Errorf("initializing repository: %w", err)
	}

	store, err := object.NewStore(fs, objectsDir, objectCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	return &Repository{
		fs:     fs,
		store:  store,
		index:  stage.NewIndex(fs, indexFile),
		logger: logger,
	}, nil
}

// FindRoot walks upward from startDir to the first directory containing
// a .vcs directory and returns it.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, VCSDir)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.NotFound("no repository found in %s or any parent directory", startDir)
		}
		dir = parent
	}
}

// Add reads the work file at path, stores its content as a blob and
// appends a {path, hash} entry to the staging index. The path is recorded
// exactly as given; staging the same path again appends another entry
// rather than replacing the first.
func (r *Repository) Add(path string) (stage.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, err := util.ReadFile(r.fs, path)
	if err != nil {
		return stage.Entry{}, errors.IO(fmt.Sprintf("reading %s", path), err)
	}

	hash, err := r.store.Put(content)
	if err != nil {
		return stage.Entry{}, fmt.Errorf("storing %s: %w", path, err)
	}

	if err := r.index.Add(path, hash); err != nil {
		return stage.Entry{}, fmt.Errorf("staging %s: %w", path, err)
	}

	r.logger.Debug("staged file", zap.String("path", path), zap.String("hash", hash))
	return stage.Entry{Path: path, Hash: hash}, nil
}

// Staged returns the current staging index entries.
func (r *Repository) Staged() ([]stage.Entry, error) {
	return r.index.Entries()
}

// Head returns the hash of the latest commit, or "" when there is none.
// A missing or unreadable HEAD reads as "no commits yet"; the two are
// deliberately indistinguishable.
func (r *Repository) Head() string {
	data, err := util.ReadFile(r.fs, headFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// setHead points HEAD at hash through a temp file and a rename, so a
// crashed write never leaves a torn HEAD behind.
func (r *Repository) setHead(hash string) error {
	tmp := r.fs.Join(VCSDir, "HEAD-"+uuid.NewString())
	if err := util.WriteFile(r.fs, tmp, []byte(hash), 0644); err != nil {
		return errors.IO("writing HEAD", err)
	}
	if err := r.fs.Rename(tmp, headFile); err != nil {
		r.fs.Remove(tmp)
		return errors.IO("updating HEAD", err)
	}
	return nil
}
