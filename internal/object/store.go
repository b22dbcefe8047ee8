// internal/object/store.go
package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"vcs/internal/errors"
)

// HashLength is the length of a hex-encoded digest.
const HashLength = 40

// Digest returns the hex digest of content. Object files are named by this
// digest, so identical content always resolves to the same object.
func Digest(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

// ValidHash reports whether s has the shape of a digest: exactly 40 hex
// characters.
func ValidHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Store is content-addressed blob storage: one file per unique blob, named
// by the digest of its bytes. Writes are idempotent and the store only
// grows; nothing here deletes objects.
type Store struct {
	fs    billy.Filesystem
	dir   string
	cache *lru.Cache[string, []byte]
}

func NewStore(fs billy.Filesystem, dir string, cacheSize int) (*Store, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating object cache: %w", err)
	}

	return &Store{
		fs:    fs,
		dir:   dir,
		cache: cache,
	}, nil
}

// Put stores content under its digest and returns the digest. Content
// already present is left untouched; the existing object is trusted to
// match. New objects land via a uniquely named temp file and a rename, so
// a reader never observes a half-written blob.
func (s *Store) Put(content []byte) (string, error) {
	// Allow empty content
	if content == nil {
		content = []byte{}
	}

	hash := Digest(content)
	path := s.objectPath(hash)

	if _, err := s.fs.Stat(path); err == nil {
		s.cache.Add(hash, content)
		return hash, nil
	}

	tmp := s.fs.Join(s.dir, "tmp-"+uuid.NewString())
	if err := util.WriteFile(s.fs, tmp, content, 0644); err != nil {
		return "", errors.IO(fmt.Sprintf("writing object %s", hash), err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return "", errors.IO(fmt.Sprintf("publishing object %s", hash), err)
	}

	s.cache.Add(hash, content)
	return hash, nil
}

// Get returns the blob stored under hash. A malformed hash reads as a
// missing object without touching the filesystem.
func (s *Store) Get(hash string) ([]byte, error) {
	if !ValidHash(hash) {
		return nil, errors.NotFound("object %q not found", hash)
	}

	if content, ok := s.cache.Get(hash); ok {
		return content, nil
	}

	content, err := util.ReadFile(s.fs, s.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("object %s not found", hash)
		}
		return nil, errors.IO(fmt.Sprintf("reading object %s", hash), err)
	}

	s.cache.Add(hash, content)
	return content, nil
}

// Exists reports whether an object is stored under hash.
func (s *Store) Exists(hash string) bool {
	if !ValidHash(hash) {
		return false
	}
	if s.cache.Contains(hash) {
		return true
	}
	_, err := s.fs.Stat(s.objectPath(hash))
	return err == nil
}

func (s *Store) objectPath(hash string) string {
	return s.fs.Join(s.dir, hash)
}
