// internal/stage/index.go
package stage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"

	"vcs/internal/errors"
)

// Entry is one staged file: the path exactly as given at add time and the
// digest of the content stored for it.
type Entry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Index is the staging area: an ordered list of entries persisted as one
// JSON file. Every Add appends, so staging the same path twice yields two
// entries; consumers that need one-per-path resolve duplicates themselves.
type Index struct {
	fs   billy.Filesystem
	path string
}

func NewIndex(fs billy.Filesystem, path string) *Index {
	return &Index{fs: fs, path: path}
}

// Add appends an entry. The list is re-read and rewritten whole on every
// call; callers serialize concurrent mutation.
func (ix *Index) Add(path, hash string) error {
	entries, err := ix.Entries()
	if err != nil {
		return err
	}

	entries = append(entries, Entry{Path: path, Hash: hash})
	return ix.write(entries)
}

// Entries returns the staged entries in staging order. A missing index
// file reads as empty; unparseable content does not.
func (ix *Index) Entries() ([]Entry, error) {
	data, err := util.ReadFile(ix.fs, ix.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, errors.IO("reading index", err)
	}

	entries := []Entry{}
	if err := decodeStrict(data, &entries); err != nil {
		return nil, errors.Serialization("parsing index", err)
	}
	return entries, nil
}

// Clear rewrites the index as the empty list. The file stays in place.
func (ix *Index) Clear() error {
	return ix.write([]Entry{})
}

func (ix *Index) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Serialization("encoding index", err)
	}
	if err := util.WriteFile(ix.fs, ix.path, data, 0644); err != nil {
		return errors.IO(fmt.Sprintf("writing index %s", ix.path), err)
	}
	return nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
