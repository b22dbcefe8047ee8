// internal/repository/commit.go
package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vcs/internal/errors"
	"vcs/internal/stage"
)

// timestampLayout is the stored wall-clock format, day first.
const timestampLayout = "02-01-2006 15:04:05"

// Commit is the stored record of one commit: the message, the UTC
// timestamp at commit time, the staged entries copied verbatim and the
// hash of the parent commit ("" for the root). A commit's own hash is not
// a field; it is the digest of the record's stored bytes.
type Commit struct {
	Message   string        `json:"message"`
	Timestamp string        `json:"time_stamp"`
	Files     []stage.Entry `json:"files"`
	Parent    string        `json:"parent"`
}

// encodeCommit renders the canonical stored form: two-space indented JSON
// with a fixed field order. Files is never null, so an empty commit still
// round-trips as a list.
func encodeCommit(c *Commit) ([]byte, error) {
	if c.Files == nil {
		c.Files = []stage.Entry{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, errors.Serialization("encoding commit", err)
	}
	return data, nil
}

// decodeCommit parses stored bytes as a commit record. Decoding is strict:
// unknown fields, a missing file list or a missing timestamp all reject
// the blob. That keeps a plain file blob addressed by its hash from
// masquerading as a commit.
func decodeCommit(data []byte) (*Commit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var c Commit
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Serialization("parsing commit", err)
	}
	if c.Files == nil || c.Timestamp == "" {
		return nil, errors.Serialization("parsing commit", fmt.Errorf("blob is not a commit record"))
	}
	return &c, nil
}

// Commit snapshots the staging index into a new commit: the record is
// stored as an object, HEAD moves to its hash and the index is cleared.
// Committing an empty index is allowed and records zero files. Returns
// the hash of the new commit.
func (r *Repository) Commit(message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.index.Entries()
	if err != nil {
		return "", fmt.Errorf("reading staged entries: %w", err)
	}

	commit := &Commit{
		Message:   message,
		Timestamp: time.Now().UTC().Format(timestampLayout),
		Files:     entries,
		Parent:    r.Head(),
	}

	data, err := encodeCommit(commit)
	if err != nil {
		return "", err
	}

	hash, err := r.store.Put(data)
	if err != nil {
		return "", fmt.Errorf("storing commit: %w", err)
	}

	if err := r.setHead(hash); err != nil {
		return "", err
	}
	if err := r.index.Clear(); err != nil {
		return "", fmt.Errorf("clearing index: %w", err)
	}

	r.logger.Info("created commit",
		zap.String("hash", hash),
		zap.Int("files", len(commit.Files)),
	)
	return hash, nil
}

// GetCommit loads and decodes the commit record stored under hash.
func (r *Repository) GetCommit(hash string) (*Commit, error) {
	data, err := r.store.Get(hash)
	if err != nil {
		return nil, err
	}
	return decodeCommit(data)
}
