// internal/repository/status.go
package repository

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v6/util"

	"vcs/internal/errors"
	"vcs/internal/object"
	"vcs/internal/stage"
)

// FileState classifies one staged entry against the working tree.
type FileState string

const (
	// StateStaged means the work file still matches the staged blob.
	StateStaged FileState = "staged"
	// StateModified means the work file changed after staging.
	StateModified FileState = "modified"
	// StateMissing means the work file is gone.
	StateMissing FileState = "missing"
)

type StatusEntry struct {
	Entry stage.Entry
	State FileState
}

// Status reports every staging-index entry with its working-tree state,
// in staging order. Duplicate paths stay visible, one line per add.
// Read-only.
func (r *Repository) Status() ([]StatusEntry, error) {
	entries, err := r.index.Entries()
	if err != nil {
		return nil, fmt.Errorf("reading staged entries: %w", err)
	}

	var status []StatusEntry
	for _, e := range entries {
		content, err := util.ReadFile(r.fs, e.Path)
		if os.IsNotExist(err) {
			status = append(status, StatusEntry{Entry: e, State: StateMissing})
			continue
		}
		if err != nil {
			return nil, errors.IO(fmt.Sprintf("reading %s", e.Path), err)
		}

		state := StateStaged
		if object.Digest(content) != e.Hash {
			state = StateModified
		}
		status = append(status, StatusEntry{Entry: e, State: state})
	}

	return status, nil
}
