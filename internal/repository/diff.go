// internal/repository/diff.go
package repository

import (
	"fmt"

	"vcs/internal/errors"
	"vcs/internal/stage"
)

// FileDiff carries both raw sides of one tracked path: the content at the
// inspected commit and, when the parent tracks the same path, the
// parent's content. No line differencing happens here; consumers compare
// the sides themselves.
type FileDiff struct {
	Path     string
	Content  []byte
	Parent   []byte
	InParent bool
}

// DiffReport is the two-sided content lookup for one commit.
type DiffReport struct {
	Hash   string
	Commit *Commit

	// FirstCommit marks a root commit; there is no parent side at all.
	FirstCommit bool
	// ParentMissing marks a dangling parent hash: the commit names a
	// parent but its record is gone from the store.
	ParentMissing bool

	Files []FileDiff
}

// effectiveFiles resolves duplicate staged paths: each distinct path
// appears once and the entry staged last wins. Order follows the first
// appearance of each path.
func effectiveFiles(files []stage.Entry) []stage.Entry {
	latest := make(map[string]string, len(files))
	order := make([]string, 0, len(files))

	for _, e := range files {
		if _, seen := latest[e.Path]; !seen {
			order = append(order, e.Path)
		}
		latest[e.Path] = e.Hash
	}

	resolved := make([]stage.Entry, 0, len(order))
	for _, path := range order {
		resolved = append(resolved, stage.Entry{Path: path, Hash: latest[path]})
	}
	return resolved
}

// Diff loads the commit at hash and gathers, for every path it tracks,
// the content at that commit plus the parent's content when the parent
// tracks the same path. A path absent from the parent has no parent side.
// Read-only; repository state is never altered.
func (r *Repository) Diff(hash string) (*DiffReport, error) {
	commit, err := r.GetCommit(hash)
	if err != nil {
		return nil, err
	}

	report := &DiffReport{
		Hash:        hash,
		Commit:      commit,
		FirstCommit: commit.Parent == "",
	}

	var parentFiles map[string]string
	if commit.Parent != "" {
		parent, err := r.GetCommit(commit.Parent)
		switch {
		case errors.IsNotFound(err):
			report.ParentMissing = true
		case err != nil:
			return nil, fmt.Errorf("loading parent commit %s: %w", commit.Parent, err)
		default:
			parentFiles = make(map[string]string)
			for _, e := range effectiveFiles(parent.Files) {
				parentFiles[e.Path] = e.Hash
			}
		}
	}

	for _, entry := range effectiveFiles(commit.Files) {
		content, err := r.store.Get(entry.Hash)
		if err != nil {
			return nil, fmt.Errorf("loading content of %s: %w", entry.Path, err)
		}

		fd := FileDiff{Path: entry.Path, Content: content}
		if parentHash, ok := parentFiles[entry.Path]; ok {
			parentContent, err := r.store.Get(parentHash)
			if err != nil {
				return nil, fmt.Errorf("loading parent content of %s: %w", entry.Path, err)
			}
			fd.Parent = parentContent
			fd.InParent = true
		}

		report.Files = append(report.Files, fd)
	}

	return report, nil
}
