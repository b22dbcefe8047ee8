// internal/repository/log.go
package repository

import "fmt"

// LogEntry pairs a commit record with the hash addressing it.
type LogEntry struct {
	Hash   string
	Commit *Commit
}

// Log walks the commit chain from HEAD to the root, newest first. An
// empty repository yields no entries. When a record mid-chain cannot be
// loaded, the entries collected so far are returned along with the error,
// so callers can show the reachable history before reporting the break.
// Chains are acyclic by construction; a hand-corrupted cyclic chain is
// not guarded against.
func (r *Repository) Log() ([]LogEntry, error) {
	var entries []LogEntry

	for hash := r.Head(); hash != ""; {
		commit, err := r.GetCommit(hash)
		if err != nil {
			return entries, fmt.Errorf("loading commit %s: %w", hash, err)
		}
		entries = append(entries, LogEntry{Hash: hash, Commit: commit})
		hash = commit.Parent
	}

	return entries, nil
}
