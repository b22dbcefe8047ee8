// internal/watch/watcher.go
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"vcs/internal/stage"
)

// Stager stages one work file; repository handles satisfy it. Watcher
// adds funnel through the same call as manual adds, so the two serialize.
type Stager interface {
	Add(path string) (stage.Entry, error)
}

// AutoStager watches a working tree and stages every file write it sees.
// Paths are staged relative to the tree root.
type AutoStager struct {
	root       string
	stager     Stager
	watcher    *fsnotify.Watcher
	ignoreDirs map[string]bool
	logger     *zap.Logger
}

// NewAutoStager starts watching root and all its non-ignored
// subdirectories. The event loop runs until Close.
func NewAutoStager(root string, stager Stager, logger *zap.Logger) (*AutoStager, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &AutoStager{
		root:       root,
		stager:     stager,
		watcher:    watcher,
		ignoreDirs: defaultIgnoreDirs(),
		logger:     logger,
	}

	if err := a.watchTree(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	go a.watchLoop()

	return a, nil
}

func defaultIgnoreDirs() map[string]bool {
	return map[string]bool{
		".vcs":         true,
		".git":         true,
		"node_modules": true,
		"vendor":       true,
		"dist":         true,
		"build":        true,
	}
}

// watchTree registers dir and every non-ignored subdirectory.
func (a *AutoStager) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if a.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return a.watcher.Add(path)
	})
}

// shouldIgnore reports whether path (absolute or root-relative) falls
// under an ignored or hidden directory component.
func (a *AutoStager) shouldIgnore(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(a.root, path)
		if err != nil {
			return true
		}
	}
	if rel == "." || rel == "" {
		return false
	}

	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if a.ignoreDirs[part] || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// watchLoop processes filesystem events until the watcher closes.
func (a *AutoStager) watchLoop() {
	for {
		select {
		case event, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			a.handleEvent(event)
		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			a.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (a *AutoStager) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if a.shouldIgnore(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Gone again already; nothing to stage.
		return
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := a.watchTree(event.Name); err != nil {
				a.logger.Warn("watching new directory",
					zap.String("dir", event.Name), zap.Error(err))
			}
		}
		return
	}

	relPath, err := filepath.Rel(a.root, event.Name)
	if err != nil {
		a.logger.Warn("getting relative path", zap.String("path", event.Name), zap.Error(err))
		return
	}

	entry, err := a.stager.Add(relPath)
	if err != nil {
		a.logger.Warn("auto-staging failed", zap.String("path", relPath), zap.Error(err))
		return
	}

	a.logger.Info("auto-staged file",
		zap.String("path", entry.Path),
		zap.String("hash", entry.Hash),
	)
}

// Close stops the watcher; the event loop drains and exits.
func (a *AutoStager) Close() error {
	return a.watcher.Close()
}
