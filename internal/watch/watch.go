// Package watch keeps an item collection in sync with a vault by reparsing
// files as they change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/taskparser/internal/parser"
	"github.com/starford/taskparser/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	KindCreated    = "created"
	KindUpdated    = "updated"
	KindDeleted    = "deleted"
	KindReconciled = "reconciled"
	KindFailed     = "failed"
)

const reconcileDelay = 200 * time.Millisecond

// Reparser is the part of the parser driven by the watcher.
type Reparser interface {
	Sync(ctx context.Context) error
	ParseDir(ctx context.Context, dir string) error
	Refresh(file string) (bool, error)
	Remove(file string) bool
	RemoveDir(dir string) []string
}

var _ Reparser = (*parser.Parser)(nil)

// EventCallback is called after a watcher-driven collection change, or with
// KindFailed when a reparse failed.
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and processes change
// events one at a time until ctx is cancelled, so reparses never overlap.
//
// New directories are watched as they appear. Folder metadata changes
// reparse the folder's subtree. Renames purge the old path at once and
// schedule a debounced full resync to pick up the new one.
//
// Parse failures do not stop the watcher. A file with malformed YAML is
// logged, its items are purged and cb receives KindFailed; the next valid
// save brings its items back. Only the initial parse treats malformed YAML
// as fatal.
func Watch(ctx context.Context, p Reparser, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}
	failed := func(msg, rel string, err error) {
		logger.Error(msg, slog.String("path", rel), slog.String("error", err.Error()))
		notify(KindFailed, rel)
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := p.Sync(ctx); err != nil {
				failed("watcher: reconcile failed", "", err)
				continue
			}
			logger.Debug("watcher: reconciled")
			notify(KindReconciled, "")

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := store.Rel(ev.Name)
			if relErr != nil || rel == "" || hidden(rel) {
				continue
			}
			name := path.Base(rel)

			// New directories: watch them and parse what they already hold.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if strings.HasPrefix(name, ".") {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", rel))
					}
					if err := p.ParseDir(ctx, rel); err != nil {
						failed("watcher: parse new dir failed", rel, err)
						continue
					}
					notify(KindCreated, rel)
					continue
				}
			}

			if name == parser.FolderMetaFile {
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				dir := path.Dir(rel)
				if dir == "." {
					dir = ""
				}
				if err := p.ParseDir(ctx, dir); err != nil {
					failed("watcher: folder metadata reparse failed", rel, err)
					continue
				}
				logger.Debug("watcher: folder reparsed", slog.String("path", dir))
				notify(KindUpdated, rel)
				continue
			}

			isMarkdown := parser.IsMarkdown(name)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if !isMarkdown {
					continue
				}
				changed, err := p.Refresh(rel)
				if err != nil {
					failed("watcher: parse failed", rel, err)
					continue
				}
				if !changed {
					logger.Debug("watcher: unchanged", slog.String("path", rel))
					continue
				}
				kind := KindUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = KindCreated
				}
				logger.Debug("watcher: parsed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if purge(p, rel, isMarkdown) {
					logger.Debug("watcher: deleted", slog.String("path", rel))
					notify(KindDeleted, rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports the old path only; the new one arrives
				// as a Create if it stays inside a watched directory.
				if purge(p, rel, isMarkdown) {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					notify(KindDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// purge drops the items of a removed file, or of every file below a
// removed directory.
func purge(p Reparser, rel string, isMarkdown bool) bool {
	if isMarkdown && p.Remove(rel) {
		return true
	}
	return len(p.RemoveDir(rel)) > 0
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping dot directories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

// hidden reports whether rel lies inside a dot directory.
func hidden(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
