package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/leit/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is "indexed" or "removed".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and keeps the index in
// step with file changes until ctx is cancelled. It calls cb (if non-nil)
// after each index mutation.
//
// New directories created at runtime are added to the watch list. Rename
// events drop the old path immediately and schedule a short reconciliation
// pass, since fsnotify only reports the old name; the new name arrives as a
// separate Create event when it lands inside a watched directory.
func Watch(ctx context.Context, ix *Indexer, source storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
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
			reconcile(ix, source, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories join the watch list immediately.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					indexNewDir(ix, source, vaultRoot, absPath, logger, cb)
					continue
				}
			}

			// Only .md files matter from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := relPath(vaultRoot, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				updateFromDisk(ix, source, rel, logger, cb)

			case ev.Op&fsnotify.Remove != 0:
				if ix.IsIndexed(rel) {
					ix.RemoveDocument(rel)
					logger.Debug("watcher: removed", slog.String("path", rel))
					if cb != nil {
						cb("removed", rel)
					}
				}

			case ev.Op&fsnotify.Rename != 0:
				if ix.IsIndexed(rel) {
					ix.RemoveDocument(rel)
					logger.Debug("watcher: rename old removed", slog.String("path", rel))
					if cb != nil {
						cb("removed", rel)
					}
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

// updateFromDisk re-reads one document and applies it to the index. The
// callback kind reflects what actually happened: an update that trips an
// exclusion rule removes the record instead.
func updateFromDisk(ix *Indexer, source storage.Provider, rel string, logger *slog.Logger, cb EventCallback) {
	meta, err := source.Stat(rel)
	if err != nil {
		logger.Warn("watcher: stat failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	data, err := source.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}

	wasIndexed := ix.IsIndexed(rel)
	if err := ix.UpdateDocument(rel, meta.Filename, meta.ModTime, string(data)); err != nil {
		logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}

	nowIndexed := ix.IsIndexed(rel)
	logger.Debug("watcher: updated", slog.String("path", rel), slog.Bool("indexed", nowIndexed))
	if cb == nil {
		return
	}
	switch {
	case nowIndexed:
		cb("indexed", rel)
	case wasIndexed:
		cb("removed", rel)
	}
}

// reconcile compares the index against the vault and repairs both sides:
// records without a file are dropped, files with missing or stale records
// are re-indexed.
func reconcile(ix *Indexer, source storage.Provider, logger *slog.Logger, cb EventCallback) {
	metas, err := source.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	for _, p := range ix.Paths() {
		if _, ok := disk[p]; !ok {
			ix.RemoveDocument(p)
			logger.Debug("reconcile: removed stale", slog.String("path", p))
			if cb != nil {
				cb("removed", p)
			}
		}
	}

	for _, m := range metas {
		if rec, ok := ix.store.get(m.Path); ok &&
			(rec.LastModified.Equal(m.ModTime) || rec.Checksum == m.Checksum) {
			continue
		}
		updateFromDisk(ix, source, m.Path, logger, cb)
	}
}

// indexNewDir indexes any .md files found in a newly created directory.
func indexNewDir(ix *Indexer, source storage.Provider, vaultRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := relPath(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		updateFromDisk(ix, source, rel, logger, cb)
		return nil
	})
}

// relPath converts an absolute event path to the slash-separated vault form.
func relPath(vaultRoot, abs string) (string, error) {
	rel, err := filepath.Rel(vaultRoot, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
