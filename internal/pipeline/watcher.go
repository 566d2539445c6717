package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/kramify/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the content root and converts
// documents as they change until ctx is cancelled.
//
// New directories created at runtime are added to the watch list and their
// documents converted. Removals drop the ledger entry; renames additionally
// schedule a debounced full run to pick up the new name. Rewriting a file
// the service just produced is a no-op, so the service's own writes do not
// loop.
func Watch(ctx context.Context, svc *Service) error {
	logger := svc.logger
	root := svc.Root()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

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
			if _, err := svc.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("reconcile: run failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if hidden(filepath.Base(absPath)) {
						continue
					}
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					convertNewDir(ctx, svc, absPath)
					continue
				}
			}

			if !strings.HasSuffix(absPath, storage.MarkdownExt) {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if _, procErr := svc.ProcessFile(ctx, rel); procErr != nil {
					logger.Warn("watcher: convert failed", slog.String("path", rel), slog.String("error", procErr.Error()))
				}

			case ev.Op&fsnotify.Remove != 0:
				forget(svc, rel)

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new path arrives as
				// Create when it stays inside a watched directory.
				forget(svc, rel)
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

func forget(svc *Service, rel string) {
	if err := svc.Forget(rel); err != nil {
		svc.logger.Warn("watcher: forget failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	svc.logger.Debug("watcher: removed", slog.String("path", rel))
	if svc.notify != nil {
		svc.notify(EventRemoved, rel)
	}
}

// convertNewDir converts documents already present in a new directory.
func convertNewDir(ctx context.Context, svc *Service, dirPath string) {
	root := svc.Root()
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dirPath && hidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, storage.MarkdownExt) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if _, procErr := svc.ProcessFile(ctx, filepath.ToSlash(rel)); procErr != nil {
			svc.logger.Warn("watcher: convert failed", slog.String("path", rel), slog.String("error", procErr.Error()))
		}
		return nil
	})
}

// addDirsRecursive adds root and its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
