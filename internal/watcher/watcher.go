// Package watcher reports changes to the set of notes in a vault.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/vaultmcp/internal/storage"
)

// Debounce is the quiet period after the last relevant event before the
// change callback fires.
const Debounce = 200 * time.Millisecond

// ChangeFunc is called once per burst of note changes.
type ChangeFunc func()

// Watch starts an fsnotify watcher on the vault root and calls onChange after
// notes are created, written, removed or renamed, until ctx is cancelled.
//
// Hidden entries and the dependency directory are ignored, matching note
// enumeration. New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, root string, logger *slog.Logger, onChange ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(Debounce)
			fire = timer.C
		} else {
			timer.Reset(Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Debug("watcher: notes changed")
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(root, ev.Name) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					schedule()
					continue
				}
			}

			// A removed or renamed path may have been a directory full of notes.
			if strings.HasSuffix(ev.Name, storage.NoteExt) || ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignored reports whether any segment of p below root is hidden.
func ignored(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg != "." && storage.Hidden(seg) {
			return true
		}
	}
	return false
}

// addDirsRecursive adds dir and all its visible subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && storage.Hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
