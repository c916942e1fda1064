package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/models"
)

const (
	// NoteExt is the extension that marks a file as a note.
	NoteExt = ".md"
	// HiddenPrefix marks entries that are invisible to enumeration.
	HiddenPrefix = "."
	// DependencyDir is skipped during enumeration along with its subtree.
	DependencyDir = "node_modules"

	tmpPattern = ".vault-tmp-*"
)

// FS implements Provider backed by the local file system.
type FS struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewFS creates a new FS provider.
func NewFS() *FS {
	return &FS{dirPerm: 0o755, filePerm: 0o644}
}

// Read returns the raw bytes of a note.
func (f *FS) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename. An existing
// note keeps its permission bits. Directories are never replaced.
func (f *FS) Write(path string, content []byte) error {
	perm := f.filePerm
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("storage: write %s: %w", path, apperr.ErrNotANote)
		}
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, f.dirPerm); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Append never creates the note. A newline is inserted first unless the
// existing content already ends with one.
func (f *FS) Append(path string, content []byte) error {
	existing, err := f.Read(path)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, len(existing)+1+len(content))
	buf = append(buf, existing...)
	if !bytes.HasSuffix(existing, []byte("\n")) {
		buf = append(buf, '\n')
	}
	buf = append(buf, content...)
	return f.Write(path, buf)
}

// ReplaceOnce replaces the first occurrence of find with replace. The note is
// left untouched when find does not occur.
func (f *FS) ReplaceOnce(path, find, replace string) error {
	existing, err := f.Read(path)
	if err != nil {
		return err
	}
	content := string(existing)
	if !strings.Contains(content, find) {
		return fmt.Errorf("storage: replace in %s: %w", path, apperr.ErrTextNotFound)
	}
	return f.Write(path, []byte(strings.Replace(content, find, replace, 1)))
}

// Enumerate walks root and returns a NoteRef for every note file, in lexical
// order. Hidden entries and the dependency directory are pruned with their
// whole subtree. Symlinks are neither followed nor listed. A missing root
// yields an empty result. Unreadable entries below the root are skipped.
func (f *FS) Enumerate(root string) ([]models.NoteRef, error) {
	out := []models.NoteRef{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == root {
				if errors.Is(walkErr, fs.ErrNotExist) {
					return fs.SkipAll
				}
				return walkErr
			}
			slog.Warn("storage: skipping unreadable entry",
				slog.String("path", p),
				slog.String("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		if Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), NoteExt) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out = append(out, models.NewNoteRef(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: enumerate: %w", err)
	}
	return out, nil
}

// Hidden reports whether an entry name is excluded from enumeration.
func Hidden(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix) || name == DependencyDir
}
