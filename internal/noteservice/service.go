// Package noteservice binds the vault path guard to the note store and
// exposes note operations addressed by vault-relative paths.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/models"
	"github.com/starford/vaultmcp/internal/search"
	"github.com/starford/vaultmcp/internal/storage"
	"github.com/starford/vaultmcp/internal/vault"
)

// Service coordinates the path guard, storage and search.
//
// Writes to the same note are not coordinated; concurrent writers race and
// the last rename wins.
type Service struct {
	vault *vault.Vault
	store storage.Provider
}

// NewService creates a new note service.
func NewService(v *vault.Vault, store storage.Provider) *Service {
	return &Service{vault: v, store: store}
}

// Read returns the content of the note at rel.
func (s *Service) Read(_ context.Context, rel string) (string, error) {
	abs, err := s.resolveNote(rel)
	if err != nil {
		return "", err
	}
	data, err := s.store.Read(abs)
	if err != nil {
		return "", s.translate(rel, err)
	}
	return string(data), nil
}

// Write creates or overwrites the note at rel.
func (s *Service) Write(_ context.Context, rel, content string) error {
	abs, err := s.resolveNote(rel)
	if err != nil {
		return err
	}
	return s.translate(rel, s.store.Write(abs, []byte(content)))
}

// Append adds content to the existing note at rel.
func (s *Service) Append(_ context.Context, rel, content string) error {
	abs, err := s.resolveNote(rel)
	if err != nil {
		return err
	}
	return s.translate(rel, s.store.Append(abs, []byte(content)))
}

// Edit replaces the first occurrence of find in the note at rel.
func (s *Service) Edit(_ context.Context, rel, find, replace string) error {
	abs, err := s.resolveNote(rel)
	if err != nil {
		return err
	}
	err = s.store.ReplaceOnce(abs, find, replace)
	if errors.Is(err, apperr.ErrTextNotFound) {
		return fmt.Errorf("%w: %q", apperr.ErrTextNotFound, find)
	}
	return s.translate(rel, err)
}

// List returns every note in the vault.
func (s *Service) List(_ context.Context) ([]models.NoteRef, error) {
	return s.store.Enumerate(s.vault.Root())
}

// Search returns the notes whose content contains query, ignoring case.
func (s *Service) Search(_ context.Context, query string) ([]models.NoteRef, error) {
	return search.Notes(s.store, s.vault.Root(), query)
}

// resolveNote guards rel and rejects targets that can never be a note file:
// the vault root itself and existing directories.
func (s *Service) resolveNote(rel string) (string, error) {
	abs, err := s.vault.Resolve(rel)
	if err != nil {
		return "", err
	}
	if abs == s.vault.Root() {
		return "", fmt.Errorf("%w: %s", apperr.ErrNotANote, rel)
	}
	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s", apperr.ErrNotANote, rel)
	}
	return abs, nil
}

// translate replaces storage errors that carry absolute paths with messages
// addressed by the caller's relative path.
func (s *Service) translate(rel string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
	}
	if errors.Is(err, apperr.ErrNotANote) {
		return fmt.Errorf("%w: %s", apperr.ErrNotANote, rel)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s %s: %w", pathErr.Op, rel, pathErr.Err)
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return fmt.Errorf("%s %s: %w", linkErr.Op, rel, linkErr.Err)
	}
	return err
}
