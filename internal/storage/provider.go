// Package storage implements the note file primitives of the vault.
package storage

import "github.com/starford/vaultmcp/internal/models"

// Provider is the interface for note file operations. Every path argument is
// an absolute path that has already passed the vault path guard.
type Provider interface {
	// Read returns the content of the note, apperr.ErrNotFound if absent.
	Read(path string) ([]byte, error)
	// Write creates or fully overwrites the note, creating parent directories.
	Write(path string, content []byte) error
	// Append adds content to an existing note, separated by a newline.
	Append(path string, content []byte) error
	// ReplaceOnce replaces the first literal occurrence of find.
	ReplaceOnce(path, find, replace string) error
	// Enumerate lists every note below root.
	Enumerate(root string) ([]models.NoteRef, error)
}
