// Package models defines the domain types for the vault.
package models

import "path"

// NoteRef identifies a note by its vault-relative, slash-separated path.
type NoteRef struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// NewNoteRef builds a NoteRef whose Name is the final segment of rel.
func NewNoteRef(rel string) NoteRef {
	return NoteRef{Path: rel, Name: path.Base(rel)}
}

// Equal reports whether both refs address the same relative path.
func (r NoteRef) Equal(other NoteRef) bool {
	return r.Path == other.Path
}

// Paths returns the relative paths of refs in order.
func Paths(refs []NoteRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Path
	}
	return out
}
