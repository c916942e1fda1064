// Package search implements the linear, case-insensitive substring scan over
// all notes in the vault.
package search

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/vaultmcp/internal/models"
	"github.com/starford/vaultmcp/internal/storage"
)

// Notes returns every note under root whose content contains query, both
// compared after Unicode case folding. Results follow enumeration order.
//
// The scan is best effort: a note that cannot be read (permissions, removed
// mid-scan) is skipped and does not fail the search. Only an enumeration
// failure is returned.
func Notes(store storage.Provider, root, query string) ([]models.NoteRef, error) {
	refs, err := store.Enumerate(root)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	needle := fold.String(query)

	out := []models.NoteRef{}
	for _, ref := range refs {
		data, err := store.Read(filepath.Join(root, filepath.FromSlash(ref.Path)))
		if err != nil {
			continue
		}
		if strings.Contains(fold.String(string(data)), needle) {
			out = append(out, ref)
		}
	}
	return out, nil
}
