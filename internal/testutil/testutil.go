// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/storage"
	"github.com/starford/vaultmcp/internal/vault"
)

// TestVault creates a temporary vault and a note service bound to it. The
// returned root is the canonical vault path.
func TestVault(t *testing.T) (string, *noteservice.Service) {
	t.Helper()
	v, err := vault.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return v.Root(), noteservice.NewService(v, storage.NewFS())
}

// WriteNote writes content to rel below root, creating parent directories.
func WriteNote(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadNote returns the content of rel below root.
func ReadNote(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}
