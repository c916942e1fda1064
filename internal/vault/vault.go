// Package vault holds the immutable vault root and the path guard that keeps
// every caller-supplied path inside it.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/vaultmcp/internal/apperr"
)

// Vault is the process-wide vault root. It is built once by Open and never
// mutated afterwards.
type Vault struct {
	root string // absolute, symlinks resolved
}

// Open canonicalizes root and checks that it is an existing directory.
// Failures wrap apperr.ErrInvalidRoot.
func Open(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", apperr.ErrInvalidRoot, root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s does not exist: %v", apperr.ErrInvalidRoot, abs, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", apperr.ErrInvalidRoot, resolved, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperr.ErrInvalidRoot, resolved)
	}
	return &Vault{root: resolved}, nil
}

// Root returns the canonical absolute root directory.
func (v *Vault) Root() string {
	return v.root
}

// Resolve joins rel (slash separated) to the root and returns the canonical
// absolute path, or apperr.ErrAccessDenied if it would land outside the root.
// Symlinks are followed for the part of the path that already exists, so a
// link pointing out of the vault is rejected too.
func (v *Vault) Resolve(rel string) (string, error) {
	joined := filepath.Join(v.root, filepath.FromSlash(rel))
	if !v.Contains(joined) {
		return "", fmt.Errorf("%w: %s", apperr.ErrAccessDenied, rel)
	}
	resolved := resolveExisting(joined)
	if !v.Contains(resolved) {
		return "", fmt.Errorf("%w: %s", apperr.ErrAccessDenied, rel)
	}
	return resolved, nil
}

// Contains reports whether the absolute path abs is the root or lies below it
// on a path-segment boundary.
func (v *Vault) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == v.root {
		return true
	}
	prefix := v.root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(abs, prefix)
}

// resolveExisting evaluates symlinks on the longest existing prefix of p and
// re-attaches the components that do not exist yet.
func resolveExisting(p string) string {
	var missing []string
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		missing = append(missing, filepath.Base(cur))
		cur = parent
	}
}
