package noteservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/vaultmcp/internal/apperr"
	"github.com/starford/vaultmcp/internal/models"
	"github.com/starford/vaultmcp/internal/storage"
	"github.com/starford/vaultmcp/internal/vault"
)

func testService(t *testing.T) (*Service, string) {
	t.Helper()
	v, err := vault.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewService(v, storage.NewFS()), v.Root()
}

func TestWriteThenRead(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	if err := svc.Write(ctx, "p.md", "c1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Write(ctx, "p.md", "c2"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Read(ctx, "p.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "c2" {
		t.Errorf("Read = %q, want c2", got)
	}
}

func TestReadNotFoundUsesRelativePath(t *testing.T) {
	svc, root := testService(t)
	_, err := svc.Read(context.Background(), "missing/n.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err.Error() != "note not found: missing/n.md" {
		t.Errorf("message = %q", err.Error())
	}
	if strings.Contains(err.Error(), root) {
		t.Error("error must not leak the absolute vault path")
	}
}

func TestTraversalDeniedBeforeTouchingDisk(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()
	escape := "../escaped.md"
	if err := svc.Write(ctx, escape, "x"); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Write err = %v, want ErrAccessDenied", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escaped.md")); err == nil {
		t.Error("file written outside the vault")
	}
	if _, err := svc.Read(ctx, escape); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Read err = %v", err)
	}
	if err := svc.Append(ctx, escape, "x"); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Append err = %v", err)
	}
	if err := svc.Edit(ctx, escape, "a", "b"); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Edit err = %v", err)
	}
}

func TestRootAndDirectoryAreNotNotes(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	parent := filepath.Dir(root)
	before, err := os.ReadDir(parent)
	if err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{".", "sub/..", "", "sub"} {
		if err := svc.Write(ctx, rel, "payload"); !errors.Is(err, apperr.ErrNotANote) {
			t.Errorf("Write(%q) err = %v, want ErrNotANote", rel, err)
		} else if strings.Contains(err.Error(), root) {
			t.Errorf("Write(%q) error leaks host path: %v", rel, err)
		}
		if err := svc.Append(ctx, rel, "payload"); !errors.Is(err, apperr.ErrNotANote) {
			t.Errorf("Append(%q) err = %v, want ErrNotANote", rel, err)
		}
		if err := svc.Edit(ctx, rel, "a", "b"); !errors.Is(err, apperr.ErrNotANote) {
			t.Errorf("Edit(%q) err = %v, want ErrNotANote", rel, err)
		}
		if _, err := svc.Read(ctx, rel); !errors.Is(err, apperr.ErrNotANote) {
			t.Errorf("Read(%q) err = %v, want ErrNotANote", rel, err)
		}
	}

	after, err := os.ReadDir(parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Errorf("vault parent changed: %d entries before, %d after", len(before), len(after))
	}
}

func TestStoreErrorsUseRelativePath(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()
	if err := svc.Write(ctx, "file.md", "x"); err != nil {
		t.Fatal(err)
	}

	err := svc.Write(ctx, "file.md/child.md", "y")
	if err == nil {
		t.Fatal("writing below a file should fail")
	}
	if strings.Contains(err.Error(), root) {
		t.Errorf("error leaks host path: %v", err)
	}
	if !strings.Contains(err.Error(), "file.md/child.md") {
		t.Errorf("error %q should name the relative path", err)
	}
}

func TestEditMessages(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	_ = svc.Write(ctx, "n.md", "alpha beta")

	err := svc.Edit(ctx, "n.md", "gamma", "delta")
	if !errors.Is(err, apperr.ErrTextNotFound) {
		t.Fatalf("err = %v, want ErrTextNotFound", err)
	}
	if err.Error() != `text not found in note: "gamma"` {
		t.Errorf("message = %q", err.Error())
	}

	err = svc.Edit(ctx, "ghost.md", "a", "b")
	if !errors.Is(err, apperr.ErrNotFound) || err.Error() != "note not found: ghost.md" {
		t.Errorf("err = %v", err)
	}

	if err := svc.Edit(ctx, "n.md", "beta", "BETA"); err != nil {
		t.Fatal(err)
	}
	if got, _ := svc.Read(ctx, "n.md"); got != "alpha BETA" {
		t.Errorf("content = %q", got)
	}
}

func TestAppendMissing(t *testing.T) {
	svc, _ := testService(t)
	err := svc.Append(context.Background(), "ghost.md", "x")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListAndSearch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	_ = svc.Write(ctx, "a.md", "hello world")
	_ = svc.Write(ctx, "sub/b.md", "goodbye")

	refs, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := models.Paths(refs); len(got) != 2 || got[0] != "a.md" || got[1] != "sub/b.md" {
		t.Errorf("List = %v", got)
	}

	hits, err := svc.Search(ctx, "HELLO")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Path != "a.md" {
		t.Errorf("Search = %v", models.Paths(hits))
	}
}
