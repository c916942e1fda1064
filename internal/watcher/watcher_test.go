package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T, root string) *atomic.Int32 {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := Watch(ctx, root, testLogger(), func() { calls.Add(1) }); err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
	return &calls
}

func TestWatcher_NewNoteTriggersChange(t *testing.T) {
	root := t.TempDir()
	calls := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "expected change callback for new note")
}

func TestWatcher_BurstIsDebounced(t *testing.T) {
	root := t.TempDir()
	calls := startWatcher(t, root)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "burst"+string(rune('a'+i))+".md")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "expected change callback")
	time.Sleep(2 * Debounce)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 for a single burst", n)
	}
}

func TestWatcher_NewDirectoryWatched(t *testing.T) {
	root := t.TempDir()
	calls := startWatcher(t, root)

	sub := filepath.Join(root, "projects")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "expected change callback for new dir")

	before := calls.Load()
	if err := os.WriteFile(filepath.Join(sub, "plan.md"), []byte("plan"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > before
	}, "expected change callback for note in new dir")
}

func TestWatcher_HiddenAndNonNoteIgnored(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".obsidian"), 0o755); err != nil {
		t.Fatal(err)
	}
	calls := startWatcher(t, root)

	_ = os.WriteFile(filepath.Join(root, ".obsidian", "workspace.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, ".draft.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "image.png"), []byte("x"), 0o644)

	time.Sleep(3 * Debounce)
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestIgnored(t *testing.T) {
	root := filepath.FromSlash("/vault")
	for p, want := range map[string]bool{
		"/vault/a.md":                false,
		"/vault/.git/HEAD":           true,
		"/vault/node_modules/x.md":   true,
		"/vault/sub/.vault-tmp-1234": true,
		"/vault/sub/note.md":         false,
		"/vault":                     false,
	} {
		if got := ignored(root, filepath.FromSlash(p)); got != want {
			t.Errorf("ignored(%q) = %v, want %v", p, got, want)
		}
	}
}
