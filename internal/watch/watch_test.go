package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cubicletools/ctc/internal/watch"
)

func waitChange(t *testing.T, w *watch.Watcher) {
	t.Helper()

	select {
	case <-w.Changes():
	case err := <-w.Errors():
		t.Fatal(err)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatchWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.cub")

	if err := os.WriteFile(path, []byte("number_procs 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := watch.New(20*time.Millisecond, path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("number_procs 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitChange(t, w)
}

func TestWatchReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.cub")
	tmp := filepath.Join(dir, "model.cub.tmp")

	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := watch.New(20*time.Millisecond, path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(tmp, []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	waitChange(t, w)

	// The re-added watch must survive the rename.
	if err := os.WriteFile(path, []byte("c\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitChange(t, w)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.cub")
	other := filepath.Join(dir, "other.cub")

	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := watch.New(20*time.Millisecond, path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(other, []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
		t.Fatal("unwatched sibling triggered a change")
	case <-time.After(200 * time.Millisecond):
	}
}
