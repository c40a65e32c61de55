package asset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewStore(t.TempDir(), "/uploads", logger)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStore_SaveAndRemove(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	url, err := store.Save(context.Background(), strings.NewReader("fake-image-bytes"), "photo.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %s, want /uploads/ prefix", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %s, want .png extension preserved", url)
	}
	if !store.Exists(url) {
		t.Fatal("saved file should exist")
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(url)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Errorf("stored content = %q", data)
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if store.Exists(url) {
		t.Error("file should be gone after Remove")
	}
}

func TestStore_Save_UniqueNames(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	u1, err := store.Save(context.Background(), strings.NewReader("a"), "same.jpg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	u2, err := store.Save(context.Background(), strings.NewReader("b"), "same.jpg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if u1 == u2 {
		t.Error("two uploads with the same original name should get distinct references")
	}
}

func TestStore_Save_UnsupportedType(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	for _, name := range []string{"script.sh", "doc.pdf", "noext", "archive.tar.gz"} {
		if _, err := store.Save(context.Background(), strings.NewReader("x"), name); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Save(%q): expected ErrUnsupportedType, got %v", name, err)
		}
	}
}

func TestStore_Remove_MissingFileIsNotError(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	if err := store.Remove("/uploads/01HV0000000000000000000000.png"); err != nil {
		t.Errorf("removing an already-gone file should succeed, got %v", err)
	}
}

func TestStore_Remove_ForeignReference(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	tests := []string{
		"https://elsewhere.example/img.png",
		"/other/img.png",
		"",
	}
	for _, url := range tests {
		if err := store.Remove(url); !errors.Is(err, ErrForeignReference) {
			t.Errorf("Remove(%q): expected ErrForeignReference, got %v", url, err)
		}
	}
}

func TestStore_Remove_TraversalGuard(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	// A reference trying to climb out of the content area must only ever
	// touch the base name inside the store directory.
	outside := filepath.Join(filepath.Dir(store.Dir()), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("write victim file: %v", err)
	}

	_ = store.Remove("/uploads/../victim.txt")

	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the store directory was deleted")
	}
}
