package store

import (
	"testing"
)

func setupTestPrefs(t *testing.T) *Preferences {
	t.Helper()
	p, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPreferencesGetSet(t *testing.T) {
	p := setupTestPrefs(t)

	v, err := p.Get("kits.sort")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if v != "" {
		t.Fatalf("missing key = %q, want empty", v)
	}

	if err := p.Set("kits.sort", "price-asc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := p.Set("kits.sort", "wan-desc"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err = p.Get("kits.sort")
	if err != nil || v != "wan-desc" {
		t.Fatalf("get = %q, %v, want wan-desc", v, err)
	}

	if err := p.Delete("kits.sort"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v, _ := p.Get("kits.sort"); v != "" {
		t.Fatalf("deleted key = %q", v)
	}
	if err := p.Delete("never-set"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestPreferencesPersistOnDisk(t *testing.T) {
	dir := t.TempDir()

	p, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := p.Set("kits.sort", "reviews-desc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if v, err := reopened.Get("kits.sort"); err != nil || v != "reviews-desc" {
		t.Fatalf("after reopen = %q, %v", v, err)
	}
}
