package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type countingSource struct {
	calls map[string]int
	table Table
}

func (s *countingSource) FrameCount(name string) (int, error) {
	s.calls[name]++
	return s.table.FrameCount(name)
}

func TestCacheResolvesOnce(t *testing.T) {
	src := &countingSource{calls: map[string]int{}, table: DefaultTable()}
	c := NewCache(src)

	for i := 0; i < 3; i++ {
		n, err := c.FrameCount("tornado")
		if err != nil {
			t.Fatalf("FrameCount: %v", err)
		}
		if n != 3 {
			t.Fatalf("tornado frames: got %d want 3", n)
		}
	}
	if src.calls["tornado"] != 1 {
		t.Fatalf("provider calls: got %d want 1", src.calls["tornado"])
	}
}

func TestCacheUnknownType(t *testing.T) {
	c := NewCache(DefaultTable())
	if _, err := c.FrameCount("zeppelin"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("got %v want ErrUnknownType", err)
	}
	if err := c.Preload("train", "zeppelin"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Preload: got %v want ErrUnknownType", err)
	}
}

func TestLoadManifestOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.yaml")
	if err := os.WriteFile(path, []byte("frames:\n  tornado: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if n, _ := tbl.FrameCount("tornado"); n != 4 {
		t.Fatalf("tornado: got %d want 4", n)
	}
	if n, _ := tbl.FrameCount("explosion"); n != 6 {
		t.Fatalf("explosion default: got %d want 6", n)
	}
}

func TestLoadManifestRejectsNonPositive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.yaml")
	if err := os.WriteFile(path, []byte("frames:\n  ship: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for zero frame count")
	}
}
