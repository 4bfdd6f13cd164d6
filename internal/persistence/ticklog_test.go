package persistence

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func readEntries(t *testing.T, path string) []TickEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var out []TickEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e TickEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestTickLogRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.clock = func() time.Time { return clock }

	for tick := uint64(1); tick <= 3; tick++ {
		if err := l.WriteTick(TickEntry{Tick: tick, Agents: map[string]int{"train": 1}}); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	clock = clock.Add(2 * time.Minute)
	if err := l.WriteTick(TickEntry{Tick: 4}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	first := readEntries(t, filepath.Join(dir, "ticks", "ticks-2026-03-01-10.jsonl.zst"))
	if len(first) != 3 || first[2].Tick != 3 || first[0].Agents["train"] != 1 {
		t.Fatalf("first hour: %+v", first)
	}
	second := readEntries(t, filepath.Join(dir, "ticks", "ticks-2026-03-01-11.jsonl.zst"))
	if len(second) != 1 || second[0].Tick != 4 {
		t.Fatalf("second hour: %+v", second)
	}
}
