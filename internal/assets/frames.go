// Package assets resolves per-type animation frame counts. The core never
// touches pixel data; it only needs to know how many frames each agent type
// cycles through. Counts come from a compiled-in table or a YAML manifest
// and are cached after the first lookup.
package assets

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownType is returned when a provider has no entry for a type name.
var ErrUnknownType = errors.New("no frames for agent type")

// FrameCounter reports how many animation frames a named agent type has.
type FrameCounter interface {
	FrameCount(typeName string) (int, error)
}

// Table is a FrameCounter backed by a fixed map.
type Table map[string]int

// DefaultTable holds the stock frame counts of the seven agent types.
func DefaultTable() Table {
	return Table{
		"train":      5,
		"helicopter": 9,
		"airplane":   12,
		"ship":       9,
		"monster":    17,
		"tornado":    3,
		"explosion":  6,
	}
}

// FrameCount implements FrameCounter.
func (t Table) FrameCount(typeName string) (int, error) {
	n, ok := t[typeName]
	if !ok || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return n, nil
}

// manifest is the on-disk layout of a frame manifest:
//
//	frames:
//	  train: 5
//	  tornado: 3
type manifest struct {
	Frames map[string]int `yaml:"frames"`
}

// LoadManifest reads a YAML frame manifest. Types missing from the file fall
// back to DefaultTable.
func LoadManifest(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame manifest: %w", err)
	}
	var mf manifest
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parse frame manifest %s: %w", path, err)
	}

	t := DefaultTable()
	for name, n := range mf.Frames {
		if n <= 0 {
			return nil, fmt.Errorf("frame manifest %s: %q has %d frames", path, name, n)
		}
		t[name] = n
	}
	return t, nil
}

// Cache resolves each type once through its provider and remembers the
// answer for the rest of the run. Safe for concurrent use.
type Cache struct {
	src FrameCounter

	mu     sync.Mutex
	counts map[string]int
}

// NewCache wraps src.
func NewCache(src FrameCounter) *Cache {
	return &Cache{
		src:    src,
		counts: make(map[string]int),
	}
}

// FrameCount returns the cached count, resolving it on first use.
func (c *Cache) FrameCount(typeName string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.counts[typeName]; ok {
		return n, nil
	}
	n, err := c.src.FrameCount(typeName)
	if err != nil {
		return 0, err
	}
	c.counts[typeName] = n
	return n, nil
}

// Preload resolves every named type, so a missing asset fails at startup
// rather than mid-run.
func (c *Cache) Preload(typeNames ...string) error {
	for _, name := range typeNames {
		if _, err := c.FrameCount(name); err != nil {
			return fmt.Errorf("preload frames: %w", err)
		}
	}
	return nil
}
