package persistence

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// TickEntry summarizes one tick.
type TickEntry struct {
	Tick        uint64         `json:"tick"`
	Paused      bool           `json:"paused,omitempty"`
	Agents      map[string]int `json:"agents"`
	TrafficPeak int            `json:"traffic_peak"`
	Notices     int            `json:"notices"`
}

// TickLogger appends one JSON line per tick to zstd-compressed files under
// <dataDir>/ticks, starting a new ticks-YYYY-MM-DD-HH.jsonl.zst file every
// UTC hour. Lines stay buffered until Flush, a rotation, or Close.
type TickLogger struct {
	dir   string
	clock func() time.Time

	mu   sync.Mutex
	hour string // Hour of the open file; empty when none is open
	file *os.File
	zw   *zstd.Encoder
	buf  *bufio.Writer
}

// NewTickLogger logs under dataDir. Files are created on the first write.
func NewTickLogger(dataDir string) *TickLogger {
	return &TickLogger{dir: filepath.Join(dataDir, "ticks"), clock: time.Now}
}

// WriteTick appends e to the current hour's file.
func (l *TickLogger) WriteTick(e TickEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode tick %d: %w", e.Tick, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if hour := l.clock().UTC().Format("2006-01-02-15"); hour != l.hour {
		if err := l.roll(hour); err != nil {
			return err
		}
	}
	_, err = l.buf.Write(line)
	return err
}

// Flush pushes buffered lines through the compressor to disk.
func (l *TickLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf == nil {
		return nil
	}
	if err := l.buf.Flush(); err != nil {
		return err
	}
	return l.zw.Flush()
}

// Close seals the open file.
func (l *TickLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seal()
}

// roll seals the open file and opens the one for hour. Caller holds mu.
func (l *TickLogger) roll(hour string) error {
	if err := l.seal(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("tick log dir: %w", err)
	}
	path := filepath.Join(l.dir, "ticks-"+hour+".jsonl.zst")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open tick log: %w", err)
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return fmt.Errorf("tick log encoder: %w", err)
	}
	l.hour, l.file, l.zw, l.buf = hour, f, zw, bufio.NewWriterSize(zw, 64<<10)
	return nil
}

// seal flushes and closes whatever file is open. Caller holds mu.
func (l *TickLogger) seal() error {
	if l.file == nil {
		return nil
	}
	err := errors.Join(l.buf.Flush(), l.zw.Close(), l.file.Close())
	l.hour, l.file, l.zw, l.buf = "", nil, nil, nil
	return err
}
