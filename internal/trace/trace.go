// Package trace records controller events as zstd-compressed JSON lines,
// one file per agent per hour.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joeycumines/aagent/internal/agent"
	"github.com/klauspost/compress/zstd"
)

const (
	hourLayout = "2006010215"
	// Ext is the trace file extension.
	Ext = ".jsonl.zst"
)

// Option configures a Writer.
type Option func(*Writer)

// WithClock replaces time.Now for rotation decisions.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// Writer is an agent.Observer that appends every event to the current
// hour's trace file.
type Writer struct {
	dir    string
	agent  string
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	hour   string
	file   *os.File
	enc    *zstd.Encoder
	closed bool
}

var _ agent.Observer = (*Writer)(nil)

// NewWriter creates dir if needed and returns a writer for the named agent.
// Files are opened lazily.
func NewWriter(dir, agentName string, opts ...Option) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	w := &Writer{dir: dir, agent: agentName, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the file name used for the hour containing t.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.dir, w.agent+"-"+t.UTC().Format(hourLayout)+Ext)
}

// Observe writes e, logging failures.
func (w *Writer) Observe(e agent.Event) {
	if err := w.Write(e); err != nil {
		w.logger.Warn("trace write failed", slog.Any("error", err))
	}
}

// Write appends one record.
func (w *Writer) Write(rec any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("trace: encode: %w", err)
	}
	b = append(b, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	if err := w.rotate(); err != nil {
		return err
	}
	if _, err := w.enc.Write(b); err != nil {
		return fmt.Errorf("trace: write: %w", err)
	}
	return nil
}

func (w *Writer) rotate() error {
	now := w.now()
	hour := now.UTC().Format(hourLayout)
	if w.enc != nil && hour == w.hour {
		return nil
	}
	if err := w.closeFile(); err != nil {
		return err
	}
	f, err := os.OpenFile(w.Path(now), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("trace: %w", err)
	}
	w.file, w.enc, w.hour = f, enc, hour
	return nil
}

func (w *Writer) closeFile() error {
	if w.enc == nil {
		return nil
	}
	err := w.enc.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.file, w.enc = nil, nil
	if err != nil {
		return fmt.Errorf("trace: close: %w", err)
	}
	return nil
}

// Close finishes the current file. Further writes fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeFile()
}

// Read decodes every event in a trace file. A file appended to across
// restarts holds several zstd frames, which are read in order.
func Read(path string) ([]agent.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	defer dec.Close()

	var events []agent.Event
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var e agent.Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return events, fmt.Errorf("trace: %s: line %d: %w", path, len(events)+1, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return events, fmt.Errorf("trace: %s: %w", path, err)
	}
	return events, nil
}
