package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const megabyte = 1 << 20

// RotatingFileWriter appends to a file and rotates it once it would grow
// past a size limit: path becomes path.1, path.1 becomes path.2 and so on,
// keeping at most maxFiles backups. A single write never spans two files.
// It is safe for concurrent use.
type RotatingFileWriter struct {
	path     string
	limit    int64
	maxFiles int

	mu   sync.Mutex
	file *os.File
	size int64
}

var _ io.WriteCloser = (*RotatingFileWriter)(nil)

// NewRotatingFileWriter opens path for appending, creating it and its
// directory if needed. maxSizeMB is clamped to at least 1 and maxFiles to
// at least 0, where 0 truncates on rotation.
func NewRotatingFileWriter(path string, maxSizeMB, maxFiles int) (*RotatingFileWriter, error) {
	return newRotatingFileWriter(path, int64(max(maxSizeMB, 1))*megabyte, max(maxFiles, 0))
}

func newRotatingFileWriter(path string, limit int64, maxFiles int) (*RotatingFileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}
	w := &RotatingFileWriter{path: path, limit: limit, maxFiles: maxFiles}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingFileWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("logging: %w", err)
	}
	w.file, w.size = f, info.Size()
	return nil
}

// Write appends p, rotating first when p would push the file past its
// size limit.
func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close closes the current file.
func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingFileWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("logging: rotate: %w", err)
	}
	w.file = nil

	var errs []error
	backups := w.backups()
	slices.Reverse(backups)
	for _, n := range backups {
		if n >= w.maxFiles {
			errs = append(errs, ignoreMissing(os.Remove(w.backup(n))))
			continue
		}
		errs = append(errs, ignoreMissing(os.Rename(w.backup(n), w.backup(n+1))))
	}
	if w.maxFiles > 0 {
		errs = append(errs, os.Rename(w.path, w.backup(1)))
	} else {
		errs = append(errs, os.Remove(w.path))
	}
	if err := errors.Join(errs...); err != nil {
		// keep writing to the oversized file rather than losing records
		if oerr := w.open(); oerr != nil {
			return errors.Join(err, oerr)
		}
		return fmt.Errorf("logging: rotate: %w", err)
	}
	return w.open()
}

func ignoreMissing(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (w *RotatingFileWriter) backup(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// backups returns the existing backup numbers in ascending order.
func (w *RotatingFileWriter) backups() []int {
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil
	}
	prefix := filepath.Base(w.path) + "."
	var nums []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)
	return nums
}
