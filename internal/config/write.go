package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SetKeyInFile sets a global option in the file at path, keeping comments
// and sections intact. A new key goes before the first section header.
func SetKeyInFile(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}
	line := strings.TrimSpace(key + " " + value)

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}
	at := -1
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "[") && strings.HasSuffix(l, "]") {
			at = i
			break
		}
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		if k, _, _ := strings.Cut(l, " "); k == key {
			lines[i] = line
			return writeConfig(path, lines)
		}
	}
	switch {
	case at >= 0:
		lines = append(lines[:at], append([]string{line}, lines[at:]...)...)
	case len(lines) > 0 && lines[len(lines)-1] == "":
		lines = append(lines[:len(lines)-1], line, "")
	default:
		lines = append(lines, line)
	}
	return writeConfig(path, lines)
}

func writeConfig(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return writeFileAtomic(path, []byte(strings.Join(lines, "\n")), 0o644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing temp config: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
