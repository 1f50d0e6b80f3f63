// Package config reads the aagent configuration file.
//
// The file uses a dnsmasq-like format: one "optionName value" per line,
// "#" comments, and [section] headers scoping the options that follow to a
// command (for example [run] or [spawn]).
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// ErrSymlink is returned when the config path is a symlink.
var ErrSymlink = errors.New("config: symlink not allowed")

// Config is a parsed configuration file.
type Config struct {
	// Global holds options outside any section.
	Global map[string]string
	// Commands holds options by section name.
	Commands map[string]map[string]string
	// Warnings lists schema violations found while loading.
	Warnings []string
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{
		Global:   make(map[string]string),
		Commands: make(map[string]map[string]string),
	}
}

// Load reads the file named by GetConfigPath. A missing file yields an
// empty configuration.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("config: locate: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration at path, refusing symlinks.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if fi.Mode()&fs.ModeSymlink != 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymlink, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses a configuration and validates it against
// DefaultSchema, collecting problems as warnings.
func LoadFromReader(r io.Reader) (*Config, error) {
	c := NewConfig()
	var section string
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("config: line %d: unterminated section header %q", n, line)
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			if section != "" && c.Commands[section] == nil {
				c.Commands[section] = make(map[string]string)
			}
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		value = strings.TrimSpace(value)
		if section == "" {
			c.SetGlobalOption(key, value)
		} else {
			c.SetCommandOption(section, key, value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	for _, issue := range ValidateConfig(c, DefaultSchema()) {
		c.Warnings = append(c.Warnings, issue)
		slog.Warn("config: " + issue)
	}
	return c, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %s", s)
}

// GetGlobalOption returns a global option and whether it is set.
func (c *Config) GetGlobalOption(name string) (string, bool) {
	v, ok := c.Global[name]
	return v, ok
}

// GetCommandOption returns the option from the command's section, falling
// back to the global value.
func (c *Config) GetCommandOption(command, name string) (string, bool) {
	if v, ok := c.Commands[command][name]; ok {
		return v, true
	}
	return c.GetGlobalOption(name)
}

// SetGlobalOption sets a global option in memory.
func (c *Config) SetGlobalOption(name, value string) { c.Global[name] = value }

// SetCommandOption sets an option of the command section in memory,
// creating the section when needed.
func (c *Config) SetCommandOption(command, name, value string) {
	if c.Commands[command] == nil {
		c.Commands[command] = make(map[string]string)
	}
	c.Commands[command][name] = value
}

// HasWarnings reports whether loading found schema violations.
func (c *Config) HasWarnings() bool { return len(c.Warnings) > 0 }
