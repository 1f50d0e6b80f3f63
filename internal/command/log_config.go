package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joeycumines/aagent/internal/config"
	"github.com/joeycumines/aagent/internal/logging"
)

// logConfig is the resolved logging setup of an agent command.
type logConfig struct {
	level slog.Level
	json  bool
	// file is nil when logging to stderr.
	file io.WriteCloser
}

// resolveLogConfig resolves the level and destination: flag, then config
// (including its env override), then the schema default. The caller closes
// lc.file when it is non-nil.
func resolveLogConfig(flagPath, flagLevel string, cfg *config.Config) (lc logConfig, err error) {
	schema := config.DefaultSchema()
	if cfg == nil {
		cfg = config.NewConfig()
	}

	levelStr := flagLevel
	if levelStr == "" {
		levelStr = schema.Resolve(cfg, "log.level")
	}
	if lc.level, err = logging.ParseLevel(levelStr); err != nil {
		return lc, err
	}
	lc.json = cfg.GetBool("log.json")

	path := flagPath
	if path == "" {
		path = schema.Resolve(cfg, "log.file")
	}
	if path == "" {
		return lc, nil
	}
	maxSizeMB := cfg.GetInt("log.max-size-mb")
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	maxFiles := 5
	if v, ok := cfg.GetGlobalOption("log.max-files"); ok && v != "" {
		// zero keeps no backups
		maxFiles = max(cfg.GetInt("log.max-files"), 0)
	}
	w, err := logging.NewRotatingFileWriter(path, maxSizeMB, maxFiles)
	if err != nil {
		return lc, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	lc.file = w
	return lc, nil
}

// logger returns the configured logger. Files always get JSON; stderr gets
// text when it is a terminal, unless log.json is set.
func (lc logConfig) logger(stderr io.Writer) *slog.Logger {
	if lc.file != nil {
		return logging.New(lc.file, lc.level, true)
	}
	json := lc.json
	if f, ok := stderr.(*os.File); ok && !logging.IsTerminal(f) {
		json = true
	}
	return logging.New(stderr, lc.level, json)
}
