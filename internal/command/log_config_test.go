package command

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/aagent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLogConfig_Defaults(t *testing.T) {
	t.Setenv("AAGENT_LOG_LEVEL", "")
	os.Unsetenv("AAGENT_LOG_LEVEL")
	t.Setenv("AAGENT_LOG_FILE", "")
	os.Unsetenv("AAGENT_LOG_FILE")

	lc, err := resolveLogConfig("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lc.level)
	assert.Nil(t, lc.file)
	assert.False(t, lc.json)
}

func TestResolveLogConfig_Precedence(t *testing.T) {
	os.Unsetenv("AAGENT_LOG_LEVEL")
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.level", "warn")
	cfg.SetGlobalOption("log.json", "true")

	lc, err := resolveLogConfig("", "", cfg)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lc.level)
	assert.True(t, lc.json)

	lc, err = resolveLogConfig("", "debug", cfg)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lc.level)

	t.Setenv("AAGENT_LOG_LEVEL", "error")
	lc, err = resolveLogConfig("", "", cfg)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lc.level)
}

func TestResolveLogConfig_InvalidLevel(t *testing.T) {
	t.Parallel()
	_, err := resolveLogConfig("", "loud", nil)
	assert.EqualError(t, err, "invalid log level: loud")
}

func TestResolveLogConfig_File(t *testing.T) {
	os.Unsetenv("AAGENT_LOG_FILE")
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.file", filepath.Join(dir, "config.log"))
	cfg.SetGlobalOption("log.max-files", "0")

	flagPath := filepath.Join(dir, "flag.log")
	lc, err := resolveLogConfig(flagPath, "info", cfg)
	require.NoError(t, err)
	require.NotNil(t, lc.file)

	lc.logger(&bytes.Buffer{}).Info("hello", slog.String("agent", "a1"))
	require.NoError(t, lc.file.Close())

	b, err := os.ReadFile(flagPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"agent":"a1"`)
	assert.NoFileExists(t, filepath.Join(dir, "config.log"))
}

func TestLogConfig_StderrFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logConfig{level: slog.LevelInfo}.logger(&buf).Info("text")
	assert.Contains(t, buf.String(), "msg=text")

	buf.Reset()
	logConfig{level: slog.LevelInfo, json: true}.logger(&buf).Info("json")
	assert.Contains(t, buf.String(), `"msg":"json"`)

	buf.Reset()
	logConfig{level: slog.LevelWarn}.logger(&buf).Info("hidden")
	assert.Empty(t, buf.String())
}
