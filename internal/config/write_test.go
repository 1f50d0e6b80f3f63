package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSetKeyInFile_New(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")

	require.NoError(t, SetKeyInFile(path, "log.level", "debug"))
	assert.Equal(t, "log.level debug", strings.TrimSpace(readFile(t, path)))

	require.NoError(t, SetKeyInFile(path, "log.json", ""))
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	v, ok := cfg.GetGlobalOption("log.json")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestSetKeyInFile_Update(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	initial := "# header\ntick-interval 10ms\n\n# logs\nlog.level info\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o644))

	require.NoError(t, SetKeyInFile(path, "log.level", "warn"))
	got := readFile(t, path)
	assert.Equal(t, 1, strings.Count(got, "log.level"))
	assert.Contains(t, got, "log.level warn")
	assert.Contains(t, got, "# header")
	assert.Contains(t, got, "# logs")
	assert.Contains(t, got, "tick-interval 10ms")
}

func TestSetKeyInFile_SectionsUntouched(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	initial := "log.level info\n\n[spawn]\ndirective bt:BTRoam\nlog.level warn\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o644))

	require.NoError(t, SetKeyInFile(path, "trace.dir", "/var/trace"))
	require.NoError(t, SetKeyInFile(path, "log.level", "debug"))

	got := readFile(t, path)
	assert.Less(t, strings.Index(got, "trace.dir /var/trace"), strings.Index(got, "[spawn]"))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.GetString("log.level"))
	assert.Equal(t, "/var/trace", cfg.GetString("trace.dir"))
	v, _ := cfg.GetCommandOption("spawn", "log.level")
	assert.Equal(t, "warn", v)
}

func TestSetKeyInFile_NoTempLeft(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	for _, kv := range [][2]string{{"log.level", "info"}, {"tick-interval", "5ms"}, {"log.file", "/tmp/a b.log"}} {
		require.NoError(t, SetKeyInFile(path, kv[0], kv[1]))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a b.log", cfg.GetString("log.file"))
}
