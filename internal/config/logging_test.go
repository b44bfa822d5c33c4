package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOldLogs_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"starc-2024-01-01T00-00-00.log",
		"starc-2024-01-02T00-00-00.log",
		"starc-2024-01-03T00-00-00.log",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	require.NoError(t, cleanupOldLogs(dir, 2))

	files, err := filepath.Glob(filepath.Join(dir, "starc-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NoFileExists(t, filepath.Join(dir, names[0]))
}

func TestNewLogger_TeesToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Environment: "test", LogDir: dir, LogMaxFiles: 5}
	var buf bytes.Buffer

	logger, closeFn, err := NewLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Info("hello", "k", "v")
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), `"msg":"hello"`)

	files, err := filepath.Glob(filepath.Join(dir, "starc-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k":"v"`)
}
