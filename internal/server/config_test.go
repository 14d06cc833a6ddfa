package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, int64(128<<20), cfg.MaxUploadBytes)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scormpack.toml")
	content := `
addr = "127.0.0.1:9999"
max_upload_bytes = 1048576
id_prefix = "org.example.lms"

[limits]
max_file_bytes = 1024
max_entries = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, int64(1048576), cfg.MaxUploadBytes)
	assert.Equal(t, "org.example.lms", cfg.IDPrefix)

	limits := cfg.CourseLimits()
	assert.Equal(t, int64(1024), limits.MaxFileBytes)
	assert.Equal(t, 5, limits.MaxEntries)
	assert.Zero(t, limits.MaxTotalBytes, "unset limits stay zero and default downstream")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("addr = ["), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
