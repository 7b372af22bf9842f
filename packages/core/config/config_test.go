package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 30000, c.Timeout)
	assert.Equal(t, 20, c.HistoryLimit)
	assert.True(t, c.GetFollowRedirects())
	assert.True(t, c.GetValidateSSL())
	assert.False(t, c.GetNoColor())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"dataDir": "/tmp/collections",
		"timeout": 5000,
		"validateSSL": false,
		"historyLimit": 5
	}`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/collections", c.DataDir)
	assert.Equal(t, 5000, c.Timeout)
	assert.False(t, c.GetValidateSSL())
	assert.True(t, c.GetFollowRedirects(), "unset bools keep their defaults")
	assert.Equal(t, 5, c.HistoryLimit)
}

func TestFindAndLoadConfigMissing(t *testing.T) {
	c, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 30000, c.Timeout)
}

func TestFindAndLoadConfigSearchOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiver.config.json"), []byte(`{"timeout": 1000}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".quiver.config.json"), []byte(`{"timeout": 2000}`), 0o644))

	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 2000, c.Timeout, "dotted name is searched first")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.config.json")
	c := DefaultConfig()
	c.DataDir = "/data"
	c.NoColor = BoolPtr(true)
	require.NoError(t, c.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", loaded.DataDir)
	assert.True(t, loaded.GetNoColor())
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
