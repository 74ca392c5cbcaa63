package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalDir := getConfigDirFunc
	originalPath := getConfigPathFunc
	getConfigDirFunc = func() (string, error) { return dir, nil }
	getConfigPathFunc = func() (string, error) { return filepath.Join(dir, "config.json"), nil }
	t.Cleanup(func() {
		getConfigDirFunc = originalDir
		getConfigPathFunc = originalPath
	})
	return dir
}

func TestGlobalConfig(t *testing.T) {
	t.Run("load returns nil when no config exists", func(t *testing.T) {
		useTempConfigDir(t)
		cfg, err := LoadGlobalConfig()
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		useTempConfigDir(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIKey: "sk-test", APIURL: "http://api.example.com"}))

		cfg, err := LoadGlobalConfig()
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "http://api.example.com", cfg.APIURL)
	})

	t.Run("save rejects nil config", func(t *testing.T) {
		useTempConfigDir(t)
		assert.Error(t, SaveGlobalConfig(nil))
	})

	t.Run("delete removes the config", func(t *testing.T) {
		useTempConfigDir(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIKey: "sk-test"}))
		require.NoError(t, DeleteGlobalConfig())

		cfg, err := LoadGlobalConfig()
		require.NoError(t, err)
		assert.Nil(t, cfg)

		// Deleting a missing config is fine.
		assert.NoError(t, DeleteGlobalConfig())
	})
}
