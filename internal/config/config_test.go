package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesEngineAndColor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".natrixrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: ast\ncolor: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ast", cfg.Engine)
	require.NotNil(t, cfg.Color)
	require.False(t, *cfg.Color)
}
