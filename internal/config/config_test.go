package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "nvfp4-training-lab:latest", cfg.ImageRef())
	assert.Equal(t, "nvfp4-training-lab.tar.gz", cfg.ArchiveName())
	assert.Equal(t, dir, cfg.WorkspaceDir)
	assert.Equal(t, 8888, cfg.JupyterPort)
	assert.Equal(t, 6006, cfg.TensorBoardPort)
	assert.Equal(t, int64(20)<<30, cfg.MinBuildDisk)
}

func TestLoadAppliesOverrideFile(t *testing.T) {
	dir := t.TempDir()
	overrides := `
image:
  name: fp4-lab
  tag: v2
ports:
  jupyter: 9999
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, OverrideFileName), []byte(overrides), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "fp4-lab:v2", cfg.ImageRef())
	assert.Equal(t, "fp4-lab.tar.gz", cfg.ArchiveName())
	assert.Equal(t, 9999, cfg.JupyterPort)
	// Untouched settings keep their defaults.
	assert.Equal(t, 6006, cfg.TensorBoardPort)
}

func TestLoadRejectsMalformedOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, OverrideFileName), []byte("image: ["), 0o644))

	_, err := Load(dir)

	assert.Error(t, err)
}
