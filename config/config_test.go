package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Remote: "upstream", DefaultBase: "develop", AutoResolve: "smart"}
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_CreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	require.NoError(t, Save(dir, Default()))

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_EmptyFieldsFallBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"default_base": "develop"}`), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "none", cfg.AutoResolve)
	assert.Equal(t, "develop", cfg.DefaultBase)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg, "malformed config falls back to defaults")
}

func TestStateDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GIT_FLOW_DIR", dir)

	got, err := StateDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestEnsureDefault_WritesFileOnFirstRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	cfg, err := EnsureDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnsureDefault_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Config{Remote: "upstream", AutoResolve: "smart"}))

	cfg, err := EnsureDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, "upstream", cfg.Remote)
	assert.Equal(t, "smart", cfg.AutoResolve)
}

func TestWriteFileAtomic_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.json")
	require.NoError(t, writeFileAtomic(path, []byte("one"), 0600))
	require.NoError(t, writeFileAtomic(path, []byte("two"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
