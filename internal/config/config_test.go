package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Silent)
	assert.False(t, cfg.Bundle.Enabled)
	assert.Empty(t, cfg.Bundle.SearchPaths)
	assert.False(t, cfg.Obfuscation.Enabled)
	assert.Equal(t, "a", cfg.Obfuscation.VarPrefix)
	assert.Equal(t, "usage,args", cfg.Obfuscation.IgnoreVars)
	assert.Empty(t, cfg.Obfuscation.ExcludeVars)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmixer.yaml")
	content := "silent: true\nobfuscation:\n  enabled: true\n  var_prefix: z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Silent)
	assert.True(t, cfg.Obfuscation.Enabled)
	assert.Equal(t, "z", cfg.Obfuscation.VarPrefix)
	// Unset keys keep their defaults.
	assert.Equal(t, "usage,args", cfg.Obfuscation.IgnoreVars)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadExplicitFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shmixer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHMIXER_OBFUSCATION_VAR_PREFIX", "q")
	t.Setenv("SHMIXER_BUNDLE_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "q", cfg.Obfuscation.VarPrefix)
	assert.True(t, cfg.Bundle.Enabled)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shmixer.yaml")
	require.NoError(t, Save(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
