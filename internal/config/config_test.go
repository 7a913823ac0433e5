package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("MAX_WORKERS", "")
	t.Setenv("WEIGHT_VERSION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8, cfg.MaxWorkers)
	assert.Equal(t, "v2", cfg.WeightVersion)
	assert.Equal(t, "python3", cfg.Interpreter)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_WORKERS", "4")
	t.Setenv("WEIGHT_VERSION", "v1")
	t.Setenv("DATA_DIR", "/tmp/scores")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, "v1", cfg.WeightVersion)
	assert.Equal(t, "/tmp/scores", cfg.DataDir)
}

func TestLoadYAMLFileWithEnvWinning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7777\"\nmax_workers: 2\n"), 0600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("MAX_WORKERS", "16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7777", cfg.Port, "file value used when env is unset")
	assert.Equal(t, 16, cfg.MaxWorkers, "env wins over file")
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_WORKERS", "-2")

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvTokenSource(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-secret")
	t.Setenv("HF_TOKEN", "hf-secret")
	t.Setenv("CUSTOM_TOKEN", "custom-secret")

	src := EnvTokenSource{}
	assert.Equal(t, "gh-secret", src.Token("github"))
	assert.Equal(t, "hf-secret", src.Token("huggingface"))
	assert.Equal(t, "custom-secret", src.Token("custom"))
	assert.Equal(t, "", src.Token("unset-service"))
}
