package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, int64(42), cfg.Analysis.Seed)
	assert.Equal(t, 100, cfg.Analysis.Trees)
	assert.Equal(t, 5, cfg.Analysis.Folds)
	assert.Equal(t, 0.2, cfg.Analysis.TestRatio)
	assert.Equal(t, 5, cfg.Analysis.TopFeatures)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TITANIC_ANALYSIS_TREES", "25")
	t.Setenv("TITANIC_LOG_LEVEL", "debug")
	t.Setenv("TITANIC_DATABASE_URL", "postgres://localhost/titanic")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Analysis.Trees)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://localhost/titanic", cfg.Database.URL)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "titanic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  folds: 3\n  test_ratio: 0.25\nserver:\n  addr: \":9090\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.Folds)
	assert.Equal(t, 0.25, cfg.Analysis.TestRatio)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 100, cfg.Analysis.Trees)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TITANIC_ANALYSIS_TOP_FEATURES=3\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TITANIC_ANALYSIS_TOP_FEATURES") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.TopFeatures)
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("TITANIC_ANALYSIS_FOLDS", "1")
	t.Setenv("TITANIC_ANALYSIS_TEST_RATIO", "1.5")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.folds")
	assert.Contains(t, err.Error(), "analysis.test_ratio")
}
