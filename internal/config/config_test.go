package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1.0, cfg.Classifier.MinScore)
	assert.Equal(t, 3, cfg.Detector.TableMinRows)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.MinRequestInterval)
	assert.Equal(t, 3, cfg.Engine.MaxFetchAttempts)
	assert.Equal(t, 3, cfg.Resolver.MaxVerifyAttempts)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	t.Setenv("CIVIC_MEETINGS_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesLayerOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
classifier:
  minScore: 2.5
engine:
  minRequestInterval: 2s
  maxPaginationPages: 9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Classifier.MinScore)
	assert.Equal(t, 2*time.Second, cfg.Engine.MinRequestInterval)
	assert.Equal(t, 9, cfg.Engine.MaxPaginationPages)
	// Untouched values keep their defaults.
	assert.Equal(t, Default().Classifier.KeywordWeight, cfg.Classifier.KeywordWeight)
	assert.Equal(t, Default().Engine.FetchTimeout, cfg.Engine.FetchTimeout)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classifier: [not: a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detector:\n  tableMinRows: 7\n"), 0644))
	t.Setenv("CIVIC_MEETINGS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Detector.TableMinRows)
}
