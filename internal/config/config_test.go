package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beangauge.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	s := Defaults()
	assert.Equal(t, "letter", s.Sheet)
	assert.Equal(t, 6.0, s.Scale)
	assert.Equal(t, 100.0, s.RulerMM)
	assert.Equal(t, "coarse", s.Mode)
	assert.Equal(t, -1, s.MinArea)
	assert.Equal(t, -1.0, s.Threshold)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
sheet = "a4"
mode = "fine"
ruler_mm = 99.5
history = "runs.db"
html = true
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "a4", s.Sheet)
	assert.Equal(t, "fine", s.Mode)
	assert.Equal(t, 99.5, s.RulerMM)
	assert.Equal(t, "runs.db", s.History)
	assert.True(t, s.HTML)

	// Untouched keys keep their defaults.
	assert.Equal(t, 6.0, s.Scale)
	assert.Equal(t, -1, s.MinArea)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `rular_mm = 99.5`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rular_mm")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
