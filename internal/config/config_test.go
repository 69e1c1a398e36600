package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 500*time.Millisecond, cfg.SaveDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.LongPress())
	assert.Equal(t, 2*time.Second, cfg.PDFSaveDelay())
	assert.Equal(t, "#D50000", cfg.Editor.PenColor)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, `
[canvas]
theme = "dark"
note_type = "blank"

[editor]
pen_width = 5

[storage]
path = "/tmp/notes.db"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Canvas.Theme)
	assert.Equal(t, "blank", cfg.Canvas.NoteType)
	assert.Equal(t, 5.0, cfg.Editor.PenWidth)
	assert.Equal(t, 1200, cfg.Canvas.Width, "unset keys keep defaults")
	assert.Equal(t, "/tmp/notes.db", cfg.Storage.Path)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, `
[canvas]
theme = "sepia"
width = -1
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "sepia")
	assert.Contains(t, err.Error(), "canvas size")

	write(t, path, `[canvas`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	write(t, path, "[canvas]\ntheme = \"light\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []string
	)
	require.NoError(t, Watch(ctx, path, nil, func(c *Config) {
		mu.Lock()
		seen = append(seen, c.Canvas.Theme)
		mu.Unlock()
	}))

	write(t, path, "[canvas]\ntheme = \"dark\"\n")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "dark"
	}, 5*time.Second, 20*time.Millisecond)
}
