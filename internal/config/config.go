// Package config loads the TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the whole settings file.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Editor  EditorConfig  `toml:"editor"`
	PDF     PDFConfig     `toml:"pdf"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// CanvasConfig sets up new note surfaces.
type CanvasConfig struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Theme    string `toml:"theme"`
	NoteType string `toml:"note_type"`
}

// EditorConfig holds drawing defaults and timings.
type EditorConfig struct {
	SaveDelayMS      int     `toml:"save_delay_ms"`
	LongPressMS      int     `toml:"long_press_ms"`
	PenColor         string  `toml:"pen_color"`
	PenWidth         float64 `toml:"pen_width"`
	HighlighterWidth float64 `toml:"highlighter_width"`
}

// PDFConfig holds page annotation settings.
type PDFConfig struct {
	SaveDelayMS int `toml:"save_delay_ms"`
}

// StorageConfig locates the note database.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig selects log level, format and destination.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:    1200,
			Height:   1600,
			Theme:    "light",
			NoteType: "lined",
		},
		Editor: EditorConfig{
			SaveDelayMS:      500,
			LongPressMS:      500,
			PenColor:         "#D50000",
			PenWidth:         3,
			HighlighterWidth: 15,
		},
		PDF:     PDFConfig{SaveDelayMS: 2000},
		Storage: StorageConfig{Path: defaultStoragePath()},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "studyboard", "notes.db")
}

// DefaultPath is where the settings file lives when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "studyboard.toml"
	}
	return filepath.Join(dir, "studyboard", "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		bad("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Theme != "light" && c.Canvas.Theme != "dark" {
		bad("canvas.theme %q must be light or dark", c.Canvas.Theme)
	}
	if c.Canvas.NoteType != "blank" && c.Canvas.NoteType != "lined" {
		bad("canvas.note_type %q must be blank or lined", c.Canvas.NoteType)
	}
	if c.Editor.SaveDelayMS <= 0 || c.Editor.LongPressMS <= 0 || c.PDF.SaveDelayMS <= 0 {
		bad("delays must be positive")
	}
	if !strings.HasPrefix(c.Editor.PenColor, "#") {
		bad("editor.pen_color %q must be a hex color", c.Editor.PenColor)
	}
	if c.Editor.PenWidth <= 0 || c.Editor.HighlighterWidth <= 0 {
		bad("pen widths must be positive")
	}
	if c.Storage.Path == "" {
		bad("storage.path is empty")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		bad("logging.format %q must be text or json", c.Logging.Format)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// SaveDelay is the quiet period before note content is saved.
func (c *Config) SaveDelay() time.Duration {
	return time.Duration(c.Editor.SaveDelayMS) * time.Millisecond
}

// LongPress is the hold time that reveals the delete affordance.
func (c *Config) LongPress() time.Duration {
	return time.Duration(c.Editor.LongPressMS) * time.Millisecond
}

// PDFSaveDelay is the quiet period before page annotations are saved.
func (c *Config) PDFSaveDelay() time.Duration {
	return time.Duration(c.PDF.SaveDelayMS) * time.Millisecond
}
