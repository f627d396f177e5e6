// Package config holds the tunables of the ticker and loads them from an
// optional YAML file.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	MinFontSize = 14
	MaxFontSize = 46
	MaxSpeed    = 16
	MaxFPS      = 120
)

// Colors are lipgloss colour strings (ANSI index or #rrggbb).
type Colors struct {
	Text   string `yaml:"text"`
	Header string `yaml:"header"`
	Intro  string `yaml:"intro"`
}

// Config wires runtime options into the fetch layer and the TUI.
type Config struct {
	ArchiveURL   string        `yaml:"archive_url"`
	RawURL       string        `yaml:"raw_url"`
	PageURL      string        `yaml:"page_url"`
	FPS          int           `yaml:"fps"`
	ScrollRate   int           `yaml:"scroll_rate"`
	FontSize     int           `yaml:"font_size"`
	MaxLineWidth int           `yaml:"max_line_width"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	ShowIntro    bool          `yaml:"show_intro"`
	Cache        bool          `yaml:"cache"`
	HistoryPath  string        `yaml:"history_path,omitempty"`
	LogPath      string        `yaml:"log_path,omitempty"`
	Colors       Colors        `yaml:"colors"`
}

// Default returns the values the ticker runs with when nothing is configured.
func Default() Config {
	return Config{
		ArchiveURL:   "https://pastebin.com/archive",
		RawURL:       "https://pastebin.com/raw/",
		PageURL:      "https://pastebin.com/",
		FPS:          30,
		ScrollRate:   1,
		FontSize:     MinFontSize,
		MaxLineWidth: 250,
		RetryDelay:   10 * time.Second,
		ShowIntro:    true,
		Cache:        true,
		Colors: Colors{
			Text:   "#ffffff",
			Header: "#00ff00",
			Intro:  "#ffff00",
		},
	}
}

// Load overlays the YAML file at path onto the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config from %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to unmarshal config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the ticker cannot run with.
func (c Config) Validate() error {
	switch {
	case c.ArchiveURL == "":
		return errors.New("archive_url is required")
	case c.RawURL == "":
		return errors.New("raw_url is required")
	case c.PageURL == "":
		return errors.New("page_url is required")
	case c.FPS <= 0 || c.FPS > MaxFPS:
		return errors.Errorf("fps must be between 1 and %d, got %d", MaxFPS, c.FPS)
	case c.ScrollRate < 0 || c.ScrollRate > MaxSpeed:
		return errors.Errorf("scroll_rate must be between 0 and %d, got %d", MaxSpeed, c.ScrollRate)
	case c.FontSize < MinFontSize || c.FontSize > MaxFontSize:
		return errors.Errorf("font_size must be between %d and %d, got %d", MinFontSize, MaxFontSize, c.FontSize)
	case c.MaxLineWidth <= 0:
		return errors.Errorf("max_line_width must be positive, got %d", c.MaxLineWidth)
	case c.RetryDelay <= 0:
		return errors.Errorf("retry_delay must be positive, got %s", c.RetryDelay)
	}
	return nil
}
