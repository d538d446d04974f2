package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = "patchview"
	configFileName = "config.json"
)

const (
	ViewSplit   = "split"
	ViewUnified = "unified"
	ViewRaw     = "raw"
)

type AppConfig struct {
	View             string `json:"view"`
	SyntaxHighlight  *bool  `json:"syntax_highlight"`
	WordDiff         *bool  `json:"word_diff"`
	TabWidth         int    `json:"tab_width"`
	FilePaneWidth    int    `json:"file_pane_width"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
	ClipboardCommand string `json:"clipboard_command"`
}

func Default() AppConfig {
	return AppConfig{
		View:            ViewSplit,
		SyntaxHighlight: boolPtr(true),
		WordDiff:        boolPtr(true),
		TabWidth:        4,
		FilePaneWidth:   36,
		LogLevel:        "info",
	}
}

func Load() (AppConfig, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return AppConfig{}, "", err
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

func LoadFromPath(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return AppConfig{}, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() error {
	defaults := Default()

	c.View = strings.ToLower(strings.TrimSpace(c.View))
	if c.View == "" {
		c.View = defaults.View
	}
	if err := ValidateView(c.View); err != nil {
		return err
	}

	if c.SyntaxHighlight == nil {
		c.SyntaxHighlight = defaults.SyntaxHighlight
	}
	if c.WordDiff == nil {
		c.WordDiff = defaults.WordDiff
	}

	if c.TabWidth == 0 {
		c.TabWidth = defaults.TabWidth
	}
	if c.TabWidth < 1 || c.TabWidth > 16 {
		return fmt.Errorf("tab_width %d must be between 1 and 16", c.TabWidth)
	}

	if c.FilePaneWidth == 0 {
		c.FilePaneWidth = defaults.FilePaneWidth
	}
	if c.FilePaneWidth < 10 {
		return fmt.Errorf("file_pane_width %d must be at least 10", c.FilePaneWidth)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}

	c.LogFile = strings.TrimSpace(c.LogFile)
	c.ClipboardCommand = strings.TrimSpace(c.ClipboardCommand)
	return nil
}

func ValidateView(view string) error {
	switch view {
	case ViewSplit, ViewUnified, ViewRaw:
		return nil
	}
	return fmt.Errorf("view %q must be one of split, unified, raw", view)
}

func (c AppConfig) Syntax() bool {
	return c.SyntaxHighlight == nil || *c.SyntaxHighlight
}

func (c AppConfig) Words() bool {
	return c.WordDiff == nil || *c.WordDiff
}

func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

func boolPtr(b bool) *bool {
	return &b
}
