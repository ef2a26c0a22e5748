// Package config loads lazytask settings from a TOML file and LAZYTASK_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	RendererStyled = "styled"
	RendererPlain  = "plain"

	DefaultDataFile = "tasks.json"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Search  SearchConfig  `toml:"search"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type UIConfig struct {
	Renderer        string `toml:"renderer"`
	AltScreen       bool   `toml:"alt_screen"`
	MarkdownDetails bool   `toml:"markdown_details"`
}

type SearchConfig struct {
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Default() Config {
	return Config{
		Storage: StorageConfig{Backend: BackendJSON, Path: DefaultDataFile},
		UI: UIConfig{
			Renderer:        RendererStyled,
			AltScreen:       true,
			MarkdownDetails: true,
		},
		Search:  SearchConfig{FuzzyThreshold: 0.7},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultPath is <user config dir>/lazytask/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "lazytask", "config.toml"), nil
}

// Load overlays the TOML file at path onto defaults. A missing or empty
// file keeps the defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	return cfg, nil
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("LAZYTASK_DATA_FILE"); ok {
		cfg.Storage.Path = v
	}
	if v, ok := getEnvString("LAZYTASK_BACKEND"); ok {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvString("LAZYTASK_UI"); ok {
		cfg.UI.Renderer = rendererAlias(v)
	}
	if v, ok := getEnvFloat("LAZYTASK_FUZZY_THRESHOLD"); ok {
		cfg.Search.FuzzyThreshold = v
	}
	if v, ok := getEnvString("LAZYTASK_LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := getEnvString("LAZYTASK_LOG_FILE"); ok {
		cfg.Logging.File = v
	}
	if v, ok := getEnvBool("LAZYTASK_ALT_SCREEN"); ok {
		cfg.UI.AltScreen = v
	}
	return cfg
}

// rendererAlias maps the older tui/cli names onto renderer kinds.
func rendererAlias(raw string) string {
	switch strings.ToLower(raw) {
	case "tui", RendererStyled:
		return RendererStyled
	case "cli", RendererPlain:
		return RendererPlain
	default:
		return strings.ToLower(raw)
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	switch c.UI.Renderer {
	case RendererStyled, RendererPlain:
	default:
		return fmt.Errorf("invalid ui.renderer: %q", c.UI.Renderer)
	}
	if c.Search.FuzzyThreshold <= 0 || c.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("search.fuzzy_threshold must be in (0, 1]: %v", c.Search.FuzzyThreshold)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvFloat(name string) (float64, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
