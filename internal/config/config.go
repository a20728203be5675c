package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	Debug        bool        `toml:"debug"`
	StripStyling bool        `toml:"strip_styling"`
	Indexed      bool        `toml:"indexed"`
	Mode         string      `toml:"mode"`
	Width        int         `toml:"width"`
	LogPath      string      `toml:"log_path"`
	Pager        PagerConfig `toml:"pager"`
	Source       string      `toml:"-"`
}

// PagerConfig configures the view subcommand.
type PagerConfig struct {
	AltScreen bool `toml:"alt_screen"`
	// SearchLimit caps how many fuzzy matches n/N cycle through.
	SearchLimit int `toml:"search_limit"`
}

func Default() Config {
	return Config{
		Mode:  "full",
		Pager: PagerConfig{AltScreen: true, SearchLimit: 50},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".transcript-cli", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

// applyEnv lets TRANSCRIPT_DEBUG, TRANSCRIPT_MODE and NO_COLOR win over the file.
func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("TRANSCRIPT_DEBUG")); env != "" {
		if v, err := strconv.ParseBool(env); err == nil {
			cfg.Debug = v
		}
	}
	if env := strings.TrimSpace(os.Getenv("TRANSCRIPT_MODE")); env != "" {
		cfg.Mode = env
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.StripStyling = true
	}
	return cfg
}
