package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"kitenav/internal/lang"
)

// Config is the server configuration, loaded from kitenav.toml.
type Config struct {
	Root      string   `toml:"root"`
	Extension string   `toml:"extension"`
	Exclude   []string `toml:"exclude"`
	LogLevel  string   `toml:"log_level"`
	Watch     bool     `toml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Root:      ".",
		Extension: lang.Extension,
		Exclude:   []string{"**/.*/**"},
		LogLevel:  "info",
		Watch:     true,
	}
}

// Load reads a TOML config file, filling unset fields with defaults. A
// missing file is not an error; it just means all defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Extension == "" {
		cfg.Extension = lang.Extension
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
