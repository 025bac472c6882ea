// Package config loads the language server configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where the configuration file is looked up when no path is
// given.
const DefaultPath = "~/.config/taikou5dxls/config.toml"

// Transports lists the supported values of [Server.Transport].
var Transports = []string{"stdio", "tcp", "websocket"}

// Config is the language server configuration.
type Config struct {
	Server     Server     `toml:"server"`
	Log        Log        `toml:"log"`
	Catalog    Catalog    `toml:"catalog"`
	Completion Completion `toml:"completion"`
}

// Server configures how clients connect.
type Server struct {
	// Transport is one of "stdio", "tcp" or "websocket".
	Transport string `toml:"transport"`

	// Address is the listen address for the tcp and websocket transports.
	Address string `toml:"address"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Catalog configures the completion data catalog.
type Catalog struct {
	// Path is a custom catalog file overriding the embedded one.
	Path string `toml:"path"`

	// Watch reloads Path when it changes.
	Watch bool `toml:"watch"`
}

// Completion configures completion results.
type Completion struct {
	Preselect bool `toml:"preselect"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{
			Transport: "stdio",
			Address:   "127.0.0.1:7998",
		},
	}
}

// Load reads the configuration file at path on top of [Default]. An empty
// path loads [DefaultPath] if it exists. Paths may start with "~".
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %s: %w", path, err)
	}

	cfg := Default()
	data, err := os.ReadFile(expanded)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", expanded, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", expanded, err)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, then expands and validates it. Keys not
// present in data keep their current values.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.normalize()
}

// normalize expands "~" in paths and validates enumerated values.
func (cfg *Config) normalize() error {
	if !slices.Contains(Transports, cfg.Server.Transport) {
		return fmt.Errorf("unknown transport %q", cfg.Server.Transport)
	}
	if cfg.Server.Transport != "stdio" && cfg.Server.Address == "" {
		return fmt.Errorf("transport %s requires an address", cfg.Server.Transport)
	}

	var err error
	if cfg.Log.File, err = expand(cfg.Log.File); err != nil {
		return err
	}
	if cfg.Catalog.Path, err = expand(cfg.Catalog.Path); err != nil {
		return err
	}
	if cfg.Catalog.Watch && cfg.Catalog.Path == "" {
		return errors.New("catalog watch requires a catalog path")
	}
	return nil
}

// Validate checks cfg after flags have been applied.
func (cfg *Config) Validate() error {
	return cfg.normalize()
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return homedir.Expand(path)
}
