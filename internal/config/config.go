// Package config loads the optional recordgen project file.
//
// The file is YAML (.recordgen.yaml, .recordgen.yml) or TOML
// (.recordgen.toml). Both are decoded into a generic map first and then into
// Config with mapstructure, so the two formats share one set of keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileNames are searched, in order, in every directory from the start
// directory up to the filesystem root.
var FileNames = []string{".recordgen.yaml", ".recordgen.yml", ".recordgen.toml"}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("config: no recordgen config file found")

// Config holds project defaults for the CLI. Command line flags that are set
// explicitly take precedence.
type Config struct {
	Target  string `mapstructure:"target"`
	Lang    string `mapstructure:"lang"`
	Package string `mapstructure:"package"`
	// Header is the leading comment of generated files. Nil keeps the
	// built-in header; an empty string removes it.
	Header *string `mapstructure:"header"`
	Output string  `mapstructure:"output"`
	Strict bool    `mapstructure:"strict"`

	Parse ParseConfig `mapstructure:"parse"`
	Log   LogConfig   `mapstructure:"log"`
}

// ParseConfig tunes schema decoding.
type ParseConfig struct {
	AllowDuplicateKeys bool `mapstructure:"allow_duplicate_keys"`
	MaxDepth           int  `mapstructure:"max_depth"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Target: "go", Lang: "en", Package: "records"}
}

// Find returns the first config file found from startDir upwards.
func Find(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads the config file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg := Default()
	if err := decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the nearest config file from startDir upwards. It
// returns Default and an empty path when there is none.
func LoadDefault(startDir string) (*Config, string, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func decode(raw map[string]interface{}, target *Config) error {
	if raw == nil {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	return decoder.Decode(raw)
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Target {
	case "go", "ruby":
	default:
		return fmt.Errorf("config: target must be go or ruby, got %q", c.Target)
	}
	switch c.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("config: lang must be en or ja, got %q", c.Lang)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Parse.MaxDepth < 0 {
		return fmt.Errorf("config: parse.max_depth must not be negative")
	}
	return nil
}
