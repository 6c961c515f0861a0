// Package config loads codeintel settings: bundled defaults, then an optional
// YAML or TOML file, then a .env file and CODEINTEL_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"codeintel/internal/logging"
)

//go:embed config.yaml
var defaultYAML []byte

// DefaultFiles are looked up in the working directory when no config file is
// named explicitly.
var DefaultFiles = []string{"codeintel.yaml", "codeintel.yml", "codeintel.toml"}

type Config struct {
	Database            string `yaml:"database" toml:"database"`
	Model               string `yaml:"model" toml:"model"`
	Dictionary          string `yaml:"dictionary" toml:"dictionary"`
	MaxIdentifierLength int    `yaml:"max_identifier_length" toml:"max_identifier_length"`
	Workers             int    `yaml:"workers" toml:"workers"`
	FileTimeout         string `yaml:"file_timeout" toml:"file_timeout"`
	MaxFileSize         int64  `yaml:"max_file_size" toml:"max_file_size"`
	Cache               Cache  `yaml:"cache" toml:"cache"`
	Ollama              Ollama `yaml:"ollama" toml:"ollama"`
	Color               string `yaml:"color" toml:"color"`
}

type Cache struct {
	// Dir holds the on-disk feature cache. Empty disables it.
	Dir  string `yaml:"dir" toml:"dir"`
	Size int    `yaml:"size" toml:"size"`
}

type Ollama struct {
	URL   string `yaml:"url" toml:"url"`
	Model string `yaml:"model" toml:"model"`
}

// Default returns the bundled defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: bundled defaults: %v", err))
	}
	return cfg
}

// Load builds the effective configuration. path names a .yaml, .yml or .toml
// file; when empty the first existing DefaultFiles entry is used, if any.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findDefaultFile()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnLogger.Printf("ignoring .env: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findDefaultFile() string {
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func (c *Config) mergeFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format (want .yaml, .yml or .toml)", path)
	}
	logging.InfoLogger.Printf("loaded config from %s", path)
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database, "CODEINTEL_DB")
	setString(&c.Model, "CODEINTEL_MODEL")
	setString(&c.Dictionary, "CODEINTEL_DICTIONARY")
	setString(&c.Cache.Dir, "CODEINTEL_CACHE_DIR")
	setString(&c.Color, "CODEINTEL_COLOR")
	setString(&c.Ollama.URL, "OLLAMA_HOST")
	setString(&c.Ollama.Model, "CODEINTEL_OLLAMA_MODEL")

	if raw := strings.TrimSpace(os.Getenv("CODEINTEL_WORKERS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("CODEINTEL_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if c.Ollama.URL != "" && !strings.Contains(c.Ollama.URL, "://") {
		// OLLAMA_HOST is commonly given as host:port.
		c.Ollama.URL = "http://" + c.Ollama.URL
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.MaxIdentifierLength <= 0:
		return fmt.Errorf("max_identifier_length must be positive, got %d", c.MaxIdentifierLength)
	case c.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.MaxFileSize < 0:
		return fmt.Errorf("max_file_size must not be negative, got %d", c.MaxFileSize)
	case c.Cache.Size < 0:
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	switch c.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("color must be auto, on or off, got %q", c.Color)
	}
	return nil
}

// Timeout parses FileTimeout. Zero disables the per-file limit.
func (c *Config) Timeout() (time.Duration, error) {
	if c.FileTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FileTimeout)
	if err != nil {
		return 0, fmt.Errorf("file_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("file_timeout must not be negative, got %s", d)
	}
	return d, nil
}
