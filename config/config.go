// Package config loads the YAML process configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"studentscore/logging"
	"studentscore/ml"
)

const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

type Config struct {
	Artifacts struct {
		Source      string `yaml:"source"`
		Dir         string `yaml:"dir"`
		ModelPath   string `yaml:"model_path"`
		ColumnsPath string `yaml:"columns_path"`
		DBPath      string `yaml:"db_path"`
		Watch       bool   `yaml:"watch"`
	} `yaml:"artifacts"`
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log     logging.Config `yaml:"log"`
	Encoder struct {
		UnknownCategory string `yaml:"unknown_category"`
	} `yaml:"encoder"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path and fills omitted keys with defaults. A missing file is
// only an error when required is set.
func Load(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Artifacts.Source == "" {
		c.Artifacts.Source = SourceFile
	}
	if c.Artifacts.DBPath == "" {
		c.Artifacts.DBPath = "artifacts.db"
	}
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Encoder.UnknownCategory == "" {
		c.Encoder.UnknownCategory = string(ml.PolicyIgnore)
	}
}

func (c *Config) Validate() error {
	switch c.Artifacts.Source {
	case SourceFile, SourceSQLite:
	default:
		return fmt.Errorf("artifacts.source must be %q or %q, got %q", SourceFile, SourceSQLite, c.Artifacts.Source)
	}
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.Http.Port)
	}
	if c.Http.Timeout < 0 {
		return errors.New("http.timeout must be positive")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if _, err := c.CategoryPolicy(); err != nil {
		return fmt.Errorf("encoder.unknown_category: %w", err)
	}
	return nil
}

func (c *Config) CategoryPolicy() (ml.CategoryPolicy, error) {
	return ml.ParseCategoryPolicy(c.Encoder.UnknownCategory)
}
