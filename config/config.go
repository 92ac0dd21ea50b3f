// Package config loads the mpschema.yaml project file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/mpschema"
	"github.com/reoring/mpschema/wire"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "mpschema.yaml"

// Config is the project configuration.
type Config struct {
	Input         string   `yaml:"input"`
	Recursive     bool     `yaml:"recursive"`
	Extension     string   `yaml:"extension"`
	Lookup        string   `yaml:"lookup"`
	StrictImports bool     `yaml:"strictImports"`
	VerifyUnions  bool     `yaml:"verifyUnions"`
	Log           Log      `yaml:"log"`
	Plugins       []Plugin `yaml:"plugins"`

	// Dir is the directory holding the config file. Relative paths are
	// resolved against it.
	Dir string `yaml:"-"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Plugin is one code generator to run after a successful compile.
type Plugin struct {
	Name     string   `yaml:"name"`
	Path     string   `yaml:"path"`
	Args     []string `yaml:"args"`
	Encoding string   `yaml:"encoding"`
	Output   string   `yaml:"output"`
	WorkDir  string   `yaml:"workdir"`
}

// Load reads, expands and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a config document. Environment variables are expanded
// before decoding and MPSCHEMA_* variables override the decoded values.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it exists and otherwise returns the
// defaults with environment overrides applied.
func LoadWithFallback(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return Parse(nil)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MPSCHEMA_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("MPSCHEMA_RECURSIVE"); v != "" {
		cfg.Recursive = parseBool(v)
	}
	if v := os.Getenv("MPSCHEMA_EXTENSION"); v != "" {
		cfg.Extension = v
	}
	if v := os.Getenv("MPSCHEMA_LOOKUP"); v != "" {
		cfg.Lookup = v
	}
	if v := os.Getenv("MPSCHEMA_STRICT_IMPORTS"); v != "" {
		cfg.StrictImports = parseBool(v)
	}
	if v := os.Getenv("MPSCHEMA_VERIFY_UNIONS"); v != "" {
		cfg.VerifyUnions = parseBool(v)
	}
	if v := os.Getenv("MPSCHEMA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MPSCHEMA_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(v))
	return b
}

func setDefaults(cfg *Config) {
	if cfg.Input == "" {
		cfg.Input = "."
	}
	if cfg.Extension == "" {
		cfg.Extension = mpschema.DefaultExtension
	} else if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if cfg.Lookup == "" {
		cfg.Lookup = "owning"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	for i := range cfg.Plugins {
		p := &cfg.Plugins[i]
		if p.Encoding == "" {
			p.Encoding = string(wire.JSON)
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))
		}
	}
}

func validate(cfg *Config) error {
	if _, err := mpschema.ParseLookupPolicy(cfg.Lookup); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[cfg.Log.Format] {
		return fmt.Errorf("log.format must be 'console' or 'json', got %q", cfg.Log.Format)
	}
	seen := make(map[string]bool, len(cfg.Plugins))
	for i, p := range cfg.Plugins {
		if p.Path == "" {
			return fmt.Errorf("plugins[%d].path is required", i)
		}
		if p.Output == "" {
			return fmt.Errorf("plugins[%d].output is required", i)
		}
		if _, err := wire.ParseEncoding(p.Encoding); err != nil {
			return fmt.Errorf("plugins[%d].encoding: %w", i, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("plugins[%d]: duplicate plugin name %q", i, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Resolve makes a relative path relative to the config directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// Options converts the compile settings to library options.
func (c *Config) Options() ([]mpschema.Option, error) {
	lookup, err := mpschema.ParseLookupPolicy(c.Lookup)
	if err != nil {
		return nil, err
	}
	return []mpschema.Option{
		mpschema.WithLookupPolicy(lookup),
		mpschema.WithStrictImports(c.StrictImports),
		mpschema.WithUnionVerification(c.VerifyUnions),
		mpschema.WithRecursive(c.Recursive),
		mpschema.WithExtension(c.Extension),
	}, nil
}
