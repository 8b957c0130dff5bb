package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"polylint/internal/paths"
	"polylint/internal/sortcomp"
	"polylint/internal/syntax"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// Config represents the complete polylint configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" yaml:"version" toml:"version"`

	Rule    RuleConfig    `json:"rule" mapstructure:"rule" yaml:"rule" toml:"rule"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan" yaml:"scan" toml:"scan"`
	Fix     FixConfig     `json:"fix" mapstructure:"fix" yaml:"fix" toml:"fix"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache" yaml:"cache" toml:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging" toml:"logging"`
}

// RuleConfig selects the canonical key order
type RuleConfig struct {
	// Preset names a built-in preset or one defined in PresetFile
	Preset string `json:"preset" mapstructure:"preset" yaml:"preset" toml:"preset"`
	// Order, when non-empty, replaces the preset entirely
	Order []string `json:"order" mapstructure:"order" yaml:"order" toml:"order"`
	// PresetFile is a TOML file of extra presets, relative to the repo root
	PresetFile string `json:"presetFile" mapstructure:"presetFile" yaml:"presetFile" toml:"presetFile"`
}

// ScanConfig controls which files are linted
type ScanConfig struct {
	Include          []string `json:"include" mapstructure:"include" yaml:"include" toml:"include"`
	Exclude          []string `json:"exclude" mapstructure:"exclude" yaml:"exclude" toml:"exclude"`
	Extensions       []string `json:"extensions" mapstructure:"extensions" yaml:"extensions" toml:"extensions"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes" yaml:"maxFileSizeBytes" toml:"maxFileSizeBytes"`
}

// FixConfig controls autofix
type FixConfig struct {
	MaxPasses int `json:"maxPasses" mapstructure:"maxPasses" yaml:"maxPasses" toml:"maxPasses"`
}

// CacheConfig controls the lint result cache
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	Path    string `json:"path" mapstructure:"path" yaml:"path" toml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level" yaml:"level" toml:"level"`
	Format     string `json:"format" mapstructure:"format" yaml:"format" toml:"format"`
	File       string `json:"file" mapstructure:"file" yaml:"file" toml:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize" yaml:"maxSize" toml:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" yaml:"maxBackups" toml:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Rule: RuleConfig{
			Preset: sortcomp.DefaultPreset,
			Order:  []string{},
		},
		Scan: ScanConfig{
			Include:          []string{},
			Exclude:          []string{},
			Extensions:       syntax.Extensions(),
			MaxFileSizeBytes: 1000000,
		},
		Fix: FixConfig{
			MaxPasses: 10,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    filepath.Join(paths.DirName, paths.CacheFileName),
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "text",
			MaxBackups: 3,
		},
	}
}

// LoadResult contains the loaded config and metadata about how it was loaded
type LoadResult struct {
	Config       *Config
	ConfigPath   string // Path to config file used (empty if defaults)
	UsedDefaults bool   // True if no config file was found
	EnvOverrides []EnvOverride
}

// LoadConfig loads configuration from .polylint/config.json
func LoadConfig(repoRoot string) (*Config, error) {
	result, err := LoadConfigWithDetails(repoRoot)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration and reports where it came from.
// POLYLINT_CONFIG_PATH points at an explicit config file; otherwise
// <repoRoot>/.polylint/config.json is used when present. Environment
// overrides are applied last.
func LoadConfigWithDetails(repoRoot string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	result := &LoadResult{}
	if explicit := os.Getenv("POLYLINT_CONFIG_PATH"); explicit != "" {
		v.SetConfigFile(explicit)
		v.SetConfigType(configTypeFor(explicit))
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		result.ConfigPath = explicit
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(repoRoot, paths.DirName))

		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		switch {
		case err == nil:
			result.ConfigPath = v.ConfigFileUsed()
		case errors.As(err, &notFound):
			result.UsedDefaults = true
		default:
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	result.EnvOverrides = ApplyEnvOverrides(&cfg)
	result.Config = &cfg
	return result, nil
}

func configTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("rule.preset", d.Rule.Preset)
	v.SetDefault("rule.order", d.Rule.Order)
	v.SetDefault("rule.presetFile", d.Rule.PresetFile)
	v.SetDefault("scan.include", d.Scan.Include)
	v.SetDefault("scan.exclude", d.Scan.Exclude)
	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.maxFileSizeBytes", d.Scan.MaxFileSizeBytes)
	v.SetDefault("fix.maxPasses", d.Fix.MaxPasses)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// Save writes the configuration to .polylint/config.json
func (c *Config) Save(repoRoot string) error {
	dir, err := paths.EnsureDataDir(repoRoot)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, paths.ConfigFileName), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}

	if len(c.Rule.Order) > 0 {
		if _, err := sortcomp.NewOrder(c.Rule.Order); err != nil {
			return &ConfigError{Field: "rule.order", Message: err.Error()}
		}
	} else if c.Rule.PresetFile == "" {
		if _, ok := sortcomp.Presets[c.Rule.Preset]; !ok {
			return &ConfigError{Field: "rule.preset", Message: "unknown preset " + quote(c.Rule.Preset)}
		}
	}

	for _, ext := range c.Scan.Extensions {
		if _, ok := syntax.LanguageFromExtension(ext); !ok {
			return &ConfigError{Field: "scan.extensions", Message: "unsupported extension " + quote(ext)}
		}
	}
	for _, pattern := range append(append([]string{}, c.Scan.Include...), c.Scan.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return &ConfigError{Field: "scan", Message: "bad glob " + quote(pattern)}
		}
	}
	if c.Scan.MaxFileSizeBytes < 0 {
		return &ConfigError{Field: "scan.maxFileSizeBytes", Message: "must not be negative"}
	}

	if c.Fix.MaxPasses < 1 || c.Fix.MaxPasses > 100 {
		return &ConfigError{Field: "fix.maxPasses", Message: "must be between 1 and 100"}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "unknown level " + quote(c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}

	return nil
}

// ResolveOrder builds the canonical key order the configuration selects.
// An explicit rule.order wins over presets; presets from rule.presetFile
// shadow the built-in ones of the same name.
func (c *Config) ResolveOrder(repoRoot string) (*sortcomp.Order, error) {
	if len(c.Rule.Order) > 0 {
		order, err := sortcomp.NewOrder(c.Rule.Order)
		if err != nil {
			return nil, &ConfigError{Field: "rule.order", Message: err.Error()}
		}
		return order, nil
	}

	name := c.Rule.Preset
	if name == "" {
		name = sortcomp.DefaultPreset
	}

	if c.Rule.PresetFile != "" {
		path := c.Rule.PresetFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(repoRoot, path)
		}
		pf, err := LoadPresetFile(path)
		if err != nil {
			return nil, &ConfigError{Field: "rule.presetFile", Message: err.Error()}
		}
		if def, ok := pf.Presets[name]; ok {
			order, err := sortcomp.NewOrder(def.Order)
			if err != nil {
				return nil, &ConfigError{Field: "rule.presetFile", Message: "preset " + quote(name) + ": " + err.Error()}
			}
			return order, nil
		}
	}

	order, err := sortcomp.PresetOrder(name)
	if err != nil {
		return nil, &ConfigError{Field: "rule.preset", Message: err.Error()}
	}
	return order, nil
}

func quote(s string) string {
	return "'" + s + "'"
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
