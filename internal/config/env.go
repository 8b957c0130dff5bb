package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvOverride records one configuration value taken from the environment
type EnvOverride struct {
	EnvVar string `json:"envVar"`
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
}

type envBinding struct {
	envVar string
	field  string
	apply  func(cfg *Config, value string) bool
}

// envBindings lists every supported POLYLINT_* variable. Values that fail to
// parse are ignored.
var envBindings = []envBinding{
	{"POLYLINT_LOG_LEVEL", "logging.level", func(cfg *Config, v string) bool {
		cfg.Logging.Level = v
		return true
	}},
	{"POLYLINT_LOG_FORMAT", "logging.format", func(cfg *Config, v string) bool {
		cfg.Logging.Format = v
		return true
	}},
	{"POLYLINT_LOG_FILE", "logging.file", func(cfg *Config, v string) bool {
		cfg.Logging.File = v
		return true
	}},
	{"POLYLINT_PRESET", "rule.preset", func(cfg *Config, v string) bool {
		cfg.Rule.Preset = v
		return true
	}},
	{"POLYLINT_ORDER", "rule.order", func(cfg *Config, v string) bool {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg.Rule.Order = keys
		return len(keys) > 0
	}},
	{"POLYLINT_CACHE", "cache.enabled", func(cfg *Config, v string) bool {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false
		}
		cfg.Cache.Enabled = b
		return true
	}},
	{"POLYLINT_CACHE_PATH", "cache.path", func(cfg *Config, v string) bool {
		cfg.Cache.Path = v
		return true
	}},
	{"POLYLINT_MAX_FIX_PASSES", "fix.maxPasses", func(cfg *Config, v string) bool {
		n, err := strconv.Atoi(v)
		if err != nil {
			return false
		}
		cfg.Fix.MaxPasses = n
		return true
	}},
	{"POLYLINT_MAX_FILE_SIZE", "scan.maxFileSizeBytes", func(cfg *Config, v string) bool {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false
		}
		cfg.Scan.MaxFileSizeBytes = n
		return true
	}},
}

// ApplyEnvOverrides applies POLYLINT_* environment variables to cfg and
// returns the overrides that took effect.
func ApplyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for _, b := range envBindings {
		value, ok := os.LookupEnv(b.envVar)
		if !ok || value == "" {
			continue
		}
		if b.apply(cfg, value) {
			overrides = append(overrides, EnvOverride{EnvVar: b.envVar, Field: b.field, Value: value})
		}
	}
	return overrides
}

// EnvVarNames lists the supported environment variables with the config
// field each one overrides.
func EnvVarNames() []EnvOverride {
	out := make([]EnvOverride, 0, len(envBindings)+1)
	out = append(out, EnvOverride{EnvVar: "POLYLINT_CONFIG_PATH", Field: "(config file)"})
	for _, b := range envBindings {
		out = append(out, EnvOverride{EnvVar: b.envVar, Field: b.field, Value: os.Getenv(b.envVar)})
	}
	if v := os.Getenv("POLYLINT_CONFIG_PATH"); v != "" {
		out[0].Value = v
	}
	return out
}
