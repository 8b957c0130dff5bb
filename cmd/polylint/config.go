package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"polylint/internal/config"
	"polylint/internal/paths"
)

var (
	configFormat    string
	configShowDiff  bool
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage polylint configuration",
	Long:  "View and manage polylint configuration stored in .polylint/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective polylint configuration, after environment overrides.

Examples:
  polylint config show                # Pretty-print current config
  polylint config show --format json  # JSON with source information
  polylint config show --format yaml  # Config as YAML
  polylint config show --diff         # Only show non-default values`,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Long:  "Display all supported POLYLINT_* environment variable overrides",
	RunE:  runConfigEnv,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  "Create .polylint/config.json with the default configuration",
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json, yaml, toml)")
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string                 `json:"configPath,omitempty"`
	UsedDefaults bool                   `json:"usedDefaults"`
	EnvOverrides []config.EnvOverride   `json:"envOverrides,omitempty"`
	Config       map[string]interface{} `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return err
	}
	result, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "human", "":
		writeConfigHuman(out, result, configShowDiff)
		return nil
	case "json":
		resp, err := configShowResponse(result, configShowDiff)
		if err != nil {
			return err
		}
		s, err := formatJSON(resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, s)
		return err
	default:
		s, err := renderConfig(result.Config, configFormat)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, s)
		return err
	}
}

// renderConfig encodes cfg as yaml or toml.
func renderConfig(cfg *config.Config, format string) (string, error) {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(data), nil
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to marshal TOML: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use: human, json, yaml, toml)", format)
	}
}

func configShowResponse(result *config.LoadResult, diffOnly bool) (*ConfigShowResponse, error) {
	configMap, err := toMap(result.Config)
	if err != nil {
		return nil, err
	}
	if diffOnly {
		defaultMap, err := toMap(config.DefaultConfig())
		if err != nil {
			return nil, err
		}
		configMap = computeDiff(configMap, defaultMap)
	}
	return &ConfigShowResponse{
		ConfigPath:   result.ConfigPath,
		UsedDefaults: result.UsedDefaults,
		EnvOverrides: result.EnvOverrides,
		Config:       configMap,
	}, nil
}

func toMap(cfg *config.Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return m, nil
}

func writeConfigHuman(w io.Writer, result *config.LoadResult, diffOnly bool) {
	fmt.Fprintln(w, "polylint Configuration")
	fmt.Fprintln(w, strings.Repeat("-", 50))

	if result.UsedDefaults {
		fmt.Fprintln(w, "Source: defaults (no config file found)")
	} else if result.ConfigPath != "" {
		fmt.Fprintf(w, "Source: %s\n", result.ConfigPath)
	}

	if len(result.EnvOverrides) > 0 {
		fmt.Fprintln(w, "\nEnvironment Overrides:")
		for _, ov := range result.EnvOverrides {
			fmt.Fprintf(w, "  %s=%s -> %s\n", ov.EnvVar, ov.Value, ov.Field)
		}
	}
	fmt.Fprintln(w)

	cfg := result.Config
	defaults := config.DefaultConfig()

	if diffOnly {
		fmt.Fprintln(w, "Modified Settings (differs from defaults):")
		fmt.Fprintln(w)
		printConfigDiff(w, cfg, defaults)
	} else {
		printConfigSection(w, "version", cfg.Version, defaults.Version)

		fmt.Fprintln(w, "\nrule:")
		printConfigSection(w, "  preset", cfg.Rule.Preset, defaults.Rule.Preset)
		printConfigSection(w, "  order", cfg.Rule.Order, defaults.Rule.Order)
		printConfigSection(w, "  presetFile", valueOrDefault(cfg.Rule.PresetFile, "(none)"), "(none)")

		fmt.Fprintln(w, "\nscan:")
		printConfigSection(w, "  include", cfg.Scan.Include, defaults.Scan.Include)
		printConfigSection(w, "  exclude", cfg.Scan.Exclude, defaults.Scan.Exclude)
		printConfigSection(w, "  extensions", cfg.Scan.Extensions, defaults.Scan.Extensions)
		printConfigSection(w, "  maxFileSizeBytes", cfg.Scan.MaxFileSizeBytes, defaults.Scan.MaxFileSizeBytes)

		fmt.Fprintln(w, "\nfix:")
		printConfigSection(w, "  maxPasses", cfg.Fix.MaxPasses, defaults.Fix.MaxPasses)

		fmt.Fprintln(w, "\ncache:")
		printConfigSection(w, "  enabled", cfg.Cache.Enabled, defaults.Cache.Enabled)
		printConfigSection(w, "  path", cfg.Cache.Path, defaults.Cache.Path)

		fmt.Fprintln(w, "\nlogging:")
		printConfigSection(w, "  level", cfg.Logging.Level, defaults.Logging.Level)
		printConfigSection(w, "  format", cfg.Logging.Format, defaults.Logging.Format)
		printConfigSection(w, "  file", valueOrDefault(cfg.Logging.File, "(none)"), "(none)")
		printConfigSection(w, "  maxSize", valueOrDefault(cfg.Logging.MaxSize, "(unlimited)"), "(unlimited)")
		printConfigSection(w, "  maxBackups", cfg.Logging.MaxBackups, defaults.Logging.MaxBackups)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use 'polylint config show --format json' for full configuration")
	fmt.Fprintln(w, "Use 'polylint config env' to see supported environment variables")
}

func printConfigSection(w io.Writer, name string, value, defaultValue interface{}) {
	modified := ""
	if !isEqual(value, defaultValue) {
		modified = fmt.Sprintf(" (default: %v)", defaultValue)
	}
	fmt.Fprintf(w, "%s: %v%s\n", name, value, modified)
}

func printConfigDiff(w io.Writer, cfg, defaults *config.Config) {
	current, err := toMap(cfg)
	if err != nil {
		fmt.Fprintf(w, "  (cannot compare: %v)\n", err)
		return
	}
	base, _ := toMap(defaults)

	var diffs []string
	for _, key := range flattenKeys(computeDiff(current, base), "") {
		diffs = append(diffs, fmt.Sprintf("%s: %v (default: %v)", key, lookup(current, key), lookup(base, key)))
	}

	if len(diffs) == 0 {
		fmt.Fprintln(w, "  (no modifications - using all defaults)")
		return
	}
	for _, d := range diffs {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

func runConfigEnv(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Supported polylint Environment Variables")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintln(w)

	for _, v := range config.EnvVarNames() {
		line := fmt.Sprintf("  %-26s %s", v.EnvVar, v.Field)
		if v.Value != "" {
			line += fmt.Sprintf(" (set: %s)", v.Value)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example usage:")
	fmt.Fprintln(w, "  POLYLINT_PRESET=alphabetical polylint check")
	fmt.Fprintln(w, "  POLYLINT_LOG_LEVEL=debug polylint check --fix")
	fmt.Fprintln(w, "  POLYLINT_CONFIG_PATH=ci/polylint.yaml polylint check")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return err
	}
	path := paths.ConfigPath(repoRoot)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(repoRoot); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func isEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func computeDiff(current, defaults map[string]interface{}) map[string]interface{} {
	diff := make(map[string]interface{})
	computeDiffRecursive(current, defaults, diff)
	return diff
}

func computeDiffRecursive(current, defaults map[string]interface{}, diff map[string]interface{}) {
	for key, currentVal := range current {
		defaultVal, exists := defaults[key]
		if !exists {
			diff[key] = currentVal
			continue
		}

		currentMap, currentIsMap := currentVal.(map[string]interface{})
		defaultMap, defaultIsMap := defaultVal.(map[string]interface{})

		if currentIsMap && defaultIsMap {
			nestedDiff := make(map[string]interface{})
			computeDiffRecursive(currentMap, defaultMap, nestedDiff)
			if len(nestedDiff) > 0 {
				diff[key] = nestedDiff
			}
		} else if !isEqual(currentVal, defaultVal) {
			diff[key] = currentVal
		}
	}
}

// flattenKeys returns the dotted leaf keys of m in sorted order.
func flattenKeys(m map[string]interface{}, prefix string) []string {
	var keys []string
	for k, v := range m {
		if nested, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(nested, prefix+k+".")...)
			continue
		}
		keys = append(keys, prefix+k)
	}
	sort.Strings(keys)
	return keys
}

// lookup resolves a dotted key in m.
func lookup(m map[string]interface{}, key string) interface{} {
	var cur interface{} = m
	for _, part := range strings.Split(key, ".") {
		mm, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = mm[part]
	}
	return cur
}
