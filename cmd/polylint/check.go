package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"polylint/internal/cache"
	"polylint/internal/config"
	"polylint/internal/errors"
	"polylint/internal/lint"
	"polylint/internal/version"
)

var (
	checkFix       bool
	checkFixDryRun bool
	checkFormat    string
	checkCache     bool
	checkInclude   []string
	checkExclude   []string
	checkPreset    string
	checkMaxPasses int
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check key order in JavaScript and TypeScript sources",
	Long: `Check that object literal keys are in canonical order.

Polymer component keys must come first in their standard order (is, extends,
behaviors, properties, observers, listeners, created, ready, attached, ...);
all other keys must follow in ascending order.

With no paths the whole repository is checked. Directories are walked
recursively; .git, node_modules, vendor, dist, build and bower_components are
skipped. Files named explicitly are always checked.

Exit codes:
  0  no violations
  1  violations remain
  2  a file could not be checked or the run failed

Examples:
  # Check the repository
  polylint check

  # Fix violations in place
  polylint check --fix src/

  # Show what --fix would change without writing
  polylint check --fix-dry-run

  # SARIF for code scanning
  polylint check --format=sarif > polylint.sarif`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "Fix violations and write the results back")
	checkCmd.Flags().BoolVar(&checkFixDryRun, "fix-dry-run", false, "Fix violations without writing files")
	checkCmd.Flags().StringVar(&checkFormat, "format", "human", "Output format: human, json, sarif")
	checkCmd.Flags().BoolVar(&checkCache, "cache", false, "Reuse results of unchanged files (overrides cache.enabled)")
	checkCmd.Flags().StringArrayVar(&checkInclude, "include", nil, "Only check files matching these globs")
	checkCmd.Flags().StringArrayVar(&checkExclude, "exclude", nil, "Skip files matching these globs")
	checkCmd.Flags().StringVar(&checkPreset, "preset", "", "Canonical order preset (overrides rule.preset)")
	checkCmd.Flags().IntVar(&checkMaxPasses, "max-passes", 0, "Maximum fix passes per file (overrides fix.maxPasses)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	format := OutputFormat(checkFormat)
	switch format {
	case FormatHuman, FormatJSON, FormatSARIF:
	default:
		return fmt.Errorf("unsupported format: %s (use: human, json, sarif)", checkFormat)
	}

	repoRoot, err := getRepoRoot()
	if err != nil {
		return err
	}
	loaded, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	applyCheckFlags(cmd, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, factory := newCommandLogger(cmd, repoRoot, cfg)
	defer factory.Close()
	if loaded.ConfigPath != "" {
		logger.Debug("Loaded config", "path", loaded.ConfigPath)
	}
	for _, o := range loaded.EnvOverrides {
		logger.Debug("Config override from environment", "env", o.EnvVar, "field", o.Field)
	}

	order, err := cfg.ResolveOrder(repoRoot)
	if err != nil {
		return errors.NewLintError(errors.ConfigInvalid, "cannot resolve canonical order", err, nil)
	}

	engine := lint.NewEngine(lint.EngineOptions{
		Order:     order,
		MaxPasses: cfg.Fix.MaxPasses,
		Logger:    logger,
	})

	fixing := checkFix || checkFixDryRun
	opts := lint.RunOptions{
		Fix:         fixing,
		Write:       checkFix && !checkFixDryRun,
		Include:     cfg.Scan.Include,
		Exclude:     cfg.Scan.Exclude,
		Extensions:  cfg.Scan.Extensions,
		MaxFileSize: cfg.Scan.MaxFileSizeBytes,
	}

	if cfg.Cache.Enabled && !fixing {
		store, err := cache.Open(resolvePath(repoRoot, cfg.Cache.Path), logger)
		if err != nil {
			// The run proceeds uncached.
			logger.Warn("Cache unavailable", "code", errors.CacheUnavailable, "error", err)
		} else {
			defer store.Close()
			opts.Cache = store
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary, runErr := lint.NewRunner(repoRoot, engine, logger).Run(ctx, args, opts)
	if summary == nil {
		return runErr
	}

	if err := writeReport(cmd.OutOrStdout(), summary, format, checkFixDryRun); err != nil {
		return err
	}

	if runErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", runErr)
		return &exitError{code: exitFailure}
	}
	if code := checkExitCode(summary); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

// applyCheckFlags overrides configuration values with explicitly set flags.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("cache") {
		cfg.Cache.Enabled = checkCache
	}
	if flags.Changed("include") {
		cfg.Scan.Include = checkInclude
	}
	if flags.Changed("exclude") {
		cfg.Scan.Exclude = append(append([]string{}, cfg.Scan.Exclude...), checkExclude...)
	}
	if flags.Changed("preset") {
		cfg.Rule.Preset = checkPreset
		cfg.Rule.Order = nil
	}
	if flags.Changed("max-passes") {
		cfg.Fix.MaxPasses = checkMaxPasses
	}
}

func checkExitCode(s *lint.Summary) int {
	switch {
	case s.HasErrors():
		return exitFailure
	case s.HasViolations():
		return exitViolations
	default:
		return exitOK
	}
}

func writeReport(w io.Writer, s *lint.Summary, format OutputFormat, dryRun bool) error {
	var out string
	var err error
	switch format {
	case FormatSARIF:
		out, err = FormatSummaryAsSARIF(s, version.Version)
	case FormatJSON:
		out, err = formatJSON(s)
	default:
		out = formatSummaryHuman(s, dryRun)
	}
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
