package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"polylint/internal/config"
	"polylint/internal/errors"
	"polylint/internal/paths"
	"polylint/internal/slogutil"
)

// getRepoRoot returns the project root for the working directory.
func getRepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return paths.FindRepoRoot(cwd)
}

// loadConfig loads and validates the configuration of repoRoot.
func loadConfig(repoRoot string) (*config.LoadResult, error) {
	result, err := config.LoadConfigWithDetails(repoRoot)
	if err != nil {
		return nil, errors.NewLintError(errors.ConfigInvalid, "cannot load configuration", err, nil)
	}
	return result, nil
}

func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.NewLintError(errors.ConfigInvalid, err.Error(), err, nil)
	}
	return nil
}

// newCommandLogger builds the logger for a command. -v and -q take
// precedence over logging.level.
func newCommandLogger(cmd *cobra.Command, repoRoot string, cfg *config.Config) (*slog.Logger, *slogutil.LoggerFactory) {
	factory := slogutil.NewLoggerFactory(repoRoot, cfg)
	flags := cmd.Flags()
	if flags.Changed("verbose") || flags.Changed("quiet") {
		factory.SetCLILevel(slogutil.LevelFromVerbosity(verbosity, quiet))
	}
	return factory.CLILogger(cmd.ErrOrStderr()), factory
}

// resolvePath makes path absolute against repoRoot.
func resolvePath(repoRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// printSuggestedFixes lists the follow-up actions attached to a LintError.
func printSuggestedFixes(w io.Writer, err error) {
	var le *errors.LintError
	if !stderrors.As(err, &le) {
		return
	}
	for _, fix := range le.SuggestedFixes {
		switch fix.Type {
		case errors.RunCommand:
			fmt.Fprintf(w, "  hint: %s: %s\n", fix.Description, fix.Command)
		case errors.OpenDocs:
			fmt.Fprintf(w, "  hint: %s: %s\n", fix.Description, fix.URL)
		default:
			fmt.Fprintf(w, "  hint: %s\n", fix.Description)
		}
	}
}
