package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"polylint/internal/version"
)

// Exit codes.
const (
	exitOK         = 0
	exitViolations = 1
	exitFailure    = 2
)

// exitError carries an exit code for a command that has already reported
// its outcome.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

var (
	// verbosity is the number of -v flags
	verbosity int
	// quiet suppresses all log output
	quiet bool
)

var rootCmd = &cobra.Command{
	Use:   "polylint",
	Short: "polylint - key order linter for Polymer components",
	Long: `polylint checks that object literal keys in JavaScript and TypeScript sources
are sorted: Polymer component keys first in their standard order, all other keys
after them in ascending order. Violations can be fixed in place with --fix.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("polylint version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
}
