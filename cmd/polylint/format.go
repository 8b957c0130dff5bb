package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"polylint/internal/lint"
	"polylint/internal/sortcomp"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatSARIF OutputFormat = "sarif"
)

// formatJSON formats v as indented JSON
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatSummaryHuman renders a run in the style of a compiler report: one
// block per file with problems, then totals.
func formatSummaryHuman(s *lint.Summary, dryRun bool) string {
	var b strings.Builder

	for _, f := range s.Files {
		if len(f.Diagnostics) == 0 && f.Error == nil {
			continue
		}
		b.WriteString(f.Path + "\n")
		if f.Error != nil {
			b.WriteString(fmt.Sprintf("  error  %s  %s\n", f.Error.Message, f.Error.Code))
		}
		width := 0
		for _, d := range f.Diagnostics {
			if n := len(d.Loc.Start.String()); n > width {
				width = n
			}
		}
		for _, d := range f.Diagnostics {
			b.WriteString(fmt.Sprintf("  %-*s  error  %s  %s\n", width, d.Loc.Start.String(), d.Message, d.RuleID))
		}
		b.WriteString("\n")
	}

	if s.FilesFixed > 0 {
		verb := "Fixed"
		if dryRun {
			verb = "Would fix"
		}
		b.WriteString(fmt.Sprintf("%s %s in %s.\n", verb, plural(s.FixesApplied, "violation"), plural(s.FilesFixed, "file")))
	}

	problems := s.Violations + s.Errors
	if problems == 0 {
		if s.FilesFixed == 0 {
			b.WriteString(fmt.Sprintf("No problems found in %s.\n", plural(s.FilesChecked, "file")))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString(fmt.Sprintf("%s (%s, %s)\n",
		plural(problems, "problem"),
		plural(s.Violations, "violation"),
		plural(s.Errors, "file error")))
	if s.Fixable > 0 {
		b.WriteString(fmt.Sprintf("  %s fixable with the `--fix` option.\n",
			plural(s.Fixable, sortcomp.RuleID+" violation")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
