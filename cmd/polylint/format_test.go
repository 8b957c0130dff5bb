package main

import (
	"strings"
	"testing"

	"polylint/internal/ast"
	"polylint/internal/errors"
	"polylint/internal/lint"
	"polylint/internal/sortcomp"
)

const sampleSource = "Polymer({\n  extends: 'li',\n  is: 'x-el',\n});\n"

func sampleDiagnostic() sortcomp.Diagnostic {
	return sortcomp.Diagnostic{
		RuleID:  sortcomp.RuleID,
		Message: sortcomp.FormatMessage("is", "extends"),
		Data:    map[string]string{"currName": "is", "prevName": "extends"},
		Loc: ast.Location{
			Start: ast.Position{Line: 3, Column: 3},
			End:   ast.Position{Line: 3, Column: 5},
		},
		Range: ast.Span{Start: 29, End: 31},
		Fix: &sortcomp.Fix{
			Range: ast.Span{Start: 12, End: 39},
			Text:  "is: 'x-el',\n  extends: 'li'",
		},
	}
}

func sampleSummary() *lint.Summary {
	return &lint.Summary{
		RunID: "6f1c7a8e-2d7b-4f57-9c53-0a1b2c3d4e5f",
		Root:  "/repo",
		Files: []lint.FileResult{
			{Path: "src/clean.js", Output: "x = {a: 1};\n"},
			{Path: "src/x-el.js", Diagnostics: []sortcomp.Diagnostic{sampleDiagnostic()}, Output: sampleSource},
			{Path: "src/broken.js", Error: errors.NewLintError(errors.ParseFailed, "syntax error at 1:27", nil, nil)},
		},
		FilesChecked: 3,
		Violations:   1,
		Fixable:      1,
		Errors:       1,
	}
}

func TestFormatSummaryHuman(t *testing.T) {
	out := formatSummaryHuman(sampleSummary(), false)

	for _, want := range []string{
		"src/x-el.js\n  3:3  error  " + sortcomp.FormatMessage("is", "extends") + "  sort-comp",
		"src/broken.js\n  error  syntax error at 1:27  PARSE_FAILED",
		"2 problems (1 violation, 1 file error)",
		"1 sort-comp violation fixable with the `--fix` option.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "src/clean.js") {
		t.Error("files without problems should not be listed")
	}
}

func TestFormatSummaryHuman_Clean(t *testing.T) {
	s := &lint.Summary{FilesChecked: 2, Files: []lint.FileResult{{Path: "a.js"}, {Path: "b.js"}}}
	out := formatSummaryHuman(s, false)
	if out != "No problems found in 2 files." {
		t.Errorf("got %q", out)
	}
}

func TestFormatSummaryHuman_Fixed(t *testing.T) {
	s := &lint.Summary{FilesChecked: 1, FilesFixed: 1, FixesApplied: 3, Files: []lint.FileResult{{Path: "a.js", Fixed: true}}}

	if out := formatSummaryHuman(s, false); out != "Fixed 3 violations in 1 file." {
		t.Errorf("got %q", out)
	}
	if out := formatSummaryHuman(s, true); out != "Would fix 3 violations in 1 file." {
		t.Errorf("dry run: got %q", out)
	}
}

func TestFormatJSON(t *testing.T) {
	result, err := formatJSON(sampleSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`"runId": "6f1c7a8e-2d7b-4f57-9c53-0a1b2c3d4e5f"`,
		`"path": "src/x-el.js"`,
		`"ruleId": "sort-comp"`,
		`"currName": "is"`,
		`"code": "PARSE_FAILED"`,
		`"violations": 1`,
	} {
		if !strings.Contains(result, want) {
			t.Errorf("JSON output missing %s", want)
		}
	}
	if strings.Contains(result, `"output"`) {
		t.Error("source text should not be serialized")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		noun string
		want string
	}{
		{0, "file", "0 files"},
		{1, "file", "1 file"},
		{2, "problem", "2 problems"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, tt.noun); got != tt.want {
			t.Errorf("plural(%d, %q) = %q, want %q", tt.n, tt.noun, got, tt.want)
		}
	}
}

func TestCheckExitCode(t *testing.T) {
	tests := []struct {
		name    string
		summary lint.Summary
		want    int
	}{
		{"clean", lint.Summary{}, exitOK},
		{"violations", lint.Summary{Violations: 2}, exitViolations},
		{"errors win", lint.Summary{Violations: 2, Errors: 1}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkExitCode(&tt.summary); got != tt.want {
				t.Errorf("checkExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintSuggestedFixes(t *testing.T) {
	var b strings.Builder
	err := errors.NewLintError(errors.ConfigInvalid, "bad", nil, nil)
	printSuggestedFixes(&b, err)
	if !strings.Contains(b.String(), "polylint config show") {
		t.Errorf("expected config hint, got %q", b.String())
	}

	b.Reset()
	printSuggestedFixes(&b, errPlain("boom"))
	if b.Len() != 0 {
		t.Errorf("plain errors have no hints, got %q", b.String())
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
