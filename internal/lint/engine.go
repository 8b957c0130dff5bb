// Package lint runs the sort-comp rule over source files and applies its
// fixes.
package lint

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"polylint/internal/ast"
	"polylint/internal/errors"
	"polylint/internal/slogutil"
	"polylint/internal/sortcomp"
	"polylint/internal/syntax"
)

// DefaultMaxPasses bounds the fix loop when no limit is configured.
const DefaultMaxPasses = 10

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path         string                `json:"path"`
	Diagnostics  []sortcomp.Diagnostic `json:"diagnostics"`
	Error        *errors.LintError     `json:"error,omitempty"`
	Fixed        bool                  `json:"fixed,omitempty"`
	FixesApplied int                   `json:"fixesApplied,omitempty"`
	Passes       int                   `json:"passes,omitempty"`
	Cached       bool                  `json:"cached,omitempty"`

	// Output is the fixed source text. It equals the input when nothing
	// was fixed.
	Output string `json:"-"`
}

// Fixable returns the number of diagnostics that carry a fix.
func (r *FileResult) Fixable() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Fix != nil {
			n++
		}
	}
	return n
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Order     *sortcomp.Order
	MaxPasses int
	Logger    *slog.Logger
}

// Engine parses files and runs the rule over them. It is safe for
// concurrent use; parses are serialized.
type Engine struct {
	order     *sortcomp.Order
	maxPasses int
	logger    *slog.Logger

	mu     sync.Mutex
	parser *syntax.Parser
}

// NewEngine creates an engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Order == nil {
		opts.Order = sortcomp.DefaultOrder()
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultMaxPasses
	}
	if opts.Logger == nil {
		opts.Logger = slogutil.NewDiscardLogger()
	}
	return &Engine{
		order:     opts.Order,
		maxPasses: opts.MaxPasses,
		logger:    opts.Logger,
		parser:    syntax.NewParser(),
	}
}

// Order returns the canonical order the engine checks against.
func (e *Engine) Order() *sortcomp.Order {
	return e.order
}

// collector adapts a Rule to the syntax.Visitor callbacks.
type collector struct {
	rule  *sortcomp.Rule
	diags []sortcomp.Diagnostic
}

func (c *collector) EnterObject()      { c.rule.EnterObject() }
func (c *collector) ExitObject() error { return c.rule.ExitObject() }

func (c *collector) VisitEntry(e ast.Entry) {
	if d := c.rule.VisitEntry(e); d != nil {
		c.diags = append(c.diags, *d)
	}
}

// LintSource checks src, which is the content of path. The path selects the
// language.
func (e *Engine) LintSource(ctx context.Context, path string, src []byte) FileResult {
	start := time.Now()
	result := FileResult{Path: path, Output: string(src)}

	lang, ok := syntax.LanguageFromPath(path)
	if !ok {
		result.Error = errors.NewLintError(errors.UnsupportedLanguage,
			"no parser for "+path, nil, nil)
		return result
	}

	e.mu.Lock()
	file, err := e.parser.Parse(ctx, path, src, lang)
	e.mu.Unlock()
	if err != nil {
		result.Error = parseFailure(path, err)
		e.logger.Warn("Cannot parse file", "file", path, "error", err)
		return result
	}

	c := &collector{rule: sortcomp.NewRule(e.order, file)}
	if err := syntax.Walk(file, c); err != nil {
		code := errors.InternalError
		if stderrors.Is(err, sortcomp.ErrUnbalanced) {
			code = errors.UnbalancedTraversal
		}
		result.Error = errors.NewLintError(code, "traversal of "+path+" failed", err, nil)
		return result
	}

	sortDiagnostics(c.diags)
	result.Diagnostics = c.diags

	e.logger.Debug("Linted file",
		"file", path,
		"objects", file.ObjectCount(),
		"violations", len(result.Diagnostics),
		"duration", time.Since(start))
	return result
}

func parseFailure(path string, err error) *errors.LintError {
	var pe *syntax.ParseError
	if stderrors.As(err, &pe) {
		return errors.NewLintError(errors.ParseFailed, pe.Error(), err, nil).WithDetails(map[string]interface{}{
			"line":   pe.Line,
			"column": pe.Column,
		})
	}
	if stderrors.Is(err, syntax.ErrNoCGO) {
		return errors.NewLintError(errors.InternalError, err.Error(), err, nil)
	}
	return errors.NewLintError(errors.ParseFailed, "cannot parse "+path, err, nil)
}

// FixSource repeatedly lints src and applies the resulting fixes until no
// fix applies or the pass limit is reached. The returned result carries the
// fixed text in Output and the diagnostics that remain in it.
func (e *Engine) FixSource(ctx context.Context, path string, src []byte) FileResult {
	original := string(src)
	text := original
	passes, applied := 0, 0

	result := e.LintSource(ctx, path, src)
	for result.Error == nil && passes < e.maxPasses {
		out, n := ApplyFixes(text, result.Diagnostics)
		if n == 0 {
			break
		}
		text = out
		passes++
		applied += n
		result = e.LintSource(ctx, path, []byte(text))
	}

	if result.Error != nil && applied > 0 {
		// The fixed text no longer parses; keep the original.
		e.logger.Warn("Discarding fixes", "file", path, "error", result.Error)
		result.Output = original
		return result
	}

	result.Output = text
	result.Passes = passes
	result.FixesApplied = applied
	result.Fixed = applied > 0
	if applied > 0 {
		e.logger.Debug("Fixed file", "file", path, "fixes", applied, "passes", passes,
			"remaining", len(result.Diagnostics))
	}
	return result
}

// ApplyFixes applies the fixes of diags to text in order of their range
// start. A fix whose range starts before the end of the last applied fix is
// skipped; a later pass picks it up. It returns the new text and the number
// of fixes applied.
func ApplyFixes(text string, diags []sortcomp.Diagnostic) (string, int) {
	fixes := make([]*sortcomp.Fix, 0, len(diags))
	for i := range diags {
		if f := diags[i].Fix; f != nil {
			fixes = append(fixes, f)
		}
	}
	if len(fixes) == 0 {
		return text, 0
	}
	sort.SliceStable(fixes, func(i, j int) bool {
		return fixes[i].Range.Start < fixes[j].Range.Start
	})

	var b strings.Builder
	b.Grow(len(text))
	last, applied := 0, 0
	for _, f := range fixes {
		if f.Range.Start < last || f.Range.End > len(text) || f.Range.Start > f.Range.End {
			continue
		}
		b.WriteString(text[last:f.Range.Start])
		b.WriteString(f.Text)
		last = f.Range.End
		applied++
	}
	b.WriteString(text[last:])
	return b.String(), applied
}

func sortDiagnostics(diags []sortcomp.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Loc.Start, diags[j].Loc.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
