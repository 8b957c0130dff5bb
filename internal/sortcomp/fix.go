package sortcomp

import (
	"strings"

	"polylint/internal/ast"
)

// Fix is a single text replacement.
type Fix struct {
	Range ast.Span `json:"range"`
	Text  string   `json:"text"`
}

// Source is the view of the file the fixer needs from the host.
type Source interface {
	// Text returns the full source text.
	Text() string
	// TokenBefore returns the last non-comment token ending at or before offset.
	TokenBefore(offset int) (ast.Token, bool)
	// LeadingComments returns the comments attached above an entry. ok is
	// false when the host cannot answer for this entry.
	LeadingComments(e ast.Entry) ([]ast.Comment, bool)
}

// fullStart returns where an entry's text begins once its leading annotation
// is included. The annotation never reaches back past the token before the
// entry.
func fullStart(src Source, e ast.Entry) (int, bool) {
	start := e.Span().Start
	tok, ok := src.TokenBefore(start)
	if !ok {
		return 0, false
	}
	comments, ok := src.LeadingComments(e)
	if !ok {
		return 0, false
	}
	for _, c := range comments {
		if c.Span.Start >= tok.Span.End && c.Span.End <= e.Span().Start && c.Span.Start < start {
			start = c.Span.Start
		}
	}
	return start, true
}

// SwapFix builds the replacement that exchanges prev and curr. Each entry
// travels with its leading annotation; the separator text between them
// (commas, blank lines, trailing comments of prev) stays where it is.
func SwapFix(src Source, prev, curr ast.Entry) (*Fix, bool) {
	if prev == nil || curr == nil {
		return nil, false
	}
	prevStart, ok := fullStart(src, prev)
	if !ok {
		return nil, false
	}
	currStart, ok := fullStart(src, curr)
	if !ok {
		return nil, false
	}
	prevEnd := ast.ValueOf(prev).End
	currEnd := ast.ValueOf(curr).End

	text := src.Text()
	if prevStart > prevEnd || prevEnd > currStart || currStart > currEnd || currEnd > len(text) {
		return nil, false
	}

	var b strings.Builder
	b.Grow(currEnd - prevStart)
	b.WriteString(text[currStart:currEnd])
	b.WriteString(text[prevEnd:currStart])
	b.WriteString(text[prevStart:prevEnd])

	return &Fix{
		Range: ast.Span{Start: prevStart, End: currEnd},
		Text:  b.String(),
	}, true
}

// Apply returns text with the fix applied.
func (f *Fix) Apply(text string) string {
	return text[:f.Range.Start] + f.Text + text[f.Range.End:]
}
