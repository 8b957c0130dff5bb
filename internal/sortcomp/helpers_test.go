package sortcomp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"polylint/internal/ast"
)

// testSource is a minimal Source over a flat object literal written in a
// JavaScript subset: identifiers, numbers, quoted strings, punctuation and
// comments.
type testSource struct {
	text        string
	tokens      []ast.Token
	comments    []ast.Comment
	lines       *ast.Lines
	hideComment bool
}

func newTestSource(text string) *testSource {
	s := &testSource{text: text, lines: ast.NewLines([]byte(text))}
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.HasPrefix(text[i:], "//"):
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			s.comments = append(s.comments, ast.Comment{Span: ast.Span{Start: i, End: i + end}, Text: text[i : i+end]})
			i += end
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/") + 4
			s.comments = append(s.comments, ast.Comment{Span: ast.Span{Start: i, End: i + end}, Text: text[i : i+end], Block: true})
			i += end
		case c == '\'' || c == '"':
			end := strings.IndexByte(text[i+1:], c) + 2
			s.tokens = append(s.tokens, ast.Token{Span: ast.Span{Start: i, End: i + end}, Text: text[i : i+end]})
			i += end
		case isWordByte(c):
			j := i
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			s.tokens = append(s.tokens, ast.Token{Span: ast.Span{Start: i, End: j}, Text: text[i:j]})
			i = j
		default:
			s.tokens = append(s.tokens, ast.Token{Span: ast.Span{Start: i, End: i + 1}, Text: text[i : i+1]})
			i++
		}
	}
	return s
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (s *testSource) Text() string { return s.text }

func (s *testSource) TokenBefore(offset int) (ast.Token, bool) {
	for i := len(s.tokens) - 1; i >= 0; i-- {
		if s.tokens[i].Span.End <= offset {
			return s.tokens[i], true
		}
	}
	return ast.Token{}, false
}

func (s *testSource) LeadingComments(e ast.Entry) ([]ast.Comment, bool) {
	if s.hideComment {
		return nil, false
	}
	tok, ok := s.TokenBefore(e.Span().Start)
	if !ok {
		return nil, true
	}
	var out []ast.Comment
	for _, c := range s.comments {
		if c.Span.Start < tok.Span.End || c.Span.End > e.Span().Start {
			continue
		}
		if s.lines.Line(c.Span.Start) == s.lines.Line(tok.Span.End) {
			continue
		}
		out = append(out, c)
	}
	return out, true
}

func (s *testSource) base(start, end int) ast.Base {
	return ast.Base{Range: ast.Span{Start: start, End: end}, Loc: s.lines.Location(ast.Span{Start: start, End: end})}
}

// entries parses the members of the single flat object literal in the
// source. Values are one token each.
func (s *testSource) entries(t *testing.T) []*ast.Property {
	t.Helper()
	var out []*ast.Property
	toks := s.tokens
	for i := 0; i < len(toks); i++ {
		if toks[i].Text != "{" && toks[i].Text != "," {
			continue
		}
		if i+3 >= len(toks) || toks[i+2].Text != ":" {
			continue
		}
		key, value := toks[i+1], toks[i+3]
		name := key.Text
		var k ast.Key
		if strings.HasPrefix(name, "'") || strings.HasPrefix(name, "\"") {
			k = &ast.Literal{Base: s.base(key.Span.Start, key.Span.End), Kind: ast.LiteralString, Value: name[1 : len(name)-1], Raw: name}
		} else {
			k = &ast.Identifier{Base: s.base(key.Span.Start, key.Span.End), Name: name}
		}
		out = append(out, &ast.Property{
			Base:  s.base(key.Span.Start, value.Span.End),
			Key:   k,
			Value: value.Span,
		})
	}
	require.NotEmpty(t, out, "no entries in %q", s.text)
	return out
}

// check runs the rule over the flat object literal of text.
func check(t *testing.T, order *Order, src *testSource) []*Diagnostic {
	t.Helper()
	rule := NewRule(order, src)
	rule.EnterObject()
	var diags []*Diagnostic
	for _, e := range src.entries(t) {
		if d := rule.VisitEntry(e); d != nil {
			diags = append(diags, d)
		}
	}
	require.NoError(t, rule.ExitObject())
	return diags
}

func ident(name string, start int) *ast.Identifier {
	return &ast.Identifier{Base: ast.Base{Range: ast.Span{Start: start, End: start + len(name)}}, Name: name}
}
