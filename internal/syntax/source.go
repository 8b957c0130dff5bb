package syntax

import (
	"sort"
	"strings"

	"polylint/internal/ast"
)

// File is a parsed source file. It answers the token and comment queries the
// sort-comp fixer needs and replays the file's object literals through Walk.
type File struct {
	Path     string
	Language Language

	text     string
	tokens   []ast.Token
	comments []ast.Comment
	lines    *ast.Lines
	events   []event
}

func newFile(path string, lang Language, source []byte) *File {
	return &File{
		Path:     path,
		Language: lang,
		text:     string(source),
		lines:    ast.NewLines(source),
	}
}

// Text returns the full source text.
func (f *File) Text() string {
	return f.text
}

// Tokens returns the non-comment tokens in source order.
func (f *File) Tokens() []ast.Token {
	return f.tokens
}

// Comments returns every comment in source order.
func (f *File) Comments() []ast.Comment {
	return f.comments
}

// Position converts a byte offset to a line/column position.
func (f *File) Position(offset int) ast.Position {
	return f.lines.Position(offset)
}

// Location converts a byte range to a line/column location.
func (f *File) Location(s ast.Span) ast.Location {
	return f.lines.Location(s)
}

// TokenBefore returns the last non-comment token that ends at or before
// offset.
func (f *File) TokenBefore(offset int) (ast.Token, bool) {
	i := sort.Search(len(f.tokens), func(i int) bool { return f.tokens[i].Span.End > offset })
	if i == 0 {
		return ast.Token{}, false
	}
	return f.tokens[i-1], true
}

// LeadingComments returns the comments between the token before e and e
// itself. A comment starting on the same line as that token trails the
// previous entry when a line break follows it before e; without one it sits
// directly in front of e and belongs to it.
func (f *File) LeadingComments(e ast.Entry) ([]ast.Comment, bool) {
	start := e.Span().Start
	tok, ok := f.TokenBefore(start)
	if !ok {
		return f.commentsIn(0, start), true
	}

	tokLine := f.lines.Line(tok.Span.End)
	var out []ast.Comment
	for _, c := range f.commentsIn(tok.Span.End, start) {
		if f.lines.Line(c.Span.Start) == tokLine && strings.ContainsAny(f.text[c.Span.End:start], "\r\n") {
			continue
		}
		out = append(out, c)
	}
	return out, true
}

// commentsIn returns the comments lying entirely within [from, to).
func (f *File) commentsIn(from, to int) []ast.Comment {
	i := sort.Search(len(f.comments), func(i int) bool { return f.comments[i].Span.Start >= from })
	j := i
	for j < len(f.comments) && f.comments[j].Span.End <= to {
		j++
	}
	return f.comments[i:j]
}

func (f *File) addToken(start, end int) {
	f.tokens = append(f.tokens, ast.Token{Span: ast.Span{Start: start, End: end}, Text: f.text[start:end]})
}

func (f *File) addComment(start, end int) {
	text := f.text[start:end]
	f.comments = append(f.comments, ast.Comment{
		Span:  ast.Span{Start: start, End: end},
		Text:  text,
		Block: len(text) >= 2 && text[1] == '*',
	})
}

func (f *File) base(start, end int) ast.Base {
	s := ast.Span{Start: start, End: end}
	return ast.Base{Range: s, Loc: f.lines.Location(s)}
}

// Walk replays the object literals of f to v in source order. It stops at the
// first error returned by ExitObject.
func Walk(f *File, v Visitor) error {
	for _, ev := range f.events {
		switch ev.kind {
		case eventEnter:
			v.EnterObject()
		case eventExit:
			if err := v.ExitObject(); err != nil {
				return err
			}
		case eventEntry:
			v.VisitEntry(ev.entry)
		}
	}
	return nil
}

// ObjectCount returns the number of object literals in f.
func (f *File) ObjectCount() int {
	n := 0
	for _, ev := range f.events {
		if ev.kind == eventEnter {
			n++
		}
	}
	return n
}
