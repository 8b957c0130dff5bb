// Package syntax parses JavaScript and TypeScript sources via tree-sitter and
// replays their object literals to a Visitor.
package syntax

import (
	"errors"
	"path/filepath"
	"strings"

	"polylint/internal/ast"
)

// ErrNoCGO is returned by Parse in builds without cgo.
var ErrNoCGO = errors.New("parsing requires CGO (tree-sitter)")

// Language represents a supported source language.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".js", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".jsx":
		return LangJavaScript, true // JSX uses JS parser
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return "", false
	}
}

// LanguageFromPath returns the Language for a file path.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// Extensions lists every extension LanguageFromExtension accepts.
func Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".cts", ".tsx"}
}

// Visitor receives the object literals of a file in source order.
//
// EnterObject and ExitObject bracket every object literal. VisitEntry is
// called for every entry of an object literal or destructuring pattern before
// any literal nested inside that entry is entered.
type Visitor interface {
	EnterObject()
	ExitObject() error
	VisitEntry(e ast.Entry)
}

type eventKind uint8

const (
	eventEnter eventKind = iota
	eventExit
	eventEntry
)

type event struct {
	kind  eventKind
	entry ast.Entry
}

// ParseError reports a file tree-sitter could not parse cleanly.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Near   string
}

func (e *ParseError) Error() string {
	if e.Near == "" {
		return "syntax error at " + e.position()
	}
	return "syntax error at " + e.position() + " near " + e.Near
}

func (e *ParseError) position() string {
	pos := ast.Position{Line: e.Line, Column: e.Column}
	if e.Path == "" {
		return pos.String()
	}
	return e.Path + ":" + pos.String()
}
