//go:build !cgo

package syntax

import "context"

// Parser wraps tree-sitter parsing functionality.
// This is a stub implementation for non-CGO builds.
type Parser struct{}

// NewParser creates a new tree-sitter parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse always fails in non-CGO builds.
func (p *Parser) Parse(ctx context.Context, path string, source []byte, lang Language) (*File, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns whether parsing is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
