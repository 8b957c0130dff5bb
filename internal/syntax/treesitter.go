//go:build cgo

package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"polylint/internal/ast"
)

// Parser wraps tree-sitter for JavaScript and TypeScript parsing. A Parser
// must not be used by several goroutines at once.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser.
func NewParser() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// IsAvailable returns whether parsing is available.
func IsAvailable() bool {
	return true
}

// Parse parses source and collects the tokens, comments and object literal
// events of the file. Sources with syntax errors yield a *ParseError.
func (p *Parser) Parse(ctx context.Context, path string, source []byte, lang Language) (*File, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := tree.RootNode()
	f := newFile(path, lang, source)
	if root.HasError() {
		return nil, f.parseError(root)
	}

	c := &collector{file: f}
	c.visit(root)
	return f, nil
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

func (f *File) parseError(root *sitter.Node) *ParseError {
	n := firstError(root)
	if n == nil {
		n = root
	}
	pos := f.Position(int(n.StartByte()))
	near := ""
	if end := int(n.EndByte()); end > int(n.StartByte()) {
		near = f.text[n.StartByte():end]
		if len(near) > 20 {
			near = near[:20]
		}
	} else if n.IsMissing() {
		near = "missing " + n.Type()
	}
	return &ParseError{Path: f.Path, Line: pos.Line, Column: pos.Column, Near: near}
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// collector walks the tree once, recording tokens, comments and the object
// literal events in source order.
type collector struct {
	file *File
}

func (c *collector) visit(n *sitter.Node) {
	start, end := int(n.StartByte()), int(n.EndByte())

	switch n.Type() {
	case "comment", "html_comment":
		c.file.addComment(start, end)
		return
	case "string", "regex", "number":
		c.file.addToken(start, end)
		return
	case "object":
		c.file.events = append(c.file.events, event{kind: eventEnter})
		c.members(n, false)
		c.file.events = append(c.file.events, event{kind: eventExit})
		return
	case "object_pattern":
		c.members(n, true)
		return
	}

	if n.ChildCount() == 0 {
		if end > start {
			c.file.addToken(start, end)
		}
		return
	}
	c.children(n)
}

func (c *collector) children(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			c.visit(child)
		}
	}
}

// members visits the children of an object literal or pattern, emitting an
// entry event before descending into each entry.
func (c *collector) members(n *sitter.Node, pattern bool) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if e := c.entry(child, pattern); e != nil {
			c.file.events = append(c.file.events, event{kind: eventEntry, entry: e})
		}
		c.visit(child)
	}
}

// entry converts an object member to an ast.Entry. Spread elements, rest
// patterns and punctuation are not entries.
func (c *collector) entry(n *sitter.Node, pattern bool) ast.Entry {
	f := c.file
	start, end := int(n.StartByte()), int(n.EndByte())

	switch n.Type() {
	case "pair", "pair_pattern":
		keyNode := n.ChildByFieldName("key")
		valueNode := n.ChildByFieldName("value")
		if keyNode == nil || valueNode == nil {
			return nil
		}
		key, computed := c.key(keyNode)
		return &ast.Property{
			Base:      f.base(start, end),
			Kind:      ast.PropertyInit,
			Key:       key,
			Value:     ast.Span{Start: int(valueNode.StartByte()), End: int(valueNode.EndByte())},
			Computed:  computed,
			InPattern: pattern,
		}

	case "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		return &ast.Property{
			Base:      f.base(start, end),
			Kind:      ast.PropertyInit,
			Key:       &ast.Identifier{Base: f.base(start, end), Name: f.text[start:end]},
			Value:     ast.Span{Start: start, End: end},
			Shorthand: true,
			InPattern: pattern,
		}

	case "object_assignment_pattern":
		left := n.ChildByFieldName("left")
		if left == nil {
			return nil
		}
		key, computed := c.key(left)
		return &ast.Property{
			Base:      f.base(start, end),
			Kind:      ast.PropertyInit,
			Key:       key,
			Value:     ast.Span{Start: int(left.StartByte()), End: end},
			Computed:  computed,
			Shorthand: left.Type() == "shorthand_property_identifier_pattern",
			InPattern: true,
		}

	case "method_definition":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		key, computed := c.key(nameNode)
		valueStart := int(nameNode.EndByte())
		if params := n.ChildByFieldName("parameters"); params != nil {
			valueStart = int(params.StartByte())
		}
		return &ast.Property{
			Base:     f.base(start, end),
			Kind:     methodKind(n),
			Key:      key,
			Value:    ast.Span{Start: valueStart, End: end},
			Computed: computed,
		}
	}
	return nil
}

// methodKind inspects the keywords before the method name.
func methodKind(n *sitter.Node) ast.PropertyKind {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || child.IsNamed() {
			break
		}
		switch child.Type() {
		case "get":
			return ast.PropertyGet
		case "set":
			return ast.PropertySet
		}
	}
	return ast.PropertyMethod
}

// key converts a property key node. Computed keys are unwrapped from their
// brackets and reported with computed set.
func (c *collector) key(n *sitter.Node) (ast.Key, bool) {
	if n.Type() == "computed_property_name" {
		inner := firstNamedChild(n)
		if inner == nil {
			return &ast.Expression{Base: c.file.base(int(n.StartByte()), int(n.EndByte())), Type: n.Type()}, true
		}
		return c.expression(inner), true
	}
	return c.expression(n), false
}

func (c *collector) expression(n *sitter.Node) ast.Key {
	f := c.file
	start, end := int(n.StartByte()), int(n.EndByte())
	raw := f.text[start:end]
	b := f.base(start, end)

	switch n.Type() {
	case "parenthesized_expression":
		if inner := firstNamedChild(n); inner != nil {
			return c.expression(inner)
		}
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "undefined":
		return &ast.Identifier{Base: b, Name: raw}
	case "private_property_identifier":
		return &ast.Identifier{Base: b, Name: raw[1:]}
	case "string":
		return &ast.Literal{Base: b, Kind: ast.LiteralString, Value: cookString(raw), Raw: raw}
	case "number":
		return &ast.Literal{Base: b, Kind: ast.LiteralNumber, Value: normalizeNumber(raw), Raw: raw}
	case "true", "false":
		return &ast.Literal{Base: b, Kind: ast.LiteralBoolean, Value: raw, Raw: raw}
	case "null":
		return &ast.Literal{Base: b, Kind: ast.LiteralNull, Value: raw, Raw: raw}
	case "regex":
		return &ast.Literal{Base: b, Kind: ast.LiteralRegExp, Value: raw, Raw: raw}
	case "template_string":
		return c.template(n, false)
	case "call_expression":
		if args := n.ChildByFieldName("arguments"); args != nil && args.Type() == "template_string" {
			t := c.template(args, true)
			t.Base = b
			return t
		}
	}
	return &ast.Expression{Base: b, Type: n.Type()}
}

// template splits a template literal into its cooked quasis around the
// substitutions.
func (c *collector) template(n *sitter.Node, tagged bool) *ast.Template {
	f := c.file
	start, end := int(n.StartByte()), int(n.EndByte())
	t := &ast.Template{Base: f.base(start, end), Tagged: tagged}

	// Skip the opening and closing backticks.
	chunk := start + 1
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() != "template_substitution" {
			continue
		}
		t.Quasis = append(t.Quasis, cookTemplate(f.text[chunk:child.StartByte()]))
		t.Expressions++
		chunk = int(child.EndByte())
	}
	if last := end - 1; last >= chunk {
		t.Quasis = append(t.Quasis, cookTemplate(f.text[chunk:last]))
	}
	return t
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child != nil && child.Type() != "comment" {
			return child
		}
	}
	return nil
}
