// Package ast is the host-neutral syntax model consumed by the sort-comp rule.
//
// Entries and keys are closed sum types: every concrete node implements a
// marker method, so a type switch over Entry or Key is exhaustive over the
// variants declared here. Offsets are byte offsets into the source text.
package ast

import "strconv"

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Position is a 1-based line and column. Columns count bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Location is the start and end position of a node.
type Location struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Base carries the positional facts shared by every node.
type Base struct {
	Range Span
	Loc   Location
}

// Span returns the node's byte range.
func (b Base) Span() Span {
	return b.Range
}

// Location returns the node's line/column range.
func (b Base) Location() Location {
	return b.Loc
}

// Token is a non-comment lexical token.
type Token struct {
	Span Span
	Text string
}

// Comment is a line or block comment.
type Comment struct {
	Span  Span
	Text  string
	Block bool
}

// Key is the key sub-node of an entry.
type Key interface {
	Span() Span
	Location() Location
	keyNode()
}

// Identifier is a bare name such as `is` in `{is: ''}`.
type Identifier struct {
	Base
	Name string
}

// LiteralKind distinguishes literal keys.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralNull
	LiteralRegExp
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBoolean:
		return "boolean"
	case LiteralNull:
		return "null"
	case LiteralRegExp:
		return "regexp"
	default:
		return "unknown"
	}
}

// Literal is a literal key. Value holds the literal's string form, already
// unquoted and unescaped for strings and normalized for numbers.
type Literal struct {
	Base
	Kind  LiteralKind
	Value string
	Raw   string
}

// Template is a template literal key. Quasis hold the cooked text segments.
type Template struct {
	Base
	Quasis      []string
	Expressions int
	Tagged      bool
}

// Expression is any other key expression, e.g. `a + b` in `{[a + b]: 1}`.
type Expression struct {
	Base
	Type string
}

func (*Identifier) keyNode() {}
func (*Literal) keyNode()    {}
func (*Template) keyNode()   {}
func (*Expression) keyNode() {}

// Entry is one entry of an object-literal-like construction.
type Entry interface {
	Span() Span
	Location() Location
	entryNode()
}

// PropertyKind mirrors the flavours of object members.
type PropertyKind int

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
	PropertyMethod
)

// Property is an object literal member: `key: value`, a shorthand `key`, or a
// method/getter/setter written inside an object literal.
type Property struct {
	Base
	Kind      PropertyKind
	Key       Key
	Value     Span
	Computed  bool
	Shorthand bool
	// InPattern marks members of a destructuring pattern.
	InPattern bool
}

// MethodDefinition is a class body member.
type MethodDefinition struct {
	Base
	Key      Key
	Value    Span
	Computed bool
	Static   bool
}

// MemberExpression is a property access such as `a.b` or `a["b"]`.
type MemberExpression struct {
	Base
	Property Key
	Computed bool
}

func (*Property) entryNode()         {}
func (*MethodDefinition) entryNode() {}
func (*MemberExpression) entryNode() {}

// KeyOf returns the key (or accessed property) of an entry.
func KeyOf(e Entry) Key {
	switch n := e.(type) {
	case *Property:
		return n.Key
	case *MethodDefinition:
		return n.Key
	case *MemberExpression:
		return n.Property
	default:
		return nil
	}
}

// ValueOf returns the span of an entry's value sub-node. Member expressions
// have no value; their own span is returned.
func ValueOf(e Entry) Span {
	switch n := e.(type) {
	case *Property:
		return n.Value
	case *MethodDefinition:
		return n.Value
	case *MemberExpression:
		return n.Range
	default:
		return Span{}
	}
}
