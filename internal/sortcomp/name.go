package sortcomp

import "polylint/internal/ast"

// Name is the comparison key of an entry. The zero value is Dynamic: a name
// that cannot be determined statically and never takes part in a comparison.
type Name struct {
	value string
	known bool
}

// Dynamic is the name of an entry whose key cannot be resolved statically.
var Dynamic = Name{}

// Known returns a statically resolved name.
func Known(s string) Name {
	return Name{value: s, known: true}
}

// Value returns the name and whether it is known.
func (n Name) Value() (string, bool) {
	return n.value, n.known
}

// IsKnown reports whether the name was resolved statically.
func (n Name) IsKnown() bool {
	return n.known
}

func (n Name) String() string {
	if !n.known {
		return "<dynamic>"
	}
	return n.value
}

// StaticName returns the static property name of a property, method
// definition or member expression.
//
//	a.b           // => "b"
//	a["b"]        // => "b"
//	a[`b`]        // => "b"
//	a[100]        // => "100"
//	a[b]          // => dynamic
//	a["a" + "b"]  // => dynamic
//	a[tag`b`]     // => dynamic
//	a[`${b}`]     // => dynamic
//
// Object literal keys follow the same rules: {["b"]: 1} is "b", {[b]: 1} is
// dynamic.
func StaticName(e ast.Entry) Name {
	var computed bool
	switch n := e.(type) {
	case *ast.Property:
		computed = n.Computed
	case *ast.MethodDefinition:
		computed = n.Computed
	case *ast.MemberExpression:
		computed = n.Computed
	}

	switch k := ast.KeyOf(e).(type) {
	case *ast.Literal:
		return Known(k.Value)
	case *ast.Template:
		if !k.Tagged && k.Expressions == 0 && len(k.Quasis) == 1 {
			return Known(k.Quasis[0])
		}
	case *ast.Identifier:
		if !computed {
			return Known(k.Name)
		}
	case *ast.Expression:
	}
	return Dynamic
}

// PropertyName resolves the comparison name of an object entry. When the
// static name is dynamic but the key is an identifier, computed or not, the
// identifier's name is used.
func PropertyName(e ast.Entry) Name {
	if name := StaticName(e); name.IsKnown() {
		return name
	}
	if id, ok := ast.KeyOf(e).(*ast.Identifier); ok && id.Name != "" {
		return Known(id.Name)
	}
	return Dynamic
}
