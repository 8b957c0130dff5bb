package sortcomp

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polylint/internal/ast"
)

func TestRule_CanonicalKeysOutOfOrder(t *testing.T) {
	src := newTestSource("Polymer({\n  extends: 'li',\n  is: '',\n  behaviors: x\n});")

	diags := check(t, DefaultOrder(), src)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, RuleID, d.RuleID)
	assert.Equal(t, "Expected Polymer component keys to be in standard order and all other keys to be in ascending order. 'is' should be before 'extends'.", d.Message)
	assert.Equal(t, map[string]string{"currName": "is", "prevName": "extends"}, d.Data)
	assert.Equal(t, ast.Position{Line: 3, Column: 3}, d.Loc.Start)
	assert.Equal(t, ast.Position{Line: 3, Column: 5}, d.Loc.End)

	require.NotNil(t, d.Fix)
	assert.Equal(t, "Polymer({\n  is: '',\n  extends: 'li',\n  behaviors: x\n});", d.Fix.Apply(src.Text()))
}

func TestRule_InOrder(t *testing.T) {
	src := newTestSource("Polymer({\n  is: '',\n  extends: 'li',\n  created: f,\n  _a: f,\n  _b: f,\n  a: f,\n  b: f\n});")
	assert.Empty(t, check(t, DefaultOrder(), src))
}

func TestRule_SwapFix(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "single line",
			code: "x = {b: 1, a: 2};",
			want: "x = {a: 2, b: 1};",
		},
		{
			name: "both entries commented",
			code: "x = {\n  // Comments for b\n  b: 1,\n  // Comments for a\n  a: 2,\n};",
			want: "x = {\n  // Comments for a\n  a: 2,\n  // Comments for b\n  b: 1,\n};",
		},
		{
			name: "only previous commented",
			code: "x = {\n  /**\n    * Describe b\n    */\n  b: 1,\n  a: 2,\n};",
			want: "x = {\n  a: 2,\n  /**\n    * Describe b\n    */\n  b: 1,\n};",
		},
		{
			name: "only current commented",
			code: "x = {\n  b: 1,\n  // Comments for a\n  a: 2,\n};",
			want: "x = {\n  // Comments for a\n  a: 2,\n  b: 1,\n};",
		},
		{
			name: "trailing comment stays between",
			code: "x = { b: 1, // trailing\n  a: 2 };",
			want: "x = { a: 2, // trailing\n  b: 1 };",
		},
		{
			name: "blank line separator preserved",
			code: "x = {\n  b: 1,\n\n  a: 2\n};",
			want: "x = {\n  a: 2,\n\n  b: 1\n};",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(tt.code)
			diags := check(t, DefaultOrder(), src)
			require.Len(t, diags, 1)
			assert.Equal(t, "Expected Polymer component keys to be in standard order and all other keys to be in ascending order. 'a' should be before 'b'.", diags[0].Message)
			require.NotNil(t, diags[0].Fix)

			fixed := diags[0].Fix.Apply(src.Text())
			assert.Equal(t, tt.want, fixed)
			assert.Empty(t, check(t, DefaultOrder(), newTestSource(fixed)), "fixed text must be clean")
		})
	}
}

func TestRule_NoFixWithoutCommentLookup(t *testing.T) {
	src := newTestSource("x = {b: 1, a: 2};")
	src.hideComment = true

	diags := check(t, DefaultOrder(), src)
	require.Len(t, diags, 1)
	assert.Nil(t, diags[0].Fix)
}

func TestRule_DynamicKeyChainsComparison(t *testing.T) {
	text := "x = {b: 1, [x + y]: 2, a: 3};"
	src := newTestSource(text)

	at := func(s string) int { return strings.Index(text, s) }
	b := &ast.Property{Base: src.base(at("b"), at("b")+4), Key: ident("b", at("b")), Value: ast.Span{Start: at("1"), End: at("1") + 1}}
	dyn := &ast.Property{
		Base:     src.base(at("["), at("2")+1),
		Key:      &ast.Expression{Base: src.base(at("x + y"), at("x + y")+5), Type: "binary_expression"},
		Value:    ast.Span{Start: at("2"), End: at("2") + 1},
		Computed: true,
	}
	a := &ast.Property{Base: src.base(at("a:"), at("3")+1), Key: &ast.Identifier{Base: src.base(at("a:"), at("a:")+1), Name: "a"}, Value: ast.Span{Start: at("3"), End: at("3") + 1}}

	rule := NewRule(DefaultOrder(), src)
	rule.EnterObject()
	assert.Nil(t, rule.VisitEntry(b))
	assert.Nil(t, rule.VisitEntry(dyn))
	d := rule.VisitEntry(a)
	require.NoError(t, rule.ExitObject())

	require.NotNil(t, d)
	assert.Equal(t, map[string]string{"currName": "a", "prevName": "b"}, d.Data)
	require.NotNil(t, d.Fix)
	assert.Equal(t, "x = {b: 1, a: 3, [x + y]: 2};", d.Fix.Apply(text))
}

func TestRule_SkipsDestructuringPatterns(t *testing.T) {
	rule := NewRule(DefaultOrder(), nil)
	rule.EnterObject()

	assert.Nil(t, rule.VisitEntry(&ast.Property{Key: ident("b", 0)}))
	assert.Nil(t, rule.VisitEntry(&ast.Property{Key: ident("a", 0), InPattern: true}))
	assert.Nil(t, rule.VisitEntry(&ast.Property{Key: ident("c", 0)}))

	d := rule.VisitEntry(&ast.Property{Key: ident("a", 0)})
	require.NotNil(t, d)
	assert.Equal(t, "c", d.Data["prevName"])
	assert.Nil(t, d.Fix, "no source, no fix")
	require.NoError(t, rule.ExitObject())
}

func TestRule_NestedObjectsAreIndependent(t *testing.T) {
	rule := NewRule(DefaultOrder(), nil)
	rule.EnterObject()
	assert.Nil(t, rule.VisitEntry(&ast.Property{Key: ident("z", 0)}))

	rule.EnterObject()
	assert.Equal(t, 2, rule.Depth())
	assert.Nil(t, rule.VisitEntry(&ast.Property{Key: ident("a", 0)}), "inner object starts fresh")
	require.NoError(t, rule.ExitObject())

	d := rule.VisitEntry(&ast.Property{Key: ident("y", 0)})
	require.NotNil(t, d)
	assert.Equal(t, "'y' should be before 'z'.", d.Message[len(d.Message)-len("'y' should be before 'z'."):])
	require.NoError(t, rule.ExitObject())
	assert.ErrorIs(t, rule.ExitObject(), ErrUnbalanced)
}

func TestRule_EntryOutsideObjectIsIgnored(t *testing.T) {
	rule := NewRule(nil, nil)
	assert.Nil(t, rule.VisitEntry(&ast.Property{Key: ident("a", 0)}))
}

// Repeatedly applying the first fix must end in a fully ordered literal with
// every comment still above its entry.
func TestRule_FixesConverge(t *testing.T) {
	keys := []string{"is", "extends", "properties", "ready", "_b", "a", "c", "observers"}
	order := DefaultOrder()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 40; round++ {
		perm := append([]string(nil), keys...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		var b strings.Builder
		b.WriteString("Polymer({\n")
		for i, k := range perm {
			if i%2 == 0 {
				fmt.Fprintf(&b, "  // about %s\n", k)
			}
			fmt.Fprintf(&b, "  %s: v%d,\n", k, i)
		}
		b.WriteString("});\n")
		text := b.String()

		steps := 0
		for ; steps < len(keys)*len(keys); steps++ {
			diags := check(t, order, newTestSource(text))
			if len(diags) == 0 {
				break
			}
			require.NotNil(t, diags[0].Fix)
			text = diags[0].Fix.Apply(text)
		}
		require.Less(t, steps, len(keys)*len(keys), "round %d did not converge", round)

		entries := newTestSource(text).entries(t)
		require.Len(t, entries, len(keys))
		for i := 1; i < len(entries); i++ {
			prev := PropertyName(entries[i-1]).String()
			curr := PropertyName(entries[i]).String()
			assert.True(t, order.IsValidOrder(prev, curr), "round %d: %q before %q", round, prev, curr)
		}
		for i, k := range perm {
			if i%2 == 0 {
				assert.Contains(t, text, fmt.Sprintf("  // about %s\n  %s: ", k, k), "round %d", round)
			}
		}
	}
}
