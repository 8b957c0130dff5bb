//go:build cgo

package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polylint/internal/errors"
	"polylint/internal/sortcomp"
)

func TestFixtures(t *testing.T) {
	tests := []struct {
		name  string
		pairs [][2]string // currName, prevName of each first-pass diagnostic
		count int         // used instead of pairs when only the count matters
	}{
		{name: "valid_full_component"},
		{name: "valid_without_lifecycle"},
		{name: "valid_public_only"},
		{name: "valid_lifecycle_only"},
		{name: "valid_minimal"},
		{name: "polymer_is_before_extends", pairs: [][2]string{{"is", "extends"}}},
		{name: "polymer_behaviors_before_properties", pairs: [][2]string{{"behaviors", "properties"}}},
		{name: "private_before_public", pairs: [][2]string{{"_a", "a"}}},
		{name: "alphabetical", pairs: [][2]string{{"a", "b"}}},
		{name: "lifecycle_order", pairs: [][2]string{{"created", "attached"}}},
		{name: "property_type_first", pairs: [][2]string{{"type", "readOnly"}}},
		{name: "complex_properties", count: 6},
		{name: "comments_both", pairs: [][2]string{{"a", "b"}}},
		{name: "jsdoc_and_comment", pairs: [][2]string{{"a", "b"}}},
		{name: "jsdoc_both", pairs: [][2]string{{"a", "b"}}},
		{name: "comment_prev_only", pairs: [][2]string{{"a", "b"}}},
		{name: "comment_curr_only", pairs: [][2]string{{"a", "b"}}},
		{name: "jsdoc_prev_only", pairs: [][2]string{{"a", "b"}}},
		{name: "jsdoc_curr_only", pairs: [][2]string{{"a", "b"}}},
		{name: "inline_block_comments", pairs: [][2]string{{"a", "b"}}},
		{name: "inline_comment_curr", pairs: [][2]string{{"a", "b"}}},
	}

	engine := NewEngine(EngineOptions{})
	ctx := context.Background()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join("testdata", "fixtures", tt.name+".js")
			src, err := os.ReadFile(path)
			require.NoError(t, err)

			res := engine.LintSource(ctx, path, src)
			require.Nil(t, res.Error)

			if tt.count > 0 {
				assert.Len(t, res.Diagnostics, tt.count)
			} else {
				require.Len(t, res.Diagnostics, len(tt.pairs))
				for i, p := range tt.pairs {
					d := res.Diagnostics[i]
					assert.Equal(t, sortcomp.FormatMessage(p[0], p[1]), d.Message)
					assert.Equal(t, sortcomp.RuleID, d.RuleID)
					assert.NotNil(t, d.Fix, "diagnostic should be fixable")
				}
			}

			fixed := engine.FixSource(ctx, path, src)
			require.Nil(t, fixed.Error)
			assert.Empty(t, fixed.Diagnostics, "fix loop should converge")
			assert.Equal(t, len(res.Diagnostics) > 0, fixed.Fixed)
			g.Assert(t, tt.name, []byte(fixed.Output))
		})
	}
}

func TestLintSource_Location(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	src := "Polymer({\n  extends: 'li',\n  is: '',\n});\n"

	res := engine.LintSource(context.Background(), "x-el.js", []byte(src))
	require.Nil(t, res.Error)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, 3, d.Loc.Start.Line)
	assert.Equal(t, 3, d.Loc.Start.Column)
	assert.Equal(t, "is", src[d.Range.Start:d.Range.End])
	assert.Equal(t, map[string]string{"currName": "is", "prevName": "extends"}, d.Data)
}

func TestLintSource_Errors(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		src  string
		code errors.ErrorCode
	}{
		{"syntax error", "broken.js", "Polymer({ is: '', extends: });", errors.ParseFailed},
		{"unsupported extension", "styles.css", "a { color: red }", errors.UnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.LintSource(ctx, tt.path, []byte(tt.src))
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.Empty(t, res.Diagnostics)
			assert.NotEmpty(t, res.Error.SuggestedFixes)
		})
	}
}

func TestLintSource_TypeScript(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	src := "const cfg: Record<string, number> = { b: 1, a: 2 };\n"

	res := engine.LintSource(context.Background(), "cfg.ts", []byte(src))
	require.Nil(t, res.Error)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, sortcomp.FormatMessage("a", "b"), res.Diagnostics[0].Message)

	fixed := engine.FixSource(context.Background(), "cfg.ts", []byte(src))
	assert.Equal(t, "const cfg: Record<string, number> = { a: 2, b: 1 };\n", fixed.Output)
}

func TestLintSource_CustomOrder(t *testing.T) {
	order, err := sortcomp.NewOrder([]string{"name", "version"})
	require.NoError(t, err)
	engine := NewEngine(EngineOptions{Order: order})

	src := "module.exports = { version: '1', name: 'x', author: 'y' };\n"
	res := engine.LintSource(context.Background(), "pkg.js", []byte(src))
	require.Nil(t, res.Error)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, sortcomp.FormatMessage("name", "version"), res.Diagnostics[0].Message)
}

func TestFixSource_PassLimit(t *testing.T) {
	engine := NewEngine(EngineOptions{MaxPasses: 1})
	src := "x = {d: 1, c: 2, b: 3, a: 4};\n"

	res := engine.FixSource(context.Background(), "x.js", []byte(src))
	require.Nil(t, res.Error)
	assert.Equal(t, 1, res.Passes)
	assert.True(t, res.Fixed)
	assert.NotEmpty(t, res.Diagnostics, "one pass cannot sort four keys")

	engine = NewEngine(EngineOptions{})
	res = engine.FixSource(context.Background(), "x.js", []byte(src))
	assert.Equal(t, "x = {a: 4, b: 3, c: 2, d: 1};\n", res.Output)
	assert.Empty(t, res.Diagnostics)
}

func TestFixSource_Unparseable(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	src := "x = {b: 1, a: ;\n"

	res := engine.FixSource(context.Background(), "x.js", []byte(src))
	require.NotNil(t, res.Error)
	assert.False(t, res.Fixed)
	assert.Equal(t, src, res.Output)
}
