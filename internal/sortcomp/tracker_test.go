package sortcomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polylint/internal/ast"
)

func TestTracker_CloseWithoutOpen(t *testing.T) {
	var tr Tracker
	assert.ErrorIs(t, tr.Close(), ErrUnbalanced)

	tr.Open()
	require.NoError(t, tr.Close())
	assert.ErrorIs(t, tr.Close(), ErrUnbalanced)
}

func TestTracker_ObserveOutsideObject(t *testing.T) {
	var tr Tracker
	_, _, ok := tr.Observe(Known("a"), &ast.Property{})
	assert.False(t, ok)
}

func TestTracker_DynamicKeepsPreviousName(t *testing.T) {
	var tr Tracker
	tr.Open()

	first := &ast.Property{Key: ident("b", 0)}
	dynamic := &ast.Property{Key: &ast.Expression{}, Computed: true}
	last := &ast.Property{Key: ident("a", 0)}

	name, entry, ok := tr.Observe(Known("b"), first)
	require.True(t, ok)
	assert.Equal(t, Dynamic, name)
	assert.Nil(t, entry)

	name, entry, _ = tr.Observe(Dynamic, dynamic)
	assert.Equal(t, Known("b"), name)
	assert.Same(t, first, entry)

	// The name survives the dynamic entry, the node does not.
	name, entry, _ = tr.Observe(Known("a"), last)
	assert.Equal(t, Known("b"), name)
	assert.Same(t, dynamic, entry)
}

func TestTracker_NestingIndependence(t *testing.T) {
	var tr Tracker
	tr.Open()
	outer := &ast.Property{Key: ident("z", 0)}
	tr.Observe(Known("z"), outer)

	tr.Open()
	assert.Equal(t, 2, tr.Depth())
	name, entry, _ := tr.Observe(Known("a"), &ast.Property{Key: ident("a", 0)})
	assert.Equal(t, Dynamic, name, "inner literal must not see the outer name")
	assert.Nil(t, entry)
	require.NoError(t, tr.Close())

	name, entry, _ = tr.Observe(Known("zz"), &ast.Property{Key: ident("zz", 0)})
	assert.Equal(t, Known("z"), name)
	assert.Same(t, outer, entry)
	require.NoError(t, tr.Close())
	assert.Equal(t, 0, tr.Depth())
}
