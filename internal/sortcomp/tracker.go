package sortcomp

import (
	"errors"

	"polylint/internal/ast"
)

// ErrUnbalanced is returned when an object literal is closed with no frame
// open. It means the traversal delivered mismatched open/close events.
var ErrUnbalanced = errors.New("object literal closed without a matching open")

// frame tracks the previously accepted entry of one open object literal.
type frame struct {
	upper     *frame
	prevName  Name
	prevEntry ast.Entry
}

// Tracker is the per-traversal stack of open object literals.
type Tracker struct {
	top   *frame
	depth int
}

// Open pushes a frame for a newly entered object literal.
func (t *Tracker) Open() {
	t.top = &frame{upper: t.top}
	t.depth++
}

// Close pops the innermost frame.
func (t *Tracker) Close() error {
	if t.top == nil {
		return ErrUnbalanced
	}
	t.top = t.top.upper
	t.depth--
	return nil
}

// Depth returns the number of open object literals.
func (t *Tracker) Depth() int {
	return t.depth
}

// Observe records an entry in the innermost frame and returns the entry seen
// before it. A dynamic name keeps the previously known name so comparisons
// chain across dynamic keys; the entry itself is always replaced. ok is false
// when no object literal is open.
func (t *Tracker) Observe(name Name, e ast.Entry) (prevName Name, prevEntry ast.Entry, ok bool) {
	f := t.top
	if f == nil {
		return Dynamic, nil, false
	}
	prevName, prevEntry = f.prevName, f.prevEntry
	if name.IsKnown() {
		f.prevName = name
	}
	f.prevEntry = e
	return prevName, prevEntry, true
}
