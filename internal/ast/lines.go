package ast

import "sort"

// Lines maps byte offsets to line/column positions.
type Lines struct {
	starts []int
	size   int
}

// NewLines indexes the line starts of src.
func NewLines(src []byte) *Lines {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lines{starts: starts, size: len(src)}
}

// Count returns the number of lines.
func (l *Lines) Count() int {
	return len(l.starts)
}

// Line returns the 1-based line containing offset.
func (l *Lines) Line(offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > l.size {
		offset = l.size
	}
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
}

// Position converts an offset to a 1-based line and column.
func (l *Lines) Position(offset int) Position {
	line := l.Line(offset)
	if offset > l.size {
		offset = l.size
	}
	if offset < 0 {
		offset = 0
	}
	return Position{Line: line, Column: offset - l.starts[line-1] + 1}
}

// Location converts a span to a location.
func (l *Lines) Location(s Span) Location {
	return Location{Start: l.Position(s.Start), End: l.Position(s.End)}
}
