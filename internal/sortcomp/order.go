package sortcomp

import (
	"fmt"
	"sort"
)

// PolymerOrder is the standard ordering of Polymer component keys followed
// by the ordering of property configuration keys.
var PolymerOrder = []string{
	"is",
	"extends",
	"behaviors",
	"properties",
	"observers",
	"listeners",
	"created",
	"ready",
	"attached",
	"detached",
	"attributeChanged",
	"type",
	"computed",
	"notify",
	"readOnly",
	"reflectToAttribute",
	"value",
}

// DefaultPreset is the preset used when no order is configured.
const DefaultPreset = "polymer"

// Presets are the built-in canonical orders.
var Presets = map[string][]string{
	DefaultPreset: PolymerOrder,
	"alphabetical": nil,
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Order is a canonical order: a finite set of ranked keys. Unranked keys sort
// after every ranked key and among themselves lexicographically.
type Order struct {
	keys  []string
	ranks map[string]int
}

// NewOrder builds an order ranking keys by their position. Keys must be
// non-empty and distinct.
func NewOrder(keys []string) (*Order, error) {
	ranks := make(map[string]int, len(keys))
	for i, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("canonical order: empty key at position %d", i)
		}
		if prev, dup := ranks[k]; dup {
			return nil, fmt.Errorf("canonical order: duplicate key %q at positions %d and %d", k, prev, i)
		}
		ranks[k] = i
	}
	return &Order{keys: append([]string(nil), keys...), ranks: ranks}, nil
}

// MustOrder is NewOrder that panics on invalid input. Intended for package
// level presets.
func MustOrder(keys []string) *Order {
	o, err := NewOrder(keys)
	if err != nil {
		panic(err)
	}
	return o
}

// DefaultOrder returns the Polymer order.
func DefaultOrder() *Order {
	return MustOrder(PolymerOrder)
}

// PresetOrder returns the order of a built-in preset.
func PresetOrder(name string) (*Order, error) {
	keys, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return NewOrder(keys)
}

// Keys returns the ranked keys in rank order.
func (o *Order) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Rank returns the rank of a canonical key.
func (o *Order) Rank(key string) (int, bool) {
	r, ok := o.ranks[key]
	return r, ok
}

// IsValidOrder reports whether a may precede b.
func (o *Order) IsValidOrder(a, b string) bool {
	ra, aRanked := o.ranks[a]
	rb, bRanked := o.ranks[b]

	switch {
	case aRanked && bRanked:
		return ra <= rb
	case aRanked:
		return true
	case bRanked:
		return false
	default:
		return a <= b
	}
}
