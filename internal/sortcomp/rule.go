// Package sortcomp implements the sort-comp rule: object literal keys must be
// sorted, with Polymer component keys first in their standard order and all
// other keys after them in ascending order.
//
// # Overview
//
// The rule is driven by a host traversal. The host calls EnterObject and
// ExitObject around every object literal and VisitEntry for every entry in
// between. Each entry's name is compared with the previous named entry of the
// same object literal; an inversion yields a Diagnostic carrying a Fix that
// swaps the two entries.
//
// # Example
//
// Before:
//
//	Polymer({
//	  extends: 'li',
//	  is: '',
//	});
//
// After applying the fix:
//
//	Polymer({
//	  is: '',
//	  extends: 'li',
//	});
//
// Dynamic keys such as {[a + b]: 1} are skipped; they neither trigger nor
// reset comparisons. Destructuring patterns are never checked.
package sortcomp

import (
	"strings"

	"polylint/internal/ast"
)

// RuleID identifies the rule in reports.
const RuleID = "sort-comp"

// MessageTemplate is the report message; {{currName}} and {{prevName}} are
// substituted from the diagnostic data.
const MessageTemplate = "Expected Polymer component keys to be in standard order and all other keys to be in ascending order. '{{currName}}' should be before '{{prevName}}'."

// Meta describes the rule.
type Meta struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Recommended bool   `json:"recommended"`
	Fixable     string `json:"fixable"`
}

// RuleMeta is the metadata of the sort-comp rule.
var RuleMeta = Meta{
	ID:          RuleID,
	Description: "require object keys inside of Polymer components to be sorted and Polymer-specific keys to be sorted according to their standard ordering",
	Category:    "Stylistic Issues",
	Recommended: false,
	Fixable:     "code",
}

// Diagnostic is one reported ordering violation.
type Diagnostic struct {
	RuleID  string            `json:"ruleId"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
	Loc     ast.Location      `json:"loc"`
	Range   ast.Span          `json:"range"`
	Fix     *Fix              `json:"fix,omitempty"`
}

// Violation is an inverted pair of entries.
type Violation struct {
	Current      ast.Entry
	Previous     ast.Entry
	CurrentName  string
	PreviousName string
}

// FormatMessage renders MessageTemplate for a pair of names.
func FormatMessage(currName, prevName string) string {
	return strings.NewReplacer("{{currName}}", currName, "{{prevName}}", prevName).Replace(MessageTemplate)
}

// Rule checks one traversal. A Rule must not be reused across files.
type Rule struct {
	order   *Order
	src     Source
	tracker Tracker
}

// NewRule creates a rule for a single traversal of src.
func NewRule(order *Order, src Source) *Rule {
	if order == nil {
		order = DefaultOrder()
	}
	return &Rule{order: order, src: src}
}

// EnterObject is called when an object literal opens.
func (r *Rule) EnterObject() {
	r.tracker.Open()
}

// ExitObject is called when an object literal closes.
func (r *Rule) ExitObject() error {
	return r.tracker.Close()
}

// Depth returns the number of currently open object literals.
func (r *Rule) Depth() int {
	return r.tracker.Depth()
}

// VisitEntry checks an entry against the previous entry of its object
// literal. It returns nil when the entry is in order.
func (r *Rule) VisitEntry(e ast.Entry) *Diagnostic {
	if p, ok := e.(*ast.Property); ok && p.InPattern {
		return nil
	}

	name := PropertyName(e)
	prevName, prevEntry, ok := r.tracker.Observe(name, e)
	if !ok {
		return nil
	}

	curr, currKnown := name.Value()
	prev, prevKnown := prevName.Value()
	if !currKnown || !prevKnown {
		return nil
	}
	if r.order.IsValidOrder(prev, curr) {
		return nil
	}

	return r.report(Violation{
		Current:      e,
		Previous:     prevEntry,
		CurrentName:  curr,
		PreviousName: prev,
	})
}

func (r *Rule) report(v Violation) *Diagnostic {
	d := &Diagnostic{
		RuleID:  RuleID,
		Message: FormatMessage(v.CurrentName, v.PreviousName),
		Data: map[string]string{
			"currName": v.CurrentName,
			"prevName": v.PreviousName,
		},
		Loc:   v.Current.Location(),
		Range: v.Current.Span(),
	}
	if key := ast.KeyOf(v.Current); key != nil {
		d.Loc = key.Location()
		d.Range = key.Span()
	}
	if r.src != nil {
		if fix, ok := SwapFix(r.src, v.Previous, v.Current); ok {
			d.Fix = fix
		}
	}
	return d
}
