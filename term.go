package goexpr

import (
	"math"
	"strings"
	"sync"
)

// ============================================================
// Term
// ============================================================

// Term is a flat sequence of sibling nodes for one syntactic scope, such as
// a parenthesized group. It is collapsed on first use; the result is cached
// for the lifetime of the Term.
type Term struct {
	items []Node

	once     sync.Once
	resolved Node
	err      error
}

// NewTerm returns a Term over items. It panics if items is empty.
func NewTerm(items ...Node) *Term {
	if len(items) == 0 {
		panic("goexpr: term must have at least one item")
	}
	return &Term{items: append([]Node(nil), items...)}
}

// Items returns a copy of the child sequence.
func (t *Term) Items() []Node { return append([]Node(nil), t.items...) }

func (t *Term) Collapse() (Node, error) {
	t.once.Do(func() { t.resolved, t.err = CollapseItems(t.items) })
	return t.resolved, t.err
}

func (t *Term) Evaluate(vars VarMap) (float64, error) {
	r, err := t.Collapse()
	if err != nil {
		return math.NaN(), err
	}
	return r.Evaluate(vars)
}

func (t *Term) Substitute(vars ExprMap) (Node, error) {
	r, err := t.Collapse()
	if err != nil {
		return nil, err
	}
	return r.Substitute(vars)
}

func (t *Term) Simplified() (Node, error) {
	r, err := t.Collapse()
	if err != nil {
		return nil, err
	}
	return r.Simplified()
}

// Variables reports the variables of the collapsed form. A Term that cannot
// be collapsed reports every identifier among its items.
func (t *Term) Variables() []string {
	if r, err := t.Collapse(); err == nil {
		return r.Variables()
	}
	lists := make([][]string, len(t.items))
	for i, it := range t.items {
		lists[i] = it.Variables()
	}
	return uniqueJoin(lists...)
}

func (t *Term) Functions() ([]string, error) {
	r, err := t.Collapse()
	if err != nil {
		return nil, err
	}
	return r.Functions()
}

// String joins the items with single blanks. Space items only mark
// adjacency; nested Terms and negative numbers are parenthesized.
func (t *Term) String() string {
	parts := make([]string, 0, len(t.items))
	for _, it := range t.items {
		switch v := it.(type) {
		case *Space:
			continue
		case *Term:
			parts = append(parts, "("+v.String()+")")
		case *Number:
			if math.Signbit(v.val) {
				parts = append(parts, "("+v.String()+")")
				continue
			}
			parts = append(parts, v.String())
		default:
			parts = append(parts, it.String())
		}
	}
	return strings.Join(parts, " ")
}

func (t *Term) MathML(custom MathMLMap) string {
	var b strings.Builder
	for _, it := range t.items {
		b.WriteString(it.MathML(custom))
	}
	return b.String()
}

func (t *Term) Equal(other Node) bool {
	o, ok := other.(*Term)
	return ok && equalNodes(t.items, o.items)
}

func (t *Term) Size() int        { return 1 + sizeOf(t.items) }
func (t *Term) nodeType() string { return "term" }

func (t *Term) toJSON() map[string]interface{} {
	items := make([]map[string]interface{}, len(t.items))
	for i, it := range t.items {
		items[i] = it.toJSON()
	}
	return map[string]interface{}{"type": "term", "items": items}
}
