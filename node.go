// Package goexpr represents parsed mathematical expressions as trees.
//
// A producer (a parser, the reader package, or the JSON decoder) builds
// Terms: flat, unresolved sequences of leaves. Any operation that needs
// structure collapses a Term into a precedence-correct tree of Calls on
// first use and caches the result.
//
// Design goals:
//   - Immutable nodes, safe for concurrent use
//   - Typed errors for undefined variables and malformed input
//   - Deterministic collapsing and simplification
//   - Plain-text and MathML output
package goexpr

import (
	"html"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Node is an expression tree node. The variant set is closed: Number,
// Identifier, StringLiteral, Space, Operator, Term and Call.
type Node interface {
	// Evaluate computes the numeric value under the given bindings.
	Evaluate(vars VarMap) (float64, error)
	// Substitute replaces identifiers named in vars with the mapped nodes.
	Substitute(vars ExprMap) (Node, error)
	// Simplified returns the simplest equivalent node.
	Simplified() (Node, error)
	// Variables lists the free identifier names, first-seen order.
	Variables() []string
	// Functions lists the operator and function names invoked on evaluation.
	Functions() ([]string, error)
	// Collapse resolves every Term in the subtree.
	Collapse() (Node, error)
	String() string
	MathML(custom MathMLMap) string
	Equal(other Node) bool
	// Size counts the nodes in the subtree.
	Size() int

	nodeType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Bindings
// ============================================================

// Binding is a value supplied to Evaluate: a Value or a CustomFunction.
type Binding interface{ isBinding() }

// Value binds a name to a number.
type Value float64

// CustomFunction binds a name to a numeric function.
type CustomFunction func(args ...float64) float64

func (Value) isBinding()          {}
func (CustomFunction) isBinding() {}

// VarMap maps names to bindings for Evaluate.
type VarMap map[string]Binding

// ExprMap maps identifier names to replacement nodes for Substitute.
type ExprMap map[string]Node

// MathMLArgument is a rendered argument handed to a custom renderer.
type MathMLArgument struct {
	Node   Node
	Markup string
}

func (a MathMLArgument) String() string { return a.Markup }

// MathMLFunc renders a call from its rendered arguments.
type MathMLFunc func(args ...MathMLArgument) string

// MathMLMap maps function or operator names to custom renderers.
type MathMLMap map[string]MathMLFunc

// ============================================================
// Number
// ============================================================

type Number struct{ val float64 }

func Num(v float64) *Number { return &Number{val: v} }

func (n *Number) Value() float64                 { return n.val }
func (n *Number) Evaluate(VarMap) (float64, error) { return n.val, nil }
func (n *Number) Substitute(ExprMap) (Node, error) { return n, nil }
func (n *Number) Simplified() (Node, error)        { return n, nil }
func (n *Number) Variables() []string              { return nil }
func (n *Number) Functions() ([]string, error)     { return nil, nil }
func (n *Number) Collapse() (Node, error)          { return n, nil }
func (n *Number) String() string                   { return formatNumber(n.val) }
func (n *Number) MathML(MathMLMap) string          { return "<mn>" + n.String() + "</mn>" }
func (n *Number) Size() int                        { return 1 }
func (n *Number) nodeType() string                 { return "num" }

func (n *Number) Equal(other Node) bool {
	o, ok := other.(*Number)
	return ok && (n.val == o.val || math.IsNaN(n.val) && math.IsNaN(o.val))
}

func (n *Number) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.val}
}

func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isNum(n Node, v float64) bool {
	x, ok := n.(*Number)
	return ok && x.val == v
}

// ============================================================
// Identifier
// ============================================================

type Identifier struct{ name string }

func Ident(name string) *Identifier { return &Identifier{name: name} }

func (i *Identifier) Name() string { return i.name }

func (i *Identifier) Evaluate(vars VarMap) (float64, error) {
	if b, ok := vars[i.name]; ok {
		switch v := b.(type) {
		case Value:
			return float64(v), nil
		case CustomFunction:
			return math.NaN(), typeMismatch(i.name, "bound to a function, not a number")
		}
	}
	if v, ok := Symbols().LookupConstant(i.name); ok {
		return v, nil
	}
	return math.NaN(), undefinedVariable(i.name)
}

func (i *Identifier) Substitute(vars ExprMap) (Node, error) {
	if r, ok := vars[i.name]; ok && r != nil {
		return r, nil
	}
	return i, nil
}

func (i *Identifier) Simplified() (Node, error)    { return i, nil }
func (i *Identifier) Variables() []string          { return []string{i.name} }
func (i *Identifier) Functions() ([]string, error) { return nil, nil }
func (i *Identifier) Collapse() (Node, error)      { return i, nil }
func (i *Identifier) String() string               { return i.name }
func (i *Identifier) Size() int                    { return 1 }
func (i *Identifier) nodeType() string             { return "id" }

func (i *Identifier) MathML(MathMLMap) string { return miTag(i.name) }

func (i *Identifier) Equal(other Node) bool {
	o, ok := other.(*Identifier)
	return ok && i.name == o.name
}

func (i *Identifier) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "id", "name": i.name}
}

func miTag(name string) string {
	variant := ""
	if Symbols().IsSpecialFunction(name) {
		variant = ` mathvariant="normal"`
	}
	return "<mi" + variant + ">" + html.EscapeString(name) + "</mi>"
}

// ============================================================
// StringLiteral
// ============================================================

// StringLiteral is a quoted name. It evaluates only through a binding
// keyed by its own text.
type StringLiteral struct{ text string }

func Str(s string) *StringLiteral { return &StringLiteral{text: s} }

func (s *StringLiteral) Text() string { return s.text }

func (s *StringLiteral) Evaluate(vars VarMap) (float64, error) {
	b, ok := vars[s.text]
	if !ok {
		return math.NaN(), undefinedVariable(s.text)
	}
	v, ok := b.(Value)
	if !ok {
		return math.NaN(), typeMismatch(s.text, "bound to a function, not a number")
	}
	return float64(v), nil
}

func (s *StringLiteral) Substitute(ExprMap) (Node, error) { return s, nil }
func (s *StringLiteral) Simplified() (Node, error)        { return s, nil }
func (s *StringLiteral) Variables() []string              { return nil }
func (s *StringLiteral) Functions() ([]string, error)     { return nil, nil }
func (s *StringLiteral) Collapse() (Node, error)          { return s, nil }
func (s *StringLiteral) String() string                   { return `"` + s.text + `"` }
func (s *StringLiteral) Size() int                        { return 1 }
func (s *StringLiteral) nodeType() string                 { return "str" }

func (s *StringLiteral) MathML(MathMLMap) string {
	return "<mtext>" + html.EscapeString(s.text) + "</mtext>"
}

func (s *StringLiteral) Equal(other Node) bool {
	o, ok := other.(*StringLiteral)
	return ok && s.text == o.text
}

func (s *StringLiteral) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "str", "value": s.text}
}

// ============================================================
// Space
// ============================================================

// Space marks adjacency inside a Term. It has no value of its own.
type Space struct{}

func Sp() *Space { return &Space{} }

func (s *Space) Evaluate(VarMap) (float64, error) {
	return math.NaN(), malformed("space outside of a term")
}

func (s *Space) Substitute(ExprMap) (Node, error) { return s, nil }
func (s *Space) Simplified() (Node, error)        { return s, nil }
func (s *Space) Variables() []string              { return nil }
func (s *Space) Functions() ([]string, error)     { return nil, nil }
func (s *Space) Collapse() (Node, error)          { return s, nil }
func (s *Space) String() string                   { return " " }
func (s *Space) MathML(MathMLMap) string          { return "<mspace/>" }
func (s *Space) Size() int                        { return 1 }
func (s *Space) nodeType() string                 { return "space" }

func (s *Space) Equal(other Node) bool {
	_, ok := other.(*Space)
	return ok
}

func (s *Space) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "space"}
}

// ============================================================
// Operator
// ============================================================

const (
	AddOp      = "+"
	SubtractOp = "-"
	MultiplyOp = "*"
	DivideOp   = "/"
	FractionOp = "//"
	PowOp      = "^"
	CommaOp    = ","
)

var operatorAliases = map[string]string{
	"−": SubtractOp,
	"×": MultiplyOp,
	"·": MultiplyOp,
	"÷": DivideOp,
}

// markup display forms for canonical operators
var operatorMarkup = map[string]string{
	AddOp:      "+",
	SubtractOp: "−",
	MultiplyOp: "×",
	DivideOp:   "/",
	FractionOp: "/",
	PowOp:      "^",
	CommaOp:    ",",
}

func canonicalOp(sym string) string {
	if c, ok := operatorAliases[sym]; ok {
		return c
	}
	return sym
}

func isKnownOp(name string) bool {
	_, ok := operatorMarkup[name]
	return ok
}

// Operator is an operator token inside a Term. Aliases such as "×" and
// "−" are stored under their canonical name but keep their symbol for MathML.
type Operator struct {
	sym  string
	name string
}

func Op(sym string) *Operator { return &Operator{sym: sym, name: canonicalOp(sym)} }

// Name returns the canonical function name of the operator.
func (o *Operator) Name() string { return o.name }

// Symbol returns the symbol the operator was created with.
func (o *Operator) Symbol() string { return o.sym }

func (o *Operator) Evaluate(VarMap) (float64, error) {
	return math.NaN(), malformed("operator %q outside of a term", o.sym)
}

func (o *Operator) Substitute(ExprMap) (Node, error) { return o, nil }
func (o *Operator) Simplified() (Node, error)        { return o, nil }
func (o *Operator) Variables() []string              { return nil }
func (o *Operator) Functions() ([]string, error)     { return []string{o.name}, nil }
func (o *Operator) Collapse() (Node, error)          { return o, nil }
func (o *Operator) Size() int                        { return 1 }
func (o *Operator) nodeType() string                 { return "op" }

func (o *Operator) String() string {
	if o.name == FractionOp {
		return DivideOp
	}
	return o.name
}

func (o *Operator) MathML(MathMLMap) string {
	d := o.sym
	if d == o.name {
		if m, ok := operatorMarkup[o.name]; ok {
			d = m
		}
	}
	return moTag(d)
}

func (o *Operator) Equal(other Node) bool {
	p, ok := other.(*Operator)
	return ok && o.name == p.name
}

func (o *Operator) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "op", "op": o.sym}
}

func moTag(d string) string {
	e := html.EscapeString(d)
	return `<mo value="` + e + `">` + e + `</mo>`
}

// ============================================================
// Helpers
// ============================================================

// uniqueJoin concatenates lists, keeping the first occurrence of each name.
func uniqueJoin(lists ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, l := range lists {
		for _, s := range l {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func joinStrings(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func sizeOf(nodes []Node) int {
	s := 0
	for _, n := range nodes {
		s += n.Size()
	}
	return s
}
