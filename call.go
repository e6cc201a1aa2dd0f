package goexpr

import (
	"math"
	"strings"
)

// ============================================================
// Precedence
// ============================================================

type Precedence int

const (
	AddPrecedence Precedence = iota
	MultPrecedence
	NegPrecedence
	ExpPrecedence
	AtomicPrecedence
)

// precedenceOf returns the strength of the glue holding n together, as
// seen by a parent deciding whether to parenthesize it.
func precedenceOf(n Node) Precedence {
	switch v := n.(type) {
	case *Call:
		return v.Precedence()
	case *Number:
		if v.val < 0 || math.Signbit(v.val) {
			return NegPrecedence
		}
	case *Term:
		if len(v.items) == 1 {
			return precedenceOf(v.items[0])
		}
		return AddPrecedence
	}
	return AtomicPrecedence
}

// ============================================================
// Call
// ============================================================

// Call applies an operator or named function to resolved arguments. It is
// the node shape produced by collapsing a Term.
type Call struct {
	fn       string
	sym      string // alias the operator was written with, if any
	args     []Node
	implicit bool
}

// FuncCall builds a call of the named function or operator. Operator
// aliases ("×", "−", "÷") are stored under their canonical names and kept
// for MathML.
func FuncCall(name string, args ...Node) *Call {
	c := &Call{fn: canonicalOp(name), args: append([]Node(nil), args...)}
	if c.fn != name {
		c.sym = name
	}
	return c
}

func implicitProduct(left, right Node) *Call {
	return &Call{fn: MultiplyOp, args: []Node{left, right}, implicit: true}
}

func (c *Call) Name() string   { return c.fn }
func (c *Call) Args() []Node   { return append([]Node(nil), c.args...) }
func (c *Call) Implicit() bool { return c.implicit }

// Symbol returns the operator alias the call was written with, or its
// canonical name.
func (c *Call) Symbol() string {
	if c.sym != "" {
		return c.sym
	}
	return c.fn
}

// with returns a copy of c over new arguments.
func (c *Call) with(args []Node) *Call {
	return &Call{fn: c.fn, sym: c.sym, args: args, implicit: c.implicit}
}

// IsOperator reports whether the call is an arithmetic operator rather
// than a named function.
func (c *Call) IsOperator() bool { return isKnownOp(c.fn) }

// Precedence returns the precedence of the call's outermost operator.
func (c *Call) Precedence() Precedence {
	switch c.fn {
	case AddOp:
		return AddPrecedence
	case SubtractOp:
		if len(c.args) == 1 {
			return NegPrecedence
		}
		return AddPrecedence
	case MultiplyOp, DivideOp, FractionOp:
		return MultPrecedence
	case PowOp:
		return ExpPrecedence
	}
	return AtomicPrecedence
}

func (c *Call) checkArity() error {
	n := len(c.args)
	switch c.fn {
	case AddOp, MultiplyOp:
		if n >= 1 {
			return nil
		}
	case SubtractOp:
		if n == 1 || n == 2 {
			return nil
		}
	case DivideOp, FractionOp, PowOp:
		if n == 2 {
			return nil
		}
	case CommaOp:
		return malformed("%q outside of an argument list", CommaOp)
	default:
		b, ok := Symbols().Function(c.fn)
		if !ok || b.Arity == n || b.Arity == Variadic && n > 0 {
			return nil
		}
		return malformed("%s expects %d argument(s), got %d", c.fn, b.Arity, n)
	}
	return malformed("%q applied to %d argument(s)", c.fn, n)
}

func (c *Call) Evaluate(vars VarMap) (float64, error) {
	if err := c.checkArity(); err != nil {
		return math.NaN(), err
	}
	vals := make([]float64, len(c.args))
	for i, a := range c.args {
		v, err := a.Evaluate(vars)
		if err != nil {
			return math.NaN(), err
		}
		vals[i] = v
	}
	switch c.fn {
	case AddOp:
		s := 0.0
		for _, v := range vals {
			s += v
		}
		return s, nil
	case SubtractOp:
		if len(vals) == 1 {
			return -vals[0], nil
		}
		return vals[0] - vals[1], nil
	case MultiplyOp:
		p := 1.0
		for _, v := range vals {
			p *= v
		}
		return p, nil
	case DivideOp, FractionOp:
		if vals[1] == 0 {
			return math.NaN(), errDivisionByZero
		}
		return vals[0] / vals[1], nil
	case PowOp:
		return math.Pow(vals[0], vals[1]), nil
	}
	if b, ok := vars[c.fn]; ok {
		switch f := b.(type) {
		case CustomFunction:
			return f(vals...), nil
		case Value:
			return math.NaN(), typeMismatch(c.fn, "bound to a number, not a function")
		}
	}
	if b, ok := Symbols().Function(c.fn); ok && b.Fn != nil {
		return b.Fn(vals...), nil
	}
	return math.NaN(), undefinedVariable(c.fn)
}

func (c *Call) Substitute(vars ExprMap) (Node, error) {
	args := make([]Node, len(c.args))
	for i, a := range c.args {
		s, err := a.Substitute(vars)
		if err != nil {
			return nil, err
		}
		args[i] = s
	}
	return c.with(args), nil
}

func (c *Call) Variables() []string {
	lists := make([][]string, len(c.args))
	for i, a := range c.args {
		lists[i] = a.Variables()
	}
	return uniqueJoin(lists...)
}

func (c *Call) Functions() ([]string, error) {
	lists := [][]string{{c.fn}}
	for _, a := range c.args {
		fs, err := a.Functions()
		if err != nil {
			return nil, err
		}
		lists = append(lists, fs)
	}
	return uniqueJoin(lists...), nil
}

// Collapse resolves any Terms among the arguments. A call whose arguments
// are already resolved is returned unchanged.
func (c *Call) Collapse() (Node, error) {
	var args []Node
	for i, a := range c.args {
		r, err := a.Collapse()
		if err != nil {
			return nil, err
		}
		if r != a && args == nil {
			args = append([]Node(nil), c.args...)
		}
		if args != nil {
			args[i] = r
		}
	}
	if args == nil {
		return c, nil
	}
	return c.with(args), nil
}

func (c *Call) Equal(other Node) bool {
	o, ok := other.(*Call)
	return ok && c.fn == o.fn && equalNodes(c.args, o.args)
}

func (c *Call) Size() int        { return 1 + sizeOf(c.args) }
func (c *Call) nodeType() string { return "call" }

func (c *Call) toJSON() map[string]interface{} {
	args := make([]map[string]interface{}, len(c.args))
	for i, a := range c.args {
		args[i] = a.toJSON()
	}
	m := map[string]interface{}{"type": "call", "fn": c.Symbol(), "args": args}
	if c.implicit {
		m["implicit"] = true
	}
	return m
}

// ============================================================
// Text rendering
// ============================================================

// parenthesize reports whether argument i must be grouped when rendered
// inside c.
func (c *Call) parenthesize(i int) bool {
	p := precedenceOf(c.args[i])
	switch c.fn {
	case AddOp:
		return i > 0 && p <= AddPrecedence
	case SubtractOp:
		if len(c.args) == 1 {
			return p <= NegPrecedence
		}
		if i == 0 {
			return p < AddPrecedence
		}
		return p <= AddPrecedence
	case MultiplyOp, DivideOp, FractionOp:
		if i == 0 {
			return p < MultPrecedence
		}
		if c.implicit {
			return p <= NegPrecedence
		}
		return p <= MultPrecedence
	case PowOp:
		if i == 0 {
			return p <= ExpPrecedence
		}
		return p < ExpPrecedence
	}
	return false
}

func (c *Call) argString(i int) string {
	s := c.args[i].String()
	if c.parenthesize(i) {
		return "(" + s + ")"
	}
	return s
}

func (c *Call) String() string {
	if !c.IsOperator() {
		return c.fn + "(" + joinStrings(c.args, ", ") + ")"
	}
	if c.fn == SubtractOp && len(c.args) == 1 {
		return "-" + c.argString(0)
	}
	sep := " " + (&Operator{name: c.fn}).String() + " "
	switch {
	case c.fn == PowOp:
		sep = PowOp
	case c.implicit:
		sep = " "
	}
	parts := make([]string, len(c.args))
	for i := range c.args {
		parts[i] = c.argString(i)
	}
	return strings.Join(parts, sep)
}
