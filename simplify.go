package goexpr

import "math"

// ============================================================
// Simplification
// ============================================================

// A rewriteRule maps a call with simplified arguments to an equivalent
// node. A firing is kept only if it strictly decreases the node count, so
// rewriting a tree of size n stops after at most n firings.
type rewriteRule struct {
	name  string
	apply func(c *Call) (Node, bool)
}

// rules are tried in order; the first that fires restarts the scan
var simplifyRules = []rewriteRule{
	{"flatten", flattenRule},
	{"fold", foldRule},
	{"merge-constants", mergeConstantsRule},
	{"add-identity", addIdentityRule},
	{"mul-identity", mulIdentityRule},
	{"annihilate", annihilateRule},
	{"double-negation", doubleNegationRule},
	{"power-identity", powerIdentityRule},
	{"unwrap", unwrapRule},
}

// Simplified simplifies the arguments bottom-up, then rewrites the call
// until no rule fires.
func (c *Call) Simplified() (Node, error) {
	args := make([]Node, len(c.args))
	for i, a := range c.args {
		s, err := a.Simplified()
		if err != nil {
			return nil, err
		}
		args[i] = s
	}
	return rewrite(c.with(args)), nil
}

func rewrite(n Node) Node {
	for {
		c, ok := n.(*Call)
		if !ok {
			return n
		}
		next, fired := applyRules(c)
		if !fired {
			return n
		}
		n = next
	}
}

func applyRules(c *Call) (Node, bool) {
	size := c.Size()
	for _, r := range simplifyRules {
		out, ok := r.apply(c)
		if ok && out.Size() < size {
			return out, true
		}
	}
	return c, false
}

func isAssociative(fn string) bool { return fn == AddOp || fn == MultiplyOp }

func flattenRule(c *Call) (Node, bool) {
	if !isAssociative(c.fn) {
		return nil, false
	}
	var args []Node
	implicit := c.implicit
	fired := false
	for _, a := range c.args {
		if inner, ok := a.(*Call); ok && inner.fn == c.fn {
			args = append(args, inner.args...)
			implicit = implicit && inner.implicit
			fired = true
			continue
		}
		args = append(args, a)
	}
	if !fired {
		return nil, false
	}
	return &Call{fn: c.fn, sym: c.sym, args: args, implicit: implicit}, true
}

func foldRule(c *Call) (Node, bool) {
	for _, a := range c.args {
		if _, ok := a.(*Number); !ok {
			return nil, false
		}
	}
	// named functions may be rebound at evaluation time
	if !c.IsOperator() {
		return nil, false
	}
	v, err := c.Evaluate(nil)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return Num(v), true
}

func mergeConstantsRule(c *Call) (Node, bool) {
	if !isAssociative(c.fn) {
		return nil, false
	}
	var rest []Node
	count := 0
	acc := 0.0
	if c.fn == MultiplyOp {
		acc = 1
	}
	for _, a := range c.args {
		n, ok := a.(*Number)
		if !ok {
			rest = append(rest, a)
			continue
		}
		count++
		if c.fn == AddOp {
			acc += n.val
		} else {
			acc *= n.val
		}
	}
	if count < 2 || math.IsNaN(acc) || math.IsInf(acc, 0) {
		return nil, false
	}
	if c.fn == AddOp {
		rest = append(rest, Num(acc))
	} else {
		rest = append([]Node{Num(acc)}, rest...)
	}
	return c.with(rest), true
}

func addIdentityRule(c *Call) (Node, bool) {
	switch {
	case c.fn == AddOp:
		return dropArgs(c, 0)
	case c.fn == SubtractOp && len(c.args) == 2:
		if isNum(c.args[1], 0) {
			return c.args[0], true
		}
		if isNum(c.args[0], 0) {
			return &Call{fn: SubtractOp, args: []Node{c.args[1]}}, true
		}
	}
	return nil, false
}

func mulIdentityRule(c *Call) (Node, bool) {
	switch c.fn {
	case MultiplyOp:
		return dropArgs(c, 1)
	case DivideOp, FractionOp:
		if len(c.args) == 2 && isNum(c.args[1], 1) {
			return c.args[0], true
		}
	}
	return nil, false
}

// dropArgs removes identity elements from an associative call.
func dropArgs(c *Call, identity float64) (Node, bool) {
	var rest []Node
	for _, a := range c.args {
		if !isNum(a, identity) {
			rest = append(rest, a)
		}
	}
	switch {
	case len(rest) == len(c.args):
		return nil, false
	case len(rest) == 0:
		return Num(identity), true
	case len(rest) == 1:
		return rest[0], true
	}
	return c.with(rest), true
}

// annihilateRule drops the other operands of a zero product, along with
// any variables they referenced.
func annihilateRule(c *Call) (Node, bool) {
	switch c.fn {
	case MultiplyOp:
		for _, a := range c.args {
			if isNum(a, 0) {
				return Num(0), true
			}
		}
	case DivideOp, FractionOp:
		if len(c.args) == 2 && isNum(c.args[0], 0) {
			return Num(0), true
		}
	}
	return nil, false
}

func doubleNegationRule(c *Call) (Node, bool) {
	if c.fn != SubtractOp || len(c.args) != 1 {
		return nil, false
	}
	switch inner := c.args[0].(type) {
	case *Call:
		if inner.fn == SubtractOp && len(inner.args) == 1 {
			return inner.args[0], true
		}
	case *Number:
		return Num(-inner.val), true
	}
	return nil, false
}

func powerIdentityRule(c *Call) (Node, bool) {
	if c.fn != PowOp || len(c.args) != 2 {
		return nil, false
	}
	switch {
	case isNum(c.args[1], 1):
		return c.args[0], true
	case isNum(c.args[1], 0), isNum(c.args[0], 1):
		return Num(1), true
	}
	return nil, false
}

func unwrapRule(c *Call) (Node, bool) {
	if isAssociative(c.fn) && len(c.args) == 1 {
		return c.args[0], true
	}
	return nil, false
}

// Simplify is shorthand for n.Simplified.
func Simplify(n Node) (Node, error) { return n.Simplified() }
