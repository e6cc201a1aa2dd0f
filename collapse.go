package goexpr

// ============================================================
// Collapsing
// ============================================================

// Precedence, loosest first:
//
//	sum      := product (("+" | "-") product)*
//	product  := unary (("*" | "/" | "//") unary | power)*   adjacency is implicit "*"
//	unary    := "-" unary | power
//	power    := apply ("^" unary)?                          right-associative
//	apply    := FUNC (args) | FUNC "-"* apply | operand

// CollapseItems resolves a flat child sequence into a single node. It is a
// pure function of items; Term.Collapse caches its result.
func CollapseItems(items []Node) (Node, error) {
	toks := make([]Node, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case *Space:
			continue
		case *Operator:
			if !isKnownOp(v.name) {
				return nil, malformed("unknown operator %q", v.sym)
			}
		}
		toks = append(toks, it)
	}
	if len(toks) == 0 {
		return nil, malformed("empty expression")
	}
	if len(toks) == 1 {
		if _, ok := toks[0].(*Operator); !ok {
			return toks[0].Collapse()
		}
	}
	c := &collapser{toks: toks, symbols: Symbols()}
	n, err := c.sum()
	if err != nil {
		return nil, err
	}
	if c.pos < len(c.toks) {
		return nil, malformed("unexpected %q", c.toks[c.pos].String())
	}
	return n, nil
}

type collapser struct {
	toks    []Node
	pos     int
	symbols *SymbolTable
}

func (c *collapser) peekOp() (string, bool) {
	if c.pos >= len(c.toks) {
		return "", false
	}
	o, ok := c.toks[c.pos].(*Operator)
	if !ok {
		return "", false
	}
	return o.name, true
}

// symbol consumes the operator at the current position and returns its
// alias symbol, or "" when it was written in canonical form.
func (c *collapser) symbol() string {
	o := c.toks[c.pos].(*Operator)
	c.pos++
	if o.Symbol() == o.Name() {
		return ""
	}
	return o.Symbol()
}

func (c *collapser) atOperand() bool {
	if c.pos >= len(c.toks) {
		return false
	}
	_, isOp := c.toks[c.pos].(*Operator)
	return !isOp
}

func (c *collapser) sum() (Node, error) {
	left, err := c.product()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := c.peekOp()
		if !ok || op != AddOp && op != SubtractOp {
			return left, nil
		}
		sym := c.symbol()
		right, err := c.product()
		if err != nil {
			return nil, err
		}
		left = &Call{fn: op, sym: sym, args: []Node{left, right}}
	}
}

func (c *collapser) product() (Node, error) {
	left, err := c.unary()
	if err != nil {
		return nil, err
	}
	for {
		if c.atOperand() {
			right, err := c.power()
			if err != nil {
				return nil, err
			}
			left = implicitProduct(left, right)
			continue
		}
		op, ok := c.peekOp()
		if !ok || op != MultiplyOp && op != DivideOp && op != FractionOp {
			return left, nil
		}
		sym := c.symbol()
		right, err := c.unary()
		if err != nil {
			return nil, err
		}
		left = &Call{fn: op, sym: sym, args: []Node{left, right}}
	}
}

func (c *collapser) unary() (Node, error) {
	op, ok := c.peekOp()
	switch {
	case ok && op == SubtractOp:
		sym := c.symbol()
		operand, err := c.unary()
		if err != nil {
			return nil, err
		}
		return &Call{fn: SubtractOp, sym: sym, args: []Node{operand}}, nil
	case ok:
		if c.pos == 0 {
			return nil, malformed("leading operator %q", op)
		}
		return nil, malformed("missing operand before %q", op)
	case c.pos >= len(c.toks):
		return nil, malformed("missing operand after %q", c.toks[len(c.toks)-1].String())
	}
	return c.power()
}

func (c *collapser) power() (Node, error) {
	base, err := c.apply()
	if err != nil {
		return nil, err
	}
	if op, ok := c.peekOp(); ok && op == PowOp {
		c.pos++
		exp, err := c.unary()
		if err != nil {
			return nil, err
		}
		return &Call{fn: PowOp, args: []Node{base, exp}}, nil
	}
	return base, nil
}

func (c *collapser) apply() (Node, error) {
	tok := c.toks[c.pos]
	c.pos++
	id, ok := tok.(*Identifier)
	if !ok {
		return tok.Collapse()
	}
	b, isFunc := c.symbols.Function(id.name)
	if !isFunc {
		return id, nil
	}

	var args []Node
	if c.atOperand() {
		if group, ok := c.toks[c.pos].(*Term); ok {
			c.pos++
			var err error
			if args, err = splitArgs(group.items); err != nil {
				return nil, err
			}
		}
	}
	if args == nil {
		arg, err := c.argument(id.name)
		if err != nil {
			return nil, err
		}
		args = []Node{arg}
	}
	if b.Arity != Variadic && len(args) != b.Arity {
		return nil, malformed("%s expects %d argument(s), got %d", id.name, b.Arity, len(args))
	}
	return &Call{fn: id.name, args: args}, nil
}

// argument reads the operand of a function applied without parentheses.
// A leading minus negates the operand, so "sin -x" is sin(-x).
func (c *collapser) argument(fn string) (Node, error) {
	if op, ok := c.peekOp(); ok && op == SubtractOp {
		sym := c.symbol()
		arg, err := c.argument(fn)
		if err != nil {
			return nil, err
		}
		return &Call{fn: SubtractOp, sym: sym, args: []Node{arg}}, nil
	}
	if !c.atOperand() {
		return nil, malformed("%s used without an argument", fn)
	}
	return c.apply()
}

// splitArgs collapses a parenthesized argument list, splitting it on
// top-level commas.
func splitArgs(items []Node) ([]Node, error) {
	var args []Node
	start := 0
	for i := 0; i <= len(items); i++ {
		if i < len(items) {
			if o, ok := items[i].(*Operator); !ok || o.name != CommaOp {
				continue
			}
		}
		part := items[start:i]
		if onlySpaces(part) {
			return nil, malformed("empty argument %d", len(args)+1)
		}
		arg, err := CollapseItems(part)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		start = i + 1
	}
	return args, nil
}

func onlySpaces(items []Node) bool {
	for _, it := range items {
		if _, ok := it.(*Space); !ok {
			return false
		}
	}
	return true
}
