package goexpr

import "strings"

// ============================================================
// MathML rendering
// ============================================================

const (
	invisibleTimes = "<mo>&#x2062;</mo>"
	applyFunction  = "<mo>&#x2061;</mo>"
)

func paren(markup string) string {
	return `<mo value="(">(</mo>` + markup + `<mo value=")">)</mo>`
}

func mrow(markup string) string { return "<mrow>" + markup + "</mrow>" }

// markup is the operator's display form: the alias it was written with,
// else the canonical markup.
func (c *Call) markup() string {
	if c.sym != "" {
		return c.sym
	}
	return operatorMarkup[c.fn]
}

// MathML renders the call, consulting custom for the call's name before
// falling back to the built-in forms.
func (c *Call) MathML(custom MathMLMap) string {
	args := make([]MathMLArgument, len(c.args))
	for i, a := range c.args {
		args[i] = MathMLArgument{Node: a, Markup: a.MathML(custom)}
	}
	if f, ok := custom[c.fn]; ok && f != nil {
		return f(args...)
	}

	grouped := func(i int) string {
		if c.parenthesize(i) {
			return paren(args[i].Markup)
		}
		return args[i].Markup
	}

	var b strings.Builder
	switch c.fn {
	case FractionOp:
		if len(args) == 2 {
			return "<mfrac>" + mrow(args[0].Markup) + mrow(args[1].Markup) + "</mfrac>"
		}
	case PowOp:
		if len(args) == 2 {
			return "<msup>" + mrow(grouped(0)) + mrow(args[1].Markup) + "</msup>"
		}
	case SubtractOp:
		if len(args) == 1 {
			return mrow(moTag(c.markup()) + grouped(0))
		}
	case "sqrt":
		if len(args) == 1 {
			return "<msqrt>" + args[0].Markup + "</msqrt>"
		}
	case "abs":
		if len(args) == 1 {
			return mrow(moTag("|") + args[0].Markup + moTag("|"))
		}
	}

	if !c.IsOperator() {
		b.WriteString(miTag(c.fn))
		b.WriteString(applyFunction)
		inner := make([]string, len(args))
		for i, a := range args {
			inner[i] = a.Markup
		}
		b.WriteString(paren(strings.Join(inner, moTag(","))))
		return mrow(b.String())
	}

	sep := moTag(c.markup())
	if c.implicit {
		sep = invisibleTimes
	}
	for i := range args {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(grouped(i))
	}
	return mrow(b.String())
}

// ToMathML wraps the rendering of n in a math element.
func ToMathML(n Node, custom MathMLMap) string {
	return `<math xmlns="http://www.w3.org/1998/Math/MathML">` + n.MathML(custom) + "</math>"
}
