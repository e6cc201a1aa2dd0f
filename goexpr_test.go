package goexpr_test

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/njchilds90/goexpr"
	"github.com/njchilds90/goexpr/reader"
)

func collapse(t *testing.T, src string) goexpr.Node {
	t.Helper()
	n, err := reader.MustParse(src).Collapse()
	if err != nil {
		t.Fatalf("collapse %q: %v", src, err)
	}
	return n
}

func eval(t *testing.T, src string, vars goexpr.VarMap) float64 {
	t.Helper()
	v, err := reader.MustParse(src).Evaluate(vars)
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return v
}

func simplified(t *testing.T, src string) goexpr.Node {
	t.Helper()
	n, err := reader.MustParse(src).Simplified()
	if err != nil {
		t.Fatalf("simplify %q: %v", src, err)
	}
	return n
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ============================================================
// Number tests
// ============================================================

func TestNumber_Evaluate(t *testing.T) {
	for _, n := range []float64{0, 1, -2.5, 1e10, math.Pi} {
		v, err := goexpr.Num(n).Evaluate(nil)
		if err != nil || v != n {
			t.Errorf("want %v, got %v (%v)", n, v, err)
		}
	}
}

func TestNumber_String(t *testing.T) {
	if s := goexpr.Num(2.5).String(); s != "2.5" {
		t.Errorf("want 2.5, got %s", s)
	}
	if s := goexpr.Num(1e6).String(); s != "1000000" {
		t.Errorf("want 1000000, got %s", s)
	}
}

func TestNumber_MathML(t *testing.T) {
	if m := goexpr.Num(2).MathML(nil); m != "<mn>2</mn>" {
		t.Errorf("want <mn>2</mn>, got %s", m)
	}
}

// ============================================================
// Identifier tests
// ============================================================

func TestIdentifier_EvaluateBinding(t *testing.T) {
	v, err := goexpr.Ident("x").Evaluate(goexpr.VarMap{"x": goexpr.Value(4)})
	if err != nil || v != 4 {
		t.Errorf("want 4, got %v (%v)", v, err)
	}
}

func TestIdentifier_BindingShadowsConstant(t *testing.T) {
	v, _ := goexpr.Ident("e").Evaluate(goexpr.VarMap{"e": goexpr.Value(1)})
	if v != 1 {
		t.Errorf("binding should shadow constant e, got %v", v)
	}
}

func TestIdentifier_EvaluateConstant(t *testing.T) {
	v, err := goexpr.Ident("pi").Evaluate(nil)
	if err != nil || v != math.Pi {
		t.Errorf("want pi, got %v (%v)", v, err)
	}
}

func TestIdentifier_Undefined(t *testing.T) {
	_, err := goexpr.Ident("x").Evaluate(goexpr.VarMap{"y": goexpr.Value(1)})
	if !errors.Is(err, goexpr.ErrUndefinedVariable) {
		t.Fatalf("want ErrUndefinedVariable, got %v", err)
	}
	var ee *goexpr.ExprError
	if !errors.As(err, &ee) || ee.Name != "x" {
		t.Errorf("error should name x, got %v", err)
	}
	if err.Error() != "undefined variable: x" {
		t.Errorf("want 'undefined variable: x', got %q", err.Error())
	}
}

func TestIdentifier_BoundToFunction(t *testing.T) {
	_, err := goexpr.Ident("f").Evaluate(goexpr.VarMap{
		"f": goexpr.CustomFunction(func(a ...float64) float64 { return 0 }),
	})
	if !errors.Is(err, goexpr.ErrTypeMismatch) {
		t.Errorf("want ErrTypeMismatch, got %v", err)
	}
}

func TestIdentifier_MathML(t *testing.T) {
	if m := goexpr.Ident("x").MathML(nil); m != "<mi>x</mi>" {
		t.Errorf("want <mi>x</mi>, got %s", m)
	}
	if m := goexpr.Ident("sin").MathML(nil); m != `<mi mathvariant="normal">sin</mi>` {
		t.Errorf("sin should render upright, got %s", m)
	}
}

func TestIdentifier_Substitute(t *testing.T) {
	r, _ := goexpr.Ident("x").Substitute(goexpr.ExprMap{"x": goexpr.Num(3)})
	if r.String() != "3" {
		t.Errorf("want 3, got %s", r)
	}
	r, _ = goexpr.Ident("x").Substitute(goexpr.ExprMap{"y": goexpr.Num(3)})
	if r.String() != "x" {
		t.Errorf("want x, got %s", r)
	}
}

// ============================================================
// StringLiteral, Space, Operator tests
// ============================================================

func TestStringLiteral_Evaluate(t *testing.T) {
	v, err := goexpr.Str("mass").Evaluate(goexpr.VarMap{"mass": goexpr.Value(2)})
	if err != nil || v != 2 {
		t.Errorf("want 2, got %v (%v)", v, err)
	}
}

func TestStringLiteral_NoConstantFallback(t *testing.T) {
	_, err := goexpr.Str("pi").Evaluate(nil)
	if !errors.Is(err, goexpr.ErrUndefinedVariable) {
		t.Errorf("string literal must not read constants, got %v", err)
	}
}

func TestStringLiteral_Render(t *testing.T) {
	s := goexpr.Str("a")
	if s.String() != `"a"` || s.MathML(nil) != "<mtext>a</mtext>" {
		t.Errorf("got %s / %s", s.String(), s.MathML(nil))
	}
}

func TestSpace_Render(t *testing.T) {
	if goexpr.Sp().String() != " " || goexpr.Sp().MathML(nil) != "<mspace/>" {
		t.Error("space should render as a blank and <mspace/>")
	}
}

func TestSpace_EvaluateFails(t *testing.T) {
	_, err := goexpr.Sp().Evaluate(nil)
	if !errors.Is(err, goexpr.ErrMalformedExpression) {
		t.Errorf("want ErrMalformedExpression, got %v", err)
	}
}

func TestOperator_FractionDisplaysAsSlash(t *testing.T) {
	o := goexpr.Op("//")
	if o.String() != "/" {
		t.Errorf("want /, got %s", o.String())
	}
	fns, _ := o.Functions()
	if len(fns) != 1 || fns[0] != "//" {
		t.Errorf("want [//], got %v", fns)
	}
}

func TestOperator_Alias(t *testing.T) {
	o := goexpr.Op("×")
	if o.Name() != "*" || o.String() != "*" {
		t.Errorf("want canonical *, got %s / %s", o.Name(), o.String())
	}
	if o.MathML(nil) != `<mo value="×">×</mo>` {
		t.Errorf("markup should keep ×, got %s", o.MathML(nil))
	}
}

func TestOperator_MathMLEscape(t *testing.T) {
	if m := goexpr.Op("<").MathML(nil); m != `<mo value="&lt;">&lt;</mo>` {
		t.Errorf("got %s", m)
	}
}

// ============================================================
// Collapse scenarios
// ============================================================

func TestCollapse_ImplicitMultiplication(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Num(2), goexpr.Sp(), goexpr.Ident("x"))
	n, err := term.Collapse()
	if err != nil {
		t.Fatal(err)
	}
	c, ok := n.(*goexpr.Call)
	if !ok || c.Name() != "*" || !c.Implicit() {
		t.Fatalf("want implicit product, got %#v", n)
	}
	v, err := term.Evaluate(goexpr.VarMap{"x": goexpr.Value(3)})
	if err != nil || v != 6 {
		t.Errorf("want 6, got %v (%v)", v, err)
	}
}

func TestCollapse_FunctionApplication(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Ident("sin"), goexpr.Ident("x"))
	n, err := term.Collapse()
	if err != nil {
		t.Fatal(err)
	}
	c, ok := n.(*goexpr.Call)
	if !ok || c.Name() != "sin" || len(c.Args()) != 1 {
		t.Fatalf("want sin(x), got %s", n)
	}
	if m := n.MathML(nil); !strings.Contains(m, `<mi mathvariant="normal">sin</mi>`) {
		t.Errorf("sin should be upright, got %s", m)
	}
}

func TestCollapse_SimplifiesToNumber(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Num(1), goexpr.Op("+"), goexpr.Num(0))
	n, err := term.Simplified()
	if err != nil {
		t.Fatal(err)
	}
	if !n.Equal(goexpr.Num(1)) {
		t.Errorf("want 1, got %s", n)
	}
}

func TestCollapse_DivisionByZeroAtEvaluation(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Ident("y"), goexpr.Op("/"), goexpr.Num(0))
	if _, err := term.Collapse(); err != nil {
		t.Fatalf("collapse should succeed, got %v", err)
	}
	_, err := term.Evaluate(goexpr.VarMap{"y": goexpr.Value(1)})
	if !errors.Is(err, goexpr.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
	if errors.Is(err, goexpr.ErrMalformedExpression) {
		t.Error("division by zero is not a malformed expression")
	}
}

func TestCollapse_LeadingOperator(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Op("+"), goexpr.Num(2))
	_, err := term.Collapse()
	if !errors.Is(err, goexpr.ErrMalformedExpression) {
		t.Errorf("want ErrMalformedExpression, got %v", err)
	}
}

func TestCollapse_FractionDisplaysAsSlash(t *testing.T) {
	n := collapse(t, "a // b")
	if n.String() != "a / b" {
		t.Errorf("want 'a / b', got %s", n)
	}
	if c := n.(*goexpr.Call); c.Name() != "//" {
		t.Errorf("canonical name should stay //, got %s", c.Name())
	}
}

func TestCollapse_Precedence(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"2^-1", 0.5},
		{"8 / 4 / 2", 1},
		{"10 - 4 - 3", 3},
		{"-2 * 3", -6},
		{"2 * -3", -6},
		{"2 - -3", 5},
		{"2 3", 6},
		{"6 // 3 2", 4},
		{"max(1, 5, 3)", 5},
		{"sqrt 16 + 1", 5},
		{"sin cos 0", math.Sin(1)},
		{"2 pi", 2 * math.Pi},
	}
	for _, c := range cases {
		if v := eval(t, c.src, nil); !approx(v, c.want) {
			t.Errorf("%s: want %v, got %v", c.src, c.want, v)
		}
	}
}

func TestCollapse_FunctionNegatedArgument(t *testing.T) {
	n := collapse(t, "sin -x")
	want := goexpr.FuncCall("sin", goexpr.FuncCall("-", goexpr.Ident("x")))
	if !n.Equal(want) {
		t.Fatalf("want %s, got %s", want, n)
	}
	if vars := n.Variables(); strings.Join(vars, ",") != "x" {
		t.Errorf("want x, got %v", vars)
	}
	if v := eval(t, "sin - - x", goexpr.VarMap{"x": goexpr.Value(1)}); !approx(v, math.Sin(1)) {
		t.Errorf("sin - - x: want sin(1), got %v", v)
	}
}

func TestCollapse_FunctionWithoutArgument(t *testing.T) {
	for _, src := range []string{"sin + 1", "2 sqrt", "sin -", "cos * x"} {
		_, err := reader.MustParse(src).Collapse()
		if !errors.Is(err, goexpr.ErrMalformedExpression) {
			t.Errorf("%q: want ErrMalformedExpression, got %v", src, err)
		}
	}
}

func TestCollapse_ImplicitWithPower(t *testing.T) {
	if v := eval(t, "2 x^2", goexpr.VarMap{"x": goexpr.Value(3)}); v != 18 {
		t.Errorf("want 18, got %v", v)
	}
}

func TestCollapse_ApplicationBindsTightest(t *testing.T) {
	vars := goexpr.VarMap{"x": goexpr.Value(1), "y": goexpr.Value(2)}
	if v := eval(t, "sin x y", vars); !approx(v, math.Sin(1)*2) {
		t.Errorf("sin x y: want sin(1)*2, got %v", v)
	}
	if v := eval(t, "sin x^2", vars); !approx(v, math.Pow(math.Sin(1), 2)) {
		t.Errorf("sin x^2: want sin(1)^2, got %v", v)
	}
}

func TestCollapse_Malformed(t *testing.T) {
	for _, src := range []string{
		"2 * * 3",
		"2 +",
		"* 2",
		"1 , 2",
		"max(1, , 2)",
		"sqrt(1, 2)",
		"2 ^",
	} {
		_, err := reader.MustParse(src).Collapse()
		if !errors.Is(err, goexpr.ErrMalformedExpression) {
			t.Errorf("%q: want ErrMalformedExpression, got %v", src, err)
		}
	}
}

func TestCollapse_UnknownOperator(t *testing.T) {
	_, err := goexpr.NewTerm(goexpr.Num(1), goexpr.Op("%"), goexpr.Num(2)).Collapse()
	if !errors.Is(err, goexpr.ErrMalformedExpression) {
		t.Errorf("want ErrMalformedExpression, got %v", err)
	}
}

func TestCollapse_SingleChildFixedPoint(t *testing.T) {
	x := goexpr.Ident("x")
	n, err := goexpr.NewTerm(x).Collapse()
	if err != nil || n != goexpr.Node(x) {
		t.Errorf("single resolved child should be returned unchanged, got %v (%v)", n, err)
	}
}

func TestCollapse_Idempotent(t *testing.T) {
	for _, src := range []string{"2 x + 1", "sin(x)^2 - a // b", "-(x - y) z"} {
		once := collapse(t, src)
		twice, err := once.Collapse()
		if err != nil {
			t.Fatal(err)
		}
		if !twice.Equal(once) {
			t.Errorf("%s: collapse not idempotent: %s vs %s", src, once, twice)
		}
	}
}

func TestCollapse_ReferentiallyTransparent(t *testing.T) {
	term := reader.MustParse("a b + c / d ^ 2")
	first, _ := term.Collapse()
	again, _ := term.Collapse()
	if first != again {
		t.Error("collapse of one term should be cached")
	}
	direct, err := goexpr.CollapseItems(term.Items())
	if err != nil {
		t.Fatal(err)
	}
	if !direct.Equal(first) {
		t.Errorf("uncached collapse differs: %s vs %s", direct, first)
	}
	if direct == first {
		t.Error("CollapseItems should build a fresh tree")
	}
}

func TestNewTerm_EmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTerm() should panic")
		}
	}()
	goexpr.NewTerm()
}

// ============================================================
// Evaluation tests
// ============================================================

func TestEvaluate_CustomFunction(t *testing.T) {
	f := goexpr.FuncCall("f", goexpr.Ident("x"), goexpr.Num(2))
	v, err := f.Evaluate(goexpr.VarMap{
		"x": goexpr.Value(5),
		"f": goexpr.CustomFunction(func(a ...float64) float64 { return a[0] - a[1] }),
	})
	if err != nil || v != 3 {
		t.Errorf("want 3, got %v (%v)", v, err)
	}
}

func TestEvaluate_BindingOverridesBuiltin(t *testing.T) {
	v := eval(t, "sin 2", goexpr.VarMap{
		"sin": goexpr.CustomFunction(func(a ...float64) float64 { return a[0] * 10 }),
	})
	if v != 20 {
		t.Errorf("want 20, got %v", v)
	}
}

func TestEvaluate_UnboundFunction(t *testing.T) {
	_, err := goexpr.FuncCall("g", goexpr.Num(1)).Evaluate(nil)
	if !errors.Is(err, goexpr.ErrUndefinedVariable) {
		t.Errorf("want ErrUndefinedVariable, got %v", err)
	}
}

func TestEvaluate_NumberCalledAsFunction(t *testing.T) {
	_, err := goexpr.FuncCall("g", goexpr.Num(1)).Evaluate(goexpr.VarMap{"g": goexpr.Value(1)})
	if !errors.Is(err, goexpr.ErrTypeMismatch) {
		t.Errorf("want ErrTypeMismatch, got %v", err)
	}
}

func TestEvaluate_ArgumentErrorPropagates(t *testing.T) {
	_, err := reader.MustParse("1 + q").Evaluate(nil)
	var ee *goexpr.ExprError
	if !errors.As(err, &ee) || ee.Name != "q" {
		t.Errorf("want undefined q, got %v", err)
	}
}

// ============================================================
// Substitution tests
// ============================================================

func TestSubstitute_Correctness(t *testing.T) {
	term := reader.MustParse("x^2 + 3 x - y")
	e := reader.MustParse("y + 1")
	b := goexpr.VarMap{"y": goexpr.Value(2)}

	sub, err := term.Substitute(goexpr.ExprMap{"x": e})
	if err != nil {
		t.Fatal(err)
	}
	got, err := sub.Evaluate(b)
	if err != nil {
		t.Fatal(err)
	}
	ev, _ := e.Evaluate(b)
	want, _ := term.Evaluate(goexpr.VarMap{"x": goexpr.Value(ev), "y": goexpr.Value(2)})
	if got != want {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestSubstitute_LeavesOthers(t *testing.T) {
	sub, _ := reader.MustParse("a + b").Substitute(goexpr.ExprMap{"a": goexpr.Num(1)})
	if sub.String() != "1 + b" {
		t.Errorf("want '1 + b', got %s", sub)
	}
}

func TestSubstitute_DoesNotEvaluate(t *testing.T) {
	sub, _ := reader.MustParse("a + b").Substitute(goexpr.ExprMap{"a": goexpr.Num(1), "b": goexpr.Num(2)})
	if sub.String() != "1 + 2" {
		t.Errorf("want '1 + 2', got %s", sub)
	}
}

// ============================================================
// Simplification tests
// ============================================================

func TestSimplify_Rules(t *testing.T) {
	cases := map[string]string{
		"1 + 0":       "1",
		"x + 0":       "x",
		"0 + x":       "x",
		"x * 1":       "x",
		"x / 1":       "x",
		"0 * x":       "0",
		"0 / x":       "0",
		"- - x":       "x",
		"x - 0":       "x",
		"0 - x":       "-x",
		"x^1":         "x",
		"x^0":         "1",
		"1^x":         "1",
		"2 + x + 3":   "x + 5",
		"2 x 3":       "6 x",
		"(x + y) + z": "x + y + z",
		"2 * 3 + x":   "6 + x",
		"sqrt 16":     "sqrt(16)",
		"x (y z)":     "x y z",
	}
	for src, want := range cases {
		if got := simplified(t, src).String(); got != want {
			t.Errorf("%s: want %s, got %s", src, want, got)
		}
	}
}

func TestSimplify_KeepsDivisionByZero(t *testing.T) {
	if got := simplified(t, "1 / 0").String(); got != "1 / 0" {
		t.Errorf("1 / 0 should not fold, got %s", got)
	}
}

func TestSimplify_AnnihilatorDropsVariables(t *testing.T) {
	n := simplified(t, "0 x y")
	if len(n.Variables()) != 0 {
		t.Errorf("0 x y should have no variables, got %v", n.Variables())
	}
}

func TestSimplify_PreservesValue(t *testing.T) {
	vars := goexpr.VarMap{"x": goexpr.Value(1.5), "y": goexpr.Value(-2), "z": goexpr.Value(3)}
	for _, src := range []string{
		"x + 0 + y * 1",
		"2 x 3 + 4 - 4",
		"(x + 1)^1 - -y",
		"sin(0) + cos x",
		"x // 1 + 0 z",
		"-(-(x y)) + 2^3^0",
		"max(x, y, z) + 1 * 2",
	} {
		want := eval(t, src, vars)
		got, err := simplified(t, src).Evaluate(vars)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if !approx(got, want) {
			t.Errorf("%s: want %v, got %v", src, want, got)
		}
	}
}

func TestSimplify_KeepsReboundFunctions(t *testing.T) {
	vars := goexpr.VarMap{
		"x":   goexpr.Value(1),
		"sin": goexpr.CustomFunction(func(a ...float64) float64 { return 10 }),
	}
	n := simplified(t, "sin(0) + x")
	if n.String() != "sin(0) + x" {
		t.Errorf("named calls should not fold, got %s", n)
	}
	got, err := n.Evaluate(vars)
	if err != nil {
		t.Fatal(err)
	}
	if want := eval(t, "sin(0) + x", vars); got != want {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestSimplify_NeverGrows(t *testing.T) {
	for _, src := range []string{"a + b c", "x^2 + 2 x + 1", "sin(x) / (1 + 0)"} {
		before := collapse(t, src)
		after := simplified(t, src)
		if after.Size() > before.Size() {
			t.Errorf("%s: size grew from %d to %d", src, before.Size(), after.Size())
		}
	}
}

func TestSimplify_FixedPoint(t *testing.T) {
	once := simplified(t, "(x + 0) * (1 + 0) + 2 + 3")
	twice, _ := once.Simplified()
	if !twice.Equal(once) {
		t.Errorf("simplify not at fixed point: %s vs %s", once, twice)
	}
}

func TestSimplify_Malformed(t *testing.T) {
	_, err := reader.MustParse("1 + + 1").Simplified()
	if !errors.Is(err, goexpr.ErrMalformedExpression) {
		t.Errorf("want ErrMalformedExpression, got %v", err)
	}
}

// ============================================================
// Variables and functions
// ============================================================

func TestVariables_Dedup(t *testing.T) {
	vars := reader.MustParse("a b + c a").Variables()
	if strings.Join(vars, ",") != "a,b,c" {
		t.Errorf("want a,b,c, got %v", vars)
	}
}

func TestVariables_ExcludeFunctionNames(t *testing.T) {
	vars := reader.MustParse("sin x + pi").Variables()
	if strings.Join(vars, ",") != "x,pi" {
		t.Errorf("want x,pi, got %v", vars)
	}
}

func TestFunctions_IncludeImplicit(t *testing.T) {
	fns, err := reader.MustParse("2 x + y").Functions()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(fns, ",") != "+,*" {
		t.Errorf("want +,*, got %v", fns)
	}
}

func TestFunctions_Named(t *testing.T) {
	fns, _ := reader.MustParse("sin(x) / 2").Functions()
	if strings.Join(fns, ",") != "/,sin" {
		t.Errorf("want /,sin, got %v", fns)
	}
}

func TestFunctions_Malformed(t *testing.T) {
	_, err := reader.MustParse("/ 2").Functions()
	if !errors.Is(err, goexpr.ErrMalformedExpression) {
		t.Errorf("want ErrMalformedExpression, got %v", err)
	}
}

// ============================================================
// Rendering tests
// ============================================================

func TestString_Term(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Num(2), goexpr.Op("+"), goexpr.Ident("x"))
	if term.String() != "2 + x" {
		t.Errorf("want '2 + x', got %s", term)
	}
}

func TestString_Parentheses(t *testing.T) {
	cases := map[string]string{
		"(a + b) * c":   "(a + b) * c",
		"a - (b - c)":   "a - (b - c)",
		"(a - b) - c":   "a - b - c",
		"(2^3)^2":       "(2^3)^2",
		"2^(3^2)":       "2^3^2",
		"-(a + b)":      "-(a + b)",
		"2 (-3)":        "2 (-3)",
		"sin(x + 1)^2":  "sin(x + 1)^2",
		"max(a, b + c)": "max(a, b + c)",
		"a / (b c)":     "a / (b c)",
	}
	for src, want := range cases {
		if got := collapse(t, src).String(); got != want {
			t.Errorf("%s: want %s, got %s", src, want, got)
		}
	}
}

func TestString_NegativeNumberInTerm(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Num(-2), goexpr.Op("^"), goexpr.Num(2))
	if term.String() != "(-2) ^ 2" {
		t.Errorf("want '(-2) ^ 2', got %s", term)
	}
	want, _ := term.Evaluate(nil)
	if got := eval(t, term.String(), nil); got != want {
		t.Errorf("reparsed text: want %v, got %v", want, got)
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, src := range []string{
		"a + b * c", "(a + b) * c", "a - (b - c)", "2^3^2", "(2^3)^2",
		"-x^2", "sin(x)^2", "max(a, b, c)", "a / b / c", "a / (b / c)",
		"2 x y", "-x * y", "2 (-3)", "-(-x)", "\"m\" g h",
	} {
		first := collapse(t, src)
		second := collapse(t, first.String())
		if !second.Equal(first) {
			t.Errorf("%s: %s reparsed as %s", src, first, second)
		}
	}
}

func TestMathML_Term(t *testing.T) {
	term := goexpr.NewTerm(goexpr.Num(2), goexpr.Sp(), goexpr.Ident("x"))
	if m := term.MathML(nil); m != "<mn>2</mn><mspace/><mi>x</mi>" {
		t.Errorf("got %s", m)
	}
}

func TestMathML_Fraction(t *testing.T) {
	m := collapse(t, "x // 2").MathML(nil)
	if m != "<mfrac><mrow><mi>x</mi></mrow><mrow><mn>2</mn></mrow></mfrac>" {
		t.Errorf("got %s", m)
	}
}

func TestMathML_Power(t *testing.T) {
	m := collapse(t, "(a + b)^2").MathML(nil)
	if !strings.HasPrefix(m, "<msup><mrow><mo value=\"(\">(</mo>") {
		t.Errorf("base should be parenthesized, got %s", m)
	}
}

func TestMathML_Function(t *testing.T) {
	m := collapse(t, "sin x").MathML(nil)
	want := `<mrow><mi mathvariant="normal">sin</mi><mo>&#x2061;</mo>` +
		`<mo value="(">(</mo><mi>x</mi><mo value=")">)</mo></mrow>`
	if m != want {
		t.Errorf("want %s, got %s", want, m)
	}
}

func TestMathML_Operators(t *testing.T) {
	m := collapse(t, "a - b * c").MathML(nil)
	want := `<mrow><mi>a</mi><mo value="−">−</mo><mrow><mi>b</mi><mo value="×">×</mo><mi>c</mi></mrow></mrow>`
	if m != want {
		t.Errorf("want %s, got %s", want, m)
	}
}

func TestMathML_OperatorAlias(t *testing.T) {
	n := collapse(t, "a ÷ b · c")
	m := n.MathML(nil)
	if !strings.Contains(m, `<mo value="÷">÷</mo>`) || !strings.Contains(m, `<mo value="·">·</mo>`) {
		t.Errorf("aliases should keep their symbol, got %s", m)
	}
	if n.String() != "a / b * c" {
		t.Errorf("text should use canonical operators, got %s", n)
	}
	if s := n.(*goexpr.Call).Symbol(); s != "·" {
		t.Errorf("want ·, got %s", s)
	}
	if m := goexpr.FuncCall("÷", goexpr.Num(1), goexpr.Num(2)).MathML(nil); !strings.Contains(m, "÷") {
		t.Errorf("FuncCall should keep ÷, got %s", m)
	}
}

func TestMathML_CustomRenderer(t *testing.T) {
	custom := goexpr.MathMLMap{
		"sqrt": func(args ...goexpr.MathMLArgument) string {
			return "<mroot>" + args[0].String() + "<mn>2</mn></mroot>"
		},
	}
	m := collapse(t, "sqrt x + 1").MathML(custom)
	if !strings.Contains(m, "<mroot><mi>x</mi><mn>2</mn></mroot>") {
		t.Errorf("custom renderer not used, got %s", m)
	}
}

func TestMathML_CustomOperatorRenderer(t *testing.T) {
	custom := goexpr.MathMLMap{
		"+": func(args ...goexpr.MathMLArgument) string {
			return "<plus>" + args[0].String() + args[1].String() + "</plus>"
		},
	}
	m := collapse(t, "1 + x").MathML(custom)
	if m != "<plus><mn>1</mn><mi>x</mi></plus>" {
		t.Errorf("got %s", m)
	}
}

func TestToMathML_Wrapper(t *testing.T) {
	m := goexpr.ToMathML(goexpr.Num(1), nil)
	if !strings.HasPrefix(m, "<math") || !strings.HasSuffix(m, "</math>") {
		t.Errorf("got %s", m)
	}
}

// ============================================================
// Symbol table tests
// ============================================================

func TestSymbols_Defaults(t *testing.T) {
	s := goexpr.Symbols()
	if v, ok := s.LookupConstant("π"); !ok || v != math.Pi {
		t.Errorf("π should be pi, got %v", v)
	}
	if _, ok := s.LookupConstant("x"); ok {
		t.Error("x is not a constant")
	}
	if !s.IsSpecialFunction("ln") || s.IsSpecialFunction("x") {
		t.Error("ln is special, x is not")
	}
	if b, ok := s.Function("max"); !ok || b.Arity != goexpr.Variadic {
		t.Error("max should be variadic")
	}
}

func TestInstallSymbols_AfterUse(t *testing.T) {
	goexpr.Symbols()
	if err := goexpr.InstallSymbols(goexpr.DefaultSymbols()); !errors.Is(err, goexpr.ErrSymbolsInstalled) {
		t.Errorf("want ErrSymbolsInstalled, got %v", err)
	}
}

// ============================================================
// Concurrency and determinism
// ============================================================

func TestConcurrentUse(t *testing.T) {
	term := reader.MustParse("x^2 + 2 x y + sin(y)")
	vars := goexpr.VarMap{"x": goexpr.Value(2), "y": goexpr.Value(0)}
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := term.Evaluate(vars)
			if err == nil && v != 4 {
				err = errors.New("wrong value")
			}
			if err == nil {
				_, err = term.Simplified()
			}
			_ = term.MathML(nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestDeterminism(t *testing.T) {
	expected := simplified(t, "z + a + m + 1 + 2").String()
	for i := 0; i < 10; i++ {
		if got := simplified(t, "z + a + m + 1 + 2").String(); got != expected {
			t.Errorf("non-deterministic output on iteration %d: %s != %s", i, got, expected)
		}
	}
}
