package goexpr

import (
	"errors"
	"math"
	"sort"
	"sync"
)

// ============================================================
// Symbol table
// ============================================================

// Variadic marks a built-in function that accepts one or more arguments.
const Variadic = -1

// Builtin describes a function name known to the symbol table.
// Fn may be nil for names that are only function-shaped (collapse treats
// them as calls) and whose implementation must come from the bindings.
type Builtin struct {
	Arity int
	Fn    func(args ...float64) float64
}

// SymbolTable holds named constants, function-shaped names and the
// special names rendered upright in MathML. It is never mutated once built.
type SymbolTable struct {
	constants map[string]float64
	functions map[string]Builtin
	special   map[string]bool
}

func unary(f func(float64) float64) Builtin {
	return Builtin{Arity: 1, Fn: func(a ...float64) float64 { return f(a[0]) }}
}

// DefaultSymbols returns a fresh copy of the built-in symbol table.
func DefaultSymbols() *SymbolTable {
	t := &SymbolTable{
		constants: map[string]float64{
			"pi":       math.Pi,
			"π":        math.Pi,
			"tau":      2 * math.Pi,
			"τ":        2 * math.Pi,
			"e":        math.E,
			"phi":      math.Phi,
			"φ":        math.Phi,
			"infinity": math.Inf(1),
			"∞":        math.Inf(1),
		},
		functions: map[string]Builtin{
			"sin":    unary(math.Sin),
			"cos":    unary(math.Cos),
			"tan":    unary(math.Tan),
			"sec":    unary(func(x float64) float64 { return 1 / math.Cos(x) }),
			"csc":    unary(func(x float64) float64 { return 1 / math.Sin(x) }),
			"cot":    unary(func(x float64) float64 { return 1 / math.Tan(x) }),
			"arcsin": unary(math.Asin),
			"arccos": unary(math.Acos),
			"arctan": unary(math.Atan),
			"asin":   unary(math.Asin),
			"acos":   unary(math.Acos),
			"atan":   unary(math.Atan),
			"sinh":   unary(math.Sinh),
			"cosh":   unary(math.Cosh),
			"tanh":   unary(math.Tanh),
			"exp":    unary(math.Exp),
			"ln":     unary(math.Log),
			"log":    unary(math.Log10),
			"sqrt":   unary(math.Sqrt),
			"abs":    unary(math.Abs),
			"floor":  unary(math.Floor),
			"ceil":   unary(math.Ceil),
			"round":  unary(math.Round),
			"sign": unary(func(x float64) float64 {
				switch {
				case x > 0:
					return 1
				case x < 0:
					return -1
				}
				return x
			}),
			"min": {Arity: Variadic, Fn: func(a ...float64) float64 {
				m := a[0]
				for _, v := range a[1:] {
					m = math.Min(m, v)
				}
				return m
			}},
			"max": {Arity: Variadic, Fn: func(a ...float64) float64 {
				m := a[0]
				for _, v := range a[1:] {
					m = math.Max(m, v)
				}
				return m
			}},
		},
		special: map[string]bool{"lim": true, "det": true, "dim": true, "mod": true, "gcd": true, "lcm": true},
	}
	for name := range t.functions {
		t.special[name] = true
	}
	return t
}

// LookupConstant returns the value of a named constant.
func (t *SymbolTable) LookupConstant(name string) (float64, bool) {
	v, ok := t.constants[name]
	return v, ok
}

// IsSpecialFunction reports whether name renders upright in MathML.
func (t *SymbolTable) IsSpecialFunction(name string) bool { return t.special[name] }

// Function returns the built-in entry for a function-shaped name.
func (t *SymbolTable) Function(name string) (Builtin, bool) {
	b, ok := t.functions[name]
	return b, ok
}

// Constants returns the sorted constant names.
func (t *SymbolTable) Constants() []string { return sortedKeys(t.constants) }

// FunctionNames returns the sorted function-shaped names.
func (t *SymbolTable) FunctionNames() []string { return sortedKeys(t.functions) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ============================================================
// Process-wide table
// ============================================================

var (
	symbolsOnce sync.Once
	symbols     *SymbolTable
)

// ErrSymbolsInstalled is returned by InstallSymbols once the table is fixed.
var ErrSymbolsInstalled = errors.New("goexpr: symbol table already installed")

// InstallSymbols fixes the process-wide symbol table. It must run before
// the first call to Symbols; afterwards it returns ErrSymbolsInstalled.
func InstallSymbols(t *SymbolTable) error {
	installed := false
	symbolsOnce.Do(func() {
		symbols = t
		installed = true
	})
	if !installed {
		return ErrSymbolsInstalled
	}
	return nil
}

// Symbols returns the process-wide symbol table, installing the default
// table on first use.
func Symbols() *SymbolTable {
	symbolsOnce.Do(func() { symbols = DefaultSymbols() })
	return symbols
}
