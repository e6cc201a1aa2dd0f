// Package reader turns plain text into unresolved goexpr Terms.
//
// It only tokenizes and groups parentheses; precedence is left to
// collapsing. Whitespace becomes Space nodes, so "2 x" and "2x" both
// read as an implicit product.
package reader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/njchilds90/goexpr"
)

// Parse reads text into a Term.
func Parse(text string) (*goexpr.Term, error) {
	r := &reader{src: text}
	items, err := r.group(0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, r.errorf("empty expression")
	}
	return goexpr.NewTerm(items...), nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) *goexpr.Term {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

type reader struct {
	src string
	pos int
}

func (r *reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: offset %d: %s", goexpr.ErrMalformedExpression, r.pos, fmt.Sprintf(format, args...))
}

// operators, longest first
var operators = []string{"//", "+", "-", "−", "*", "×", "·", "/", "÷", "^", ","}

// group reads items until the closing parenthesis of the given depth.
func (r *reader) group(depth int) ([]goexpr.Node, error) {
	var items []goexpr.Node
	for r.pos < len(r.src) {
		c, w := utf8.DecodeRuneInString(r.src[r.pos:])
		switch {
		case unicode.IsSpace(c):
			for r.pos < len(r.src) {
				c, w = utf8.DecodeRuneInString(r.src[r.pos:])
				if !unicode.IsSpace(c) {
					break
				}
				r.pos += w
			}
			items = append(items, goexpr.Sp())

		case c == '(':
			r.pos += w
			inner, err := r.group(depth + 1)
			if err != nil {
				return nil, err
			}
			if len(inner) == 0 {
				return nil, r.errorf("empty parentheses")
			}
			items = append(items, goexpr.NewTerm(inner...))

		case c == ')':
			if depth == 0 {
				return nil, r.errorf("unmatched %q", ")")
			}
			r.pos += w
			return items, nil

		case c == '"':
			end := strings.IndexByte(r.src[r.pos+1:], '"')
			if end < 0 {
				return nil, r.errorf("unterminated string")
			}
			items = append(items, goexpr.Str(r.src[r.pos+1:r.pos+1+end]))
			r.pos += end + 2

		case unicode.IsDigit(c) || c == '.':
			n, err := r.number()
			if err != nil {
				return nil, err
			}
			items = append(items, n)

		case unicode.IsLetter(c) || c == '_' || c == '∞':
			start := r.pos
			r.pos += w
			for r.pos < len(r.src) {
				c, w = utf8.DecodeRuneInString(r.src[r.pos:])
				if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
					break
				}
				r.pos += w
			}
			items = append(items, goexpr.Ident(r.src[start:r.pos]))

		default:
			op := r.operator()
			if op == "" {
				return nil, r.errorf("unexpected character %q", c)
			}
			items = append(items, goexpr.Op(op))
		}
	}
	if depth > 0 {
		return nil, r.errorf("missing %q", ")")
	}
	return items, nil
}

func (r *reader) number() (goexpr.Node, error) {
	start := r.pos
	for r.pos < len(r.src) && (r.src[r.pos] >= '0' && r.src[r.pos] <= '9' || r.src[r.pos] == '.') {
		r.pos++
	}
	v, err := strconv.ParseFloat(r.src[start:r.pos], 64)
	if err != nil {
		return nil, r.errorf("invalid number %q", r.src[start:r.pos])
	}
	return goexpr.Num(v), nil
}

func (r *reader) operator() string {
	for _, op := range operators {
		if strings.HasPrefix(r.src[r.pos:], op) {
			r.pos += len(op)
			return op
		}
	}
	return ""
}
