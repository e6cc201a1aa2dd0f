package main

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/njchilds90/goexpr"
	"github.com/njchilds90/goexpr/reader"
)

const helpText = `expressions:
  2x + 1           evaluate with the current bindings
  x = 3            bind x to a value
commands:
  :simplify expr   simplified form
  :mathml expr     MathML markup
  :vars expr       free variables
  :funcs expr      functions invoked
  :json expr       JSON tree
  :bindings        list bindings
  :reset           clear bindings
  :help            this text
  :quit            exit`

var assignment = regexp.MustCompile(`^\s*([\p{L}_][\p{L}\p{N}_]*)\s*=(.*)$`)

// session holds the bindings accumulated by assignments.
type session struct {
	vars goexpr.VarMap
}

func newSession() *session { return &session{vars: goexpr.VarMap{}} }

// handle runs one input line and returns the text to print. quit is set
// for :quit.
func (s *session) handle(line string) (out string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}
	if m := assignment.FindStringSubmatch(line); m != nil {
		v, err := s.eval(m[2])
		if err != nil {
			return err.Error(), false
		}
		s.vars[m[1]] = goexpr.Value(v)
		return fmt.Sprintf("%s = %s", m[1], goexpr.Num(v)), false
	}
	t, err := reader.Parse(line)
	if err != nil {
		return err.Error(), false
	}
	c, err := t.Collapse()
	if err != nil {
		return err.Error(), false
	}
	v, err := c.Evaluate(s.vars)
	if err != nil {
		return fmt.Sprintf("%s\n%v", c, err), false
	}
	return fmt.Sprintf("%s\n= %s", c, goexpr.Num(v)), false
}

func (s *session) eval(src string) (float64, error) {
	t, err := reader.Parse(src)
	if err != nil {
		return 0, err
	}
	return t.Evaluate(s.vars)
}

func (s *session) command(line string) (string, bool) {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case ":quit", ":q":
		return "", true
	case ":help":
		return helpText, false
	case ":reset":
		s.vars = goexpr.VarMap{}
		return "bindings cleared", false
	case ":bindings":
		names := make([]string, 0, len(s.vars))
		for k := range s.vars {
			names = append(names, k)
		}
		sort.Strings(names)
		lines := make([]string, len(names))
		for i, k := range names {
			lines[i] = fmt.Sprintf("%s = %s", k, goexpr.Num(float64(s.vars[k].(goexpr.Value))))
		}
		return strings.Join(lines, "\n"), false
	}

	t, err := reader.Parse(arg)
	if err != nil {
		return err.Error(), false
	}
	switch name {
	case ":simplify":
		n, err := t.Simplified()
		if err != nil {
			return err.Error(), false
		}
		return n.String(), false
	case ":mathml":
		n, err := t.Collapse()
		if err != nil {
			return err.Error(), false
		}
		return goexpr.ToMathML(n, nil), false
	case ":vars":
		return strings.Join(t.Variables(), ", "), false
	case ":funcs":
		fns, err := t.Functions()
		if err != nil {
			return err.Error(), false
		}
		return strings.Join(fns, ", "), false
	case ":json":
		n, err := t.Collapse()
		if err != nil {
			return err.Error(), false
		}
		j, err := goexpr.ToJSON(n)
		if err != nil {
			return err.Error(), false
		}
		return j, false
	}
	return fmt.Sprintf("unknown command %s (try :help)", name), false
}
