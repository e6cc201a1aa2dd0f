package goexpr

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Symbol table configuration
// ============================================================

// SymbolsConfig extends the default symbol table. Example:
//
//	constants:
//	  g: 9.81
//	functions:
//	  - name: f
//	  - name: hypot
//	    arity: 2
//	special: [erf]
type SymbolsConfig struct {
	Constants map[string]float64 `yaml:"constants"`
	Functions []FunctionConfig   `yaml:"functions"`
	Special   []string           `yaml:"special"`
}

// FunctionConfig declares a function-shaped name. Configured functions have
// no built-in implementation; callers bind them with CustomFunction.
type FunctionConfig struct {
	Name     string `yaml:"name"`
	Arity    int    `yaml:"arity"`
	Variadic bool   `yaml:"variadic"`
}

// ParseSymbolsYAML builds a symbol table from the defaults plus a YAML
// document in SymbolsConfig form.
func ParseSymbolsYAML(data []byte) (*SymbolTable, error) {
	var cfg SymbolsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	return DefaultSymbols().With(cfg)
}

// LoadSymbolsYAML reads a SymbolsConfig file.
func LoadSymbolsYAML(path string) (*SymbolTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseSymbolsYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// With returns a copy of t extended by cfg. Built-in functions cannot be
// redeclared.
func (t *SymbolTable) With(cfg SymbolsConfig) (*SymbolTable, error) {
	out := &SymbolTable{
		constants: make(map[string]float64, len(t.constants)+len(cfg.Constants)),
		functions: make(map[string]Builtin, len(t.functions)+len(cfg.Functions)),
		special:   make(map[string]bool, len(t.special)+len(cfg.Special)),
	}
	for k, v := range t.constants {
		out.constants[k] = v
	}
	for k, v := range t.functions {
		out.functions[k] = v
	}
	for k, v := range t.special {
		out.special[k] = v
	}

	for name, v := range cfg.Constants {
		if name == "" {
			return nil, fmt.Errorf("constants: empty name")
		}
		out.constants[name] = v
	}
	for i, f := range cfg.Functions {
		if f.Name == "" {
			return nil, fmt.Errorf("functions[%d]: missing name", i)
		}
		if _, ok := t.functions[f.Name]; ok {
			return nil, fmt.Errorf("functions[%d]: %s is built in", i, f.Name)
		}
		arity := f.Arity
		switch {
		case f.Variadic:
			arity = Variadic
		case arity == 0:
			arity = 1
		case arity < 0:
			return nil, fmt.Errorf("functions[%d]: %s: negative arity", i, f.Name)
		}
		out.functions[f.Name] = Builtin{Arity: arity}
		out.special[f.Name] = true
	}
	for _, name := range cfg.Special {
		out.special[name] = true
	}
	return out, nil
}
