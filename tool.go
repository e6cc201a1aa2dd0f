package goexpr

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	MathML string      `json:"mathml,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Node, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getObject := func(key string) (map[string]interface{}, error) {
		v, ok := req.Params[key]
		if !ok {
			return map[string]interface{}{}, nil
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object", key)
		}
		return m, nil
	}
	getVars := func(key string) (VarMap, error) {
		m, err := getObject(key)
		if err != nil {
			return nil, err
		}
		vars := VarMap{}
		for name, v := range m {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("param %s.%s must be a number", key, name)
			}
			vars[name] = Value(f)
		}
		return vars, nil
	}
	getExprMap := func(key string) (ExprMap, error) {
		m, err := getObject(key)
		if err != nil {
			return nil, err
		}
		repl := ExprMap{}
		for name, v := range m {
			obj, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param %s.%s must be expression object", key, name)
			}
			e, err := FromJSON(obj)
			if err != nil {
				return nil, fmt.Errorf("param %s.%s: %w", key, name, err)
			}
			repl[name] = e
		}
		return repl, nil
	}
	treeResponse := func(n Node, err error) ToolResponse {
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: n.toJSON(), String: n.String(), MathML: ToMathML(n, nil)}
	}

	switch req.Tool {
	case "evaluate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars, err := getVars("vars")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := e.Evaluate(vars)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		resp := ToolResponse{String: formatNumber(v)}
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			resp.Result = v
		}
		return resp

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		repl, err := getExprMap("vars")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return treeResponse(e.Substitute(repl))

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return treeResponse(e.Simplified())

	case "collapse":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return treeResponse(e.Collapse())

	case "variables":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars := e.Variables()
		if vars == nil {
			vars = []string{}
		}
		return ToolResponse{Result: vars}

	case "functions":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		fns, err := e.Functions()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if fns == nil {
			fns = []string{}
		}
		return ToolResponse{Result: fns}

	case "to_string":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{String: e.String()}

	case "to_mathml":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{MathML: ToMathML(e, nil)}

	case "mcp_spec":
		var spec interface{}
		if err := json.Unmarshal([]byte(MCPToolSpec()), &spec); err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: spec}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	expr := map[string]string{"expr": "object"}
	tools := []map[string]interface{}{
		ts("evaluate", "Evaluate an expression tree. Optional vars: {name: number}", []string{"expr"}, map[string]string{"expr": "object", "vars": "object"}),
		ts("substitute", "Replace identifiers with expression trees. vars: {name: expr}", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "object"}),
		ts("simplify", "Simplify an expression tree with local rewrite rules", []string{"expr"}, expr),
		ts("collapse", "Resolve every term into operator and function calls", []string{"expr"}, expr),
		ts("variables", "Return free variable names", []string{"expr"}, expr),
		ts("functions", "Return operator and function names invoked on evaluation", []string{"expr"}, expr),
		ts("to_string", "Render as plain text", []string{"expr"}, expr),
		ts("to_mathml", "Render as MathML", []string{"expr"}, expr),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
