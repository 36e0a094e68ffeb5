package qforms

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"go.uber.org/zap"
)

// ============================================================
// Tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Tools dispatches ToolRequests to the class number and polynomial
// engines. Class numbers in the table's mode are served from the table.
type Tools struct {
	table *Table
	log   *zap.Logger
}

// NewTools returns a dispatcher backed by table. A nil log discards output.
func NewTools(table *Table, log *zap.Logger) *Tools {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tools{table: table, log: log}
}

// ToolNames lists the tools Handle understands, in ToolSpec order.
func ToolNames() []string {
	names := make([]string, len(toolSpecs))
	for i, s := range toolSpecs {
		names[i] = s.name
	}
	return names
}

// Limits applied to tool calls, which may come from untrusted clients.
const (
	maxToolPower      = 1 << 10
	maxToolPowerWork  = 1 << 22
	maxToolSearchSpan = 1 << 16
)

// powWork bounds the coefficient products of raising an m-term polynomial
// to the n-th power by repeated multiplication: each of the n steps
// multiplies at most C(n+m-1, m-1) terms (the monomials of degree n in m
// variables) by m.
func powWork(m, n int) *big.Int {
	w := new(big.Int).Binomial(int64(n+m-1), int64(m-1))
	return w.Mul(w, big.NewInt(int64(m)*int64(n)))
}

func finite(z complex128) bool {
	return !math.IsInf(real(z), 0) && !math.IsNaN(real(z)) &&
		!math.IsInf(imag(z), 0) && !math.IsNaN(imag(z))
}

// checkFinite rejects results JSON cannot carry.
func checkFinite(p *Poly, at, v complex128) error {
	if finite(v) {
		return nil
	}
	if at == 0 {
		if lo, err := p.LowDegree(); err == nil && lo.Sign() < 0 {
			return errorf(ErrDivisionByZero, "negative exponent %s at 0", lo)
		}
	}
	return errorf(ErrInvalidArgument, "value at %v is not finite", at)
}

type params map[string]interface{}

func (p params) raw(key string) (interface{}, error) {
	v, ok := p[key]
	if !ok {
		return nil, errorf(ErrInvalidArgument, "missing param: %s", key)
	}
	return v, nil
}

func (p params) float(key string) (float64, error) {
	v, err := p.raw(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errorf(ErrInvalidArgument, "param %s must be a number", key)
	}
	return f, nil
}

func (p params) integer(key string) (int64, error) {
	f, err := p.float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, errorf(ErrInvalidArgument, "param %s must be an integer", key)
	}
	return int64(f), nil
}

func (p params) has(key string) bool { _, ok := p[key]; return ok }

// num accepts a JSON number or a rational string such as "1/3".
func (p params) num(key string) (Num, error) {
	v, err := p.raw(key)
	if err != nil {
		return Num{}, err
	}
	switch x := v.(type) {
	case float64:
		return Float(x), nil
	case string:
		r, ok := new(big.Rat).SetString(x)
		if !ok {
			return Num{}, errorf(ErrInvalidArgument, "param %s: bad rational %q", key, x)
		}
		return Num{rat: r}, nil
	}
	return Num{}, errorf(ErrInvalidArgument, "param %s must be a number or rational string", key)
}

func (p params) poly(key string) (*Poly, error) {
	v, err := p.raw(key)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(map[string]interface{}); !ok {
		return nil, errorf(ErrInvalidArgument, "param %s must be a polynomial object", key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	poly := new(Poly)
	if err := json.Unmarshal(b, poly); err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return poly, nil
}

func (t *Tools) mode(p params) (CountMode, error) {
	if !p.has("mode") {
		return t.table.Mode(), nil
	}
	s, ok := p["mode"].(string)
	if !ok {
		return 0, errorf(ErrInvalidArgument, "param mode must be a string")
	}
	return ParseCountMode(s)
}

// tableFor returns t.table when it counts in mode m, else a fresh table.
func (t *Tools) tableFor(m CountMode) (*Table, error) {
	if m == t.table.Mode() {
		return t.table, nil
	}
	return NewTable(WithMode(m), WithLogger(t.log), WithWorkers(t.table.opts.workers))
}

func polyResponse(p *Poly) ToolResponse { return ToolResponse{Result: p, String: p.String()} }

func complexResult(z complex128) map[string]interface{} {
	return map[string]interface{}{"re": real(z), "im": imag(z)}
}

// Handle executes req. Failures are reported in ToolResponse.Error.
func (t *Tools) Handle(ctx context.Context, req ToolRequest) ToolResponse {
	resp, err := t.handle(ctx, req)
	if err != nil {
		t.log.Debug("tool call failed", zap.String("tool", req.Tool), zap.Error(err))
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

func (t *Tools) handle(ctx context.Context, req ToolRequest) (ToolResponse, error) {
	p := params(req.Params)
	binary := func(op func(a, b *Poly) (*Poly, error)) (ToolResponse, error) {
		a, err := p.poly("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.poly("b")
		if err != nil {
			return ToolResponse{}, err
		}
		r, err := op(a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		return polyResponse(r), nil
	}

	switch req.Tool {
	case "factor_pairs":
		n, err := p.integer("n")
		if err != nil {
			return ToolResponse{}, err
		}
		pairs, err := FactorPairs(n)
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Result: pairs}, nil

	case "class_number":
		d, err := p.integer("d")
		if err != nil {
			return ToolResponse{}, err
		}
		m, err := t.mode(p)
		if err != nil {
			return ToolResponse{}, err
		}
		table, err := t.tableFor(m)
		if err != nil {
			return ToolResponse{}, err
		}
		h, err := table.ClassNumber(d)
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Result: h}, nil

	case "reduced_forms":
		d, err := p.integer("d")
		if err != nil {
			return ToolResponse{}, err
		}
		m, err := t.mode(p)
		if err != nil {
			return ToolResponse{}, err
		}
		forms, err := ReducedForms(d, WithMode(m), WithLogger(t.log))
		if err != nil {
			return ToolResponse{}, err
		}
		strs := make([]string, len(forms))
		for i, f := range forms {
			strs[i] = f.String()
		}
		return ToolResponse{Result: forms, String: strings.Join(strs, " ")}, nil

	case "class_number_search":
		lo, err := p.integer("from")
		if err != nil {
			return ToolResponse{}, err
		}
		hi, err := p.integer("to")
		if err != nil {
			return ToolResponse{}, err
		}
		if hi-lo > maxToolSearchSpan {
			return ToolResponse{}, errorf(ErrInvalidArgument, "search span %d exceeds %d", hi-lo, maxToolSearchSpan)
		}
		m, err := t.mode(p)
		if err != nil {
			return ToolResponse{}, err
		}
		table, err := t.tableFor(m)
		if err != nil {
			return ToolResponse{}, err
		}
		if !p.has("h") {
			entries, err := table.Range(ctx, lo, hi)
			if err != nil {
				return ToolResponse{}, err
			}
			return ToolResponse{Result: entries}, nil
		}
		h, err := p.integer("h")
		if err != nil {
			return ToolResponse{}, err
		}
		ds, err := table.WithClassNumber(ctx, lo, hi, int(h))
		if err != nil {
			return ToolResponse{}, err
		}
		if ds == nil {
			ds = []int64{}
		}
		return ToolResponse{Result: ds}, nil

	case "poly_add":
		return binary((*Poly).Add)

	case "poly_sub":
		return binary((*Poly).Sub)

	case "poly_mul":
		return binary(func(a, b *Poly) (*Poly, error) { return a.Mul(b) })

	case "poly_scale":
		poly, err := p.poly("p")
		if err != nil {
			return ToolResponse{}, err
		}
		s, err := p.num("s")
		if err != nil {
			return ToolResponse{}, err
		}
		return polyResponse(poly.Scale(s)), nil

	case "poly_pow":
		poly, err := p.poly("p")
		if err != nil {
			return ToolResponse{}, err
		}
		f, err := p.float("n")
		if err != nil {
			return ToolResponse{}, err
		}
		if f != math.Trunc(f) || f < 0 {
			return ToolResponse{}, errorf(ErrUnsupportedOperation, "power %v", f)
		}
		if f > maxToolPower {
			return ToolResponse{}, errorf(ErrInvalidArgument, "power %v exceeds %d", f, maxToolPower)
		}
		if f > 1 && powWork(poly.Len(), int(f)).Cmp(big.NewInt(maxToolPowerWork)) > 0 {
			return ToolResponse{}, errorf(ErrInvalidArgument, "%d-term polynomial to the power %v is too large", poly.Len(), f)
		}
		r, err := poly.Pow(int(f))
		if err != nil {
			return ToolResponse{}, err
		}
		return polyResponse(r), nil

	case "poly_eval":
		poly, err := p.poly("p")
		if err != nil {
			return ToolResponse{}, err
		}
		x, err := p.float("x")
		if err != nil {
			return ToolResponse{}, err
		}
		if !p.has("im") {
			v := poly.EvalFloat(x)
			if err := checkFinite(poly, complex(x, 0), complex(v, 0)); err != nil {
				return ToolResponse{}, err
			}
			return ToolResponse{Result: v, String: fmt.Sprint(v)}, nil
		}
		im, err := p.float("im")
		if err != nil {
			return ToolResponse{}, err
		}
		v := poly.Eval(complex(x, im))
		if err := checkFinite(poly, complex(x, im), v); err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Result: complexResult(v), String: fmt.Sprint(v)}, nil

	case "poly_qeval":
		poly, err := p.poly("p")
		if err != nil {
			return ToolResponse{}, err
		}
		tt, err := p.float("t")
		if err != nil {
			return ToolResponse{}, err
		}
		v := poly.QEval(tt, WithLogger(t.log))
		if err := checkFinite(poly, v.Q, v.Value); err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"q":     complexResult(v.Q),
				"value": complexResult(v.Value),
				"real":  v.Real,
			},
			String: v.String(),
		}, nil

	case "poly_degree":
		poly, err := p.poly("p")
		if err != nil {
			return ToolResponse{}, err
		}
		hi, err := poly.Degree()
		if err != nil {
			return ToolResponse{}, err
		}
		lo, _ := poly.LowDegree()
		return ToolResponse{Result: map[string]Exp{"degree": hi, "low_degree": lo}}, nil

	case "poly_equal":
		a, err := p.poly("a")
		if err != nil {
			return ToolResponse{}, err
		}
		var eq bool
		if _, isObj := p["b"].(map[string]interface{}); isObj {
			b, err := p.poly("b")
			if err != nil {
				return ToolResponse{}, err
			}
			eq = a.Equal(b)
		} else {
			n, err := p.num("b")
			if err != nil {
				return ToolResponse{}, err
			}
			eq = a.Equal(n)
		}
		return ToolResponse{Result: eq}, nil

	case "poly_string":
		poly, err := p.poly("p")
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Result: poly.GoString(), String: poly.String()}, nil

	case "tool_spec":
		return ToolResponse{String: ToolSpec()}, nil
	}
	return ToolResponse{}, errorf(ErrUnknownTool, "%q", req.Tool)
}

// ============================================================
// Tool schema
// ============================================================

type toolSpec struct {
	name, description string
	required          []string
	props             map[string]string
}

var toolSpecs = []toolSpec{
	{"factor_pairs", "Divisor pairs (a, b) with a <= b and a*b = n", []string{"n"}, map[string]string{"n": "integer"}},
	{"class_number", "Count reduced forms of discriminant -d. Optional mode: parity|proper", []string{"d"}, map[string]string{"d": "integer", "mode": "string"}},
	{"reduced_forms", "List reduced forms (a, b, c) of discriminant -d", []string{"d"}, map[string]string{"d": "integer", "mode": "string"}},
	{"class_number_search", "Class numbers for d in [from, to); with h, only the d whose class number is h", []string{"from", "to"}, map[string]string{"from": "integer", "to": "integer", "h": "integer", "mode": "string"}},
	{"poly_add", "Polynomial sum a+b", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}},
	{"poly_sub", "Polynomial difference a-b", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}},
	{"poly_mul", "Polynomial product a*b", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}},
	{"poly_scale", "Scalar multiple s*p", []string{"p", "s"}, map[string]string{"p": "object", "s": "number"}},
	{"poly_pow", "Non-negative integer power p^n; large results are rejected", []string{"p", "n"}, map[string]string{"p": "object", "n": "integer"}},
	{"poly_eval", "Evaluate p at x (or x + i*im)", []string{"p", "x"}, map[string]string{"p": "object", "x": "number", "im": "number"}},
	{"poly_qeval", "Evaluate p at q = exp(i*pi*t)", []string{"p", "t"}, map[string]string{"p": "object", "t": "number"}},
	{"poly_degree", "Largest and smallest exponent of p", []string{"p"}, map[string]string{"p": "object"}},
	{"poly_equal", "Compare polynomial a with polynomial or number b", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}},
	{"poly_string", "Render p", []string{"p"}, map[string]string{"p": "object"}},
	{"tool_spec", "Return this tool schema", []string{}, map[string]string{}},
}

// ToolSpec returns the JSON schema of every tool.
func ToolSpec() string {
	tools := make([]map[string]interface{}, len(toolSpecs))
	for i, s := range toolSpecs {
		tools[i] = ts(s.name, s.description, s.required, s.props)
	}
	spec := map[string]interface{}{"tools": tools}
	b, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		panic("qforms: encode tool spec: " + err.Error())
	}
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
