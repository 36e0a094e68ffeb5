package qforms_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/qforms"
)

func newTools(t *testing.T) *qforms.Tools {
	t.Helper()
	table, err := qforms.NewTable()
	require.NoError(t, err)
	return qforms.NewTools(table, nil)
}

func call(t *testing.T, tools *qforms.Tools, name string, params map[string]interface{}) qforms.ToolResponse {
	t.Helper()
	return tools.Handle(context.Background(), qforms.ToolRequest{Tool: name, Params: params})
}

func jsonPoly(terms map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"terms": terms}
}

var (
	toolP2 = jsonPoly(map[string]interface{}{"0": float64(2), "1": float64(-1), "3": float64(1)})
	toolP3 = jsonPoly(map[string]interface{}{"-1": float64(-3), "0": float64(2), "1": float64(-1)})
)

// ============================================================
// Class numbers
// ============================================================

func TestHandleToolCall_FactorPairs(t *testing.T) {
	resp := call(t, newTools(t), "factor_pairs", map[string]interface{}{"n": float64(12)})
	require.Empty(t, resp.Error)
	assert.Equal(t, []qforms.DivisorPair{{1, 12}, {2, 6}, {3, 4}}, resp.Result)

	resp = call(t, newTools(t), "factor_pairs", map[string]interface{}{"n": float64(0)})
	assert.Contains(t, resp.Error, "invalid argument")
}

func TestHandleToolCall_ClassNumber(t *testing.T) {
	tools := newTools(t)
	resp := call(t, tools, "class_number", map[string]interface{}{"d": float64(47)})
	require.Empty(t, resp.Error)
	assert.Equal(t, 3, resp.Result)

	resp = call(t, tools, "class_number", map[string]interface{}{"d": float64(47), "mode": "proper"})
	require.Empty(t, resp.Error)
	assert.Equal(t, 5, resp.Result)

	resp = call(t, tools, "class_number", map[string]interface{}{"d": float64(47), "mode": "exact"})
	assert.NotEmpty(t, resp.Error)

	resp = call(t, tools, "class_number", map[string]interface{}{"d": 4.5})
	assert.Contains(t, resp.Error, "must be an integer")

	resp = call(t, tools, "class_number", nil)
	assert.Contains(t, resp.Error, "missing param: d")
}

func TestHandleToolCall_ReducedForms(t *testing.T) {
	resp := call(t, newTools(t), "reduced_forms", map[string]interface{}{"d": float64(47), "mode": "proper"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "(1, 1, 12) (2, 1, 6) (2, -1, 6) (3, 1, 4) (3, -1, 4)", resp.String)
}

func TestHandleToolCall_ClassNumberSearch(t *testing.T) {
	tools := newTools(t)
	resp := call(t, tools, "class_number_search", map[string]interface{}{
		"from": float64(1), "to": float64(170), "h": float64(1),
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, []int64{3, 4, 7, 8, 11, 19, 43, 67, 163}, resp.Result)

	resp = call(t, tools, "class_number_search", map[string]interface{}{"from": float64(1), "to": float64(5)})
	require.Empty(t, resp.Error)
	assert.Equal(t, []qforms.Entry{{1, 0}, {2, 0}, {3, 1}, {4, 1}}, resp.Result)

	resp = call(t, tools, "class_number_search", map[string]interface{}{
		"from": float64(1), "to": float64(3), "h": float64(7),
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, []int64{}, resp.Result)

	resp = call(t, tools, "class_number_search", map[string]interface{}{"from": float64(1), "to": float64(1 << 20)})
	assert.Contains(t, resp.Error, "exceeds")
}

// ============================================================
// Polynomials
// ============================================================

func TestHandleToolCall_PolyArithmetic(t *testing.T) {
	tools := newTools(t)

	resp := call(t, tools, "poly_mul", map[string]interface{}{"a": toolP3, "b": toolP2})
	require.Empty(t, resp.Error)
	assert.Equal(t, "6/x + 7 - 4x - 2x^2 + 2x^3 - x^4", resp.String)

	resp = call(t, tools, "poly_sub", map[string]interface{}{"a": toolP3, "b": toolP3})
	require.Empty(t, resp.Error)
	assert.Equal(t, "0", resp.String)

	resp = call(t, tools, "poly_add", map[string]interface{}{
		"a": toolP2,
		"b": map[string]interface{}{"var": "q", "terms": map[string]interface{}{"1": float64(1)}},
	})
	assert.Contains(t, resp.Error, "incompatible operands")

	resp = call(t, tools, "poly_scale", map[string]interface{}{"p": toolP3, "s": "1/3"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1/x + 2/3 - (1/3)x", resp.String)
}

func TestHandleToolCall_PolyPow(t *testing.T) {
	tools := newTools(t)
	x := jsonPoly(map[string]interface{}{"1": float64(1)})

	resp := call(t, tools, "poly_pow", map[string]interface{}{"p": x, "n": float64(5)})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x^5", resp.String)

	resp = call(t, tools, "poly_pow", map[string]interface{}{"p": x, "n": float64(0)})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1", resp.String)

	for _, n := range []float64{-1, 2.5} {
		resp = call(t, tools, "poly_pow", map[string]interface{}{"p": x, "n": n})
		assert.Contains(t, resp.Error, "unsupported operation", "n=%v", n)
	}

	resp = call(t, tools, "poly_pow", map[string]interface{}{"p": x, "n": float64(1 << 20)})
	assert.Contains(t, resp.Error, "invalid argument")
}

func TestHandleToolCall_PolyEval(t *testing.T) {
	tools := newTools(t)

	resp := call(t, tools, "poly_eval", map[string]interface{}{"p": toolP2, "x": float64(2)})
	require.Empty(t, resp.Error)
	assert.Equal(t, 8.0, resp.Result)

	resp = call(t, tools, "poly_qeval", map[string]interface{}{"p": toolP3, "t": float64(1)})
	require.Empty(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, true, result["real"])
	assert.InDelta(t, 6.0, result["value"].(map[string]interface{})["re"], 1e-12)

	resp = call(t, tools, "poly_degree", map[string]interface{}{"p": toolP3})
	require.Empty(t, resp.Error)
	assert.Equal(t, map[string]qforms.Exp{"degree": qforms.IntExp(1), "low_degree": qforms.IntExp(-1)}, resp.Result)

	resp = call(t, tools, "poly_degree", map[string]interface{}{"p": jsonPoly(nil)})
	assert.Contains(t, resp.Error, "zero polynomial")
}

func TestHandleToolCall_PolyEvalRationalExponent(t *testing.T) {
	resp := call(t, newTools(t), "poly_eval", map[string]interface{}{
		"p": jsonPoly(map[string]interface{}{"0.5": float64(1)}), "x": float64(4),
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, 2.0, resp.Result)

	resp = call(t, newTools(t), "poly_degree", map[string]interface{}{
		"p": jsonPoly(map[string]interface{}{"1/3": float64(1), "-5/2": float64(1)}),
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, map[string]qforms.Exp{"degree": qforms.RatExp(1, 3), "low_degree": qforms.RatExp(-5, 2)}, resp.Result)
}

func TestHandleToolCall_PolyEvalNotFinite(t *testing.T) {
	tools := newTools(t)
	inv := jsonPoly(map[string]interface{}{"-1": float64(1)})

	resp := call(t, tools, "poly_eval", map[string]interface{}{"p": inv, "x": float64(0)})
	assert.Contains(t, resp.Error, "division by zero")
	assert.Nil(t, resp.Result)

	resp = call(t, tools, "poly_eval", map[string]interface{}{"p": inv, "x": float64(0), "im": float64(0)})
	assert.Contains(t, resp.Error, "division by zero")

	resp = call(t, tools, "poly_eval", map[string]interface{}{
		"p": jsonPoly(map[string]interface{}{"1/2": float64(1)}), "x": float64(-4),
	})
	assert.Contains(t, resp.Error, "not finite")

	resp = call(t, tools, "poly_eval", map[string]interface{}{"p": inv, "x": float64(2)})
	require.Empty(t, resp.Error)
	assert.Equal(t, 0.5, resp.Result)
}

func TestHandleToolCall_PolyPowLimits(t *testing.T) {
	tools := newTools(t)

	huge := jsonPoly(map[string]interface{}{"4611686018427387904": float64(1)})
	resp := call(t, tools, "poly_pow", map[string]interface{}{"p": huge, "n": float64(2)})
	assert.Contains(t, resp.Error, "exponent overflow")

	dense := map[string]interface{}{}
	for i := 0; i < 100; i++ {
		dense[strconv.Itoa(i)] = float64(1)
	}
	resp = call(t, tools, "poly_pow", map[string]interface{}{"p": jsonPoly(dense), "n": float64(8)})
	assert.Contains(t, resp.Error, "too large")

	resp = call(t, tools, "poly_pow", map[string]interface{}{
		"p": jsonPoly(map[string]interface{}{"0": float64(1), "1": float64(1)}), "n": float64(10),
	})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "252x^5")
}

func TestHandleToolCall_PolyEqualAndString(t *testing.T) {
	tools := newTools(t)

	resp := call(t, tools, "poly_equal", map[string]interface{}{"a": toolP3, "b": toolP3})
	require.Empty(t, resp.Error)
	assert.Equal(t, true, resp.Result)

	resp = call(t, tools, "poly_equal", map[string]interface{}{
		"a": jsonPoly(map[string]interface{}{"0": float64(5)}), "b": float64(5),
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, true, resp.Result)

	resp = call(t, tools, "poly_string", map[string]interface{}{"p": toolP3})
	require.Empty(t, resp.Error)
	assert.Equal(t, "{-1: -3, 0: 2, 1: -1}", resp.Result)
	assert.Equal(t, "3/x + 2 - x", resp.String)

	resp = call(t, tools, "poly_string", map[string]interface{}{"p": "x"})
	assert.Contains(t, resp.Error, "polynomial object")
}

// ============================================================
// Dispatch
// ============================================================

func TestHandleToolCall_Unknown(t *testing.T) {
	resp := call(t, newTools(t), "simplify", nil)
	assert.Contains(t, resp.Error, "unknown tool")
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(qforms.ToolSpec()), &spec))

	names := make([]string, len(spec.Tools))
	for i, tool := range spec.Tools {
		names[i] = tool.Name
	}
	assert.Equal(t, qforms.ToolNames(), names)

	resp := call(t, newTools(t), "tool_spec", nil)
	assert.JSONEq(t, qforms.ToolSpec(), resp.String)
}
