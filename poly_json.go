package qforms

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// JSON
// ============================================================

// MarshalJSON writes exact integers and floats as JSON numbers and exact
// non-integers as strings such as "1/3".
func (n Num) MarshalJSON() ([]byte, error) {
	r := n.exact()
	switch {
	case r == nil && (math.IsInf(n.f, 0) || math.IsNaN(n.f)):
		return nil, errorf(ErrUnsupportedOperation, "marshal coefficient %v", n.f)
	case r == nil:
		return []byte(strconv.FormatFloat(n.f, 'g', -1, 64)), nil
	case r.IsInt():
		return []byte(r.Num().String()), nil
	}
	return json.Marshal(r.RatString())
}

// UnmarshalJSON accepts a JSON number or a string accepted by
// big.Rat.SetString ("1/3", "0.25"). Strings are always exact.
func (n *Num) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return errorf(ErrInvalidArgument, "coefficient %q", s)
		}
		*n = Num{rat: r}
		return nil
	}
	lit := string(b)
	if i, ok := new(big.Int).SetString(lit, 10); ok {
		*n = Num{rat: new(big.Rat).SetInt(i)}
		return nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return errorf(ErrInvalidArgument, "coefficient %s", lit)
	}
	*n = Float(f)
	return nil
}

type polyJSON struct {
	Var   string      `json:"var,omitempty"`
	Terms map[Exp]Num `json:"terms"`
}

// MarshalJSON encodes p as {"var":"x","terms":{"-1":-3,"0":2,"1/2":1}}.
func (p *Poly) MarshalJSON() ([]byte, error) {
	return json.Marshal(polyJSON{Var: p.v, Terms: p.terms})
}

// UnmarshalJSON decodes the MarshalJSON form and re-normalises the terms.
// Exponent keys may also be decimals ("0.5"). A missing var means
// DefaultVar.
func (p *Poly) UnmarshalJSON(b []byte) error {
	var raw polyJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Var == "" {
		raw.Var = DefaultVar
	}
	*p = *NewPolyExp(raw.Terms, WithVar(raw.Var))
	return nil
}
