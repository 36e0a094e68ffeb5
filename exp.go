package qforms

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Exp
// ============================================================

// Exp is a polynomial exponent: an exact rational p/q in lowest terms
// with q > 0. Integer exponents have q = 1. The zero value is 0.
//
// Exp is comparable and is used as a map key; values built by IntExp,
// RatExp and Exp arithmetic are always in canonical form.
type Exp struct {
	num, den int64
}

// IntExp returns the integer exponent n.
func IntExp(n int64) Exp { return Exp{num: n, den: 1} }

// RatExp returns the exponent p/q. It panics if q is zero or the reduced
// fraction does not fit in int64.
func RatExp(p, q int64) Exp {
	if q == 0 {
		panic("qforms: exponent denominator is zero")
	}
	e, ok := expFromRat(new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q)))
	if !ok {
		panic("qforms: exponent out of range")
	}
	return e
}

func expFromRat(r *big.Rat) (Exp, bool) {
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return Exp{}, false
	}
	return Exp{num: r.Num().Int64(), den: r.Denom().Int64()}, true
}

// canon maps the zero value to 0/1.
func (e Exp) canon() Exp {
	if e.den == 0 {
		return Exp{den: 1}
	}
	return e
}

func (e Exp) rat() *big.Rat {
	e = e.canon()
	return big.NewRat(e.num, e.den)
}

// IsInt reports whether e is an integer.
func (e Exp) IsInt() bool { return e.canon().den == 1 }

// Int returns e as an integer, or false if e is not one.
func (e Exp) Int() (int64, bool) {
	e = e.canon()
	return e.num, e.den == 1
}

func (e Exp) Sign() int {
	switch {
	case e.num > 0:
		return 1
	case e.num < 0:
		return -1
	}
	return 0
}

// Cmp compares e and o and returns -1, 0 or +1.
func (e Exp) Cmp(o Exp) int { return e.rat().Cmp(o.rat()) }

func (e Exp) Float64() float64 {
	f, _ := e.rat().Float64()
	return f
}

// Add returns e + o, or ErrUnsupportedOperation if the sum does not fit
// in int64.
func (e Exp) Add(o Exp) (Exp, error) {
	sum, ok := expFromRat(new(big.Rat).Add(e.rat(), o.rat()))
	if !ok {
		return Exp{}, errorf(ErrUnsupportedOperation, "exponent overflow: %s + %s", e, o)
	}
	return sum, nil
}

// isUnit reports whether |e| = 1.
func (e Exp) isUnit() bool { return e.den == 1 && (e.num == 1 || e.num == -1) }

// magnitude renders |e| without negating, so MinInt64 is safe.
func (e Exp) magnitude() string { return strings.TrimPrefix(e.String(), "-") }

func (e Exp) String() string {
	e = e.canon()
	if e.den == 1 {
		return strconv.FormatInt(e.num, 10)
	}
	return strconv.FormatInt(e.num, 10) + "/" + strconv.FormatInt(e.den, 10)
}

// MarshalText renders e as "3" or "1/2". JSON object keys use it.
func (e Exp) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText accepts anything big.Rat.SetString does: "3", "-1/2",
// "0.5".
func (e *Exp) UnmarshalText(b []byte) error {
	r, ok := new(big.Rat).SetString(string(b))
	if !ok {
		return errorf(ErrInvalidArgument, "exponent %q", b)
	}
	v, ok := expFromRat(r)
	if !ok {
		return errorf(ErrInvalidArgument, "exponent %q out of range", b)
	}
	*e = v
	return nil
}

// MarshalJSON writes integer exponents as numbers and the rest as strings.
func (e Exp) MarshalJSON() ([]byte, error) {
	if e.IsInt() {
		return []byte(e.String()), nil
	}
	return json.Marshal(e.String())
}

func (e *Exp) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return e.UnmarshalText([]byte(s))
	}
	return e.UnmarshalText(b)
}
