package qforms

import (
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Num
// ============================================================

// Num is a polynomial coefficient. It is either exact (a rational held in
// a big.Rat) or inexact (a float64). Every constructor and every
// arithmetic result is normalised: a finite whole float becomes an exact
// integer. The zero value is 0.
//
// Num is a value type; its big.Rat is never mutated after construction.
type Num struct {
	rat *big.Rat // nil when inexact
	f   float64
}

// Int returns the exact integer n.
func Int(n int64) Num { return Num{rat: new(big.Rat).SetInt64(n)} }

// Frac returns the exact rational p/q. It panics if q is zero.
func Frac(p, q int64) Num {
	if q == 0 {
		panic("qforms: denominator is zero")
	}
	return Num{rat: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// Rat returns an exact Num holding a copy of r.
func Rat(r *big.Rat) Num { return Num{rat: new(big.Rat).Set(r)} }

// Float returns f, normalised to an exact integer when f is whole.
func Float(f float64) Num { return normNum(Num{f: f}) }

// normNum is the single coercion rule for coefficients.
func normNum(n Num) Num {
	if n.rat != nil {
		return n
	}
	if math.IsInf(n.f, 0) || math.IsNaN(n.f) || n.f != math.Trunc(n.f) {
		return n
	}
	return Num{rat: new(big.Rat).SetFloat64(n.f)}
}

func (Num) operand() {}

var (
	ratZero = new(big.Rat)
	ratOne  = big.NewRat(1, 1)
)

// exact returns the rational value of n, or nil if n is inexact. The zero
// value Num{} is exact 0.
func (n Num) exact() *big.Rat {
	if n.rat == nil && n.f == 0 {
		return ratZero
	}
	return n.rat
}

// IsExact reports whether n is held as a rational.
func (n Num) IsExact() bool { return n.exact() != nil }

// IsInteger reports whether n is an exact integer.
func (n Num) IsInteger() bool { r := n.exact(); return r != nil && r.IsInt() }

func (n Num) IsZero() bool { return n.Sign() == 0 }

func (n Num) Sign() int {
	if n.rat != nil {
		return n.rat.Sign()
	}
	switch {
	case n.f > 0:
		return 1
	case n.f < 0:
		return -1
	}
	return 0
}

// Float64 returns the nearest float64 to n.
func (n Num) Float64() float64 {
	if n.rat != nil {
		f, _ := n.rat.Float64()
		return f
	}
	return n.f
}

func (n Num) Complex128() complex128 { return complex(n.Float64(), 0) }

// BigRat returns a copy of the exact value, or nil if n is inexact.
func (n Num) BigRat() *big.Rat {
	r := n.exact()
	if r == nil {
		return nil
	}
	return new(big.Rat).Set(r)
}

func (n Num) isOne() bool {
	if r := n.exact(); r != nil {
		return r.Cmp(ratOne) == 0
	}
	return n.f == 1
}

func (n Num) Add(o Num) Num {
	if a, b := n.exact(), o.exact(); a != nil && b != nil {
		return Num{rat: new(big.Rat).Add(a, b)}
	}
	return normNum(Num{f: n.Float64() + o.Float64()})
}

func (n Num) Sub(o Num) Num { return n.Add(o.Neg()) }

func (n Num) Mul(o Num) Num {
	if a, b := n.exact(), o.exact(); a != nil && b != nil {
		return Num{rat: new(big.Rat).Mul(a, b)}
	}
	return normNum(Num{f: n.Float64() * o.Float64()})
}

func (n Num) Neg() Num {
	if r := n.exact(); r != nil {
		return Num{rat: new(big.Rat).Neg(r)}
	}
	return Num{f: -n.f}
}

func (n Num) Abs() Num {
	if n.Sign() < 0 {
		return n.Neg()
	}
	return n
}

// MulPoly returns n * p. It equals p.Scale(n).
func (n Num) MulPoly(p *Poly) *Poly { return p.Scale(n) }

// Equal reports whether n equals o. A Num equals a polynomial that has no
// non-constant terms and whose constant coefficient is n.
func (n Num) Equal(o Operand) bool {
	switch v := o.(type) {
	case Num:
		return n.equal(v)
	case *Poly:
		return v != nil && v.Equal(n)
	}
	return false
}

func (n Num) equal(o Num) bool {
	if a, b := n.exact(), o.exact(); a != nil && b != nil {
		return a.Cmp(b) == 0
	}
	return n.Float64() == o.Float64()
}

func (n Num) String() string {
	r := n.exact()
	if r == nil {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}
