package qforms

import (
	"fmt"
	"maps"
	"math"
	"math/big"
	"math/cmplx"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultVar is the variable label of a Poly built without WithVar.
const DefaultVar = "x"

// Operand is the right-hand side of Mul and Equal: either a *Poly or a
// scalar Num.
type Operand interface {
	operand()
}

// ============================================================
// Poly
// ============================================================

// Poly maps exact rational exponents (negative and fractional ones
// allowed) to nonzero coefficients. A Poly is immutable: every operation
// returns a new value.
type Poly struct {
	v     string
	terms map[Exp]Num
}

// PolyOption configures NewPoly.
type PolyOption func(*Poly)

// WithVar sets the display variable. Binary operations require both
// operands to use the same variable.
func WithVar(name string) PolyOption { return func(p *Poly) { p.v = name } }

// NewPoly builds a polynomial with integer exponents from
// exponent -> coefficient. Zero coefficients are dropped and whole floats
// become exact integers.
func NewPoly(terms map[int]Num, opts ...PolyOption) *Poly {
	m := make(map[Exp]Num, len(terms))
	for e, c := range terms {
		m[IntExp(int64(e))] = c
	}
	return NewPolyExp(m, opts...)
}

// NewPolyExp is NewPoly for arbitrary rational exponents.
func NewPolyExp(terms map[Exp]Num, opts ...PolyOption) *Poly {
	p := &Poly{v: DefaultVar}
	for _, opt := range opts {
		opt(p)
	}
	p.terms = normalize(terms)
	return p
}

// IntTerms is NewPoly for integer coefficients.
func IntTerms(terms map[int]int64, opts ...PolyOption) *Poly {
	m := make(map[int]Num, len(terms))
	for e, c := range terms {
		m[e] = Int(c)
	}
	return NewPoly(m, opts...)
}

// Monomial returns c*x^exp.
func Monomial(c Num, exp int, opts ...PolyOption) *Poly {
	return MonomialExp(c, IntExp(int64(exp)), opts...)
}

// MonomialExp returns c*x^e.
func MonomialExp(c Num, e Exp, opts ...PolyOption) *Poly {
	return NewPolyExp(map[Exp]Num{e: c}, opts...)
}

// Constant returns the constant polynomial c.
func Constant(c Num, opts ...PolyOption) *Poly { return Monomial(c, 0, opts...) }

// normalize is the one place the Poly invariant is established: every
// map-producing operation goes through it.
func normalize(terms map[Exp]Num) map[Exp]Num {
	out := make(map[Exp]Num, len(terms))
	for e, c := range terms {
		e = e.canon()
		out[e] = out[e].Add(c)
	}
	for e, c := range out {
		c = normNum(c)
		if c.IsZero() {
			delete(out, e)
			continue
		}
		out[e] = c
	}
	return out
}

func (p *Poly) derive(terms map[Exp]Num) *Poly { return &Poly{v: p.v, terms: normalize(terms)} }

func (*Poly) operand() {}

func (p *Poly) Var() string { return p.v }

// Len returns the number of nonzero terms.
func (p *Poly) Len() int { return len(p.terms) }

// Coeff returns the coefficient of x^exp, or 0.
func (p *Poly) Coeff(exp int) Num { return p.CoeffExp(IntExp(int64(exp))) }

// CoeffExp returns the coefficient of x^e, or 0.
func (p *Poly) CoeffExp(e Exp) Num {
	if c, ok := p.terms[e.canon()]; ok {
		return c
	}
	return Int(0)
}

// Exponents returns the exponents present in ascending order.
func (p *Poly) Exponents() []Exp { return slices.SortedFunc(maps.Keys(p.terms), Exp.Cmp) }

// Terms returns a copy of the exponent -> coefficient map.
func (p *Poly) Terms() map[Exp]Num { return maps.Clone(p.terms) }

func (p *Poly) IsZero() bool { return len(p.terms) == 0 }

// IsConstant reports whether p has no terms other than x^0.
func (p *Poly) IsConstant() bool {
	for e := range p.terms {
		if e.Sign() != 0 {
			return false
		}
	}
	return true
}

// integral reports whether every exponent of p is an integer.
func (p *Poly) integral() bool {
	for e := range p.terms {
		if !e.IsInt() {
			return false
		}
	}
	return true
}

// Degree returns the largest exponent of p.
func (p *Poly) Degree() (Exp, error) {
	if p.IsZero() {
		return Exp{}, errorf(ErrZeroPolynomial, "degree")
	}
	return slices.MaxFunc(p.Exponents(), Exp.Cmp), nil
}

// LowDegree returns the smallest exponent of p.
func (p *Poly) LowDegree() (Exp, error) {
	if p.IsZero() {
		return Exp{}, errorf(ErrZeroPolynomial, "low degree")
	}
	return slices.MinFunc(p.Exponents(), Exp.Cmp), nil
}

// ============================================================
// Arithmetic
// ============================================================

func (p *Poly) compatible(o *Poly) error {
	if o == nil {
		return errorf(ErrUnsupportedOperation, "nil polynomial operand")
	}
	if p.v != o.v {
		return errorf(ErrIncompatibleOperands, "variable %q vs %q", p.v, o.v)
	}
	return nil
}

// Add returns p + o.
func (p *Poly) Add(o *Poly) (*Poly, error) {
	if err := p.compatible(o); err != nil {
		return nil, err
	}
	sum := maps.Clone(p.terms)
	for e, c := range o.terms {
		sum[e] = sum[e].Add(c)
	}
	return p.derive(sum), nil
}

// Sub returns p - o.
func (p *Poly) Sub(o *Poly) (*Poly, error) {
	if err := p.compatible(o); err != nil {
		return nil, err
	}
	diff := maps.Clone(p.terms)
	for e, c := range o.terms {
		diff[e] = diff[e].Sub(c)
	}
	return p.derive(diff), nil
}

// Mul returns p * o, where o is a *Poly or a Num.
func (p *Poly) Mul(o Operand) (*Poly, error) {
	switch v := o.(type) {
	case *Poly:
		if err := p.compatible(v); err != nil {
			return nil, err
		}
		return p.mul(v)
	case Num:
		return p.Scale(v), nil
	}
	return nil, errorf(ErrUnsupportedOperation, "multiply by %T", o)
}

func (p *Poly) mul(o *Poly) (*Poly, error) {
	prod := make(map[Exp]Num, len(p.terms)*len(o.terms))
	for e1, c1 := range p.terms {
		for e2, c2 := range o.terms {
			e, err := e1.Add(e2)
			if err != nil {
				return nil, err
			}
			prod[e] = prod[e].Add(c1.Mul(c2))
		}
	}
	return p.derive(prod), nil
}

// Scale returns s * p.
func (p *Poly) Scale(s Num) *Poly {
	scaled := make(map[Exp]Num, len(p.terms))
	for e, c := range p.terms {
		scaled[e] = c.Mul(s)
	}
	return p.derive(scaled)
}

func (p *Poly) Neg() *Poly { return p.Scale(Int(-1)) }

// Pow returns p^n for n >= 0. p^0 is the constant 1 in p's variable.
// An exponent that leaves the int64 range fails with
// ErrUnsupportedOperation.
func (p *Poly) Pow(n int) (*Poly, error) {
	switch {
	case n < 0:
		return nil, errorf(ErrUnsupportedOperation, "negative power %d", n)
	case n == 0:
		return Constant(Int(1), WithVar(p.v)), nil
	case n == 1:
		return p, nil
	}
	acc := p
	for i := 1; i < n; i++ {
		var err error
		if acc, err = acc.mul(p); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Equal compares exponent -> coefficient maps; variable labels are not
// compared. Against a Num, p is equal when it is constant and its x^0
// coefficient (0 if absent) equals the Num.
func (p *Poly) Equal(o Operand) bool {
	switch v := o.(type) {
	case Num:
		return p.IsConstant() && p.Coeff(0).equal(v)
	case *Poly:
		if v == nil || len(p.terms) != len(v.terms) {
			return false
		}
		for e, c := range p.terms {
			c2, ok := v.terms[e]
			if !ok || !c.equal(c2) {
				return false
			}
		}
		return true
	}
	return false
}

// ============================================================
// Evaluation
// ============================================================

func ipow[T float64 | complex128](x T, e int64) T {
	u := uint64(e)
	if e < 0 {
		u = uint64(-e)
	}
	r := T(1)
	for u > 0 {
		if u&1 == 1 {
			r *= x
		}
		x *= x
		u >>= 1
	}
	if e < 0 {
		return 1 / r
	}
	return r
}

func powFloat(x float64, e Exp) float64 {
	if n, ok := e.Int(); ok {
		return ipow(x, n)
	}
	return math.Pow(x, e.Float64())
}

// powComplex uses the principal branch for fractional exponents.
func powComplex(x complex128, e Exp) complex128 {
	if n, ok := e.Int(); ok {
		return ipow(x, n)
	}
	return cmplx.Pow(x, complex(e.Float64(), 0))
}

// Eval returns the sum of c*x^e over p's terms.
func (p *Poly) Eval(x complex128) complex128 {
	var sum complex128
	for e, c := range p.terms {
		sum += c.Complex128() * powComplex(x, e)
	}
	return sum
}

// EvalFloat is Eval restricted to the real line. A fractional exponent
// at negative x yields NaN.
func (p *Poly) EvalFloat(x float64) float64 {
	var sum float64
	for e, c := range p.terms {
		sum += c.Float64() * powFloat(x, e)
	}
	return sum
}

// EvalExact evaluates p at the rational x. Integer powers are exact, so
// the result is exact when every coefficient is exact and every exponent
// is an integer. Fractional powers are computed in float64 and fail with
// ErrUnsupportedOperation for negative x.
func (p *Poly) EvalExact(x *big.Rat) (Num, error) {
	sum := Int(0)
	for _, e := range p.Exponents() {
		xe, err := ratPow(x, e)
		if err != nil {
			return Num{}, err
		}
		sum = sum.Add(p.terms[e].Mul(xe))
	}
	return sum, nil
}

func ratPow(x *big.Rat, e Exp) (Num, error) {
	if x.Sign() == 0 && e.Sign() < 0 {
		return Num{}, errorf(ErrDivisionByZero, "0^%s", e)
	}
	n, ok := e.Int()
	if !ok {
		if x.Sign() < 0 {
			return Num{}, errorf(ErrUnsupportedOperation, "(%s)^(%s) is not real", x.RatString(), e)
		}
		xf, _ := x.Float64()
		return Float(math.Pow(xf, e.Float64())), nil
	}
	base := new(big.Rat).Set(x)
	u := uint64(n)
	if n < 0 {
		base.Inv(base)
		u = uint64(-n)
	}
	r := big.NewRat(1, 1)
	for u > 0 {
		if u&1 == 1 {
			r.Mul(r, base)
		}
		u >>= 1
		if u > 0 {
			base.Mul(base, base)
		}
	}
	return Num{rat: r}, nil
}

// QValue is the result of QEval.
type QValue struct {
	Q     complex128 // exp(i*pi*t)
	Value complex128
	Real  bool // q was replaced by the real number Re(q)
}

func (v QValue) Float64() float64 { return real(v.Value) }

func (v QValue) String() string {
	if imag(v.Value) == 0 {
		return strconv.FormatFloat(real(v.Value), 'g', -1, 64)
	}
	return strconv.FormatComplex(v.Value, 'g', -1, 128)
}

// QEval evaluates p at the modular parameter q = exp(i*pi*t). When
// |Im q| < 1e-14, q is replaced by Re q and p is evaluated on the real
// line, so QEval(0) evaluates at 1 and QEval(1) at -1. Fractional
// exponents at Re q < 0 take the principal complex branch.
func (p *Poly) QEval(t float64, opts ...Option) QValue {
	o := buildOptions(opts)
	q := cmplx.Exp(complex(0, math.Pi*t))
	o.log.Debug("modular parameter",
		zap.Float64("t", t),
		zap.Float64("q_re", real(q)),
		zap.Float64("q_im", imag(q)))
	if math.Abs(imag(q)) < qTolerance {
		re := real(q)
		if re < 0 && !p.integral() {
			return QValue{Q: q, Value: p.Eval(complex(re, 0)), Real: true}
		}
		return QValue{Q: q, Value: complex(p.EvalFloat(re), 0), Real: true}
	}
	return QValue{Q: q, Value: p.Eval(q)}
}

// ============================================================
// Rendering
// ============================================================

// String renders p in ascending exponent order, e.g. "3/x + 2 - x" for
// -3/x + 2 - x. Terms after the first are joined by " + " or " - "
// according to sign; the first term is written by magnitude. Fractional
// exponents are parenthesised: "x^(1/2)".
func (p *Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	var b strings.Builder
	for i, e := range p.Exponents() {
		c := p.terms[e]
		if i > 0 {
			if c.Sign() > 0 {
				b.WriteString(" + ")
			} else {
				b.WriteString(" - ")
			}
		}
		mag := c.Abs()
		coef := mag.String()
		if mag.IsExact() && !mag.IsInteger() {
			coef = "(" + coef + ")"
		}
		pow := e.magnitude()
		if !e.IsInt() {
			pow = "(" + pow + ")"
		}
		switch e.Sign() {
		case 0:
			b.WriteString(mag.String())
		case 1:
			if !mag.isOne() {
				b.WriteString(coef)
			}
			b.WriteString(p.v)
			if !e.isUnit() {
				b.WriteString("^" + pow)
			}
		default:
			if mag.isOne() {
				b.WriteString("1")
			} else {
				b.WriteString(coef)
			}
			b.WriteString("/" + p.v)
			if !e.isUnit() {
				b.WriteString("^" + pow)
			}
		}
	}
	return b.String()
}

// GoString renders the raw exponent -> coefficient map.
func (p *Poly) GoString() string {
	parts := make([]string, 0, len(p.terms))
	for _, e := range p.Exponents() {
		parts = append(parts, fmt.Sprintf("%s: %s", e, p.terms[e]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
