package qforms

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// maxDiscriminant keeps b^2 + D inside int64 for every b the search visits.
const maxDiscriminant = math.MaxInt64 / 2

// ReducedForm is the binary quadratic form a*x^2 + b*x*y + c*y^2.
type ReducedForm struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
	C int64 `json:"c"`
}

// Discriminant returns b^2 - 4ac.
func (f ReducedForm) Discriminant() int64 { return f.B*f.B - 4*f.A*f.C }

// IsReduced reports whether |b| <= a <= c.
func (f ReducedForm) IsReduced() bool {
	b := f.B
	if b < 0 {
		b = -b
	}
	return b <= f.A && f.A <= f.C
}

func (f ReducedForm) String() string { return fmt.Sprintf("(%d, %d, %d)", f.A, f.B, f.C) }

// MaxB returns floor(sqrt(D/3)). Every reduced form of discriminant -D has
// |b| <= MaxB(D), since 4b^2 <= 4ac = b^2 + D.
func MaxB(D int64) int64 {
	if D < 3 {
		return 0
	}
	return isqrt(D / 3)
}

// ClassNumber counts the reduced forms of discriminant -D.
//
// With the default CountParity mode it walks b = 0..MaxB(D), keeps the b
// for which b^2 + D is divisible by 4, and counts every divisor pair (a, c)
// of (b^2 + D)/4 with a >= b and c >= b. Forms with negative b are not
// counted, so the result can be below the true class number
// (ClassNumber(47) = 3 while h(-47) = 5). WithMode(CountProper) returns
// h(-D) instead.
func ClassNumber(D int64, opts ...Option) (int, error) {
	forms, err := reducedForms(D, buildOptions(opts))
	if err != nil {
		return 0, err
	}
	return len(forms), nil
}

// ReducedForms returns the forms ClassNumber counts, in search order.
// In CountProper mode each mirror (a, -b, c) directly follows (a, b, c).
func ReducedForms(D int64, opts ...Option) ([]ReducedForm, error) {
	return reducedForms(D, buildOptions(opts))
}

func reducedForms(D int64, o options) ([]ReducedForm, error) {
	if D <= 0 || D > maxDiscriminant {
		return nil, errorf(ErrInvalidArgument, "discriminant -%d", D)
	}
	bMax := MaxB(D)
	o.log.Debug("class number search",
		zap.Int64("d", D),
		zap.Int64("max_abs_b", bMax),
		zap.Stringer("mode", o.mode))

	var forms []ReducedForm
	for b := int64(0); b <= bMax; b++ {
		t := b*b + D
		if t%4 != 0 {
			continue
		}
		pairs, err := FactorPairs(t / 4)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			a, c := p.Small, p.Large
			if a < b || c < b {
				continue
			}
			if o.mode == CountProper && gcd(gcd(a, b), c) != 1 {
				continue
			}
			o.log.Debug("reduced form", zap.Int64("b", b), zap.Int64("a", a), zap.Int64("c", c))
			forms = append(forms, ReducedForm{A: a, B: b, C: c})
			// (a, -b, c) is reduced and inequivalent unless it sits on the
			// boundary |b| = a or a = c.
			if o.mode == CountProper && b > 0 && b < a && a < c {
				forms = append(forms, ReducedForm{A: a, B: -b, C: c})
			}
		}
	}
	return forms, nil
}
