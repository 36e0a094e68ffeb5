// Package qforms provides two small number-theory engines.
//
// Class numbers: FactorPairs enumerates divisor pairs, and ClassNumber
// counts the reduced binary quadratic forms (a, b, c), |b| <= a <= c, of
// discriminant b^2 - 4ac = -D by a bounded search over b. Table memoises
// class numbers and computes ranges of discriminants concurrently.
//
// Polynomials: Poly is a sparse single-variable Laurent polynomial with
// exact (math/big.Rat) or float coefficients. It supports addition,
// subtraction, multiplication by polynomials and scalars, non-negative
// integer powers, evaluation at real, complex and exact rational points,
// and evaluation at the modular parameter q = exp(i*pi*t).
//
// Design goals:
//   - Exact arithmetic where the inputs are exact
//   - Immutable values and deterministic output
//   - JSON tool interface (Tools, ToolSpec) for services and agents
package qforms
