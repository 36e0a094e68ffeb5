package qforms

import "math"

// DivisorPair is an ordered factorisation n = Small * Large with
// Small <= Large.
type DivisorPair struct {
	Small int64 `json:"small"`
	Large int64 `json:"large"`
}

// FactorPairs returns every divisor pair of n: (1, n) first, then
// (i, n/i) for each divisor 2 <= i <= isqrt(n) in ascending order.
// A perfect square contributes its root pair exactly once.
func FactorPairs(n int64) ([]DivisorPair, error) {
	if n <= 0 {
		return nil, errorf(ErrInvalidArgument, "factor pairs of %d", n)
	}
	r := isqrt(n)
	out := []DivisorPair{{Small: 1, Large: n}}
	for i := int64(2); i <= r; i++ {
		if n%i == 0 {
			out = append(out, DivisorPair{Small: i, Large: n / i})
		}
	}
	return out, nil
}

// isqrt returns floor(sqrt(n)) for n >= 0, correcting the float estimate
// so large inputs do not drift.
func isqrt(n int64) int64 {
	if n < 2 {
		return n
	}
	r := int64(math.Sqrt(float64(n)))
	for r > n/r {
		r--
	}
	for r+1 <= n/(r+1) {
		r++
	}
	return r
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
