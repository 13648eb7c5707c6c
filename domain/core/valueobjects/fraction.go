package valueobjects

import (
	"fmt"
	"math/big"
	"strings"

	pkgerrors "conceptbase/pkg/errors"
)

// Fraction is an exact non-negative rational in [0,1], used for both
// probability and confidence. All arithmetic stays in big integers so that
// products along deep inference chains never lose precision. Fractions are
// not normalized to lowest terms; equality is semantic (cross-multiplied).
type Fraction struct {
	num *big.Int
	den *big.Int
}

// NewFraction builds a fraction from an unsigned numerator/denominator pair.
// It fails when the denominator is zero or the numerator exceeds the
// denominator, which keeps every constructed value inside [0,1].
func NewFraction(numerator, denominator uint64) (Fraction, error) {
	if denominator == 0 {
		return Fraction{}, pkgerrors.NewFieldValidationError(
			pkgerrors.CodeFractionOutOfRange,
			"fraction denominator must be at least 1",
			"denominator", ">= 1", denominator,
		)
	}
	if numerator > denominator {
		return Fraction{}, pkgerrors.NewFieldValidationError(
			pkgerrors.CodeFractionOutOfRange,
			fmt.Sprintf("fraction %d/%d exceeds 1", numerator, denominator),
			"numerator", "<= denominator", numerator,
		)
	}
	return Fraction{
		num: new(big.Int).SetUint64(numerator),
		den: new(big.Int).SetUint64(denominator),
	}, nil
}

// MustFraction builds a fraction and panics on invalid input. For constants
// and tests only.
func MustFraction(numerator, denominator uint64) Fraction {
	f, err := NewFraction(numerator, denominator)
	if err != nil {
		panic(err)
	}
	return f
}

// ZeroFraction returns 0/1.
func ZeroFraction() Fraction {
	return Fraction{num: big.NewInt(0), den: big.NewInt(1)}
}

// OneFraction returns 1/1.
func OneFraction() Fraction {
	return Fraction{num: big.NewInt(1), den: big.NewInt(1)}
}

// components treats the zero value as 0/1 so comparisons on uninitialized
// fractions stay well defined.
func (f Fraction) components() (*big.Int, *big.Int) {
	if f.num == nil || f.den == nil {
		return big.NewInt(0), big.NewInt(1)
	}
	return f.num, f.den
}

// Numerator returns a copy of the numerator.
func (f Fraction) Numerator() *big.Int {
	n, _ := f.components()
	return new(big.Int).Set(n)
}

// Denominator returns a copy of the denominator.
func (f Fraction) Denominator() *big.Int {
	_, d := f.components()
	return new(big.Int).Set(d)
}

// Mul multiplies two fractions. Both operands are in [0,1], so the result is
// too.
func (f Fraction) Mul(other Fraction) Fraction {
	an, ad := f.components()
	bn, bd := other.components()
	return Fraction{
		num: new(big.Int).Mul(an, bn),
		den: new(big.Int).Mul(ad, bd),
	}
}

// Cmp compares two fractions by cross-multiplication, never dividing:
// a/b <= c/d iff a*d <= c*b. It returns -1, 0, or +1.
func (f Fraction) Cmp(other Fraction) int {
	an, ad := f.components()
	bn, bd := other.components()
	left := new(big.Int).Mul(an, bd)
	right := new(big.Int).Mul(bn, ad)
	return left.Cmp(right)
}

// Equals reports semantic equality: 1/2 equals 2/4.
func (f Fraction) Equals(other Fraction) bool {
	return f.Cmp(other) == 0
}

// AtLeast reports f >= other.
func (f Fraction) AtLeast(other Fraction) bool {
	return f.Cmp(other) >= 0
}

// AtMost reports f <= other.
func (f Fraction) AtMost(other Fraction) bool {
	return f.Cmp(other) <= 0
}

// LessThan reports f < other.
func (f Fraction) LessThan(other Fraction) bool {
	return f.Cmp(other) < 0
}

// MinCombine returns the smaller of the two fractions expressed over the
// common denominator a.den*b.den. Used to combine confidences along a
// derivation chain, so a chain is never more trusted than its weakest edge.
func MinCombine(a, b Fraction) Fraction {
	an, ad := a.components()
	bn, bd := b.components()
	left := new(big.Int).Mul(an, bd)
	right := new(big.Int).Mul(bn, ad)
	den := new(big.Int).Mul(ad, bd)
	if left.Cmp(right) <= 0 {
		return Fraction{num: left, den: den}
	}
	return Fraction{num: right, den: den}
}

// Clone returns an independent copy.
func (f Fraction) Clone() Fraction {
	n, d := f.components()
	return Fraction{num: new(big.Int).Set(n), den: new(big.Int).Set(d)}
}

// String renders the fraction as "n/d".
func (f Fraction) String() string {
	n, d := f.components()
	return fmt.Sprintf("%s/%s", n.String(), d.String())
}

// MarshalJSON encodes the fraction as the string "n/d".
func (f Fraction) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", f.String())), nil
}

// UnmarshalJSON decodes the "n/d" string form.
func (f *Fraction) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseFraction(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFraction parses the "n/d" string form. The components may exceed 64
// bits; derived fractions from deep chains round-trip unchanged.
func ParseFraction(s string) (Fraction, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return Fraction{}, pkgerrors.NewValidationError(
			pkgerrors.CodeFractionOutOfRange,
			fmt.Sprintf("malformed fraction %q, want n/d", s),
		)
	}
	num, ok := new(big.Int).SetString(strings.TrimSpace(parts[0]), 10)
	if !ok || num.Sign() < 0 {
		return Fraction{}, pkgerrors.NewValidationError(
			pkgerrors.CodeFractionOutOfRange,
			fmt.Sprintf("malformed fraction numerator %q", parts[0]),
		)
	}
	den, ok := new(big.Int).SetString(strings.TrimSpace(parts[1]), 10)
	if !ok || den.Sign() <= 0 {
		return Fraction{}, pkgerrors.NewValidationError(
			pkgerrors.CodeFractionOutOfRange,
			fmt.Sprintf("malformed fraction denominator %q", parts[1]),
		)
	}
	if num.Cmp(den) > 0 {
		return Fraction{}, pkgerrors.NewValidationError(
			pkgerrors.CodeFractionOutOfRange,
			fmt.Sprintf("fraction %s exceeds 1", s),
		)
	}
	return Fraction{num: num, den: den}, nil
}
