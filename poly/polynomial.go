package poly

import (
	"math/big"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// Polynomial is a dense univariate polynomial over F, coefficients in
// increasing degree order, padded to a power of two length.
type Polynomial struct {
	Coeffs []field.Element
}

// New builds a Polynomial from coefficients, padding to the next power
// of two.
func New(coeffs []field.Element) Polynomial {
	n := nextPow2(uint64(maxInt(len(coeffs), 1)))
	padded := make([]field.Element, n)
	copy(padded, coeffs)
	return Polynomial{Coeffs: padded}
}

// Degree returns the index of the highest non-zero coefficient, or 0 for
// the zero polynomial.
func (p Polynomial) Degree() int {
	for i := len(p.Coeffs) - 1; i > 0; i-- {
		if !p.Coeffs[i].IsZero() {
			return i
		}
	}
	return 0
}

// Eval evaluates p at x via Horner's method.
func (p Polynomial) Eval(x field.Element) field.Element {
	acc := field.Zero()
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		acc = field.Add(field.Mul(acc, x), p.Coeffs[i])
	}
	return acc
}

// Add returns p+q, padded to the larger of the two lengths.
func Add(p, q Polynomial) Polynomial {
	n := maxInt(len(p.Coeffs), len(q.Coeffs))
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		var a, b field.Element
		if i < len(p.Coeffs) {
			a = p.Coeffs[i]
		}
		if i < len(q.Coeffs) {
			b = q.Coeffs[i]
		}
		out[i] = field.Add(a, b)
	}
	return Polynomial{Coeffs: out}
}

// Sub returns p-q.
func Sub(p, q Polynomial) Polynomial {
	n := maxInt(len(p.Coeffs), len(q.Coeffs))
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		var a, b field.Element
		if i < len(p.Coeffs) {
			a = p.Coeffs[i]
		}
		if i < len(q.Coeffs) {
			b = q.Coeffs[i]
		}
		out[i] = field.Sub(a, b)
	}
	return Polynomial{Coeffs: out}
}

// ScalarMul returns c*p.
func ScalarMul(c field.Element, p Polynomial) Polynomial {
	out := make([]field.Element, len(p.Coeffs))
	for i := range p.Coeffs {
		out[i] = field.Mul(c, p.Coeffs[i])
	}
	return Polynomial{Coeffs: out}
}

// VanishingPolynomial returns t_n(X) = X^n - 1.
func VanishingPolynomial(n uint64) Polynomial {
	coeffs := make([]field.Element, n+1)
	coeffs[0] = field.Neg(field.One())
	coeffs[n] = field.One()
	return New(coeffs)
}

// DivideByVanishing divides p by t_n(X) = X^n-1 on a coset, the
// standard route to the Groth16 H-polynomial: evaluate p and t_n on a
// multiplicative coset of the evaluation domain of p's degree (where
// t_n never vanishes), divide pointwise, and interpolate the quotient
// back. p is assumed to vanish on the plain domain of size n, so the
// division is exact; callers that violate this see the remainder
// silently folded into the returned quotient. Nothing in this module
// calls it; groth16 computes its H-polynomial with its own coset
// division.
func DivideByVanishing(p Polynomial, n uint64) Polynomial {
	domSize := nextPow2(uint64(len(p.Coeffs)))
	if domSize < n {
		domSize = n
	}
	dom := NewDomain(domSize)

	coeffs := make([]field.Element, domSize)
	copy(coeffs, p.Coeffs)
	evals := dom.CosetNTT(coeffs)

	g := dom.inner.FrMultiplicativeGen
	shift := field.Element{Element: g}
	shiftPowN := field.Pow(shift, new(big.Int).SetUint64(n))

	domGen := dom.Generator()
	tEvals := make([]field.Element, domSize)
	pow := shiftPowN
	genPowN := field.Pow(domGen, new(big.Int).SetUint64(n))
	for i := uint64(0); i < domSize; i++ {
		tEvals[i] = field.Sub(pow, field.One())
		pow = field.Mul(pow, genPowN)
	}

	quotientEvals := make([]field.Element, domSize)
	for i := range quotientEvals {
		quotientEvals[i] = field.Mul(evals[i], field.Inverse(tEvals[i]))
	}

	qCoeffs := dom.CosetINTT(quotientEvals)
	return New(qCoeffs)
}

// DivideLinear computes (p(X)-p(z))/(X-z) via synthetic division, the
// KZG opening quotient for a single evaluation point.
func DivideLinear(p Polynomial, z field.Element) Polynomial {
	f := make([]field.Element, len(p.Coeffs))
	copy(f, p.Coeffs)
	f[0] = field.Sub(f[0], p.Eval(z))

	c := field.Zero()
	for i := len(f) - 1; i >= 0; i-- {
		t := field.Mul(c, z)
		f[i] = field.Add(f[i], t)
		c, f[i] = f[i], c
	}
	return Polynomial{Coeffs: f[:len(f)-1]}
}

// maxInt is a small local helper; the stdlib max(int,int) generic isn't
// assumed available under the module's Go version floor.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
