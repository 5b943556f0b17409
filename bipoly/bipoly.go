// Package bipoly implements dense bivariate polynomials P(X,Y) over the
// BLS12-381 scalar field.
//
// Modeled after a generic DensePolynomialExt over an icicle FieldImpl,
// ported to a concrete, monomorphic Go type since field.Element is the
// only scalar type this module ever needs.
package bipoly

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/poly"
)

// ErrNotDivisible is returned by DivByVanishing when P does not vanish
// on the (n,s) roots-of-unity grid.
var ErrNotDivisible = errors.New("bipoly: polynomial does not vanish on the requested grid")

// BivariatePoly is a dense x_size*y_size coefficient grid, row-major by
// Y: Coeffs[y*XSize+x]. XSize and YSize are always powers of two.
type BivariatePoly struct {
	Coeffs           []field.Element
	XSize, YSize     int
	XDegree, YDegree int
}

func at(x, y, xSize int) int { return y*xSize + x }

// FromCoeffs constructs a BivariatePoly from a row-major xSize*ySize
// grid (grid[y*xSize+x]), rounding xSize/ySize up to powers of two.
func FromCoeffs(grid []field.Element, xSize, ySize int) *BivariatePoly {
	px, py := nextPow2(xSize), nextPow2(ySize)
	coeffs := make([]field.Element, px*py)
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			coeffs[at(x, y, px)] = grid[y*xSize+x]
		}
	}
	p := &BivariatePoly{Coeffs: coeffs, XSize: px, YSize: py}
	p.computeDegrees()
	return p
}

// FromROUEvals builds a BivariatePoly from point-values on the
// xSize*ySize roots-of-unity grid: INTT along X per row, then INTT
// along Y per column.
func FromROUEvals(evals []field.Element, xSize, ySize int) *BivariatePoly {
	px, py := nextPow2(xSize), nextPow2(ySize)
	grid := make([]field.Element, px*py)
	copy(grid, evals)

	domX := poly.NewDomain(uint64(px))
	for y := 0; y < py; y++ {
		row := grid[y*px : (y+1)*px]
		coeffs := domX.INTT(row)
		copy(row, coeffs)
	}

	domY := poly.NewDomain(uint64(py))
	col := make([]field.Element, py)
	for x := 0; x < px; x++ {
		for y := 0; y < py; y++ {
			col[y] = grid[at(x, y, px)]
		}
		coeffs := domY.INTT(col)
		for y := 0; y < py; y++ {
			grid[at(x, y, px)] = coeffs[y]
		}
	}

	p := &BivariatePoly{Coeffs: grid, XSize: px, YSize: py}
	p.computeDegrees()
	return p
}

// ToROUEvals evaluates p on its own xSize*ySize roots-of-unity grid,
// the forward transform symmetric to FromROUEvals.
func (p *BivariatePoly) ToROUEvals() []field.Element {
	grid := make([]field.Element, len(p.Coeffs))
	copy(grid, p.Coeffs)

	domY := poly.NewDomain(uint64(p.YSize))
	col := make([]field.Element, p.YSize)
	for x := 0; x < p.XSize; x++ {
		for y := 0; y < p.YSize; y++ {
			col[y] = grid[at(x, y, p.XSize)]
		}
		vals := domY.NTT(col)
		for y := 0; y < p.YSize; y++ {
			grid[at(x, y, p.XSize)] = vals[y]
		}
	}

	domX := poly.NewDomain(uint64(p.XSize))
	for y := 0; y < p.YSize; y++ {
		row := grid[y*p.XSize : (y+1)*p.XSize]
		vals := domX.NTT(row)
		copy(row, vals)
	}
	return grid
}

// computeDegrees sets YDegree to the highest row holding a non-zero
// coefficient and XDegree to the highest non-zero column across all
// rows, i.e. the tight bounding box of the non-zero coefficients.
func (p *BivariatePoly) computeDegrees() {
	p.XDegree, p.YDegree = 0, 0
	for y := p.YSize - 1; y >= 0; y-- {
		highestX := -1
		for x := p.XSize - 1; x >= 0; x-- {
			if !p.Coeffs[at(x, y, p.XSize)].IsZero() {
				highestX = x
				break
			}
		}
		if highestX >= 0 {
			if y > p.YDegree {
				p.YDegree = y
			}
			if highestX > p.XDegree {
				p.XDegree = highestX
			}
		}
	}
}

// rowAsPoly extracts row y as a univariate polynomial in X.
func (p *BivariatePoly) rowAsPoly(y int) poly.Polynomial {
	coeffs := make([]field.Element, p.XSize)
	copy(coeffs, p.Coeffs[y*p.XSize:(y+1)*p.XSize])
	return poly.Polynomial{Coeffs: coeffs}
}

// evalX partially evaluates p at X=x, returning the coefficients of the
// resulting polynomial in Y.
func (p *BivariatePoly) evalX(x field.Element) []field.Element {
	out := make([]field.Element, p.YSize)
	for y := 0; y < p.YSize; y++ {
		out[y] = p.rowAsPoly(y).Eval(x)
	}
	return out
}

// Eval evaluates p(x,y): partial evaluation in X first, then in Y.
func (p *BivariatePoly) Eval(x, y field.Element) field.Element {
	yCoeffs := p.evalX(x)
	return poly.Polynomial{Coeffs: yCoeffs}.Eval(y)
}

// EvalPartialX evaluates p at a fixed X=x and returns the remaining
// univariate polynomial in Y.
func (p *BivariatePoly) EvalPartialX(x field.Element) poly.Polynomial {
	return poly.New(p.evalX(x))
}

// Mul returns p*other via FFT zero-padding: both operands are extended
// to a grid large enough to hold the product's degree, evaluated
// pointwise, multiplied, and interpolated back.
func (p *BivariatePoly) Mul(other *BivariatePoly) *BivariatePoly {
	xSize := nextPow2(p.XDegree + other.XDegree + 1)
	ySize := nextPow2(p.YDegree + other.YDegree + 1)
	if xSize < p.XSize {
		xSize = p.XSize
	}
	if xSize < other.XSize {
		xSize = other.XSize
	}
	if ySize < p.YSize {
		ySize = p.YSize
	}
	if ySize < other.YSize {
		ySize = other.YSize
	}

	pe := p.resized(xSize, ySize)
	oe := other.resized(xSize, ySize)

	pEvals := pe.ToROUEvals()
	oEvals := oe.ToROUEvals()

	prod := make([]field.Element, len(pEvals))
	for i := range prod {
		prod[i] = field.Mul(pEvals[i], oEvals[i])
	}
	return FromROUEvals(prod, xSize, ySize)
}

// resized returns a copy of p zero-padded to the given grid size.
// Shrinking below the current degree is the caller's responsibility to
// avoid; resized never inspects degrees, only iterates the overlap.
func (p *BivariatePoly) resized(xSize, ySize int) *BivariatePoly {
	if xSize == p.XSize && ySize == p.YSize {
		cp := make([]field.Element, len(p.Coeffs))
		copy(cp, p.Coeffs)
		return &BivariatePoly{Coeffs: cp, XSize: p.XSize, YSize: p.YSize, XDegree: p.XDegree, YDegree: p.YDegree}
	}
	out := make([]field.Element, xSize*ySize)
	for y := 0; y < p.YSize && y < ySize; y++ {
		for x := 0; x < p.XSize && x < xSize; x++ {
			out[y*xSize+x] = p.Coeffs[at(x, y, p.XSize)]
		}
	}
	np := &BivariatePoly{Coeffs: out, XSize: xSize, YSize: ySize}
	np.computeDegrees()
	return np
}

// trimmed shrinks p's grid back down to the smallest power-of-two
// bounding box around its actual degree.
func (p *BivariatePoly) trimmed() *BivariatePoly {
	xSize := nextPow2(p.XDegree + 1)
	ySize := nextPow2(p.YDegree + 1)
	return p.resized(xSize, ySize)
}

// MulMonomial shifts coefficients by (i,j), equivalent to multiplying
// by X^i*Y^j, resizing the grid as needed.
func (p *BivariatePoly) MulMonomial(i, j int) *BivariatePoly {
	xSize := nextPow2(p.XDegree + i + 1)
	ySize := nextPow2(p.YDegree + j + 1)
	if xSize < p.XSize {
		xSize = p.XSize
	}
	if ySize < p.YSize {
		ySize = p.YSize
	}
	out := make([]field.Element, xSize*ySize)
	for y := 0; y <= p.YDegree; y++ {
		for x := 0; x <= p.XDegree; x++ {
			v := p.Coeffs[at(x, y, p.XSize)]
			if v.IsZero() {
				continue
			}
			out[(y+j)*xSize+(x+i)] = v
		}
	}
	np := &BivariatePoly{Coeffs: out, XSize: xSize, YSize: ySize}
	np.computeDegrees()
	return np
}

// Add returns p+q.
func Add(p, q *BivariatePoly) *BivariatePoly {
	xSize := maxInt(p.XSize, q.XSize)
	ySize := maxInt(p.YSize, q.YSize)
	pe, qe := p.resized(xSize, ySize), q.resized(xSize, ySize)
	out := make([]field.Element, xSize*ySize)
	for i := range out {
		out[i] = field.Add(pe.Coeffs[i], qe.Coeffs[i])
	}
	np := &BivariatePoly{Coeffs: out, XSize: xSize, YSize: ySize}
	np.computeDegrees()
	return np
}

// Sub returns p-q.
func Sub(p, q *BivariatePoly) *BivariatePoly {
	xSize := maxInt(p.XSize, q.XSize)
	ySize := maxInt(p.YSize, q.YSize)
	pe, qe := p.resized(xSize, ySize), q.resized(xSize, ySize)
	out := make([]field.Element, xSize*ySize)
	for i := range out {
		out[i] = field.Sub(pe.Coeffs[i], qe.Coeffs[i])
	}
	np := &BivariatePoly{Coeffs: out, XSize: xSize, YSize: ySize}
	np.computeDegrees()
	return np
}

// ScalarMul returns c*p.
func ScalarMul(c field.Element, p *BivariatePoly) *BivariatePoly {
	out := make([]field.Element, len(p.Coeffs))
	for i, v := range p.Coeffs {
		out[i] = field.Mul(c, v)
	}
	return &BivariatePoly{Coeffs: out, XSize: p.XSize, YSize: p.YSize, XDegree: p.XDegree, YDegree: p.YDegree}
}

// cosetGenerator shifts evaluation off the roots-of-unity grid so that
// X^n-1 and Y^s-1 are non-zero, and hence invertible, at every sample
// point. 5 is not a root of unity of any power-of-two order this
// package deals with, the same role gnark-crypto's FrMultiplicativeGen
// plays for univariate cosets.
const cosetGenerator = 5

// DivByVanishing returns (q0, q1) such that P = q0*(X^n-1) + q1*(Y^s-1),
// assuming P vanishes on the (n,s) roots-of-unity grid. The grid is
// evaluated on a coset of twice its size so the vanishing polynomials
// never hit zero and can be inverted pointwise; the quotient in X is
// extracted first, and whatever of P is left over after subtracting
// q0*(X^n-1) is attributed entirely to q1 -- the "attribute to X first,
// residue to Y" tie-break (see DESIGN.md, "div-by-vanishing tie-break").
func (p *BivariatePoly) DivByVanishing(n, s int) (q0, q1 *BivariatePoly, err error) {
	if !isPow2(n) || !isPow2(s) {
		return nil, nil, fmt.Errorf("bipoly: n=%d, s=%d must be powers of two", n, s)
	}

	cosetXSize := maxInt(p.XSize, 2*n)
	cosetYSize := maxInt(p.YSize, 2*s)
	pe := p.resized(cosetXSize, cosetYSize)

	shift := field.FromUint64(cosetGenerator)
	shiftedEvals := cosetEvaluate(pe, shift)

	invTX := invertVanishingOnCoset(cosetXSize, n, shift)
	qXEvals := make([]field.Element, len(shiftedEvals))
	for y := 0; y < cosetYSize; y++ {
		for x := 0; x < cosetXSize; x++ {
			qXEvals[y*cosetXSize+x] = field.Mul(shiftedEvals[y*cosetXSize+x], invTX[x])
		}
	}
	q0Full := cosetInterpolate(qXEvals, cosetXSize, cosetYSize, shift)

	tn := tensorVanishingX(n, cosetXSize, cosetYSize)
	residue := Sub(pe, q0Full.Mul(tn))

	residueEvals := cosetEvaluate(residue.resized(cosetXSize, cosetYSize), shift)
	invTY := invertVanishingOnCoset(cosetYSize, s, shift)
	qYEvals := make([]field.Element, len(residueEvals))
	for y := 0; y < cosetYSize; y++ {
		for x := 0; x < cosetXSize; x++ {
			qYEvals[y*cosetXSize+x] = field.Mul(residueEvals[y*cosetXSize+x], invTY[y])
		}
	}
	q1Full := cosetInterpolate(qYEvals, cosetXSize, cosetYSize, shift)

	ts := tensorVanishingY(s, cosetXSize, cosetYSize)
	check := Add(q0Full.Mul(tn), q1Full.Mul(ts))
	if !equalGrids(check, pe) {
		return nil, nil, ErrNotDivisible
	}

	return q0Full.trimmed(), q1Full.trimmed(), nil
}

// cosetEvaluate returns p's point-values on the grid shift*<g_x> x
// shift*<g_y>, via the standard "scale coefficients by powers of the
// shift, then transform on the root-of-unity grid" trick.
func cosetEvaluate(p *BivariatePoly, shift field.Element) []field.Element {
	return applyCosetShift(p, shift).ToROUEvals()
}

// cosetInterpolate inverts cosetEvaluate: transform back to
// coefficients on the root-of-unity grid, then unscale by powers of
// shift^-1.
func cosetInterpolate(evals []field.Element, xSize, ySize int, shift field.Element) *BivariatePoly {
	coeffs := FromROUEvals(evals, xSize, ySize)
	return applyCosetShift(coeffs, field.Inverse(shift))
}

// applyCosetShift scales coefficient (x,y) by shift^(x+y).
func applyCosetShift(p *BivariatePoly, shift field.Element) *BivariatePoly {
	out := make([]field.Element, len(p.Coeffs))
	powX := field.One()
	for x := 0; x < p.XSize; x++ {
		powXY := powX
		for y := 0; y < p.YSize; y++ {
			out[at(x, y, p.XSize)] = field.Mul(p.Coeffs[at(x, y, p.XSize)], powXY)
			powXY = field.Mul(powXY, shift)
		}
		powX = field.Mul(powX, shift)
	}
	np := &BivariatePoly{Coeffs: out, XSize: p.XSize, YSize: p.YSize}
	np.computeDegrees()
	return np
}

// invertVanishingOnCoset returns, for each i in [0,size), the inverse
// of (shift*g^i)^n - 1, where g generates the size-th roots of unity.
func invertVanishingOnCoset(size, n int, shift field.Element) []field.Element {
	dom := poly.NewDomain(uint64(size))
	g := dom.Generator()
	out := make([]field.Element, size)
	pow := field.One()
	nBig := big.NewInt(int64(n))
	for i := 0; i < size; i++ {
		x := field.Mul(shift, pow)
		v := field.Sub(field.Pow(x, nBig), field.One())
		out[i] = field.Inverse(v)
		pow = field.Mul(pow, g)
	}
	return out
}

// tensorVanishingX returns X^n-1 embedded in an xSize*ySize grid
// (constant in Y).
func tensorVanishingX(n, xSize, ySize int) *BivariatePoly {
	coeffs := make([]field.Element, xSize*ySize)
	coeffs[0] = field.Neg(field.One())
	if n < xSize {
		coeffs[n] = field.One()
	}
	p := &BivariatePoly{Coeffs: coeffs, XSize: xSize, YSize: ySize}
	p.computeDegrees()
	return p
}

// tensorVanishingY returns Y^s-1 embedded in an xSize*ySize grid
// (constant in X).
func tensorVanishingY(s, xSize, ySize int) *BivariatePoly {
	coeffs := make([]field.Element, xSize*ySize)
	coeffs[0] = field.Neg(field.One())
	if s < ySize {
		coeffs[at(0, s, xSize)] = field.One()
	}
	p := &BivariatePoly{Coeffs: coeffs, XSize: xSize, YSize: ySize}
	p.computeDegrees()
	return p
}

func equalGrids(a, b *BivariatePoly) bool {
	xSize := maxInt(a.XSize, b.XSize)
	ySize := maxInt(a.YSize, b.YSize)
	ae, be := a.resized(xSize, ySize), b.resized(xSize, ySize)
	for i := range ae.Coeffs {
		if !ae.Coeffs[i].Equal(be.Coeffs[i]) {
			return false
		}
	}
	return true
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
