// Package bivariate implements a bivariate-polynomial SNARK engine: a
// separate proof system over QAP polynomials in (X, Y) with a
// permutation/copy argument, driven by a five-round Fiat-Shamir
// transcript.
package bivariate

import (
	"fmt"
	"io"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/bipoly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/zeroize"
)

// tau holds the toxic waste sampled at SRS generation time: one scalar
// per trapdoor (x, y for the bivariate evaluation point; alpha for the
// degree-check powers; gamma, delta, eta for the three wire-routing
// denominators).
type tau struct {
	X, Y, Alpha, Gamma, Delta, Eta field.Element
}

func (t *tau) Zeroize() {
	t.X.Zeroize()
	t.Y.Zeroize()
	t.Alpha.Zeroize()
	t.Gamma.Zeroize()
	t.Delta.Zeroize()
	t.Eta.Zeroize()
}

// Sigma1 is the G1 half of the structured reference string: the
// bivariate monomial basis x^h*y^i*G1 over the (XSize, YSize) grid used
// to commit to every prover polynomial by MSM against its coefficients.
type Sigma1 struct {
	XYPowers []curve.G1Affine
	XSize    int
	YSize    int
	Delta    curve.G1Affine
	Eta      curve.G1Affine
}

// Sigma2 is the G2 half: the trapdoor scalars lifted to G2, used only
// by the verifier's pairing checks.
type Sigma2 struct {
	Alpha, Alpha2, Alpha3, Alpha4 curve.G2Affine
	Gamma, Delta, Eta             curve.G2Affine
	X, Y                          curve.G2Affine
}

// SRS is the bivariate engine's structured reference string, sigma =
// ([sigma1]_1, [sigma2]_2).
type SRS struct {
	Sigma1 Sigma1
	Sigma2 Sigma2
}

// GenerateSRS samples fresh toxic waste and builds an SRS sized for an
// xSize*ySize coefficient grid. The toxic scalars never leave this
// function: they're tracked by a zeroize.Guard and scrubbed before
// return, on every path including an error return.
func GenerateSRS(xSize, ySize int, rng io.Reader) (srs *SRS, err error) {
	if xSize <= 0 || ySize <= 0 {
		return nil, fmt.Errorf("bivariate: xSize and ySize must be positive")
	}

	var t tau
	guard := zeroize.NewGuard()
	guard.Track(&t)
	defer guard.Release()

	for _, dst := range []*field.Element{&t.X, &t.Y, &t.Alpha, &t.Gamma, &t.Delta, &t.Eta} {
		v, err := field.RandomNonZero(rng)
		if err != nil {
			return nil, fmt.Errorf("bivariate: sampling toxic waste: %w", err)
		}
		*dst = v
	}

	xPows := powersOf(t.X, xSize)
	yPows := powersOf(t.Y, ySize)

	g1 := curve.Generator1()
	xyPowers := make([]curve.G1Affine, xSize*ySize)
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			s := field.Mul(xPows[x], yPows[y])
			j := curve.ScalarMulG1(g1, s)
			xyPowers[y*xSize+x].FromJacobian(&j)
		}
	}

	deltaJac := curve.ScalarMulG1(g1, t.Delta)
	etaJac := curve.ScalarMulG1(g1, t.Eta)
	var deltaG1, etaG1 curve.G1Affine
	deltaG1.FromJacobian(&deltaJac)
	etaG1.FromJacobian(&etaJac)

	g2 := curve.Generator2()
	toG2 := func(s field.Element) curve.G2Affine {
		j := curve.ScalarMulG2(g2, s)
		var a curve.G2Affine
		a.FromJacobian(&j)
		return a
	}

	alpha2 := field.Mul(t.Alpha, t.Alpha)
	alpha3 := field.Mul(alpha2, t.Alpha)
	alpha4 := field.Mul(alpha3, t.Alpha)

	return &SRS{
		Sigma1: Sigma1{
			XYPowers: xyPowers,
			XSize:    xSize,
			YSize:    ySize,
			Delta:    deltaG1,
			Eta:      etaG1,
		},
		Sigma2: Sigma2{
			Alpha:  toG2(t.Alpha),
			Alpha2: toG2(alpha2),
			Alpha3: toG2(alpha3),
			Alpha4: toG2(alpha4),
			Gamma:  toG2(t.Gamma),
			Delta:  toG2(t.Delta),
			Eta:    toG2(t.Eta),
			X:      toG2(t.X),
			Y:      toG2(t.Y),
		},
	}, nil
}

func powersOf(base field.Element, n int) []field.Element {
	out := make([]field.Element, n)
	out[0] = field.One()
	for i := 1; i < n; i++ {
		out[i] = field.Mul(out[i-1], base)
	}
	return out
}

// Commit computes the G1 commitment to p: an MSM of p's coefficient
// grid (zero-padded/truncated to the SRS's size) against Sigma1's
// monomial basis.
func Commit(srs *SRS, p *bipoly.BivariatePoly) (curve.G1Affine, error) {
	xSize, ySize := srs.Sigma1.XSize, srs.Sigma1.YSize
	scalars := make([]field.Element, xSize*ySize)
	for y := 0; y < p.YSize && y < ySize; y++ {
		for x := 0; x < p.XSize && x < xSize; x++ {
			scalars[y*xSize+x] = p.Coeffs[y*p.XSize+x]
		}
	}
	j, err := curve.MSMG1(srs.Sigma1.XYPowers, scalars)
	if err != nil {
		return curve.G1Affine{}, fmt.Errorf("bivariate: commit MSM: %w", err)
	}
	var a curve.G1Affine
	a.FromJacobian(&j)
	return a, nil
}
