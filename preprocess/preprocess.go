// Package preprocess compiles a circuit's wire-copy permutation into the
// two bivariate polynomials the bivariate engine's copy argument checks
// against: s0 (row-shift images) and s1 (column-shift images).
package preprocess

import (
	"fmt"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/bipoly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/poly"
)

// Cell addresses one wire slot on the m_I x s_max grid: Row is the
// intermediate-wire index, Col is the copy (placement) index.
type Cell struct {
	Row, Col int
}

// PermutationSpec maps a subset of grid cells to the cell they're
// copy-constrained equal to. A cell absent from Mapping is its own
// target (the identity permutation at that position).
type PermutationSpec struct {
	Mapping map[Cell]Cell
}

// target returns where c is identified to, defaulting to c itself.
func (s PermutationSpec) target(c Cell) Cell {
	if t, ok := s.Mapping[c]; ok {
		return t
	}
	return c
}

// domainPowers returns w^0..w^(n-1) for the order-n roots-of-unity
// domain's generator w, built iteratively rather than by repeated
// exponentiation.
func domainPowers(n int) []field.Element {
	w := poly.NewDomain(uint64(n)).Generator()
	out := make([]field.Element, n)
	out[0] = field.One()
	for i := 1; i < n; i++ {
		out[i] = field.Mul(out[i-1], w)
	}
	return out
}

// CompilePermutation builds s0(X,Y) and s1(X,Y): at each (x,y) on the
// mI*sMax roots-of-unity grid, s0 holds the target cell's row index and
// s1 holds its column index, each encoded as the corresponding axis
// domain's root-of-unity power (w_x^row, w_y^col) rather than a bare
// integer -- the same domain-element position encoding
// buildGrandProduct uses for the unpermuted side of the copy argument,
// so a verifier can recompute both sides of the grand-product ratio in
// closed form at a continuous challenge point.
func CompilePermutation(spec PermutationSpec, mI, sMax int) (s0, s1 *bipoly.BivariatePoly, err error) {
	if mI <= 0 || sMax <= 0 {
		return nil, nil, fmt.Errorf("preprocess: mI and sMax must be positive")
	}

	wxPows := domainPowers(mI)
	wyPows := domainPowers(sMax)

	s0Evals := make([]field.Element, mI*sMax)
	s1Evals := make([]field.Element, mI*sMax)
	for y := 0; y < sMax; y++ {
		for x := 0; x < mI; x++ {
			t := spec.target(Cell{Row: x, Col: y})
			if t.Row < 0 || t.Row >= mI || t.Col < 0 || t.Col >= sMax {
				return nil, nil, fmt.Errorf("preprocess: target cell (%d,%d) out of bounds for a %dx%d grid", t.Row, t.Col, mI, sMax)
			}
			idx := y*mI + x
			s0Evals[idx] = wxPows[t.Row]
			s1Evals[idx] = wyPows[t.Col]
		}
	}

	s0 = bipoly.FromROUEvals(s0Evals, mI, sMax)
	s1 = bipoly.FromROUEvals(s1Evals, mI, sMax)
	return s0, s1, nil
}
