package bipoly

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

func e(v uint64) field.Element { return field.FromUint64(v) }

func samplePoly() *BivariatePoly {
	grid := []field.Element{
		e(1), e(2), e(3), e(4),
		e(5), e(6), e(7), e(8),
	}
	return FromCoeffs(grid, 4, 2)
}

func TestFromCoeffsRoundsUpToPowerOfTwo(t *testing.T) {
	assert := require.New(t)
	grid := []field.Element{e(1), e(2), e(3)}
	p := FromCoeffs(grid, 3, 1)
	assert.Equal(4, p.XSize)
	assert.Equal(1, p.YSize)
}

func TestNTTRoundTrip(t *testing.T) {
	assert := require.New(t)
	p := samplePoly()

	evals := p.ToROUEvals()
	back := FromROUEvals(evals, p.XSize, p.YSize)

	assert.Equal(len(p.Coeffs), len(back.Coeffs))
	for i := range p.Coeffs {
		assert.True(p.Coeffs[i].Equal(back.Coeffs[i]), "coefficient %d mismatch", i)
	}
}

func TestEvalMatchesCoefficientForm(t *testing.T) {
	assert := require.New(t)
	p := samplePoly()

	x, y := e(3), e(5)
	got := p.Eval(x, y)

	want := field.Zero()
	for yi := 0; yi < p.YSize; yi++ {
		for xi := 0; xi < p.XSize; xi++ {
			term := field.Mul(p.Coeffs[at(xi, yi, p.XSize)],
				field.Mul(field.Pow(x, big.NewInt(int64(xi))), field.Pow(y, big.NewInt(int64(yi)))))
			want = field.Add(want, term)
		}
	}
	assert.True(got.Equal(want))
}

func TestAddSubScalarMul(t *testing.T) {
	assert := require.New(t)
	p := samplePoly()
	q := samplePoly()

	sum := Add(p, q)
	diff := Sub(sum, q)
	for i := range p.Coeffs {
		assert.True(diff.Coeffs[i].Equal(p.Coeffs[i]))
	}

	scaled := ScalarMul(e(2), p)
	for i := range p.Coeffs {
		assert.True(scaled.Coeffs[i].Equal(field.Mul(e(2), p.Coeffs[i])))
	}
}

func TestMulMatchesPointwiseEvaluation(t *testing.T) {
	assert := require.New(t)
	p := FromCoeffs([]field.Element{e(1), e(2)}, 2, 1)
	q := FromCoeffs([]field.Element{e(3), e(4)}, 2, 1)

	got := p.Mul(q)

	x, y := e(7), e(1)
	assert.True(got.Eval(x, y).Equal(field.Mul(p.Eval(x, y), q.Eval(x, y))))
}

func TestDivByVanishingRoundTrip(t *testing.T) {
	assert := require.New(t)

	n, s := 4, 2
	q0 := FromCoeffs([]field.Element{e(1), e(2), e(0), e(0), e(0), e(0), e(0), e(0)}, 4, 2)
	q1 := FromCoeffs([]field.Element{e(3), e(0), e(0), e(0), e(0), e(0), e(0), e(0)}, 4, 2)

	xN := tensorVanishingX(n, 2*n, 2*s)
	ys := tensorVanishingY(s, 2*n, 2*s)
	p := Add(q0.Mul(xN), q1.Mul(ys))

	gotQ0, gotQ1, err := p.DivByVanishing(n, s)
	assert.NoError(err)

	reconstructed := Add(gotQ0.Mul(xN), gotQ1.Mul(ys))
	assert.Equal(len(p.Coeffs), len(reconstructed.Coeffs))
	for i := range p.Coeffs {
		assert.True(p.Coeffs[i].Equal(reconstructed.Coeffs[i]), "coefficient %d mismatch", i)
	}
}

func TestDivByVanishingRejectsNonVanishing(t *testing.T) {
	assert := require.New(t)
	p := samplePoly()

	_, _, err := p.DivByVanishing(2, 2)
	assert.ErrorIs(err, ErrNotDivisible)
}
