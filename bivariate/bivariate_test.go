package bivariate

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/bipoly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/preprocess"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/transcript"
)

// constGrid builds an XSize*YSize grid of identical evaluations, used to
// build a trivially satisfying witness (U=V=W=1 everywhere, so
// U*V-W vanishes on the whole grid).
func constGrid(c field.Element, xSize, ySize int) *bipoly.BivariatePoly {
	evals := make([]field.Element, xSize*ySize)
	for i := range evals {
		evals[i] = c
	}
	return bipoly.FromROUEvals(evals, xSize, ySize)
}

func newTestState(t *testing.T) (*ProverState, *VerificationKey) {
	t.Helper()
	assert := require.New(t)

	params := Params{N: 4, SMax: 2, MI: 4}

	s0, s1, err := preprocess.CompilePermutation(preprocess.PermutationSpec{Mapping: map[preprocess.Cell]preprocess.Cell{}}, params.MI, params.SMax)
	assert.NoError(err)

	one := field.One()
	witness := Witness{
		U: constGrid(one, params.N, params.SMax),
		V: constGrid(one, params.N, params.SMax),
		W: constGrid(one, params.N, params.SMax),
		B: constGrid(one, params.MI, params.SMax),
	}

	blind := Blinding{}
	for _, dst := range []*field.Element{
		&blind.RUX, &blind.RUY, &blind.RVX, &blind.RVY,
		&blind.RWX, &blind.RWY, &blind.RBX, &blind.RBY,
	} {
		v, err := field.RandomNonZero(rand.Reader)
		assert.NoError(err)
		*dst = v
	}

	srs, err := GenerateSRS(8, 4, rand.Reader)
	assert.NoError(err)

	ps := &ProverState{
		Params:  params,
		Witness: witness,
		APub:    constGrid(field.Zero(), params.N, params.SMax),
		Perm:    Permutation{S0: s0, S1: s1},
		Blind:   blind,
		SRS:     srs,
	}

	vk := &VerificationKey{
		APub:   ps.APub,
		Perm:   ps.Perm,
		Params: params,
		Sigma2: srs.Sigma2,
	}

	return ps, vk
}

func runProver(t *testing.T, ps *ProverState) *Proof {
	t.Helper()
	assert := require.New(t)

	tr := transcript.New("bivariate-proof")
	proof, err := Prove0(ps, tr)
	assert.NoError(err)
	assert.NoError(Prove1(ps, proof, tr))
	assert.NoError(Prove2(ps, proof, tr))
	assert.NoError(Prove3(ps, proof, tr))
	assert.NoError(Prove4(ps, proof))
	return proof
}

func TestProveVerifyCompleteness(t *testing.T) {
	assert := require.New(t)

	ps, vk := newTestState(t)
	proof := runProver(t, ps)

	assert.NoError(Verify(vk, nil, proof))
}

func TestVerifyRejectsTamperedEvaluation(t *testing.T) {
	assert := require.New(t)

	ps, vk := newTestState(t)
	proof := runProver(t, ps)

	proof.WEval = field.Add(proof.WEval, field.One())
	assert.Error(Verify(vk, nil, proof))
}

func TestVerifyRejectsTamperedPermutationImage(t *testing.T) {
	assert := require.New(t)

	ps, vk := newTestState(t)
	proof := runProver(t, ps)

	// A verification key built against a different permutation (a
	// non-trivial swap instead of the identity) must reject a proof
	// honestly generated for the identity permutation.
	s0, s1, err := preprocess.CompilePermutation(preprocess.PermutationSpec{
		Mapping: map[preprocess.Cell]preprocess.Cell{
			{Row: 0, Col: 0}: {Row: 1, Col: 0},
			{Row: 1, Col: 0}: {Row: 0, Col: 0},
		},
	}, ps.Params.MI, ps.Params.SMax)
	assert.NoError(err)
	vk.Perm = Permutation{S0: s0, S1: s1}

	assert.Error(Verify(vk, nil, proof))
}

func TestVerifyRejectsPublicInputMismatch(t *testing.T) {
	assert := require.New(t)

	_, vk := newTestState(t)

	assert.Error(checkPublicInputs(vk, []field.Element{field.FromUint64(7)}))
}
