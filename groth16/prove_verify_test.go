package groth16_test

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/circuitsetup"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/r1cs"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
)

// squareCircuit is the single-constraint x*x=y R1CS, wires [1, x, y]
// with x public and y private.
func squareCircuit() *r1cs.R1CS {
	one := field.One()
	return &r1cs.R1CS{
		A:               [][]r1cs.Term{{{Column: 1, Coefficient: one}}},
		B:               [][]r1cs.Term{{{Column: 1, Coefficient: one}}},
		C:               [][]r1cs.Term{{{Column: 2, Coefficient: one}}},
		NumVariables:    3,
		NumPublicInputs: 1,
	}
}

func setupKeys(t *testing.T) (*r1cs.R1CS, *groth16.ProvingKey, *groth16.VerificationKey) {
	t.Helper()
	ctx := context.Background()
	r1 := squareCircuit()

	pot, err := srs.Generate(ctx, 4, srs.Options{})
	require.NoError(t, err)
	gamma, err := field.RandomNonZero(rand.Reader)
	require.NoError(t, err)
	delta, err := field.RandomNonZero(rand.Reader)
	require.NoError(t, err)

	pk, vk, err := circuitsetup.Setup(ctx, r1, pot, gamma, delta)
	require.NoError(t, err)
	return r1, pk, vk
}

func TestProveVerifyCompleteness(t *testing.T) {
	assert := require.New(t)
	r1, pk, vk := setupKeys(t)

	witness := []field.Element{field.One(), field.FromUint64(6), field.FromUint64(36)}
	proof, err := groth16.Prove(context.Background(), pk, r1, witness, rand.Reader)
	assert.NoError(err)
	assert.NoError(groth16.Verify(vk, witness[1:2], proof))
}

func TestProveVerifyCompletenessMatchesExplicitPairingIdentity(t *testing.T) {
	assert := require.New(t)
	r1, pk, vk := setupKeys(t)

	witness := []field.Element{field.One(), field.FromUint64(6), field.FromUint64(36)}
	proof, err := groth16.Prove(context.Background(), pk, r1, witness, rand.Reader)
	assert.NoError(err)

	full := []field.Element{field.One(), witness[1]}
	vkXJac, err := curve.MSMG1(vk.KPublic, full)
	assert.NoError(err)
	var vkX curve.G1Affine
	vkX.FromJacobian(&vkXJac)

	eAB, err := curve.Pair(proof.A, proof.B)
	assert.NoError(err)
	eAlphaBeta, err := curve.Pair(vk.Alpha1, vk.Beta2)
	assert.NoError(err)
	eVkXGamma, err := curve.Pair(vkX, vk.Gamma2)
	assert.NoError(err)
	eCDelta, err := curve.Pair(proof.C, vk.Delta2)
	assert.NoError(err)

	rhs := eAlphaBeta
	rhs.Mul(&rhs, &eVkXGamma)
	rhs.Mul(&rhs, &eCDelta)
	assert.True(eAB.Equal(&rhs))
}

func TestProveRejectsUnsatisfiedWitness(t *testing.T) {
	assert := require.New(t)
	r1, pk, _ := setupKeys(t)

	witness := []field.Element{field.One(), field.FromUint64(6), field.FromUint64(37)}
	_, err := groth16.Prove(context.Background(), pk, r1, witness, rand.Reader)
	var unsatisfied *groth16.ErrConstraintUnsatisfied
	assert.ErrorAs(err, &unsatisfied)
}

func TestVerifyRejectsWrongPublicInput(t *testing.T) {
	assert := require.New(t)
	r1, pk, vk := setupKeys(t)

	witness := []field.Element{field.One(), field.FromUint64(6), field.FromUint64(36)}
	proof, err := groth16.Prove(context.Background(), pk, r1, witness, rand.Reader)
	assert.NoError(err)

	wrongPublic := []field.Element{field.FromUint64(7)}
	assert.Error(groth16.Verify(vk, wrongPublic, proof))
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	assert := require.New(t)
	r1, pk, vk := setupKeys(t)

	witness := []field.Element{field.One(), field.FromUint64(6), field.FromUint64(36)}
	proof, err := groth16.Prove(context.Background(), pk, r1, witness, rand.Reader)
	assert.NoError(err)

	tampered := *proof
	otherJac := curve.ScalarMulG1(curve.Generator1(), field.FromUint64(999))
	tampered.A.FromJacobian(&otherJac)

	assert.Error(groth16.Verify(vk, witness[1:2], &tampered))
}

func TestVerifyRejectsMismatchedPublicInputCount(t *testing.T) {
	assert := require.New(t)
	r1, pk, vk := setupKeys(t)

	witness := []field.Element{field.One(), field.FromUint64(6), field.FromUint64(36)}
	proof, err := groth16.Prove(context.Background(), pk, r1, witness, rand.Reader)
	assert.NoError(err)

	assert.Error(groth16.Verify(vk, []field.Element{}, proof))
}
