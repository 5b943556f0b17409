package circuitsetup

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
)

func g1At(scalar uint64) curve.G1Affine {
	var p curve.G1Affine
	j := curve.ScalarMulG1(curve.Generator1(), field.FromUint64(scalar))
	p.FromJacobian(&j)
	return p
}

func g2At(scalar uint64) curve.G2Affine {
	var p curve.G2Affine
	j := curve.ScalarMulG2(curve.Generator2(), field.FromUint64(scalar))
	p.FromJacobian(&j)
	return p
}

func samplePK() (*groth16.ProvingKey, *groth16.VerificationKey) {
	pk := &groth16.ProvingKey{
		Domain:     4,
		A:          []curve.G1Affine{g1At(1), g1At(2)},
		B1:         []curve.G1Affine{g1At(3), g1At(4)},
		B2:         []curve.G2Affine{g2At(5), g2At(6)},
		KPrivate:   []curve.G1Affine{g1At(7), g1At(8)},
		HQuery:     []curve.G1Affine{g1At(9), g1At(10), g1At(11)},
		Delta1:     g1At(42),
		Delta2:     g2At(42),
		AlphaTauG1: g1At(13),
		BetaTauG1:  g1At(14),
		BetaG2:     g2At(15),
	}
	vk := &groth16.VerificationKey{
		Alpha1:    g1At(13),
		Beta2:     g2At(15),
		Gamma2:    g2At(16),
		Delta2:    g2At(42),
		KPublic:   []curve.G1Affine{g1At(20)},
		NumPublic: 1,
	}
	return pk, vk
}

func TestContributeDeltaVerifies(t *testing.T) {
	assert := require.New(t)
	pk, vk := samplePK()

	nextPK, nextVK, proof, err := ContributeDelta(pk, vk, rand.Reader)
	assert.NoError(err)

	assert.NoError(VerifyDeltaTransition(pk, nextPK, proof))
	assert.True(nextPK.Delta2.Equal(&nextVK.Delta2))
}

func TestContributeDeltaPreservesAlphaBetaGamma(t *testing.T) {
	assert := require.New(t)
	pk, vk := samplePK()

	nextPK, nextVK, _, err := ContributeDelta(pk, vk, rand.Reader)
	assert.NoError(err)
	assert.True(pk.AlphaTauG1.Equal(&nextPK.AlphaTauG1))
	assert.True(pk.BetaG2.Equal(&nextPK.BetaG2))
	assert.True(vk.Gamma2.Equal(&nextVK.Gamma2))
}

func TestVerifyDeltaTransitionRejectsTamperedDelta(t *testing.T) {
	assert := require.New(t)
	pk, vk := samplePK()

	nextPK, _, proof, err := ContributeDelta(pk, vk, rand.Reader)
	assert.NoError(err)

	tampered := *nextPK
	tampered.Delta1 = g1At(999)

	assert.Error(VerifyDeltaTransition(pk, &tampered, proof))
}

func TestVerifyDeltaTransitionRejectsBadPoK(t *testing.T) {
	assert := require.New(t)
	pk, vk := samplePK()

	nextPK, _, proof, err := ContributeDelta(pk, vk, rand.Reader)
	assert.NoError(err)

	tamperedProof := *proof
	tamperedProof.ResponseS = field.Add(tamperedProof.ResponseS, field.One())

	assert.Error(VerifyDeltaTransition(pk, nextPK, &tamperedProof))
}
