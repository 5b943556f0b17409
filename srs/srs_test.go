package srs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

func TestGenerateWellFormed(t *testing.T) {
	assert := require.New(t)

	pot, err := Generate(context.Background(), 4, Options{})
	assert.NoError(err)

	assert.Equal(uint64(4), pot.D)
	assert.Len(pot.TauG1, 5)
	assert.Len(pot.TauG2, 5)
	assert.Len(pot.AlphaTauG1, 5)
	assert.Len(pot.BetaTauG1, 5)

	g1, g2 := curve.Generator1(), curve.Generator2()
	assert.True(pot.TauG1[0].Equal(&g1))
	assert.True(pot.TauG2[0].Equal(&g2))
}

func TestValidateAcceptsMatchingContribution(t *testing.T) {
	assert := require.New(t)

	var alpha, beta field.Element
	debugZeroizeHook = func(tau, a, b field.Element) {
		alpha, beta = a, b
	}
	defer func() { debugZeroizeHook = nil }()

	pot, err := Generate(context.Background(), 3, Options{})
	assert.NoError(err)

	g2 := curve.Generator2()
	alphaG2Jac := curve.ScalarMulG2(g2, alpha)
	betaG2Jac := curve.ScalarMulG2(g2, beta)
	var alphaG2, betaG2 curve.G2Affine
	alphaG2.FromJacobian(&alphaG2Jac)
	betaG2.FromJacobian(&betaG2Jac)

	assert.NoError(pot.Validate(alphaG2, betaG2))
}

func TestValidateRejectsMismatchedContribution(t *testing.T) {
	assert := require.New(t)

	pot, err := Generate(context.Background(), 3, Options{})
	assert.NoError(err)

	wrongJac := curve.ScalarMulG2(curve.Generator2(), field.FromUint64(99))
	var wrong curve.G2Affine
	wrong.FromJacobian(&wrongJac)

	assert.Error(pot.Validate(wrong, wrong))
}

func TestValidateRejectsLengthMismatch(t *testing.T) {
	assert := require.New(t)

	pot, err := Generate(context.Background(), 3, Options{})
	assert.NoError(err)

	pot.TauG1 = pot.TauG1[:len(pot.TauG1)-1]
	assert.Error(pot.Validate(curve.Generator2(), curve.Generator2()))
}
