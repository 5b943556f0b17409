package srs

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// TestGenerateScrubsToxicWaste hooks the pre-zeroize callback Generate
// invokes from inside its deferred guard release, and checks that the
// toxic tau/alpha/beta it captured there actually produced the
// returned PowersOfTau -- i.e. that scrubbing happens only after the
// derived public points are committed, not before.
func TestGenerateScrubsToxicWaste(t *testing.T) {
	assert := require.New(t)

	var tau, alpha, beta field.Element
	var hookCalls int
	debugZeroizeHook = func(tt, a, b field.Element) {
		hookCalls++
		tau, alpha, beta = tt, a, b
	}
	defer func() { debugZeroizeHook = nil }()

	pot, err := Generate(context.Background(), 2, Options{})
	assert.NoError(err)
	assert.Equal(1, hookCalls)
	assert.False(tau.IsZero())
	assert.False(alpha.IsZero())
	assert.False(beta.IsZero())

	g1 := curve.Generator1()
	wantTauG1Jac := curve.ScalarMulG1(g1, tau)
	var wantTauG1 curve.G1Affine
	wantTauG1.FromJacobian(&wantTauG1Jac)
	assert.True(pot.TauG1[1].Equal(&wantTauG1))

	wantAlphaJac := curve.ScalarMulG1(g1, field.Mul(alpha, tau))
	var wantAlpha curve.G1Affine
	wantAlpha.FromJacobian(&wantAlphaJac)
	assert.True(pot.AlphaTauG1[1].Equal(&wantAlpha))
}

// TestGenerateLeavesNoToxicWasteField confirms PowersOfTau never grew a
// field that would let a reader recover tau/alpha/beta after the fact --
// only the depth D plus the five derived public vectors are exported.
func TestGenerateLeavesNoToxicWasteField(t *testing.T) {
	assert := require.New(t)
	typ := reflect.TypeOf(PowersOfTau{})
	assert.Equal(6, typ.NumField())
}
