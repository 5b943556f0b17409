package circuitsetup

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/r1cs"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
)

// squareCircuit builds the single-constraint R1CS x*x = y, with wires
// w=[1, x, y]: x public, y private.
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

func TestSetupProducesCompatibleKeys(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	r1 := squareCircuit()
	pot, err := srs.Generate(ctx, 4, srs.Options{})
	assert.NoError(err)

	gamma, err := field.RandomNonZero(rand.Reader)
	assert.NoError(err)
	delta, err := field.RandomNonZero(rand.Reader)
	assert.NoError(err)

	pk, vk, err := Setup(ctx, r1, pot, gamma, delta)
	assert.NoError(err)
	assert.NotNil(pk)
	assert.NotNil(vk)
	assert.Equal(uint64(1), pk.Domain)
	assert.Len(vk.KPublic, 2)

	witness := []field.Element{field.One(), field.FromUint64(3), field.FromUint64(9)}
	assert.NoError(r1.CheckWitness(witness))

	proof, err := groth16.Prove(ctx, pk, r1, witness, rand.Reader)
	assert.NoError(err)
	assert.NoError(groth16.Verify(vk, witness[1:2], proof))
}

func TestSetupRejectsInsufficientPowers(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	r1 := squareCircuit()
	pot, err := srs.Generate(ctx, 0, srs.Options{})
	assert.NoError(err)

	gamma, err := field.RandomNonZero(rand.Reader)
	assert.NoError(err)
	delta, err := field.RandomNonZero(rand.Reader)
	assert.NoError(err)

	_, _, err = Setup(ctx, r1, pot, gamma, delta)
	var insufficient *ErrInsufficientPowers
	assert.ErrorAs(err, &insufficient)
}

func TestSetupRejectsInvalidR1CS(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	r1 := &r1cs.R1CS{
		A:            [][]r1cs.Term{{{Column: 5, Coefficient: field.One()}}},
		B:            [][]r1cs.Term{{}},
		C:            [][]r1cs.Term{{}},
		NumVariables: 2,
	}
	pot, err := srs.Generate(ctx, 4, srs.Options{})
	assert.NoError(err)

	_, _, err = Setup(ctx, r1, pot, field.FromUint64(2), field.FromUint64(3))
	assert.Error(err)
}
