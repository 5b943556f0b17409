package ceremony

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
)

// genesisAccumulator mirrors the CLI's trivial, secret-free starting
// accumulator: every vector position holds the bare generator, so the
// first real contribution's position-power rescaling lands on the
// standard single-contributor Powers-of-Tau shape.
func genesisAccumulator(d uint64, gridX, gridY int) *Accumulator {
	g1, g2 := curve.Generator1(), curve.Generator2()

	ones1 := make([]curve.G1Affine, d+1)
	ones2 := make([]curve.G2Affine, d+1)
	alphaOnes := make([]curve.G1Affine, d+1)
	betaOnes := make([]curve.G1Affine, d+1)
	for i := range ones1 {
		ones1[i] = g1
		ones2[i] = g2
		alphaOnes[i] = g1
		betaOnes[i] = g1
	}

	grid := make([]curve.G1Affine, gridX*gridY)
	for i := range grid {
		grid[i] = g1
	}

	return &Accumulator{
		ContributorIndex: 0,
		PowersOfTau: srs.PowersOfTau{
			D:          d,
			TauG1:      ones1,
			TauG2:      ones2,
			AlphaTauG1: alphaOnes,
			BetaTauG1:  betaOnes,
			BetaG2:     g2,
		},
		BivariateGrid: grid,
		GridXSize:     gridX,
		GridYSize:     gridY,
	}
}

func TestContributeThenVerifyTransition(t *testing.T) {
	assert := require.New(t)

	genesis := genesisAccumulator(3, 2, 2)
	rng := bytes.NewReader(bytes.Repeat([]byte{0x11}, 1<<16))

	next, proofs, err := Contribute(context.Background(), genesis, rng)
	assert.NoError(err)
	assert.NoError(VerifyTransition(genesis, next, proofs))
}

func TestVerifyTransitionRejectsTamperedProof(t *testing.T) {
	assert := require.New(t)

	genesis := genesisAccumulator(3, 2, 2)
	rng := bytes.NewReader(bytes.Repeat([]byte{0x22}, 1<<16))

	next, proofs, err := Contribute(context.Background(), genesis, rng)
	assert.NoError(err)

	tampered := make([]*ContributionProof, len(proofs))
	for i, p := range proofs {
		cp := *p
		tampered[i] = &cp
	}
	for _, p := range tampered {
		if p.Label == "tau" {
			p.ResponseS = field.Add(p.ResponseS, field.One())
		}
	}
	assert.Error(VerifyTransition(genesis, next, tampered))
}

func TestVerifyTransitionRejectsSwappedAccumulator(t *testing.T) {
	assert := require.New(t)

	genesis := genesisAccumulator(3, 2, 2)
	rng1 := bytes.NewReader(bytes.Repeat([]byte{0x33}, 1<<16))
	rng2 := bytes.NewReader(bytes.Repeat([]byte{0x44}, 1<<16))

	next1, proofs1, err := Contribute(context.Background(), genesis, rng1)
	assert.NoError(err)
	next2, _, err := Contribute(context.Background(), genesis, rng2)
	assert.NoError(err)

	assert.Error(VerifyTransition(genesis, next2, proofs1))
	assert.NoError(VerifyTransition(genesis, next1, proofs1))
}

func TestVerifyChainDetectsSwappedProofs(t *testing.T) {
	assert := require.New(t)

	genesis := genesisAccumulator(3, 2, 2)
	rng1 := bytes.NewReader(bytes.Repeat([]byte{0x55}, 1<<16))
	rng2 := bytes.NewReader(bytes.Repeat([]byte{0x66}, 1<<16))

	acc1, proofs1, err := Contribute(context.Background(), genesis, rng1)
	assert.NoError(err)
	acc2, proofs2, err := Contribute(context.Background(), acc1, rng2)
	assert.NoError(err)

	records := []*ChainRecord{
		{Index: 0, Acc: genesis},
		{Index: 1, Acc: acc1, Proofs: proofs1, PrevHash: genesis.Hash()},
		{Index: 2, Acc: acc2, Proofs: proofs2, PrevHash: acc1.Hash()},
	}
	assert.NoError(VerifyChain(records))

	records[2].Proofs = proofs1
	assert.Error(VerifyChain(records))
}
