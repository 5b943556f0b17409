package serialize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/ceremony"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/circuitsetup"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
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

func samplePowersOfTau() *srs.PowersOfTau {
	return &srs.PowersOfTau{
		D:          3,
		TauG1:      []curve.G1Affine{g1At(1), g1At(2), g1At(4), g1At(8)},
		TauG2:      []curve.G2Affine{g2At(1), g2At(2), g2At(4), g2At(8)},
		AlphaTauG1: []curve.G1Affine{g1At(5), g1At(6), g1At(7), g1At(9)},
		BetaTauG1:  []curve.G1Affine{g1At(11), g1At(12), g1At(13), g1At(14)},
		BetaG2:     g2At(42),
	}
}

func TestPowersOfTauRoundTripCompressed(t *testing.T) {
	assert := require.New(t)
	pot := samplePowersOfTau()

	var buf bytes.Buffer
	assert.NoError(WritePowersOfTau(&buf, pot, true))

	got, err := ReadPowersOfTau(&buf)
	assert.NoError(err)
	assert.Equal(pot.D, got.D)
	assert.Equal(pot.TauG1, got.TauG1)
	assert.Equal(pot.TauG2, got.TauG2)
	assert.Equal(pot.AlphaTauG1, got.AlphaTauG1)
	assert.Equal(pot.BetaTauG1, got.BetaTauG1)
	assert.True(pot.BetaG2.Equal(&got.BetaG2))
}

func TestPowersOfTauRoundTripUncompressed(t *testing.T) {
	assert := require.New(t)
	pot := samplePowersOfTau()

	var buf bytes.Buffer
	assert.NoError(WritePowersOfTau(&buf, pot, false))

	got, err := ReadPowersOfTau(&buf)
	assert.NoError(err)
	assert.Equal(pot.TauG1, got.TauG1)
}

func TestPowersOfTauRejectsBadMagic(t *testing.T) {
	assert := require.New(t)
	pot := samplePowersOfTau()

	var buf bytes.Buffer
	assert.NoError(WritePowersOfTau(&buf, pot, true))
	corrupted := buf.Bytes()
	corrupted[0] = 'x'

	_, err := ReadPowersOfTau(bytes.NewReader(corrupted))
	assert.Error(err)
}

func sampleProvingKey() *groth16.ProvingKey {
	return &groth16.ProvingKey{
		Domain:     4,
		A:          []curve.G1Affine{g1At(1), g1At(2)},
		B1:         []curve.G1Affine{g1At(3), g1At(4)},
		B2:         []curve.G2Affine{g2At(5), g2At(6)},
		KPrivate:   []curve.G1Affine{g1At(7)},
		HQuery:     []curve.G1Affine{g1At(8), g1At(9), g1At(10)},
		Delta1:     g1At(11),
		Delta2:     g2At(12),
		AlphaTauG1: g1At(13),
		BetaTauG1:  g1At(14),
		BetaG2:     g2At(15),
	}
}

func TestProvingKeyCBORRoundTrip(t *testing.T) {
	assert := require.New(t)
	pk := sampleProvingKey()

	var buf bytes.Buffer
	assert.NoError(WriteProvingKeyCBOR(&buf, pk, true))

	got, err := ReadProvingKeyCBOR(&buf)
	assert.NoError(err)
	assert.Equal(pk.Domain, got.Domain)
	assert.Equal(pk.A, got.A)
	assert.Equal(pk.B2, got.B2)
	assert.True(pk.Delta1.Equal(&got.Delta1))
}

func sampleVerificationKey() *groth16.VerificationKey {
	return &groth16.VerificationKey{
		Alpha1:    g1At(1),
		Beta2:     g2At(2),
		Gamma2:    g2At(3),
		Delta2:    g2At(4),
		KPublic:   []curve.G1Affine{g1At(5), g1At(6)},
		NumPublic: 2,
	}
}

func TestVerificationKeyJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	vk := sampleVerificationKey()

	var buf bytes.Buffer
	assert.NoError(WriteVerificationKeyJSON(&buf, vk))

	got, err := ReadVerificationKeyJSON(&buf)
	assert.NoError(err)
	assert.True(vk.Alpha1.Equal(&got.Alpha1))
	assert.True(vk.Beta2.Equal(&got.Beta2))
	assert.Equal(vk.NumPublic, got.NumPublic)
	assert.Equal(vk.KPublic, got.KPublic)
}

func TestGroth16ProofJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	proof := &groth16.Proof{A: g1At(1), B: g2At(2), C: g1At(3)}

	var buf bytes.Buffer
	assert.NoError(WriteGroth16ProofJSON(&buf, proof))

	got, err := ReadGroth16ProofJSON(&buf)
	assert.NoError(err)
	assert.True(proof.A.Equal(&got.A))
	assert.True(proof.B.Equal(&got.B))
	assert.True(proof.C.Equal(&got.C))
}

func TestAccumulatorJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	acc := &ceremony.Accumulator{
		ContributorIndex: 3,
		PowersOfTau:      *samplePowersOfTau(),
		BivariateGrid:    []curve.G1Affine{g1At(21), g1At(22)},
		GridXSize:        2,
		GridYSize:        1,
	}

	var buf bytes.Buffer
	assert.NoError(WriteAccumulatorJSON(&buf, acc, true))

	got, err := ReadAccumulatorJSON(&buf)
	assert.NoError(err)
	assert.Equal(acc.ContributorIndex, got.ContributorIndex)
	assert.Equal(acc.PowersOfTau.D, got.PowersOfTau.D)
	assert.Equal(acc.PowersOfTau.TauG1, got.PowersOfTau.TauG1)
	assert.Equal(acc.BivariateGrid, got.BivariateGrid)
	assert.Equal(acc.GridXSize, got.GridXSize)
	assert.Equal(acc.GridYSize, got.GridYSize)
}

func TestContributionProofsJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	proofs := []*ceremony.ContributionProof{
		{Label: "tau", CommitG2: g2At(1), ResponseS: field.FromUint64(9), ChallengeE: field.FromUint64(3)},
		{Label: "alpha", CommitG2: g2At(2), ResponseS: field.FromUint64(11), ChallengeE: field.FromUint64(4)},
	}

	var buf bytes.Buffer
	assert.NoError(WriteContributionProofsJSON(&buf, proofs))

	got, err := ReadContributionProofsJSON(&buf)
	assert.NoError(err)
	assert.Len(got, 2)
	assert.Equal("tau", got[0].Label)
	assert.True(proofs[0].CommitG2.Equal(&got[0].CommitG2))
	assert.True(proofs[0].ResponseS.Equal(got[0].ResponseS))
	assert.True(proofs[0].ChallengeE.Equal(got[0].ChallengeE))
}

func TestDeltaProofJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	proof := &circuitsetup.DeltaProof{
		CommitG2:   g2At(7),
		ResponseS:  field.FromUint64(21),
		ChallengeE: field.FromUint64(5),
	}

	var buf bytes.Buffer
	assert.NoError(WriteDeltaProofJSON(&buf, proof))

	got, err := ReadDeltaProofJSON(&buf)
	assert.NoError(err)
	assert.True(proof.CommitG2.Equal(&got.CommitG2))
	assert.True(proof.ResponseS.Equal(got.ResponseS))
	assert.True(proof.ChallengeE.Equal(got.ChallengeE))
}

func TestWitnessJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	witness := []field.Element{field.One(), field.FromUint64(7), field.FromUint64(9)}

	var buf bytes.Buffer
	assert.NoError(WriteWitnessJSON(&buf, witness))

	got, err := ReadWitnessJSON(&buf)
	assert.NoError(err)
	assert.Len(got, 3)
	for i := range witness {
		assert.True(witness[i].Equal(got[i]))
	}
}

func TestContributionInfoYAMLRoundTrip(t *testing.T) {
	assert := require.New(t)
	info := &ContributionInfo{
		Index:        7,
		Name:         "alice",
		Location:     "remote",
		Device:       "laptop",
		PreviousHash: "aa",
		CurrentHash:  "bb",
		DurationSecs: 12.5,
	}

	var buf bytes.Buffer
	assert.NoError(WriteContributionInfoYAML(&buf, info))

	got, err := ReadContributionInfoYAML(&buf)
	assert.NoError(err)
	assert.Equal(info.Index, got.Index)
	assert.Equal(info.Name, got.Name)
	assert.Equal(info.CurrentHash, got.CurrentHash)
	assert.Equal(info.DurationSecs, got.DurationSecs)
}
