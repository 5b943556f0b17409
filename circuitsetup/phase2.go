package circuitsetup

import (
	"fmt"
	"io"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/transcript"
)

// DeltaProof is a Schnorr-style proof of knowledge of the ratio a
// circuit-setup contributor multiplied the running delta by, mirroring
// the Powers-of-Tau ceremony's own per-parameter proof construction.
type DeltaProof struct {
	CommitG2   curve.G2Affine
	ResponseS  field.Element
	ChallengeE field.Element
}

// ErrBadDeltaPoK is returned when a phase-2 contribution's proof of
// knowledge fails to verify.
type ErrBadDeltaPoK struct{}

func (e *ErrBadDeltaPoK) Error() string { return "circuitsetup: bad delta proof of knowledge" }

// ErrDeltaInconsistent is returned when a phase-2 contribution's G1 and
// G2 sides don't reflect the same ratio the proof of knowledge commits to.
type ErrDeltaInconsistent struct{}

func (e *ErrDeltaInconsistent) Error() string {
	return "circuitsetup: delta contribution inconsistent between G1 and G2"
}

func schnorrProveDelta(secret field.Element, rng io.Reader) (*DeltaProof, error) {
	commitJac := curve.ScalarMulG2(curve.Generator2(), secret)
	var commit curve.G2Affine
	commit.FromJacobian(&commitJac)

	k, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, fmt.Errorf("circuitsetup: sampling delta PoK nonce: %w", err)
	}
	rJac := curve.ScalarMulG2(curve.Generator2(), k)
	var r curve.G2Affine
	r.FromJacobian(&rJac)

	tr := transcript.New("phase2-delta-pok")
	tr.Absorb("label", []byte("delta"))
	tr.AbsorbG2("commit", commit)
	tr.AbsorbG2("r", r)
	e := tr.SqueezeScalar("challenge")

	s := field.Add(k, field.Mul(e, secret))
	return &DeltaProof{CommitG2: commit, ResponseS: s, ChallengeE: e}, nil
}

func schnorrVerifyDelta(p *DeltaProof) bool {
	sG2Jac := curve.ScalarMulG2(curve.Generator2(), p.ResponseS)
	eCommitJac := curve.ScalarMulG2(p.CommitG2, p.ChallengeE)
	eCommitJac.Neg(&eCommitJac)
	sG2Jac.AddAssign(&eCommitJac)
	var r curve.G2Affine
	r.FromJacobian(&sG2Jac)

	tr := transcript.New("phase2-delta-pok")
	tr.Absorb("label", []byte("delta"))
	tr.AbsorbG2("commit", p.CommitG2)
	tr.AbsorbG2("r", r)
	e := tr.SqueezeScalar("challenge")
	return e.Equal(p.ChallengeE)
}

// ContributeDelta runs one phase-2 ("circuit-specific") MPC step atop
// prevPK/prevVK: it samples a fresh ratio d, multiplies delta by d on
// both curve sides, and divides every delta-denominated proving-key
// vector (KPrivate, HQuery) by d so the key pair stays internally
// consistent. Only delta moves in phase 2 -- alpha, beta, and gamma
// were already fixed by Setup from the phase-1 Powers-of-Tau.
func ContributeDelta(prevPK *groth16.ProvingKey, prevVK *groth16.VerificationKey, rng io.Reader) (*groth16.ProvingKey, *groth16.VerificationKey, *DeltaProof, error) {
	d, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("circuitsetup: sampling delta ratio: %w", err)
	}
	dInv := field.Inverse(d)

	nextDelta1Jac := curve.ScalarMulG1(prevPK.Delta1, d)
	var nextDelta1 curve.G1Affine
	nextDelta1.FromJacobian(&nextDelta1Jac)

	nextDelta2Jac := curve.ScalarMulG2(prevPK.Delta2, d)
	var nextDelta2 curve.G2Affine
	nextDelta2.FromJacobian(&nextDelta2Jac)

	kPrivate := make([]curve.G1Affine, len(prevPK.KPrivate))
	for i, p := range prevPK.KPrivate {
		j := curve.ScalarMulG1(p, dInv)
		kPrivate[i].FromJacobian(&j)
	}

	hQuery := make([]curve.G1Affine, len(prevPK.HQuery))
	for i, p := range prevPK.HQuery {
		j := curve.ScalarMulG1(p, dInv)
		hQuery[i].FromJacobian(&j)
	}

	nextPK := &groth16.ProvingKey{
		Domain:     prevPK.Domain,
		A:          prevPK.A,
		B1:         prevPK.B1,
		B2:         prevPK.B2,
		KPrivate:   kPrivate,
		HQuery:     hQuery,
		Delta1:     nextDelta1,
		Delta2:     nextDelta2,
		AlphaTauG1: prevPK.AlphaTauG1,
		BetaTauG1:  prevPK.BetaTauG1,
		BetaG2:     prevPK.BetaG2,
	}
	nextVK := &groth16.VerificationKey{
		Alpha1:    prevVK.Alpha1,
		Beta2:     prevVK.Beta2,
		Gamma2:    prevVK.Gamma2,
		Delta2:    nextDelta2,
		KPublic:   prevVK.KPublic,
		NumPublic: prevVK.NumPublic,
	}

	proof, err := schnorrProveDelta(d, rng)
	if err != nil {
		return nil, nil, nil, err
	}

	return nextPK, nextVK, proof, nil
}

// VerifyDeltaTransition checks that nextPK is a valid phase-2
// contribution built atop prevPK: the proof of knowledge verifies on
// its own, nextPK.Delta1 is prevPK.Delta1 scaled by the exact ratio the
// proof commits to, and the same ratio was applied on the G2 side.
func VerifyDeltaTransition(prevPK, nextPK *groth16.ProvingKey, proof *DeltaProof) error {
	if !schnorrVerifyDelta(proof) {
		return &ErrBadDeltaPoK{}
	}

	var negPrevDelta1Jac curve.G1Jac
	negPrevDelta1Jac.FromAffine(&prevPK.Delta1)
	negPrevDelta1Jac.Neg(&negPrevDelta1Jac)
	var negPrevDelta1 curve.G1Affine
	negPrevDelta1.FromJacobian(&negPrevDelta1Jac)

	g1Ratio, err := curve.MultiPairingCheck(
		[]curve.G1Affine{nextPK.Delta1, negPrevDelta1},
		[]curve.G2Affine{curve.Generator2(), proof.CommitG2},
	)
	if err != nil {
		return fmt.Errorf("circuitsetup: delta G1 ratio check: %w", err)
	}
	if !g1Ratio {
		return &ErrDeltaInconsistent{}
	}

	crossOk, err := curve.MultiPairingCheck(
		[]curve.G1Affine{nextPK.Delta1, negPrevDelta1},
		[]curve.G2Affine{prevPK.Delta2, nextPK.Delta2},
	)
	if err != nil {
		return fmt.Errorf("circuitsetup: delta cross-consistency check: %w", err)
	}
	if !crossOk {
		return &ErrDeltaInconsistent{}
	}

	return nil
}
