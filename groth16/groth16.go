// Package groth16 implements the Groth16 zero-knowledge proof system
// over BLS12-381: proving key / verification key data types, witness
// assembly, proof generation, and verification.
//
// See https://eprint.iacr.org/2016/260.pdf.
package groth16

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/poly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/r1cs"
)

// ProvingKey holds everything the prover needs: per-variable A/B
// commitments, the private-wire K vector, and the H-query vector
// derived from the Powers-of-Tau SRS at circuit-setup time.
//
// AlphaTauG1/BetaTauG1 here are the degree-0 evaluations alpha*G1 and
// beta*G1 (the circuit-independent part of A/B's constant term), named
// to match the PowersOfTau fields they're drawn from at setup time.
type ProvingKey struct {
	Domain     uint64
	A          []curve.G1Affine
	B1         []curve.G1Affine
	B2         []curve.G2Affine
	KPrivate   []curve.G1Affine
	HQuery     []curve.G1Affine
	Delta1     curve.G1Affine
	Delta2     curve.G2Affine
	AlphaTauG1 curve.G1Affine
	BetaTauG1  curve.G1Affine
	BetaG2     curve.G2Affine
}

// VerificationKey holds the public verification parameters.
type VerificationKey struct {
	Alpha1    curve.G1Affine
	Beta2     curve.G2Affine
	Gamma2    curve.G2Affine
	Delta2    curve.G2Affine
	KPublic   []curve.G1Affine
	NumPublic int
}

// Proof is a Groth16 proof: three group elements.
type Proof struct {
	A curve.G1Affine
	B curve.G2Affine
	C curve.G1Affine
}

// ErrConstraintUnsatisfied is returned by Prove when the supplied
// witness does not satisfy the R1CS; the prover refuses to emit a
// proof rather than produce one for an unsatisfiable instance.
type ErrConstraintUnsatisfied struct {
	Row int
}

func (e *ErrConstraintUnsatisfied) Error() string {
	return fmt.Sprintf("groth16: constraint %d unsatisfied, refusing to prove", e.Row)
}

type hResult struct {
	coeffs []field.Element
	err    error
}

// Prove computes a Groth16 proof for witness against r1/pk.
//
// Steps: validate the witness against r1; sample blinding scalars r,s
// (resampled on the zero-probability event either is zero); compute
// the H-polynomial via a coset NTT of A*B-C divided by the domain's
// vanishing polynomial concurrently with the A/B1/B2 MSMs over a done
// channel; then assemble A, B, and C, C folding in H, the private-wire
// K vector, and the r/s blinding cross-terms.
func Prove(ctx context.Context, pk *ProvingKey, r1 *r1cs.R1CS, witness []field.Element, rng io.Reader) (*Proof, error) {
	if err := r1.CheckWitness(witness); err != nil {
		if cu, ok := err.(*r1cs.ErrConstraintUnsatisfied); ok {
			return nil, &ErrConstraintUnsatisfied{Row: cu.Row}
		}
		return nil, err
	}

	logger := log.Logger().With().Int("numVariables", r1.NumVariables).Logger()
	logger.Debug().Msg("proving")

	r, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, fmt.Errorf("groth16: sampling r: %w", err)
	}
	s, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, fmt.Errorf("groth16: sampling s: %w", err)
	}

	chH := make(chan hResult, 1)
	go func() {
		h, err := computeH(pk, r1, witness)
		chH <- hResult{coeffs: h, err: err}
	}()

	numPrivate := len(pk.KPrivate)
	numPublicPlusOne := r1.NumVariables - numPrivate

	aMSM, err := curve.MSMG1(pk.A, witness)
	if err != nil {
		return nil, fmt.Errorf("groth16: A MSM: %w", err)
	}
	var aAcc curve.G1Jac
	aAcc.FromAffine(&pk.AlphaTauG1)
	aAcc.AddAssign(&aMSM)
	rDelta1 := curve.ScalarMulG1(pk.Delta1, r)
	aAcc.AddAssign(&rDelta1)

	b2MSM, err := curve.MSMG2(pk.B2, witness)
	if err != nil {
		return nil, fmt.Errorf("groth16: B2 MSM: %w", err)
	}
	var bAcc curve.G2Jac
	bAcc.FromAffine(&pk.BetaG2)
	bAcc.AddAssign(&b2MSM)
	sDelta2 := curve.ScalarMulG2(pk.Delta2, s)
	bAcc.AddAssign(&sDelta2)

	b1MSM, err := curve.MSMG1(pk.B1, witness)
	if err != nil {
		return nil, fmt.Errorf("groth16: B1 MSM: %w", err)
	}
	var b1Acc curve.G1Jac
	b1Acc.FromAffine(&pk.BetaTauG1)
	b1Acc.AddAssign(&b1MSM)
	sDelta1 := curve.ScalarMulG1(pk.Delta1, s)
	b1Acc.AddAssign(&sDelta1)

	res := <-chH
	if res.err != nil {
		return nil, res.err
	}
	hJac, err := curve.MSMG1(pk.HQuery[:len(res.coeffs)], res.coeffs)
	if err != nil {
		return nil, fmt.Errorf("groth16: H MSM: %w", err)
	}

	kJac, err := curve.MSMG1(pk.KPrivate, witness[numPublicPlusOne:])
	if err != nil {
		return nil, fmt.Errorf("groth16: K MSM: %w", err)
	}

	var cAcc curve.G1Jac
	cAcc.AddAssign(&hJac)
	cAcc.AddAssign(&kJac)

	sA := curve.ScalarMulG1(affineOf(aAcc), s)
	cAcc.AddAssign(&sA)

	rB1 := curve.ScalarMulG1(affineOf(b1Acc), r)
	cAcc.AddAssign(&rB1)

	negRSDelta1 := curve.ScalarMulG1(pk.Delta1, field.Neg(field.Mul(r, s)))
	cAcc.AddAssign(&negRSDelta1)

	var proof Proof
	proof.A.FromJacobian(&aAcc)
	proof.B.FromJacobian(&bAcc)
	proof.C.FromJacobian(&cAcc)

	logger.Debug().Msg("proof generated")
	return &proof, nil
}

// computeH evaluates A(x)*B(x)-C(x) on a coset of the size-pk.Domain
// evaluation domain, pointwise-divides by Z(x) (which is constant
// across the whole coset), and interpolates back -- the standard
// Groth16 H-polynomial route via coset FFT.
func computeH(pk *ProvingKey, r1 *r1cs.R1CS, witness []field.Element) ([]field.Element, error) {
	dom := poly.NewDomain(pk.Domain)

	aEvals := make([]field.Element, pk.Domain)
	bEvals := make([]field.Element, pk.Domain)
	cEvals := make([]field.Element, pk.Domain)
	for i := range r1.A {
		aEvals[i] = dotRow(r1.A[i], witness)
		bEvals[i] = dotRow(r1.B[i], witness)
		cEvals[i] = dotRow(r1.C[i], witness)
	}

	aCoeffs := dom.INTT(aEvals)
	bCoeffs := dom.INTT(bEvals)
	cCoeffs := dom.INTT(cEvals)

	aCoset := dom.CosetNTT(aCoeffs)
	bCoset := dom.CosetNTT(bCoeffs)
	cCoset := dom.CosetNTT(cCoeffs)

	zVal := field.Sub(field.Pow(dom.CosetShift(), new(big.Int).SetUint64(pk.Domain)), field.One())
	zInv := field.Inverse(zVal)

	num := make([]field.Element, pk.Domain)
	for i := range num {
		num[i] = field.Mul(field.Sub(field.Mul(aCoset[i], bCoset[i]), cCoset[i]), zInv)
	}

	return dom.CosetINTT(num), nil
}

func dotRow(row []r1cs.Term, w []field.Element) field.Element {
	acc := field.Zero()
	for _, t := range row {
		acc = field.Add(acc, field.Mul(t.Coefficient, w[t.Column]))
	}
	return acc
}

func affineOf(j curve.G1Jac) curve.G1Affine {
	var a curve.G1Affine
	a.FromJacobian(&j)
	return a
}

// Verify checks proof against vk and publicInputs: subgroup membership
// preconditions, the vk_x MSM over public inputs, then the single
// multi-pairing check e(-A,B)*e(alpha,beta)*e(vk_x,gamma)*e(C,delta) = 1.
func Verify(vk *VerificationKey, publicInputs []field.Element, proof *Proof) error {
	if len(publicInputs) != vk.NumPublic {
		return fmt.Errorf("groth16: expected %d public inputs, got %d", vk.NumPublic, len(publicInputs))
	}
	if !curve.InSubgroupG1(proof.A) || !curve.InSubgroupG1(proof.C) {
		return fmt.Errorf("groth16: proof element not in G1 subgroup")
	}
	if !curve.InSubgroupG2(proof.B) {
		return fmt.Errorf("groth16: proof element not in G2 subgroup")
	}

	full := append([]field.Element{field.One()}, publicInputs...)
	vkXJac, err := curve.MSMG1(vk.KPublic, full)
	if err != nil {
		return fmt.Errorf("groth16: vk_x MSM: %w", err)
	}
	var vkX curve.G1Affine
	vkX.FromJacobian(&vkXJac)

	var negA curve.G1Jac
	negA.FromAffine(&proof.A)
	negA.Neg(&negA)
	var negAAffine curve.G1Affine
	negAAffine.FromJacobian(&negA)

	ok, err := curve.MultiPairingCheck(
		[]curve.G1Affine{negAAffine, vk.Alpha1, vkX, proof.C},
		[]curve.G2Affine{proof.B, vk.Beta2, vk.Gamma2, vk.Delta2},
	)
	if err != nil {
		return fmt.Errorf("groth16: verification pairing: %w", err)
	}
	if !ok {
		return fmt.Errorf("groth16: proof rejected")
	}
	return nil
}

// verifyExplicit computes the four pairings separately rather than via
// the batched multi-pairing optimization, used only to demonstrate the
// exact (non-batched) identity holds alongside the optimized path.
func verifyExplicit(vk *VerificationKey, publicInputs []field.Element, proof *Proof) error {
	full := append([]field.Element{field.One()}, publicInputs...)
	vkXJac, err := curve.MSMG1(vk.KPublic, full)
	if err != nil {
		return err
	}
	var vkX curve.G1Affine
	vkX.FromJacobian(&vkXJac)

	eAB, err := curve.Pair(proof.A, proof.B)
	if err != nil {
		return err
	}
	eAlphaBeta, err := curve.Pair(vk.Alpha1, vk.Beta2)
	if err != nil {
		return err
	}
	eVkXGamma, err := curve.Pair(vkX, vk.Gamma2)
	if err != nil {
		return err
	}
	eCDelta, err := curve.Pair(proof.C, vk.Delta2)
	if err != nil {
		return err
	}

	rhs := eAlphaBeta
	rhs.Mul(&rhs, &eVkXGamma)
	rhs.Mul(&rhs, &eCDelta)

	if !eAB.Equal(&rhs) {
		return fmt.Errorf("groth16: explicit pairing identity failed")
	}
	return nil
}
