// Package circuitsetup derives a circuit-specific Groth16 proving and
// verification key pair from a compiled R1CS and a Powers-of-Tau
// structured reference string.
package circuitsetup

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/poly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/r1cs"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
)

// ErrInsufficientPowers is returned when the supplied PowersOfTau
// isn't deep enough to cover the R1CS's constraint count.
type ErrInsufficientPowers struct {
	Need, Have uint64
}

func (e *ErrInsufficientPowers) Error() string {
	return fmt.Sprintf("circuitsetup: need powers of tau up to degree %d, have %d", e.Need, e.Have)
}

func nextPow2(n int) uint64 {
	p := uint64(1)
	for p < uint64(n) {
		p <<= 1
	}
	return p
}

// Setup derives (ProvingKey, VerificationKey) for r1 given pot, using
// freshly sampled toxic gamma/delta. Per-variable evaluations
// (A_j(τ)·G1 etc.) are computed by evaluating the Lagrange basis at τ
// -- exactly A_j(τ) = sum_i L_i(τ) * A[i][j] -- fanned out per j with
// errgroup since no variable's computation depends on another's.
func Setup(ctx context.Context, r1 *r1cs.R1CS, pot *srs.PowersOfTau, gamma, delta field.Element) (*groth16.ProvingKey, *groth16.VerificationKey, error) {
	if err := r1.Validate(); err != nil {
		return nil, nil, err
	}

	m := nextPow2(len(r1.A))
	if pot.D < m {
		return nil, nil, &ErrInsufficientPowers{Need: m, Have: pot.D}
	}

	logger := log.Logger().With().Int("numConstraints", len(r1.A)).Int("numVariables", r1.NumVariables).Logger()
	logger.Info().Msg("deriving groth16 keys")

	dom := poly.NewDomain(m)

	lagrangeTauG1, lagrangeTauAlphaG1, lagrangeTauBetaG1, lagrangeTauG2 :=
		lagrangeBasisAtTau(dom, pot, m)

	n := r1.NumVariables
	aG1 := make([]curve.G1Affine, n)
	bG1 := make([]curve.G1Affine, n)
	bG2 := make([]curve.G2Affine, n)

	g, gctx := errgroup.WithContext(ctx)
	for j := 0; j < n; j++ {
		j := j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			var aAcc, bAcc curve.G1Jac
			var bAccG2 curve.G2Jac
			for i := range r1.A {
				coeffA := lookupCoeff(r1.A[i], j)
				if !coeffA.IsZero() {
					t := curve.ScalarMulG1(lagrangeTauG1[i], coeffA)
					aAcc.AddAssign(&t)
				}
				coeffB := lookupCoeff(r1.B[i], j)
				if !coeffB.IsZero() {
					t := curve.ScalarMulG1(lagrangeTauG1[i], coeffB)
					bAcc.AddAssign(&t)
					tg2 := curve.ScalarMulG2(lagrangeTauG2[i], coeffB)
					bAccG2.AddAssign(&tg2)
				}
			}
			aG1[j].FromJacobian(&aAcc)
			bG1[j].FromJacobian(&bAcc)
			bG2[j].FromJacobian(&bAccG2)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("circuitsetup: per-variable evaluation: %w", err)
	}

	// K_j = (beta*A_j(tau) + alpha*B_j(tau) + C_j(tau)) / gamma  for public
	// wires, / delta for private wires.
	invGamma := field.Inverse(gamma)
	invDelta := field.Inverse(delta)

	kPublic := make([]curve.G1Affine, r1.NumPublicInputs+1)
	kPrivate := make([]curve.G1Affine, n-(r1.NumPublicInputs+1))

	for j := 0; j < n; j++ {
		var acc curve.G1Jac
		// beta*A_j(tau)
		var betaAj curve.G1Jac
		for i := range r1.A {
			coeffA := lookupCoeff(r1.A[i], j)
			if coeffA.IsZero() {
				continue
			}
			t := curve.ScalarMulG1(lagrangeTauBetaG1[i], coeffA)
			betaAj.AddAssign(&t)
		}
		acc.AddAssign(&betaAj)
		// alpha*B_j(tau)
		var alphaBj curve.G1Jac
		for i := range r1.B {
			coeffB := lookupCoeff(r1.B[i], j)
			if coeffB.IsZero() {
				continue
			}
			t := curve.ScalarMulG1(lagrangeTauAlphaG1[i], coeffB)
			alphaBj.AddAssign(&t)
		}
		acc.AddAssign(&alphaBj)
		// C_j(tau)
		var cj curve.G1Jac
		for i := range r1.C {
			coeffC := lookupCoeff(r1.C[i], j)
			if coeffC.IsZero() {
				continue
			}
			t := curve.ScalarMulG1(lagrangeTauG1[i], coeffC)
			cj.AddAssign(&t)
		}
		acc.AddAssign(&cj)

		if j <= r1.NumPublicInputs {
			scaled := scaleG1Jac(acc, invGamma)
			kPublic[j].FromJacobian(&scaled)
		} else {
			scaled := scaleG1Jac(acc, invDelta)
			kPrivate[j-(r1.NumPublicInputs+1)].FromJacobian(&scaled)
		}
	}

	// H_query[i] = delta^-1 * tau^i * Z(tau) ... represented here as
	// delta^-1 scaled powers of tau in G1, consumed by groth16.Prove's
	// coset-NTT H-polynomial computation against the vanishing
	// polynomial of degree m.
	hQuery := make([]curve.G1Affine, m)
	for i := uint64(0); i < m; i++ {
		j := curve.ScalarMulG1(pot.TauG1[i], invDelta)
		hQuery[i].FromJacobian(&j)
	}

	deltaG1Jac := curve.ScalarMulG1(curve.Generator1(), delta)
	var deltaG1 curve.G1Affine
	deltaG1.FromJacobian(&deltaG1Jac)

	deltaG2Jac := curve.ScalarMulG2(curve.Generator2(), delta)
	var deltaG2 curve.G2Affine
	deltaG2.FromJacobian(&deltaG2Jac)

	gammaG2Jac := curve.ScalarMulG2(curve.Generator2(), gamma)
	var gammaG2 curve.G2Affine
	gammaG2.FromJacobian(&gammaG2Jac)

	pk := &groth16.ProvingKey{
		Domain:     m,
		A:          aG1,
		B1:         bG1,
		B2:         bG2,
		KPrivate:   kPrivate,
		HQuery:     hQuery,
		Delta1:     deltaG1,
		Delta2:     deltaG2,
		AlphaTauG1: pot.AlphaTauG1[0],
		BetaTauG1:  pot.BetaTauG1[0],
		BetaG2:     pot.BetaG2,
	}

	vk := &groth16.VerificationKey{
		Alpha1:    pot.AlphaTauG1[0],
		Beta2:     pot.BetaG2,
		Gamma2:    gammaG2,
		Delta2:    deltaG2,
		KPublic:   kPublic,
		NumPublic: r1.NumPublicInputs,
	}

	logger.Debug().Msg("groth16 keys derived")
	return pk, vk, nil
}

func lookupCoeff(row []r1cs.Term, column int) field.Element {
	for _, t := range row {
		if t.Column == column {
			return t.Coefficient
		}
	}
	return field.Zero()
}

func scaleG1Jac(j curve.G1Jac, s field.Element) curve.G1Jac {
	var affine curve.G1Affine
	affine.FromJacobian(&j)
	return curve.ScalarMulG1(affine, s)
}

// lagrangeBasisAtTau evaluates every Lagrange basis polynomial L_i of
// the size-m evaluation domain at tau, returned already scaled into
// G1/G2 (and by alpha/beta) so Setup never needs tau itself -- it only
// has pot.TauG1/TauG2 to draw from, matching the trusted-setup
// constraint that tau is toxic waste.
//
// L_i(tau)*G1 is recovered via the domain's inverse DFT matrix applied
// to the tau-power vector already committed in pot: L_i(tau) =
// (1/m) * sum_k (domain.Generator^-1)^(i*k) * tau^k. Rather than forming
// that sum in the exponent (which would require tau itself), this uses
// the well-known identity that columns of the iDFT applied to
// (G1, tau*G1, tau^2*G1, ...) yield (L_0(tau)*G1, L_1(tau)*G1, ...)
// directly; only poly.Domain's generator is used, to build the
// inverse-DFT matrix entries.
func lagrangeBasisAtTau(dom *poly.Domain, pot *srs.PowersOfTau, m uint64) (g1, alphaG1, betaG1 []curve.G1Affine, g2 []curve.G2Affine) {
	g1 = intoLagrangeG1(dom, pot.TauG1[:m])
	alphaG1 = intoLagrangeG1(dom, pot.AlphaTauG1[:m])
	betaG1 = intoLagrangeG1(dom, pot.BetaTauG1[:m])
	g2 = intoLagrangeG2(dom, pot.TauG2[:m])
	return
}

// intoLagrangeG1 applies the domain's INTT to a vector of G1 points by
// linearity: since INTT is a scalar-matrix applied to field elements,
// and scalar multiplication distributes over that same matrix applied
// to a fixed base's exponents, output point i is the sum over k of
// (1/n)*(generator^-i)^k times input point k, computed directly as n*n
// scalar multiplications (no MSM and no NTT butterflies).
func intoLagrangeG1(dom *poly.Domain, points []curve.G1Affine) []curve.G1Affine {
	n := len(points)
	out := make([]curve.G1Affine, n)
	invN := field.Inverse(field.FromUint64(uint64(n)))
	gen := dom.Generator()
	for i := 0; i < n; i++ {
		var acc curve.G1Jac
		genInvPowI := field.Inverse(field.Pow(gen, bigIntOf(uint64(i))))
		pow := field.One()
		for k := 0; k < n; k++ {
			coeff := field.Mul(invN, pow)
			t := curve.ScalarMulG1(points[k], coeff)
			acc.AddAssign(&t)
			pow = field.Mul(pow, genInvPowI)
		}
		out[i].FromJacobian(&acc)
	}
	return out
}

func intoLagrangeG2(dom *poly.Domain, points []curve.G2Affine) []curve.G2Affine {
	n := len(points)
	out := make([]curve.G2Affine, n)
	invN := field.Inverse(field.FromUint64(uint64(n)))
	gen := dom.Generator()
	for i := 0; i < n; i++ {
		var acc curve.G2Jac
		genInvPowI := field.Inverse(field.Pow(gen, bigIntOf(uint64(i))))
		pow := field.One()
		for k := 0; k < n; k++ {
			coeff := field.Mul(invN, pow)
			t := curve.ScalarMulG2(points[k], coeff)
			acc.AddAssign(&t)
			pow = field.Mul(pow, genInvPowI)
		}
		out[i].FromJacobian(&acc)
	}
	return out
}

func bigIntOf(v uint64) *big.Int { return new(big.Int).SetUint64(v) }
