// Copyright 2020 ConsenSys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package curve wraps gnark-crypto's BLS12-381 group and pairing types.
//
// Chained arithmetic stays in Jacobian (projective) form; conversion to
// affine happens only at serialization and MSM-input boundaries.
package curve

import (
	"errors"
	"fmt"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

type (
	// G1Affine is an affine point on the BLS12-381 G1 curve.
	G1Affine = bls12381.G1Affine
	// G1Jac is a Jacobian (projective) point on G1, used for chained arithmetic.
	G1Jac = bls12381.G1Jac
	// G2Affine is an affine point on the BLS12-381 G2 (quadratic twist) curve.
	G2Affine = bls12381.G2Affine
	// G2Jac is a Jacobian point on G2.
	G2Jac = bls12381.G2Jac
	// GT is an element of the pairing target group (the 12-th extension).
	GT = bls12381.GT
)

// Generator1 returns the canonical G1 generator.
func Generator1() G1Affine {
	_, _, g1, _ := bls12381.Generators()
	return g1
}

// Generator2 returns the canonical G2 generator.
func Generator2() G2Affine {
	_, _, _, g2 := bls12381.Generators()
	return g2
}

// ScalarMulG1 returns s*P for an affine P, returning the result in
// Jacobian form so the caller can chain further additions without
// paying a field inversion per step.
func ScalarMulG1(p G1Affine, s field.Element) G1Jac {
	var j G1Jac
	j.FromAffine(&p)
	var bi big.Int
	s.Element.BigInt(&bi)
	j.ScalarMultiplication(&j, &bi)
	return j
}

// ScalarMulG2 returns s*P for an affine P, in Jacobian form.
func ScalarMulG2(p G2Affine, s field.Element) G2Jac {
	var j G2Jac
	j.FromAffine(&p)
	var bi big.Int
	s.Element.BigInt(&bi)
	j.ScalarMultiplication(&j, &bi)
	return j
}

// BatchScalarMulG1 computes s*G1 for every scalar in s, matching the
// teacher/ingonyama pattern of batching independent scalar multiplies of
// a single base point. Nothing in this module calls it; the Groth16
// prover computes its blinding terms with ScalarMulG1.
func BatchScalarMulG1(base G1Affine, scalars []field.Element) []G1Jac {
	frScalars := make([]fr.Element, len(scalars))
	for i, s := range scalars {
		frScalars[i] = s.Element
	}
	affines := bls12381.BatchScalarMultiplicationG1(&base, frScalars)
	out := make([]G1Jac, len(affines))
	for i := range affines {
		out[i].FromAffine(&affines[i])
	}
	return out
}

// MSMG1 computes the multi-scalar multiplication sum(scalars[i]*points[i])
// over G1, parallelised across available CPUs (CPU-only; no GPU backend).
func MSMG1(points []G1Affine, scalars []field.Element) (G1Jac, error) {
	if len(points) != len(scalars) {
		return G1Jac{}, fmt.Errorf("curve: MSM length mismatch: %d points, %d scalars", len(points), len(scalars))
	}
	frScalars := make([]fr.Element, len(scalars))
	for i, s := range scalars {
		frScalars[i] = s.Element
	}
	var result G1Jac
	if _, err := result.MultiExp(points, frScalars, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return G1Jac{}, fmt.Errorf("curve: G1 MSM: %w", err)
	}
	return result, nil
}

// MSMG2 is MSMG1's G2 counterpart.
func MSMG2(points []G2Affine, scalars []field.Element) (G2Jac, error) {
	if len(points) != len(scalars) {
		return G2Jac{}, fmt.Errorf("curve: MSM length mismatch: %d points, %d scalars", len(points), len(scalars))
	}
	frScalars := make([]fr.Element, len(scalars))
	for i, s := range scalars {
		frScalars[i] = s.Element
	}
	var result G2Jac
	if _, err := result.MultiExp(points, frScalars, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return G2Jac{}, fmt.Errorf("curve: G2 MSM: %w", err)
	}
	return result, nil
}

// MultiPairingCheck reports whether prod(e(g1[i], g2[i])) == 1 in Gt, the
// single multi-pairing primitive every verification check is built from.
func MultiPairingCheck(g1 []G1Affine, g2 []G2Affine) (bool, error) {
	if len(g1) != len(g2) {
		return false, errors.New("curve: multi-pairing length mismatch")
	}
	ok, err := bls12381.PairingCheck(g1, g2)
	if err != nil {
		return false, fmt.Errorf("curve: pairing check: %w", err)
	}
	return ok, nil
}

// Pair computes a single e(P, Q) for use only where an explicit,
// non-batched identity must be demonstrated.
func Pair(p G1Affine, q G2Affine) (GT, error) {
	res, err := bls12381.Pair([]G1Affine{p}, []G2Affine{q})
	if err != nil {
		return GT{}, fmt.Errorf("curve: pairing: %w", err)
	}
	return res, nil
}

// InSubgroupG1 reports whether p is a valid point in the prime-order G1 subgroup.
func InSubgroupG1(p G1Affine) bool {
	return p.IsInSubGroup()
}

// InSubgroupG2 reports whether p is a valid point in the prime-order G2 subgroup.
func InSubgroupG2(p G2Affine) bool {
	return p.IsInSubGroup()
}

// IsIdentityG1 reports whether p is the G1 identity element.
func IsIdentityG1(p G1Affine) bool {
	return p.IsInfinity()
}

// IsIdentityG2 reports whether p is the G2 identity element.
func IsIdentityG2(p G2Affine) bool {
	return p.IsInfinity()
}
