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

// Package poly implements dense univariate polynomials over the BLS12-381
// scalar field and their NTT/INTT evaluation domains.
package poly

import (
	"math/bits"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// Domain wraps gnark-crypto's fft.Domain, a multiplicative subgroup of F
// of a given power-of-two size together with its precomputed twiddle
// factors.
//
// Rather than lazily populating a single process-wide twiddle table the
// first time any size is needed, each distinct size gets its own Domain
// value, and domains are memoized in a write-once-per-log-size cache so
// callers share the precomputation cost without any package-level
// mutable table.
type Domain struct {
	inner *fft.Domain
}

var domainCache sync.Map // map[uint64]*Domain

// NewDomain returns the Domain of the smallest power of two >= size.
// Safe for concurrent use; the underlying fft.Domain is built once per
// distinct size and shared thereafter (it is read-only once constructed).
func NewDomain(size uint64) *Domain {
	n := nextPow2(size)
	if cached, ok := domainCache.Load(n); ok {
		return cached.(*Domain)
	}
	d := &Domain{inner: fft.NewDomain(n)}
	actual, _ := domainCache.LoadOrStore(n, d)
	return actual.(*Domain)
}

// Cardinality returns the domain's size (a power of two).
func (d *Domain) Cardinality() uint64 {
	return d.inner.Cardinality
}

// Generator returns the domain's primitive n-th root of unity.
func (d *Domain) Generator() field.Element {
	return field.Element{Element: d.inner.Generator}
}

// CosetShift returns the multiplicative generator CosetNTT/CosetINTT
// shift the domain by -- constant across the whole coset, which is why
// the vanishing polynomial X^n-1 evaluates to a single value everywhere
// on that coset.
func (d *Domain) CosetShift() field.Element {
	return field.Element{Element: d.inner.FrMultiplicativeGen}
}

// NTT evaluates coeffs (padded/truncated to the domain size) at every
// domain point, in place semantics: returns the evaluation vector.
func (d *Domain) NTT(coeffs []field.Element) []field.Element {
	vals := padToFr(coeffs, d.Cardinality())
	d.inner.FFT(vals, fft.DIF)
	fft.BitReverse(vals)
	return fromFr(vals)
}

// INTT is NTT's inverse: given point-values on the domain, recover
// coefficients.
func (d *Domain) INTT(evals []field.Element) []field.Element {
	vals := padToFr(evals, d.Cardinality())
	d.inner.FFTInverse(vals, fft.DIF)
	fft.BitReverse(vals)
	return fromFr(vals)
}

// CosetNTT evaluates coeffs on the multiplicative coset gG, used by the
// Groth16 H-polynomial computation.
func (d *Domain) CosetNTT(coeffs []field.Element) []field.Element {
	vals := padToFr(coeffs, d.Cardinality())
	d.inner.FFT(vals, fft.DIF, true)
	fft.BitReverse(vals)
	return fromFr(vals)
}

// CosetINTT is CosetNTT's inverse.
func (d *Domain) CosetINTT(evals []field.Element) []field.Element {
	vals := padToFr(evals, d.Cardinality())
	d.inner.FFTInverse(vals, fft.DIF, true)
	fft.BitReverse(vals)
	return fromFr(vals)
}

func padToFr(in []field.Element, size uint64) []fr.Element {
	out := make([]fr.Element, size)
	for i := range in {
		if uint64(i) >= size {
			break
		}
		out[i] = in[i].Element
	}
	return out
}

func fromFr(in []fr.Element) []field.Element {
	out := make([]field.Element, len(in))
	for i := range in {
		out[i] = field.Element{Element: in[i]}
	}
	return out
}

// nextPow2 returns the smallest power of two >= n (n >= 1).
func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}
