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

// Package field wraps the BLS12-381 scalar field element from
// gnark-crypto, adding the sample-with-retry and zeroization behaviour
// the ceremony and proving paths require.
package field

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Element is a BLS12-381 scalar field element (255-bit prime order).
type Element struct {
	fr.Element
}

// Zero returns the additive identity.
func Zero() Element {
	var e Element
	e.SetZero()
	return e
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.SetOne()
	return e
}

// FromUint64 builds an Element from a small integer.
func FromUint64(v uint64) Element {
	var e Element
	e.SetUint64(v)
	return e
}

// FromBigInt builds an Element by reducing a big.Int modulo the field order.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.Element.SetBigInt(v)
	return e
}

// Add returns a+b.
func Add(a, b Element) Element {
	var out Element
	out.Element.Add(&a.Element, &b.Element)
	return out
}

// Sub returns a-b.
func Sub(a, b Element) Element {
	var out Element
	out.Element.Sub(&a.Element, &b.Element)
	return out
}

// Mul returns a*b.
func Mul(a, b Element) Element {
	var out Element
	out.Element.Mul(&a.Element, &b.Element)
	return out
}

// Neg returns -a.
func Neg(a Element) Element {
	var out Element
	out.Element.Neg(&a.Element)
	return out
}

// Inverse returns a^-1, or zero for a zero input (no panic); callers at
// component boundaries must reject zero divisors before reaching here -- numerical
// primitives assume pre-validated input.
func Inverse(a Element) Element {
	var out Element
	out.Element.Inverse(&a.Element)
	return out
}

// Pow returns a^e.
func Pow(a Element, e *big.Int) Element {
	var out Element
	out.Element.Exp(a.Element, e)
	return out
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool {
	return a.Element.IsZero()
}

// Equal reports whether a == b.
func (a Element) Equal(b Element) bool {
	return a.Element.Equal(&b.Element)
}

// Bytes returns the little-endian canonical encoding.
func (a Element) Bytes() [fr.Bytes]byte {
	be := a.Element.Bytes()
	var le [fr.Bytes]byte
	for i, b := range be {
		le[fr.Bytes-1-i] = b
	}
	return le
}

// SetBytes decodes a little-endian canonical encoding.
func (a *Element) SetBytes(le []byte) error {
	if len(le) != fr.Bytes {
		return fmt.Errorf("field: expected %d bytes, got %d", fr.Bytes, len(le))
	}
	be := make([]byte, fr.Bytes)
	for i, b := range le {
		be[fr.Bytes-1-i] = b
	}
	a.Element.SetBytes(be)
	return nil
}

// Zeroize overwrites the element's limbs with zero. Implements
// zeroize.Zeroizer so toxic scalars can be scrubbed via a scoped guard.
func (a *Element) Zeroize() {
	for i := range a.Element {
		a.Element[i] = 0
	}
}

// Random draws a uniformly random element sourced from rng: 16 bytes
// beyond the field's canonical width are read and reduced modulo the
// field order, so the statistical bias from the reduction is
// negligible without needing rejection sampling against the modulus.
// rng is never ignored here -- deterministic/testing ceremony modes
// depend on every sampled scalar actually coming from the reader they
// were given.
func Random(rng io.Reader) (Element, error) {
	buf := make([]byte, fr.Bytes+16)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return Element{}, fmt.Errorf("field: random sample: %w", err)
	}
	return FromBigInt(new(big.Int).SetBytes(buf)), nil
}

// RandomNonZero draws uniformly from F, and on the vanishing-probability
// event of a zero result, resamples.
func RandomNonZero(rng io.Reader) (Element, error) {
	for {
		e, err := Random(rng)
		if err != nil {
			return Element{}, err
		}
		if !e.IsZero() {
			return e, nil
		}
	}
}

// CryptoRandomNonZero is a convenience wrapper over RandomNonZero using
// crypto/rand.Reader.
func CryptoRandomNonZero() (Element, error) {
	return RandomNonZero(rand.Reader)
}
