// Package transcript implements a Fiat-Shamir transcript: an
// append-only byte log hashed with Keccak-256, from which scalar and
// G2 challenges are squeezed. Prover and verifier reach bit-identical
// challenges as long as they absorb messages in the same order; any
// divergence collapses to a single mismatched challenge rather than a
// subtler failure.
package transcript

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// Transcript holds the byte log of everything absorbed so far (hashed
// afresh with Keccak-256 on every squeeze), plus a monotonic squeeze
// counter so two challenges
// squeezed back-to-back (without an intervening Absorb) still differ.
type Transcript struct {
	h        *sha3Wrapper
	squeezes uint64
}

// sha3Wrapper holds the raw absorbed log; digest re-hashes all of it on
// each squeeze, so squeezing never disturbs later Absorb calls.
type sha3Wrapper struct {
	log []byte
}

// New returns an empty transcript seeded with a domain-separation label.
func New(domain string) *Transcript {
	t := &Transcript{h: &sha3Wrapper{}}
	t.Absorb("domain", []byte(domain))
	return t
}

// Absorb appends label and data to the transcript's log.
func (t *Transcript) Absorb(label string, data []byte) {
	t.h.log = append(t.h.log, []byte(label)...)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	t.h.log = append(t.h.log, lenBuf[:]...)
	t.h.log = append(t.h.log, data...)
}

// AbsorbElement absorbs a field element's canonical little-endian encoding.
func (t *Transcript) AbsorbElement(label string, e field.Element) {
	b := e.Bytes()
	t.Absorb(label, b[:])
}

// AbsorbG1 absorbs the compressed encoding of a G1 point.
func (t *Transcript) AbsorbG1(label string, p curve.G1Affine) {
	b := p.Bytes()
	t.Absorb(label, b[:])
}

// AbsorbG2 absorbs the compressed encoding of a G2 point.
func (t *Transcript) AbsorbG2(label string, p curve.G2Affine) {
	b := p.Bytes()
	t.Absorb(label, b[:])
}

// digest returns the Keccak-256 hash of the log plus a label and the
// current squeeze counter, then advances the counter. Each call
// observes the full log absorbed up to this point, so later squeezes
// implicitly bind everything absorbed since the transcript began.
func (t *Transcript) digest(label string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(t.h.log)
	h.Write([]byte(label))
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], t.squeezes)
	h.Write(ctr[:])
	t.squeezes++
	return h.Sum(nil)
}

// SqueezeScalar derives a field element challenge from the transcript's
// current state.
func (t *Transcript) SqueezeScalar(label string) field.Element {
	digest := t.digest(label)
	var bi big.Int
	bi.SetBytes(digest)
	return field.FromBigInt(&bi)
}

// SqueezePoint derives a point on G2 by seeding a ChaCha20 keystream
// with the transcript digest and using the first block as a scalar
// multiplying the G2 generator -- a simple random-scalar approach
// rather than a full hash-to-curve IETF construction (out of scope).
func (t *Transcript) SqueezePoint(label string) (curve.G2Affine, error) {
	digest := t.digest(label)
	var key [chacha20.KeySize]byte
	copy(key[:], digest)
	var nonce [chacha20.NonceSize]byte

	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return curve.G2Affine{}, err
	}
	stream := make([]byte, 32)
	cipher.XORKeyStream(stream, stream)

	var bi big.Int
	bi.SetBytes(stream)
	scalar := field.FromBigInt(&bi)

	jac := curve.ScalarMulG2(curve.Generator2(), scalar)
	var affine curve.G2Affine
	affine.FromJacobian(&jac)
	return affine, nil
}
