// Package poseidon implements the Poseidon permutation over the
// BLS12-381 scalar field and a quaternary Merkle tree built on top of
// it, for the storage circuit's witness data.
//
// Round constants and the MDS matrix are never hard-coded here: they
// belong to whatever Circom circuit this witness data feeds, and must
// be supplied by the caller via Params rather than guessed.
package poseidon

import (
	"fmt"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// Params is the injectable round-constant/MDS-matrix table a Poseidon
// instance runs against. Width is always 5: one capacity element plus
// four rate elements, matching Hash4's 4-ary compression.
type Params interface {
	RoundConstants() [][]field.Element
	MDS() [][]field.Element
	FullRounds() int
	PartialRounds() int
}

const width = 5

// Hash4 runs the Poseidon permutation over [0, in[0], in[1], in[2], in[3]]
// (a zero capacity element followed by the four rate elements) and
// returns the first element of the permuted state, the standard
// sponge-squeeze-one construction for a fixed-arity compression
// function.
func Hash4(p Params, in [4]field.Element) (field.Element, error) {
	state := [width]field.Element{
		field.Zero(), in[0], in[1], in[2], in[3],
	}
	out, err := permute(p, state)
	if err != nil {
		return field.Element{}, err
	}
	return out[0], nil
}

// permute runs Params' full/partial round schedule: full rounds run the
// S-box over every state element, partial rounds run it over only the
// first, and every round adds its round-constant row and mixes with MDS.
func permute(p Params, state [width]field.Element) ([width]field.Element, error) {
	rc := p.RoundConstants()
	mds := p.MDS()
	full := p.FullRounds()
	partial := p.PartialRounds()
	total := full + partial

	if len(rc) != total {
		return state, fmt.Errorf("poseidon: expected %d round-constant rows, got %d", total, len(rc))
	}
	if len(mds) != width {
		return state, fmt.Errorf("poseidon: MDS matrix must be %dx%d, got %d rows", width, width, len(mds))
	}

	halfFull := full / 2
	for round := 0; round < total; round++ {
		if len(rc[round]) != width {
			return state, fmt.Errorf("poseidon: round %d constants must have %d entries, got %d", round, width, len(rc[round]))
		}
		for i := range state {
			state[i] = field.Add(state[i], rc[round][i])
		}

		if round < halfFull || round >= halfFull+partial {
			for i := range state {
				state[i] = sbox(state[i])
			}
		} else {
			state[0] = sbox(state[0])
		}

		state = mixMDS(mds, state)
	}
	return state, nil
}

// sbox computes x^5, the standard Poseidon S-box exponent for BLS
// scalar-field-sized primes (gcd(5, p-1)=1).
func sbox(x field.Element) field.Element {
	x2 := field.Mul(x, x)
	x4 := field.Mul(x2, x2)
	return field.Mul(x4, x)
}

func mixMDS(mds [][]field.Element, state [width]field.Element) [width]field.Element {
	var out [width]field.Element
	for i := 0; i < width; i++ {
		acc := field.Zero()
		for j := 0; j < width; j++ {
			acc = field.Add(acc, field.Mul(mds[i][j], state[j]))
		}
		out[i] = acc
	}
	return out
}

// MerkleTree is a quaternary (4-ary) Merkle tree over a fixed-size leaf
// slice; Active marks how many leading leaves hold real data, the rest
// being implicit zero padding up to the next power of four.
type MerkleTree struct {
	Leaves []field.Element
	Active int
}

// Root hashes Leaves up to a single quaternary root using p, padding
// with field.Zero() out to the next power-of-four width and up the
// remaining levels.
func (t *MerkleTree) Root(p Params) (field.Element, error) {
	if t.Active < 0 || t.Active > len(t.Leaves) {
		return field.Element{}, fmt.Errorf("poseidon: active count %d out of range for %d leaves", t.Active, len(t.Leaves))
	}

	width4 := nextPow4(len(t.Leaves))
	level := make([]field.Element, width4)
	copy(level, t.Leaves)

	for len(level) > 1 {
		next := make([]field.Element, len(level)/4)
		for i := range next {
			var group [4]field.Element
			copy(group[:], level[i*4:i*4+4])
			h, err := Hash4(p, group)
			if err != nil {
				return field.Element{}, err
			}
			next[i] = h
		}
		level = next
	}
	return level[0], nil
}

func nextPow4(n int) int {
	if n <= 1 {
		return 1
	}
	w := 1
	for w < n {
		w *= 4
	}
	return w
}
