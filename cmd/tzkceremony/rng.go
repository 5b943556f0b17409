package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/config"
)

// deterministicReader is a chacha20 keystream seeded from a fixed
// digest, the same "key the cipher with a transcript digest, XOR a
// zero buffer" construction transcript.SqueezePoint uses to turn a
// digest into field material.
type deterministicReader struct {
	cipher *chacha20.Cipher
}

func newDeterministicReader(seed []byte) (*deterministicReader, error) {
	digest := blake2b.Sum256(seed)
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(digest[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("tzkceremony: keying deterministic rng: %w", err)
	}
	return &deterministicReader{cipher: c}, nil
}

func (d *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	d.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// rngForMode picks the entropy source a contribution step draws its
// secret scalars from. "random" always reads the OS CSPRNG; "testing"
// and "deterministic" both derive a reproducible keystream from the
// blockhash plus the contributor index, so a ceremony run under either
// mode can be replayed byte-for-byte in a test harness.
func rngForMode(mode config.Mode, blockhash string, contributorIndex int) (io.Reader, error) {
	switch mode {
	case config.ModeRandom:
		return rand.Reader, nil
	case config.ModeTesting, config.ModeDeterministic:
		seed := fmt.Sprintf("%s/%s/%d", mode, blockhash, contributorIndex)
		return newDeterministicReader([]byte(seed))
	default:
		return nil, fmt.Errorf("tzkceremony: unrecognized mode %q", mode)
	}
}

func decodeBlockhash(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("tzkceremony: blockhash must be hex: %w", err)
	}
	return b, nil
}
