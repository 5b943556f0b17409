// Package srs generates and validates the Powers-of-Tau structured
// reference string: the universal, circuit-independent half of the
// Groth16 trusted setup.
package srs

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/zeroize"
)

// PowersOfTau holds the five public vectors derived from the toxic
// triple (τ,α,β); none of τ, α, β themselves survive past Generate.
type PowersOfTau struct {
	D          uint64
	TauG1      []curve.G1Affine
	TauG2      []curve.G2Affine
	AlphaTauG1 []curve.G1Affine
	BetaTauG1  []curve.G1Affine
	BetaG2     curve.G2Affine
}

// Options configures Generate's resource usage.
type Options struct {
	// MaxChunkBytes bounds the working-set size of a single parallel
	// scalar-multiply chunk; 0 selects a default sized for commodity
	// hardware.
	MaxChunkBytes int
}

const defaultMaxChunkBytes = 64 << 20

func (o Options) chunkSize(pointBytes int) int {
	limit := o.MaxChunkBytes
	if limit <= 0 {
		limit = defaultMaxChunkBytes
	}
	n := limit / pointBytes
	if n < 1 {
		n = 1
	}
	return n
}

// Generate builds a fresh Powers-of-Tau SRS of depth d (TauG1 has d+1
// entries, covering polynomials up to degree d): sample τ,α,β
// uniformly (with zero rejected and resampled), precompute τ^i
// sequentially (each step depends on the last), then fan the four
// scalar-multiply vectors out across goroutines bounded by
// opts.MaxChunkBytes, and finally zeroize τ,α,β before returning.
func Generate(ctx context.Context, d uint64, opts Options) (pot *PowersOfTau, err error) {
	logger := log.Logger().With().Uint64("d", d).Logger()
	logger.Info().Msg("generating powers of tau")

	var tau, alpha, beta field.Element
	guard := zeroize.NewGuard()
	defer func() {
		if debugZeroizeHook != nil {
			debugZeroizeHook(tau, alpha, beta)
		}
		guard.Release()
	}()

	tau, err = field.CryptoRandomNonZero()
	if err != nil {
		return nil, fmt.Errorf("srs: sampling tau: %w", err)
	}
	guard.Track(&tau)

	alpha, err = field.CryptoRandomNonZero()
	if err != nil {
		return nil, fmt.Errorf("srs: sampling alpha: %w", err)
	}
	guard.Track(&alpha)

	beta, err = field.CryptoRandomNonZero()
	if err != nil {
		return nil, fmt.Errorf("srs: sampling beta: %w", err)
	}
	guard.Track(&beta)

	powers := make([]field.Element, d+1)
	powers[0] = field.One()
	for i := uint64(1); i <= d; i++ {
		powers[i] = field.Mul(powers[i-1], tau)
	}

	g1, g2 := curve.Generator1(), curve.Generator2()

	tauG1 := make([]curve.G1Affine, d+1)
	tauG2 := make([]curve.G2Affine, d+1)
	alphaTauG1 := make([]curve.G1Affine, d+1)
	betaTauG1 := make([]curve.G1Affine, d+1)

	g, gctx := errgroup.WithContext(ctx)
	chunk := opts.chunkSize(48 * runtime.NumCPU())

	for start := uint64(0); start < d+1; start += uint64(chunk) {
		start := start
		end := start + uint64(chunk)
		if end > d+1 {
			end = d + 1
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			for i := start; i < end; i++ {
				j1 := curve.ScalarMulG1(g1, powers[i])
				tauG1[i].FromJacobian(&j1)

				j2 := curve.ScalarMulG2(g2, powers[i])
				tauG2[i].FromJacobian(&j2)

				aPow := field.Mul(alpha, powers[i])
				ja := curve.ScalarMulG1(g1, aPow)
				alphaTauG1[i].FromJacobian(&ja)

				bPow := field.Mul(beta, powers[i])
				jb := curve.ScalarMulG1(g1, bPow)
				betaTauG1[i].FromJacobian(&jb)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("srs: parallel scalar-multiply: %w", err)
	}

	betaG2Jac := curve.ScalarMulG2(g2, beta)
	var betaG2 curve.G2Affine
	betaG2.FromJacobian(&betaG2Jac)

	logger.Debug().Msg("powers of tau generated")

	return &PowersOfTau{
		D:          d,
		TauG1:      tauG1,
		TauG2:      tauG2,
		AlphaTauG1: alphaTauG1,
		BetaTauG1:  betaTauG1,
		BetaG2:     betaG2,
	}, nil
}

// Validate checks the pairing ladder that binds this PowersOfTau to a
// specific contributor's published α,β commitments in G2: that
// AlphaTauG1[0] and BetaTauG1[0] match contributorAlphaG2 and
// contributorBetaG2, and that TauG1 progresses consistently
// (e(TauG1[i+1], G2) = e(TauG1[i], TauG2[1])) for every i < D. Each
// check is its own multi-pairing call, one per progression index. The
// higher AlphaTauG1/BetaTauG1 entries, TauG2 beyond index 1 and BetaG2
// are not checked.
func (p *PowersOfTau) Validate(contributorAlphaG2, contributorBetaG2 curve.G2Affine) error {
	if uint64(len(p.TauG1)) != p.D+1 || uint64(len(p.TauG2)) != p.D+1 {
		return fmt.Errorf("srs: vector length does not match D=%d", p.D)
	}

	g1 := []curve.G1Affine{p.AlphaTauG1[0]}
	negG1 := curve.Generator1()
	var negJac curve.G1Jac
	negJac.FromAffine(&negG1)
	negJac.Neg(&negJac)
	var negG1Affine curve.G1Affine
	negG1Affine.FromJacobian(&negJac)
	g1 = append(g1, negG1Affine)
	g2 := []curve.G2Affine{curve.Generator2(), contributorAlphaG2}
	ok, err := curve.MultiPairingCheck(g1, g2)
	if err != nil {
		return fmt.Errorf("srs: alpha pairing check: %w", err)
	}
	if !ok {
		return fmt.Errorf("srs: alphaTauG1[0] does not match contributor's alphaG2")
	}

	g1 = []curve.G1Affine{p.BetaTauG1[0], negG1Affine}
	g2 = []curve.G2Affine{curve.Generator2(), contributorBetaG2}
	ok, err = curve.MultiPairingCheck(g1, g2)
	if err != nil {
		return fmt.Errorf("srs: beta pairing check: %w", err)
	}
	if !ok {
		return fmt.Errorf("srs: betaTauG1[0] does not match contributor's betaG2")
	}

	for i := uint64(0); i < p.D; i++ {
		var negTauG1Jac curve.G1Jac
		negTauG1Jac.FromAffine(&p.TauG1[i])
		negTauG1Jac.Neg(&negTauG1Jac)
		var negTauG1 curve.G1Affine
		negTauG1.FromJacobian(&negTauG1Jac)

		ok, err := curve.MultiPairingCheck(
			[]curve.G1Affine{p.TauG1[i+1], negTauG1},
			[]curve.G2Affine{curve.Generator2(), p.TauG2[1]},
		)
		if err != nil {
			return fmt.Errorf("srs: tau progression check at %d: %w", i, err)
		}
		if !ok {
			return fmt.Errorf("srs: tau progression check failed at index %d", i)
		}
	}
	return nil
}

// debugZeroizeHook, when non-nil, is invoked with the scalars about to
// be zeroized inside Generate before they are scrubbed. Test-only.
var debugZeroizeHook func(tau, alpha, beta field.Element)
