// Package ceremony implements the multi-party Powers-of-Tau
// contribution protocol: each contributor rescales the previous
// accumulator by a freshly sampled secret, proves it did so honestly
// via a Schnorr-style proof of knowledge, and the result is chained
// into an append-only, independently re-verifiable log.
package ceremony

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/zeroize"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/transcript"
)

// Accumulator is one contributor's view of the running Powers-of-Tau
// state, plus the bivariate grid BivariateGrid[y*GridXSize+x] =
// τ^x·υ^y·G1 the bivariate SNARK engine's SRS derives from. The grid
// carries no α factor.
type Accumulator struct {
	ContributorIndex int
	PowersOfTau      srs.PowersOfTau
	BivariateGrid    []curve.G1Affine
	GridXSize        int
	GridYSize        int
}

// Hash returns the blake2b-512 digest of the accumulator's canonical
// byte encoding, matching "blake2b hash of itself" as the chain-linking
// primitive.
func (a *Accumulator) Hash() [64]byte {
	h, _ := blake2b.New512(nil)
	h.Write([]byte{byte(a.ContributorIndex), byte(a.ContributorIndex >> 8)})
	for _, p := range a.PowersOfTau.TauG1 {
		b := p.Bytes()
		h.Write(b[:])
	}
	for _, p := range a.PowersOfTau.TauG2 {
		b := p.Bytes()
		h.Write(b[:])
	}
	for _, p := range a.PowersOfTau.AlphaTauG1 {
		b := p.Bytes()
		h.Write(b[:])
	}
	for _, p := range a.PowersOfTau.BetaTauG1 {
		b := p.Bytes()
		h.Write(b[:])
	}
	bg2 := a.PowersOfTau.BetaG2.Bytes()
	h.Write(bg2[:])
	for _, p := range a.BivariateGrid {
		b := p.Bytes()
		h.Write(b[:])
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ContributionProof is one contributor's Schnorr-style proof of
// knowledge for a single scaling exponent (tau, alpha, beta, or the
// bivariate upsilon), binding the claimed G2 commitment to the
// scalar actually used.
type ContributionProof struct {
	Label      string
	CommitG2   curve.G2Affine
	ResponseS  field.Element
	ChallengeE field.Element
}

// ErrBadPoK is returned when a contribution's proof of knowledge does
// not verify.
type ErrBadPoK struct{ Label string }

func (e *ErrBadPoK) Error() string {
	return fmt.Sprintf("ceremony: bad proof of knowledge for %q", e.Label)
}

// ErrInconsistentScaling is returned when the Fiat-Shamir-batched
// scaling-consistency check across a vector fails.
type ErrInconsistentScaling struct{ Vector string }

func (e *ErrInconsistentScaling) Error() string {
	return fmt.Sprintf("ceremony: inconsistent scaling detected in %q", e.Vector)
}

// ErrSelfCheckFailed is returned when next's own internal pairing
// ladder (srs.Validate against its own published commitments) fails.
type ErrSelfCheckFailed struct{ Reason string }

func (e *ErrSelfCheckFailed) Error() string {
	return fmt.Sprintf("ceremony: self-check failed: %s", e.Reason)
}

// ErrHashMismatch is returned when a chain record's stored PrevHash
// does not match the actual hash of the accumulator it claims to follow.
type ErrHashMismatch struct{}

func (e *ErrHashMismatch) Error() string { return "ceremony: chain hash mismatch" }

// schnorrProve produces a Schnorr proof of knowledge of secret for the
// public commitment secret*G2, binding the transcript label so a proof
// cannot be replayed against a different parameter.
func schnorrProve(label string, secret field.Element, rng io.Reader) (*ContributionProof, error) {
	commitJac := curve.ScalarMulG2(curve.Generator2(), secret)
	var commit curve.G2Affine
	commit.FromJacobian(&commitJac)

	k, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, fmt.Errorf("ceremony: sampling PoK nonce: %w", err)
	}
	rJac := curve.ScalarMulG2(curve.Generator2(), k)
	var r curve.G2Affine
	r.FromJacobian(&rJac)

	tr := transcript.New("ceremony-pok")
	tr.Absorb("label", []byte(label))
	tr.AbsorbG2("commit", commit)
	tr.AbsorbG2("r", r)
	e := tr.SqueezeScalar("challenge")

	s := field.Add(k, field.Mul(e, secret))

	return &ContributionProof{Label: label, CommitG2: commit, ResponseS: s, ChallengeE: e}, nil
}

// schnorrVerify recomputes R = s*G2 - e*Commit and checks it hashes to
// the same challenge e, i.e. re-derives the Fiat-Shamir challenge from
// the proof's own commit and response and compares.
func schnorrVerify(p *ContributionProof) bool {
	sG2Jac := curve.ScalarMulG2(curve.Generator2(), p.ResponseS)
	eCommitJac := curve.ScalarMulG2(p.CommitG2, p.ChallengeE)
	eCommitJac.Neg(&eCommitJac)
	sG2Jac.AddAssign(&eCommitJac)
	var r curve.G2Affine
	r.FromJacobian(&sG2Jac)

	tr := transcript.New("ceremony-pok")
	tr.Absorb("label", []byte(p.Label))
	tr.AbsorbG2("commit", p.CommitG2)
	tr.AbsorbG2("r", r)
	e := tr.SqueezeScalar("challenge")
	return e.Equal(p.ChallengeE)
}

// Contribute derives the next accumulator from prev: sample fresh
// τ,α,β,υ, rescale every vector by the appropriate exponent
// (goroutine-per-vector), and produce one ContributionProof per scaled
// parameter. prev is not mutated; a failed contribution never touches
// the chain.
func Contribute(ctx context.Context, prev *Accumulator, rng io.Reader) (*Accumulator, []*ContributionProof, error) {
	guard := zeroize.NewGuard()
	defer guard.Release()

	tau, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("ceremony: sampling tau: %w", err)
	}
	guard.Track(&tau)
	alpha, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("ceremony: sampling alpha: %w", err)
	}
	guard.Track(&alpha)
	beta, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("ceremony: sampling beta: %w", err)
	}
	guard.Track(&beta)
	upsilon, err := field.RandomNonZero(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("ceremony: sampling upsilon: %w", err)
	}
	guard.Track(&upsilon)

	d := prev.PowersOfTau.D
	next := &Accumulator{
		ContributorIndex: prev.ContributorIndex + 1,
		GridXSize:        prev.GridXSize,
		GridYSize:        prev.GridYSize,
	}
	next.PowersOfTau.D = d

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out := make([]curve.G1Affine, d+1)
		pow := field.One()
		for i := uint64(0); i <= d; i++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			j := curve.ScalarMulG1(prev.PowersOfTau.TauG1[i], pow)
			out[i].FromJacobian(&j)
			pow = field.Mul(pow, tau)
		}
		next.PowersOfTau.TauG1 = out
		return nil
	})
	g.Go(func() error {
		out := make([]curve.G2Affine, d+1)
		pow := field.One()
		for i := uint64(0); i <= d; i++ {
			j := curve.ScalarMulG2(prev.PowersOfTau.TauG2[i], pow)
			out[i].FromJacobian(&j)
			pow = field.Mul(pow, tau)
		}
		next.PowersOfTau.TauG2 = out
		return nil
	})
	g.Go(func() error {
		out := make([]curve.G1Affine, d+1)
		pow := field.One()
		for i := uint64(0); i <= d; i++ {
			scaled := field.Mul(alpha, pow)
			j := curve.ScalarMulG1(prev.PowersOfTau.TauG1[i], scaled)
			out[i].FromJacobian(&j)
			pow = field.Mul(pow, tau)
		}
		next.PowersOfTau.AlphaTauG1 = out
		return nil
	})
	g.Go(func() error {
		out := make([]curve.G1Affine, d+1)
		pow := field.One()
		for i := uint64(0); i <= d; i++ {
			scaled := field.Mul(beta, pow)
			j := curve.ScalarMulG1(prev.PowersOfTau.TauG1[i], scaled)
			out[i].FromJacobian(&j)
			pow = field.Mul(pow, tau)
		}
		next.PowersOfTau.BetaTauG1 = out
		return nil
	})
	g.Go(func() error {
		j := curve.ScalarMulG2(prev.PowersOfTau.BetaG2, beta)
		next.PowersOfTau.BetaG2.FromJacobian(&j)
		return nil
	})
	if len(prev.BivariateGrid) > 0 {
		g.Go(func() error {
			out := make([]curve.G1Affine, len(prev.BivariateGrid))
			for idx, p := range prev.BivariateGrid {
				k := idx % next.GridXSize
				row := idx / next.GridXSize
				scale := field.Mul(field.Pow(tau, bigUint(uint64(k))), field.Pow(upsilon, bigUint(uint64(row))))
				j := curve.ScalarMulG1(p, scale)
				out[idx].FromJacobian(&j)
			}
			next.BivariateGrid = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("ceremony: contribution fan-out: %w", err)
	}

	proofs := make([]*ContributionProof, 0, 4)
	for label, secret := range map[string]field.Element{"tau": tau, "alpha": alpha, "beta": beta} {
		p, err := schnorrProve(label, secret, rng)
		if err != nil {
			return nil, nil, err
		}
		proofs = append(proofs, p)
	}
	if len(prev.BivariateGrid) > 0 {
		p, err := schnorrProve("upsilon", upsilon, rng)
		if err != nil {
			return nil, nil, err
		}
		proofs = append(proofs, p)
	}

	log.Logger().Info().Int("contributor", next.ContributorIndex).Msg("contribution complete")
	return next, proofs, nil
}

// VerifyTransition checks that next is a valid contribution built atop
// prev: every proof of knowledge verifies, a Fiat-Shamir-batched random
// linear combination of per-position scaling-consistency checks holds,
// and next's own internal pairing ladder is self-consistent.
func VerifyTransition(prev, next *Accumulator, proofs []*ContributionProof) error {
	for _, p := range proofs {
		if !schnorrVerify(p) {
			return &ErrBadPoK{Label: p.Label}
		}
	}

	var tauProof, alphaProof, betaProof *ContributionProof
	for _, p := range proofs {
		switch p.Label {
		case "tau":
			tauProof = p
		case "alpha":
			alphaProof = p
		case "beta":
			betaProof = p
		}
	}
	if tauProof == nil || alphaProof == nil || betaProof == nil {
		return fmt.Errorf("ceremony: missing required proof of knowledge")
	}

	if err := next.PowersOfTau.Validate(alphaProof.CommitG2, betaProof.CommitG2); err != nil {
		return &ErrSelfCheckFailed{Reason: err.Error()}
	}

	tr := transcript.New("ceremony-batch-check")
	tr.AbsorbG2("tau-commit", tauProof.CommitG2)
	tr.AbsorbG2("alpha-commit", alphaProof.CommitG2)
	for i := range next.PowersOfTau.TauG1 {
		b := next.PowersOfTau.TauG1[i].Bytes()
		tr.Absorb("tauG1", b[:])
	}
	coeff := tr.SqueezeScalar("combination")

	var combinedPrev, combinedNext curve.G1Jac
	for i := range prev.PowersOfTau.TauG1 {
		weighted := curve.ScalarMulG1(prev.PowersOfTau.TauG1[i], field.Pow(coeff, bigUint(uint64(i))))
		combinedPrev.AddAssign(&weighted)
		weightedNext := curve.ScalarMulG1(next.PowersOfTau.TauG1[i], field.Pow(coeff, bigUint(uint64(i))))
		combinedNext.AddAssign(&weightedNext)
	}
	var combinedPrevAffine, combinedNextAffine curve.G1Affine
	combinedPrevAffine.FromJacobian(&combinedPrev)
	combinedNextAffine.FromJacobian(&combinedNext)

	var negPrevJac curve.G1Jac
	negPrevJac.FromAffine(&combinedPrevAffine)
	negPrevJac.Neg(&negPrevJac)
	var negPrevAffine curve.G1Affine
	negPrevAffine.FromJacobian(&negPrevJac)

	ok, err := curve.MultiPairingCheck(
		[]curve.G1Affine{combinedNextAffine, negPrevAffine},
		[]curve.G2Affine{curve.Generator2(), tauProof.CommitG2},
	)
	if err != nil {
		return fmt.Errorf("ceremony: batched scaling check: %w", err)
	}
	if !ok {
		return &ErrInconsistentScaling{Vector: "tauG1"}
	}

	return nil
}

// ChainRecord is one link in the append-only contribution log.
type ChainRecord struct {
	Index    int
	Acc      *Accumulator
	Proofs   []*ContributionProof
	PrevHash [64]byte
}

// VerifyChain folds VerifyTransition over an append-only log, also
// checking each record's declared PrevHash against the actual hash of
// the accumulator it claims to follow -- detecting any bit-flip in a
// stored accumulator even if the pairing checks would otherwise pass
// against a tampered-but-internally-consistent forgery.
func VerifyChain(records []*ChainRecord) error {
	for i, rec := range records {
		if i == 0 {
			continue
		}
		prev := records[i-1]
		if rec.PrevHash != prev.Acc.Hash() {
			return &ErrHashMismatch{}
		}
		if err := VerifyTransition(prev.Acc, rec.Acc, rec.Proofs); err != nil {
			return fmt.Errorf("ceremony: chain record %d: %w", i, err)
		}
	}
	return nil
}

func bigUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
