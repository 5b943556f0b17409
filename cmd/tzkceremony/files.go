package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/ceremony"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/serialize"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
)

func accPath(outFolder string, index int) string {
	return filepath.Join(outFolder, fmt.Sprintf("Acc_%d.json", index))
}

func proofPath(outFolder string, index int) string {
	return filepath.Join(outFolder, fmt.Sprintf("Proof_%d.json", index))
}

func infoPath(outFolder string, index int) string {
	return filepath.Join(outFolder, fmt.Sprintf("Info_%d.yaml", index))
}

// genesisAccumulator builds the trivial, secret-free starting point of
// the chain: every vector holds the bare generator, so the first real
// contributor's rescaling (Contribute multiplies position i by its own
// secret^i) produces exactly the standard single-contributor Powers-of-
// Tau shape. The blockhash is not mixed into any curve point -- it has
// nothing to be mixed into yet, since genesis carries no secret -- it
// is recorded in Info_0.yaml as the public "nothing up my sleeve"
// justification for why genesis cannot have been biased.
func genesisAccumulator(d uint64, gridX, gridY int) *ceremony.Accumulator {
	g1, g2 := curve.Generator1(), curve.Generator2()

	ones1 := make([]curve.G1Affine, d+1)
	ones2 := make([]curve.G2Affine, d+1)
	alphaOnes := make([]curve.G1Affine, d+1)
	betaOnes := make([]curve.G1Affine, d+1)
	for i := range ones1 {
		ones1[i] = g1
		ones2[i] = g2
		alphaOnes[i] = g1
		betaOnes[i] = g1
	}

	grid := make([]curve.G1Affine, gridX*gridY)
	for i := range grid {
		grid[i] = g1
	}

	return &ceremony.Accumulator{
		ContributorIndex: 0,
		PowersOfTau: srs.PowersOfTau{
			D:          d,
			TauG1:      ones1,
			TauG2:      ones2,
			AlphaTauG1: alphaOnes,
			BetaTauG1:  betaOnes,
			BetaG2:     g2,
		},
		BivariateGrid: grid,
		GridXSize:     gridX,
		GridYSize:     gridY,
	}
}

// writeAccAndProofs persists Acc_<index> and Proof_<index> (when proofs
// is non-empty, i.e. not genesis), unlinking whatever partial output it
// managed to write if either file fails -- a contribution step must
// leave the chain directory either fully advanced or untouched.
func writeAccAndProofs(outFolder string, index int, acc *ceremony.Accumulator, proofs []*ceremony.ContributionProof, compress bool) (err error) {
	accFile := accPath(outFolder, index)
	proofFile := proofPath(outFolder, index)

	written := []string{}
	defer func() {
		if err != nil {
			for _, f := range written {
				os.Remove(f)
			}
		}
	}()

	f, err := os.Create(accFile)
	if err != nil {
		return fmt.Errorf("tzkceremony: creating %s: %w", accFile, err)
	}
	written = append(written, accFile)
	if err = serialize.WriteAccumulatorJSON(f, acc, compress); err != nil {
		f.Close()
		return fmt.Errorf("tzkceremony: writing %s: %w", accFile, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("tzkceremony: closing %s: %w", accFile, err)
	}

	if len(proofs) == 0 {
		return nil
	}

	pf, err := os.Create(proofFile)
	if err != nil {
		return fmt.Errorf("tzkceremony: creating %s: %w", proofFile, err)
	}
	written = append(written, proofFile)
	if err = serialize.WriteContributionProofsJSON(pf, proofs); err != nil {
		pf.Close()
		return fmt.Errorf("tzkceremony: writing %s: %w", proofFile, err)
	}
	if err = pf.Close(); err != nil {
		return fmt.Errorf("tzkceremony: closing %s: %w", proofFile, err)
	}
	return nil
}

func readAcc(outFolder string, index int) (*ceremony.Accumulator, error) {
	f, err := os.Open(accPath(outFolder, index))
	if err != nil {
		return nil, fmt.Errorf("tzkceremony: opening Acc_%d: %w", index, err)
	}
	defer f.Close()
	return serialize.ReadAccumulatorJSON(f)
}

func readProofs(outFolder string, index int) ([]*ceremony.ContributionProof, error) {
	f, err := os.Open(proofPath(outFolder, index))
	if err != nil {
		return nil, fmt.Errorf("tzkceremony: opening Proof_%d: %w", index, err)
	}
	defer f.Close()
	return serialize.ReadContributionProofsJSON(f)
}

// highestContributorIndex scans outFolder for the tip of the chain by
// probing Acc_<k>.json upward from 0 until one is missing.
func highestContributorIndex(outFolder string) (int, error) {
	if _, err := os.Stat(accPath(outFolder, 0)); err != nil {
		return -1, fmt.Errorf("tzkceremony: no genesis accumulator in %s: %w", outFolder, err)
	}
	k := 0
	for {
		if _, err := os.Stat(accPath(outFolder, k+1)); err != nil {
			return k, nil
		}
		k++
	}
}
