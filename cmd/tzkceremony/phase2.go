package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/circuitsetup"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/config"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/serialize"
)

func pkPath(outFolder string, index int) string {
	return filepath.Join(outFolder, fmt.Sprintf("PK_%d.cbor", index))
}

func vkPath(outFolder string, index int) string {
	return filepath.Join(outFolder, fmt.Sprintf("VK_%d.json", index))
}

func deltaProofPath(outFolder string, index int) string {
	return filepath.Join(outFolder, fmt.Sprintf("DeltaProof_%d.json", index))
}

func highestPhase2Index(outFolder string) (int, error) {
	if _, err := os.Stat(pkPath(outFolder, 0)); err != nil {
		return -1, fmt.Errorf("tzkceremony: no initial proving key in %s: %w", outFolder, err)
	}
	k := 0
	for {
		if _, err := os.Stat(pkPath(outFolder, k+1)); err != nil {
			return k, nil
		}
		k++
	}
}

// newPhase2NextContributorCmd runs one circuit-specific delta
// contribution atop the proving/verification key pair already sitting
// in outfolder (produced by circuitsetup.Setup from the final phase-1
// accumulator) -- the analogue of phase1_next_contributor for the
// toxic parameter phase 1 does not touch.
func newPhase2NextContributorCmd() *cobra.Command {
	var outFolder string
	var mode string
	var blockhash string

	cmd := &cobra.Command{
		Use:   "phase2_next_contributor",
		Short: "apply the next circuit-specific (delta) contribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outFolder == "" {
				return fmt.Errorf("tzkceremony: --outfolder is required")
			}

			tip, err := highestPhase2Index(outFolder)
			if err != nil {
				return err
			}

			pkFile, err := os.Open(pkPath(outFolder, tip))
			if err != nil {
				return fmt.Errorf("tzkceremony: opening PK_%d: %w", tip, err)
			}
			prevPK, err := serialize.ReadProvingKeyCBOR(pkFile)
			pkFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding PK_%d: %w", tip, err)
			}

			vkFile, err := os.Open(vkPath(outFolder, tip))
			if err != nil {
				return fmt.Errorf("tzkceremony: opening VK_%d: %w", tip, err)
			}
			prevVK, err := serialize.ReadVerificationKeyJSON(vkFile)
			vkFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding VK_%d: %w", tip, err)
			}

			next := tip + 1
			rng, err := rngForMode(config.Mode(mode), blockhash, next)
			if err != nil {
				return err
			}

			nextPK, nextVK, proof, err := circuitsetup.ContributeDelta(prevPK, prevVK, rng)
			if err != nil {
				return err
			}
			if err := circuitsetup.VerifyDeltaTransition(prevPK, nextPK, proof); err != nil {
				return fmt.Errorf("tzkceremony: self-check of new contribution failed: %w", err)
			}

			written := []string{}
			cleanup := func() {
				for _, f := range written {
					os.Remove(f)
				}
			}

			pkOut, err := os.Create(pkPath(outFolder, next))
			if err != nil {
				return fmt.Errorf("tzkceremony: creating PK_%d: %w", next, err)
			}
			written = append(written, pkOut.Name())
			if err := serialize.WriteProvingKeyCBOR(pkOut, nextPK, true); err != nil {
				pkOut.Close()
				cleanup()
				return err
			}
			pkOut.Close()

			vkOut, err := os.Create(vkPath(outFolder, next))
			if err != nil {
				cleanup()
				return fmt.Errorf("tzkceremony: creating VK_%d: %w", next, err)
			}
			written = append(written, vkOut.Name())
			if err := serialize.WriteVerificationKeyJSON(vkOut, nextVK); err != nil {
				vkOut.Close()
				cleanup()
				return err
			}
			vkOut.Close()

			proofOut, err := os.Create(deltaProofPath(outFolder, next))
			if err != nil {
				cleanup()
				return fmt.Errorf("tzkceremony: creating DeltaProof_%d: %w", next, err)
			}
			written = append(written, proofOut.Name())
			if err := serialize.WriteDeltaProofJSON(proofOut, proof); err != nil {
				proofOut.Close()
				cleanup()
				return err
			}
			proofOut.Close()

			log.Logger().Info().Int("contributor", next).Msg("phase-2 contribution written")
			return nil
		},
	}
	cmd.Flags().StringVar(&outFolder, "outfolder", "", "directory holding the circuit-setup key files")
	cmd.Flags().StringVar(&mode, "mode", string(config.ModeRandom), "entropy source: testing|random|deterministic")
	cmd.Flags().StringVar(&blockhash, "blockhash", "", "public entropy recorded alongside the contribution")
	return cmd
}
