package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/ceremony"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
)

func newVerifyPhase1ComputationsCmd() *cobra.Command {
	var outFolder string
	cmd := &cobra.Command{
		Use:   "verify_phase1_computations",
		Short: "re-verify the entire Powers-of-Tau chain in outfolder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outFolder == "" {
				return fmt.Errorf("tzkceremony: --outfolder is required")
			}

			tip, err := highestContributorIndex(outFolder)
			if err != nil {
				return err
			}

			records := make([]*ceremony.ChainRecord, tip+1)
			for k := 0; k <= tip; k++ {
				acc, err := readAcc(outFolder, k)
				if err != nil {
					return err
				}
				rec := &ceremony.ChainRecord{Index: k, Acc: acc}
				if k > 0 {
					proofs, err := readProofs(outFolder, k)
					if err != nil {
						return err
					}
					rec.Proofs = proofs
					prev, err := readAcc(outFolder, k-1)
					if err != nil {
						return err
					}
					rec.PrevHash = prev.Hash()
				}
				records[k] = rec
			}

			if err := ceremony.VerifyChain(records); err != nil {
				return fmt.Errorf("tzkceremony: chain verification failed: %w", err)
			}

			log.Logger().Info().Int("tip", tip).Msg("chain verified")
			fmt.Printf("chain verified: %d contributions\n", tip)
			return nil
		},
	}
	cmd.Flags().StringVar(&outFolder, "outfolder", "", "directory holding the ceremony's chain files")
	return cmd
}
