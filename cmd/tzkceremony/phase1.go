package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/ceremony"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/config"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
)

type phase1Flags struct {
	smaxX     int
	smaxY     int
	blockhash string
	mode      string
	outFolder string
}

func (f *phase1Flags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.smaxX, "smax-x", 0, "bivariate grid x dimension (power of two)")
	cmd.Flags().IntVar(&f.smaxY, "smax-y", 0, "bivariate grid y dimension (power of two)")
	cmd.Flags().StringVar(&f.blockhash, "blockhash", "", "hex-encoded public entropy (e.g. a Bitcoin block hash)")
	cmd.Flags().StringVar(&f.mode, "mode", string(config.ModeRandom), "entropy source: testing|random|deterministic")
	cmd.Flags().StringVar(&f.outFolder, "outfolder", "", "directory holding the ceremony's chain files")
}

func newPhase1InitializeCmd() *cobra.Command {
	f := &phase1Flags{}
	cmd := &cobra.Command{
		Use:   "phase1_initialize",
		Short: "create the genesis Powers-of-Tau accumulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(f.smaxX, f.smaxY, f.blockhash, config.Mode(f.mode), f.outFolder)
			if err != nil {
				return err
			}
			if _, err := decodeBlockhash(cfg.Blockhash); err != nil {
				return err
			}

			d := uint64(cfg.SMaxX) * uint64(cfg.SMaxY)
			genesis := genesisAccumulator(d, cfg.SMaxX, cfg.SMaxY)

			if err := writeAccAndProofs(cfg.OutFolder, 0, genesis, nil, true); err != nil {
				return err
			}
			info := buildContributionInfo(0, cfg.Blockhash, nil, genesis)
			if err := writeInfo(cfg.OutFolder, 0, info); err != nil {
				return err
			}

			log.Logger().Info().Uint64("d", d).Msg("genesis accumulator written")
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// newPhase1NextContributorCmd only needs outfolder and mode: the grid
// and SRS depth are already fixed by the genesis accumulator it reads,
// unlike phase1_initialize which establishes them.
func newPhase1NextContributorCmd() *cobra.Command {
	var outFolder, mode, blockhash string
	cmd := &cobra.Command{
		Use:   "phase1_next_contributor",
		Short: "apply the next Powers-of-Tau contribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outFolder == "" {
				return fmt.Errorf("tzkceremony: --outfolder is required")
			}
			if !config.Mode(mode).Valid() {
				return fmt.Errorf("tzkceremony: unrecognized mode %q", mode)
			}

			tip, err := highestContributorIndex(outFolder)
			if err != nil {
				return err
			}
			prev, err := readAcc(outFolder, tip)
			if err != nil {
				return err
			}
			if tip > 0 {
				prevProofs, err := readProofs(outFolder, tip)
				if err != nil {
					return err
				}
				prevPrev, err := readAcc(outFolder, tip-1)
				if err != nil {
					return err
				}
				if err := ceremony.VerifyTransition(prevPrev, prev, prevProofs); err != nil {
					return fmt.Errorf("tzkceremony: chain tip failed verification: %w", err)
				}
			}

			next := tip + 1
			rng, err := rngForMode(config.Mode(mode), blockhash, next)
			if err != nil {
				return err
			}

			acc, proofs, err := ceremony.Contribute(cmd.Context(), prev, rng)
			if err != nil {
				return err
			}
			if err := writeAccAndProofs(outFolder, next, acc, proofs, true); err != nil {
				return err
			}
			info := buildContributionInfo(next, blockhash, prev, acc)
			if err := writeInfo(outFolder, next, info); err != nil {
				return err
			}

			log.Logger().Info().Int("contributor", next).Msg("contribution written")
			return nil
		},
	}
	cmd.Flags().StringVar(&outFolder, "outfolder", "", "directory holding the ceremony's chain files")
	cmd.Flags().StringVar(&mode, "mode", string(config.ModeRandom), "entropy source: testing|random|deterministic")
	cmd.Flags().StringVar(&blockhash, "blockhash", "", "public entropy recorded alongside the contribution")
	return cmd
}
