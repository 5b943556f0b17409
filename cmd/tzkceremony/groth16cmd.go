package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/r1cs"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/serialize"
)

func newGroth16Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groth16",
		Short: "standalone Groth16 proving and verification",
	}
	cmd.AddCommand(newGroth16ProveCmd())
	cmd.AddCommand(newGroth16VerifyCmd())
	return cmd
}

func newGroth16ProveCmd() *cobra.Command {
	var pkFilePath, r1csFilePath, witnessFilePath, proofOutPath string
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "assemble a Groth16 proof from a proving key, R1CS, and witness",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkFile, err := os.Open(pkFilePath)
			if err != nil {
				return fmt.Errorf("tzkceremony: opening proving key: %w", err)
			}
			pk, err := serialize.ReadProvingKeyCBOR(pkFile)
			pkFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding proving key: %w", err)
			}

			r1csFile, err := os.Open(r1csFilePath)
			if err != nil {
				return fmt.Errorf("tzkceremony: opening R1CS: %w", err)
			}
			r1, err := r1cs.ReadCircom(r1csFile)
			r1csFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding R1CS: %w", err)
			}

			witnessFile, err := os.Open(witnessFilePath)
			if err != nil {
				return fmt.Errorf("tzkceremony: opening witness: %w", err)
			}
			witness, err := serialize.ReadWitnessJSON(witnessFile)
			witnessFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding witness: %w", err)
			}

			proof, err := groth16.Prove(cmd.Context(), pk, r1, witness, rand.Reader)
			if err != nil {
				return err
			}

			out, err := os.Create(proofOutPath)
			if err != nil {
				return fmt.Errorf("tzkceremony: creating proof file: %w", err)
			}
			defer out.Close()
			if err := serialize.WriteGroth16ProofJSON(out, proof); err != nil {
				os.Remove(proofOutPath)
				return err
			}

			log.Logger().Info().Msg("proof written")
			return nil
		},
	}
	cmd.Flags().StringVar(&pkFilePath, "proving-key", "", "proving key file (cbor)")
	cmd.Flags().StringVar(&r1csFilePath, "r1cs", "", "R1CS constraint system file")
	cmd.Flags().StringVar(&witnessFilePath, "witness", "", "witness assignment file (JSON)")
	cmd.Flags().StringVar(&proofOutPath, "proof-out", "", "output proof file (JSON)")
	return cmd
}

func newGroth16VerifyCmd() *cobra.Command {
	var vkFilePath, proofFilePath, publicInputsPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "verify a Groth16 proof against a verification key and public inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			vkFile, err := os.Open(vkFilePath)
			if err != nil {
				return fmt.Errorf("tzkceremony: opening verification key: %w", err)
			}
			vk, err := serialize.ReadVerificationKeyJSON(vkFile)
			vkFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding verification key: %w", err)
			}

			proofFile, err := os.Open(proofFilePath)
			if err != nil {
				return fmt.Errorf("tzkceremony: opening proof: %w", err)
			}
			proof, err := serialize.ReadGroth16ProofJSON(proofFile)
			proofFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding proof: %w", err)
			}

			publicFile, err := os.Open(publicInputsPath)
			if err != nil {
				return fmt.Errorf("tzkceremony: opening public inputs: %w", err)
			}
			publicInputs, err := serialize.ReadWitnessJSON(publicFile)
			publicFile.Close()
			if err != nil {
				return fmt.Errorf("tzkceremony: decoding public inputs: %w", err)
			}

			if err := groth16.Verify(vk, publicInputs, proof); err != nil {
				return fmt.Errorf("tzkceremony: proof rejected: %w", err)
			}

			fmt.Println("proof accepted")
			return nil
		},
	}
	cmd.Flags().StringVar(&vkFilePath, "verification-key", "", "verification key file (JSON)")
	cmd.Flags().StringVar(&proofFilePath, "proof", "", "proof file (JSON)")
	cmd.Flags().StringVar(&publicInputsPath, "public-inputs", "", "public inputs file (JSON)")
	return cmd
}
