// Command tzkceremony drives the Powers-of-Tau and circuit-specific
// trusted-setup ceremonies from the command line, plus standalone
// groth16 prove/verify for already-provisioned keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/internal/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tzkceremony",
		Short:         "BLS12-381 Groth16 trusted-setup ceremony tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPhase1InitializeCmd())
	root.AddCommand(newPhase1NextContributorCmd())
	root.AddCommand(newPhase2NextContributorCmd())
	root.AddCommand(newVerifyPhase1ComputationsCmd())
	root.AddCommand(newGroth16Cmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Logger().Error().Err(err).Msg("tzkceremony failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
