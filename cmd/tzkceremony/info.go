package main

import (
	"fmt"
	"os"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/ceremony"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/serialize"
)

// buildContributionInfo assembles the human-auditable metadata record
// for one step of the chain: prevAcc is nil for genesis, which has no
// predecessor hash to record.
func buildContributionInfo(index int, blockhash string, prevAcc, acc *ceremony.Accumulator) *serialize.ContributionInfo {
	info := &serialize.ContributionInfo{Index: index}
	if prevAcc != nil {
		prevHash := prevAcc.Hash()
		info.PreviousHash = fmt.Sprintf("%x", prevHash)
	} else {
		info.PreviousHash = blockhash
	}
	hash := acc.Hash()
	info.CurrentHash = fmt.Sprintf("%x", hash)
	return info
}

func writeInfo(outFolder string, index int, info *serialize.ContributionInfo) error {
	f, err := os.Create(infoPath(outFolder, index))
	if err != nil {
		return fmt.Errorf("tzkceremony: creating Info_%d: %w", index, err)
	}
	defer f.Close()
	return serialize.WriteContributionInfoYAML(f, info)
}
