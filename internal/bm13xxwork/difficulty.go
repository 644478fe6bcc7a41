// Package bm13xxwork converts between a mining job's compact "nBits"
// difficulty target and the per-chip ticket-mask difficulty a chain's
// Init sequence is configured with.
package bm13xxwork

import (
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
)

// maxTargetBits is the compact representation of difficulty-1, the
// largest (easiest) target the network ever assigns a block.
const maxTargetBits = 0x1d00ffff

// DifficultyFromBits converts a block header's compact nBits field into a
// plain difficulty ratio, the same value miners report as "pool
// difficulty": maxTarget / target.
func DifficultyFromBits(nBits uint32) float64 {
	target := blockchain.CompactToBig(nBits)
	if target.Sign() <= 0 {
		return 0
	}
	maxTarget := blockchain.CompactToBig(maxTargetBits)

	ratio := new(big.Float).Quo(new(big.Float).SetInt(maxTarget), new(big.Float).SetInt(target))
	f, _ := ratio.Float64()
	return f
}

// ChipDifficulty scales a job's network difficulty down to the per-chip
// ticket-mask difficulty Init expects: each of the asicCnt chips on a chain
// only needs to clear its own share of the total search space.
func ChipDifficulty(networkDifficulty float64, asicCnt uint8) uint32 {
	if asicCnt == 0 {
		asicCnt = 1
	}
	chipDiff := networkDifficulty / float64(asicCnt)
	if chipDiff < 1 {
		return 1
	}
	return uint32(chipDiff)
}
