// Package rarity measures how a chain's superblock levels compare against
// the geometric(1/2) distribution an honest hash function produces.
package rarity

import (
	"math/big"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

// Scale is the fixed-point factor for expected counts.
const Scale = superchain.DifficultyScale

// LevelStat is one row of a rarity report.
type LevelStat struct {
	Level    int
	Observed int
	// Expected is blocks/2^(level+1) in units of 1/Scale, rounded half up.
	Expected int64
}

// Report summarizes the level distribution of a block list.
type Report struct {
	Blocks   int
	MaxLevel int
	// TotalLevels sums the natural levels of all blocks; under the
	// geometric(1/2) model its expectation equals Blocks.
	TotalLevels int
	Levels      []LevelStat
}

// Analyze computes the level distribution of blocks. Levels are derived from
// hash and target directly, so a genesis block counts with its natural level
// rather than the forced one.
func Analyze(blocks []superchain.Block) Report {
	if len(blocks) == 0 {
		return Report{MaxLevel: -1}
	}

	levels := make([]int, len(blocks))
	maxLevel := 0
	total := 0
	for i, block := range blocks {
		level := superchain.LevelOf(block.Hash(), block.Target())
		levels[i] = level
		total += level
		if level > maxLevel {
			maxLevel = level
		}
	}

	observed := make([]int, maxLevel+1)
	for _, level := range levels {
		observed[level]++
	}

	stats := make([]LevelStat, maxLevel+1)
	for mu := 0; mu <= maxLevel; mu++ {
		stats[mu] = LevelStat{
			Level:    mu,
			Observed: observed[mu],
			Expected: expectedCount(len(blocks), mu),
		}
	}
	return Report{
		Blocks:      len(blocks),
		MaxLevel:    maxLevel,
		TotalLevels: total,
		Levels:      stats,
	}
}

// expectedCount is round(n/2^(mu+1) * Scale) computed exactly.
func expectedCount(n, mu int) int64 {
	numerator := new(big.Int).Mul(big.NewInt(int64(n)), big.NewInt(Scale))
	numerator.Lsh(numerator, 1)
	halfStep := new(big.Int).Lsh(big.NewInt(1), uint(mu+1))
	numerator.Add(numerator, halfStep)
	denominator := new(big.Int).Lsh(halfStep, 1)
	return numerator.Div(numerator, denominator).Int64()
}
