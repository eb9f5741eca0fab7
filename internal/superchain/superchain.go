// Package superchain computes succinct summaries of proof-of-work chains.
//
// Every block gets a superblock level from how far its hash undershoots the
// target; a chain indexed by level can be dissolved into a stabilized prefix
// and a raw suffix, compressed with a security parameter, and two such
// proofs can be compared without replaying either chain. All arithmetic is
// exact (math/big); the package performs no I/O and keeps no global state.
package superchain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyChain reports an operation on a chain with no blocks.
	ErrEmptyChain = errors.New("empty chain")
	// ErrNonContiguousChain reports a gap or reordering in block heights.
	ErrNonContiguousChain = errors.New("non-contiguous chain")
)

// Chain is a height-ascending, height-contiguous run of blocks. It may start
// at any height, not only at genesis.
type Chain []Block

// Superchain indexes blocks into per-level buckets: bucket mu holds every
// block of level mu or higher in height order, so bucket zero is the whole
// input. Buckets are plain slices so iteration order is deterministic.
type Superchain struct {
	levels [][]Block
}

// Build indexes a contiguous chain. It rejects empty input and any step
// where the next height is not exactly one above the previous.
func Build(chain Chain) (Superchain, error) {
	if len(chain) == 0 {
		return Superchain{}, ErrEmptyChain
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].height != chain[i-1].height+1 {
			return Superchain{}, fmt.Errorf("height %d follows %d: %w",
				chain[i].height, chain[i-1].height, ErrNonContiguousChain)
		}
	}
	return group(chain), nil
}

// Group indexes proof-shaped input: heights must strictly increase but may
// skip, since a compressed proof is sparse by construction.
func Group(blocks []Block) (Superchain, error) {
	if len(blocks) == 0 {
		return Superchain{}, ErrEmptyChain
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i].height <= blocks[i-1].height {
			return Superchain{}, fmt.Errorf("height %d follows %d: %w",
				blocks[i].height, blocks[i-1].height, ErrNonContiguousChain)
		}
	}
	return group(blocks), nil
}

func group(blocks []Block) Superchain {
	maxLevel := 0
	for _, b := range blocks {
		if b.level > maxLevel {
			maxLevel = b.level
		}
	}
	levels := make([][]Block, maxLevel+1)
	for _, b := range blocks {
		for mu := 0; mu <= b.level; mu++ {
			levels[mu] = append(levels[mu], b)
		}
	}
	return Superchain{levels: levels}
}

// NumLevels is the number of materialized buckets; the topmost is never
// empty.
func (s Superchain) NumLevels() int { return len(s.levels) }

// MaxLevel is the highest block level present, or -1 for an empty
// superchain.
func (s Superchain) MaxLevel() int { return len(s.levels) - 1 }

// Len is the number of blocks at level zero.
func (s Superchain) Len() int {
	if len(s.levels) == 0 {
		return 0
	}
	return len(s.levels[0])
}

// Level returns a copy of bucket mu, or nil when the bucket does not exist.
func (s Superchain) Level(mu int) []Block {
	if mu < 0 || mu >= len(s.levels) {
		return nil
	}
	out := make([]Block, len(s.levels[mu]))
	copy(out, s.levels[mu])
	return out
}

// Blocks returns a copy of the full block list.
func (s Superchain) Blocks() []Block { return s.Level(0) }

// Tip returns the highest block, if any.
func (s Superchain) Tip() (Block, bool) {
	if s.Len() == 0 {
		return Block{}, false
	}
	bucket := s.levels[0]
	return bucket[len(bucket)-1], true
}

// level is the no-copy bucket accessor for package-internal iteration.
func (s Superchain) level(mu int) []Block {
	if mu < 0 || mu >= len(s.levels) {
		return nil
	}
	return s.levels[mu]
}
