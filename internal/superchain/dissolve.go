package superchain

import "fmt"

// SplitProof is the result of dissolving a superchain: the stabilized prefix
// and the raw unstable suffix, each indexed by level. Either side may be
// empty.
type SplitProof struct {
	Stable   Superchain
	Unstable Superchain
}

// Dissolve splits a superchain around its last unstableLen blocks. The
// suffix holds every bucket's trailing run of blocks whose heights fall in
// the unstable range; the prefix holds the rest. For every level mu,
// prefix[mu] followed by suffix[mu] reproduces the input bucket exactly.
func Dissolve(sc Superchain, unstableLen int) (SplitProof, error) {
	if unstableLen < 0 {
		return SplitProof{}, fmt.Errorf("unstable length %d: %w", unstableLen, ErrInvalidParameter)
	}
	if len(sc.levels) == 0 {
		return SplitProof{}, nil
	}

	level0 := sc.levels[0]
	cut := len(level0) - unstableLen
	if cut < 0 {
		cut = 0
	}
	// Heights at or above the cut height are unstable. Height order within
	// a bucket makes the unstable part a trailing run of the bucket.
	unstable := make(map[uint64]struct{}, len(level0)-cut)
	for _, b := range level0[cut:] {
		unstable[b.height] = struct{}{}
	}

	stable := make([][]Block, 0, len(sc.levels))
	suffix := make([][]Block, 0, len(sc.levels))
	for _, bucket := range sc.levels {
		split := len(bucket)
		for split > 0 {
			if _, ok := unstable[bucket[split-1].height]; !ok {
				break
			}
			split--
		}
		stable = append(stable, bucket[:split:split])
		suffix = append(suffix, bucket[split:])
	}

	return SplitProof{
		Stable:   Superchain{levels: trimEmptyTop(stable)},
		Unstable: Superchain{levels: trimEmptyTop(suffix)},
	}, nil
}

// Reassemble concatenates the stable and unstable buckets per level,
// restoring the superchain the split came from.
func (p SplitProof) Reassemble() Superchain {
	n := p.Stable.NumLevels()
	if u := p.Unstable.NumLevels(); u > n {
		n = u
	}
	if n == 0 {
		return Superchain{}
	}
	levels := make([][]Block, n)
	for mu := 0; mu < n; mu++ {
		bucket := make([]Block, 0, len(p.Stable.level(mu))+len(p.Unstable.level(mu)))
		bucket = append(bucket, p.Stable.level(mu)...)
		bucket = append(bucket, p.Unstable.level(mu)...)
		levels[mu] = bucket
	}
	return Superchain{levels: levels}
}

// UnstableHeights lists the heights of the unstable suffix in ascending
// order.
func (p SplitProof) UnstableHeights() []uint64 {
	bucket := p.Unstable.level(0)
	heights := make([]uint64, len(bucket))
	for i, b := range bucket {
		heights[i] = b.height
	}
	return heights
}

func trimEmptyTop(levels [][]Block) [][]Block {
	top := len(levels)
	for top > 0 && len(levels[top-1]) == 0 {
		top--
	}
	return levels[:top]
}
