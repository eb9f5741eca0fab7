package superchain

import "fmt"

// Ordering is the outcome of comparing two proofs.
type Ordering int

const (
	Equal Ordering = iota
	ABetter
	BBetter
)

func (o Ordering) String() string {
	switch o {
	case ABetter:
		return "a-better"
	case BBetter:
		return "b-better"
	default:
		return "equal"
	}
}

// Compare decides which of two proofs represents more work. It isolates the
// divergent suffix of each proof after their last common block, then looks
// for the highest level at which both suffixes still hold at least
// securityParam blocks: the larger bucket there wins, with ties broken level
// by level downwards. When no level is populated enough on both sides, raw
// suffix length decides. Results are symmetric in the two arguments.
func Compare(a, b Superchain, securityParam int) (Ordering, error) {
	if securityParam <= 0 {
		return Equal, fmt.Errorf("security parameter %d: %w", securityParam, ErrInvalidParameter)
	}

	suffixA, suffixB := divergentSuffixes(a.level(0), b.level(0))
	if len(suffixA) == 0 && len(suffixB) == 0 {
		return Equal, nil
	}

	countsA := levelCounts(suffixA)
	countsB := levelCounts(suffixB)

	top := len(countsA)
	if len(countsB) < top {
		top = len(countsB)
	}
	for mu := top - 1; mu >= 0; mu-- {
		if countsA[mu] < securityParam || countsB[mu] < securityParam {
			continue
		}
		// Both sides are populated at mu; settle here, descending on ties.
		for nu := mu; nu >= 0; nu-- {
			switch {
			case countsA[nu] > countsB[nu]:
				return ABetter, nil
			case countsB[nu] > countsA[nu]:
				return BBetter, nil
			}
		}
		return Equal, nil
	}

	switch {
	case len(suffixA) > len(suffixB):
		return ABetter, nil
	case len(suffixB) > len(suffixA):
		return BBetter, nil
	default:
		return Equal, nil
	}
}

// divergentSuffixes cuts both block lists after their last common block. If
// the lists share no block, they are returned whole.
func divergentSuffixes(a, b []Block) ([]Block, []Block) {
	byHeight := make(map[uint64]int, len(b))
	for i, blk := range b {
		byHeight[blk.height] = i
	}
	for i := len(a) - 1; i >= 0; i-- {
		j, ok := byHeight[a[i].height]
		if ok && a[i].Equal(b[j]) {
			return a[i+1:], b[j+1:]
		}
	}
	return a, b
}

// levelCounts returns, for each level, how many of the blocks sit at that
// level or above.
func levelCounts(blocks []Block) []int {
	if len(blocks) == 0 {
		return nil
	}
	maxLevel := 0
	for _, b := range blocks {
		if b.level > maxLevel {
			maxLevel = b.level
		}
	}
	counts := make([]int, maxLevel+1)
	for _, b := range blocks {
		counts[b.level]++
	}
	for mu := maxLevel - 1; mu >= 0; mu-- {
		counts[mu] += counts[mu+1]
	}
	return counts
}
