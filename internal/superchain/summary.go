package superchain

import (
	"fmt"
	"math/big"
	"sort"
)

// Params carries the three tuning knobs of proof compression: the security
// parameter K, the unstable tail length k, and the length of the additional
// uncompressed run kept verbatim ahead of the tail.
type Params struct {
	SecurityParam   int
	UnstableLen     int
	UncompressedLen int
}

// DefaultParams mirrors the production defaults used against Bitcoin
// mainnet.
func DefaultParams() Params {
	return Params{
		SecurityParam:   208,
		UnstableLen:     323,
		UncompressedLen: 4032,
	}
}

func (p Params) Validate() error {
	if p.SecurityParam <= 0 {
		return fmt.Errorf("security parameter %d: %w", p.SecurityParam, ErrInvalidParameter)
	}
	if p.UnstableLen < 0 {
		return fmt.Errorf("unstable length %d: %w", p.UnstableLen, ErrInvalidParameter)
	}
	if p.UncompressedLen < 0 {
		return fmt.Errorf("uncompressed length %d: %w", p.UncompressedLen, ErrInvalidParameter)
	}
	return nil
}

// suffixLen is how many tip blocks stay out of compression entirely.
func (p Params) suffixLen() int { return p.UnstableLen + p.UncompressedLen }

// Summary is a compressed view of a proof: the kept stable buckets per
// level, the proof level the compression settled on, and the raw suffix.
type Summary struct {
	kept   [][]Block
	level  int
	suffix []Block
}

// ProofLevel is the level the compression anchored on.
func (s Summary) ProofLevel() int { return s.level }

// NumLevels is the number of kept stable buckets.
func (s Summary) NumLevels() int { return len(s.kept) }

// Level returns a copy of the kept stable bucket at mu, or nil when absent.
func (s Summary) Level(mu int) []Block {
	if mu < 0 || mu >= len(s.kept) {
		return nil
	}
	out := make([]Block, len(s.kept[mu]))
	copy(out, s.kept[mu])
	return out
}

// Suffix returns a copy of the raw tip run.
func (s Summary) Suffix() []Block {
	out := make([]Block, len(s.suffix))
	copy(out, s.suffix)
	return out
}

// Flatten merges the kept buckets and the suffix into one height-ascending
// block list without duplicates.
func (s Summary) Flatten() []Block {
	var all []Block
	for _, bucket := range s.kept {
		all = append(all, bucket...)
	}
	all = append(all, s.suffix...)
	sort.Slice(all, func(i, j int) bool { return all[i].height < all[j].height })

	out := make([]Block, 0, len(all))
	for i, b := range all {
		if i > 0 && all[i-1].height == b.height {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Summarize compresses the stable part of a proof. The last
// UnstableLen+UncompressedLen blocks are set aside untouched; if what
// remains holds at least 2K blocks at some level, the highest such level is
// kept whole and every lower level keeps its last 2K blocks, extended back
// to the K-th-from-the-end block of the level above it. A prefix too thin
// for the rule is kept as-is.
func Summarize(blocks []Block, p Params) (Summary, error) {
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}
	sc, err := Group(blocks)
	if err != nil {
		return Summary{}, err
	}

	flat := sc.levels[0]
	cut := len(flat) - p.suffixLen()
	if cut < 0 {
		cut = 0
	}
	prefix, remainder := flat[:cut], flat[cut:]

	doubled := 2 * p.SecurityParam
	if len(prefix) < doubled {
		var kept [][]Block
		if len(prefix) > 0 {
			kept = [][]Block{prefix}
		}
		return Summary{kept: kept, suffix: remainder}, nil
	}

	pre := group(prefix)
	ell := 0
	for mu := len(pre.levels) - 1; mu >= 0; mu-- {
		if len(pre.levels[mu]) >= doubled {
			ell = mu
			break
		}
	}

	kept := make([][]Block, ell+1)
	kept[ell] = pre.levels[ell]
	for mu := ell - 1; mu >= 0; mu-- {
		upper := kept[mu+1]
		anchor := upper[len(upper)-p.SecurityParam]
		bucket := pre.levels[mu]
		start := len(bucket) - doubled
		if idx := indexOfHeight(bucket, anchor.height); idx < start {
			start = idx
		}
		kept[mu] = bucket[start:]
	}

	return Summary{kept: kept, level: ell, suffix: remainder}, nil
}

// Compress summarizes a proof and flattens the result back into a sparse
// block list. Compressing an already compressed proof with the same
// parameters returns it unchanged.
func Compress(blocks []Block, p Params) ([]Block, error) {
	sum, err := Summarize(blocks, p)
	if err != nil {
		return nil, err
	}
	return sum.Flatten(), nil
}

// ProofLevel returns the highest level holding at least 2*securityParam of
// the given blocks, or zero when no level qualifies.
func ProofLevel(blocks []Block, securityParam int) int {
	if securityParam <= 0 {
		return 0
	}
	counts := levelCounts(blocks)
	for mu := len(counts) - 1; mu >= 0; mu-- {
		if counts[mu] >= 2*securityParam {
			return mu
		}
	}
	return 0
}

// Score sums the fixed-point difficulties of the given blocks.
func Score(blocks []Block) *big.Int {
	total := new(big.Int)
	for _, b := range blocks {
		if b.difficulty != nil {
			total.Add(total, b.difficulty)
		}
	}
	return total
}

// indexOfHeight returns the position of the first block at or above height.
// Buckets are height-ascending, so the lookup is binary.
func indexOfHeight(bucket []Block, height uint64) int {
	return sort.Search(len(bucket), func(i int) bool {
		return bucket[i].height >= height
	})
}
