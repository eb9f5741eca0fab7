package service

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
	"github.com/goodnatureofminers/chainproof7000-backend/pkg/safe"
)

// ErrProofRegressed reports a compressed proof that compares below its
// predecessor. Compression must never throw away winning work, so callers
// treat this as fatal rather than retrying.
var ErrProofRegressed = errors.New("compressed proof lost to its predecessor")

// proofTracker holds the evolving compressed proof. It is not safe for
// concurrent use; callers serialize access.
type proofTracker struct {
	params superchain.Params
	blocks []superchain.Block
}

func newProofTracker(params superchain.Params, initial []superchain.Block) (*proofTracker, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tracker := &proofTracker{params: params}
	if len(initial) > 0 {
		if _, err := superchain.Group(initial); err != nil {
			return nil, fmt.Errorf("initial proof: %w", err)
		}
		tracker.blocks = append([]superchain.Block(nil), initial...)
	}
	return tracker, nil
}

// Extend folds fresh blocks into the proof and re-compresses. Compression
// must never produce a proof that loses to its predecessor; that would mean
// the summary threw away winning work, so it is a hard error.
func (p *proofTracker) Extend(fresh []superchain.Block) error {
	if len(fresh) == 0 {
		return nil
	}
	combined := make([]superchain.Block, 0, len(p.blocks)+len(fresh))
	combined = append(combined, p.blocks...)
	combined = append(combined, fresh...)

	compressed, err := superchain.Compress(combined, p.params)
	if err != nil {
		return fmt.Errorf("compress proof: %w", err)
	}
	if err := p.ensureNotWorse(compressed); err != nil {
		return err
	}
	p.blocks = compressed
	return nil
}

func (p *proofTracker) ensureNotWorse(next []superchain.Block) error {
	if len(p.blocks) == 0 || len(next) == 0 {
		return nil
	}
	prev, err := superchain.Group(p.blocks)
	if err != nil {
		return err
	}
	cand, err := superchain.Group(next)
	if err != nil {
		return err
	}
	ord, err := superchain.Compare(cand, prev, p.params.SecurityParam)
	if err != nil {
		return fmt.Errorf("compare proofs: %w", err)
	}
	if ord == superchain.BBetter {
		return fmt.Errorf("proof up to height %d: %w", next[len(next)-1].Height(), ErrProofRegressed)
	}
	return nil
}

func (p *proofTracker) Len() int { return len(p.blocks) }

// Height is the tip height, or zero for an empty proof.
func (p *proofTracker) Height() uint64 {
	if len(p.blocks) == 0 {
		return 0
	}
	return p.blocks[len(p.blocks)-1].Height()
}

func (p *proofTracker) Level() int {
	return superchain.ProofLevel(p.blocks, p.params.SecurityParam)
}

func (p *proofTracker) Score() *big.Int {
	return superchain.Score(p.blocks)
}

// Blocks returns a copy of the proof's block list.
func (p *proofTracker) Blocks() []superchain.Block {
	return append([]superchain.Block(nil), p.blocks...)
}

// Split dissolves the proof into its stabilized prefix and raw suffix.
func (p *proofTracker) Split() (superchain.SplitProof, error) {
	sc, err := superchain.Group(p.blocks)
	if err != nil {
		return superchain.SplitProof{}, err
	}
	return superchain.Dissolve(sc, p.params.UnstableLen)
}

// Stat renders the proof's current shape as a persistable observation.
func (p *proofTracker) Stat(network model.Network, compressDuration time.Duration) (model.ProofStat, error) {
	if len(p.blocks) == 0 {
		return model.ProofStat{}, fmt.Errorf("stat of empty proof: %w", superchain.ErrEmptyChain)
	}
	sc, err := superchain.Group(p.blocks)
	if err != nil {
		return model.ProofStat{}, err
	}
	length, err := safe.Uint32(len(p.blocks))
	if err != nil {
		return model.ProofStat{}, fmt.Errorf("proof length overflow: %w", err)
	}
	level := p.Level()
	proofLevel, err := safe.Uint16(level)
	if err != nil {
		return model.ProofStat{}, fmt.Errorf("proof level overflow: %w", err)
	}
	return model.ProofStat{
		Network:           network,
		Height:            p.Height(),
		ProofLength:       length,
		ProofLevel:        proofLevel,
		Score:             p.Score().String(),
		LevelDifficulties: levelDifficulties(sc, p.params.SecurityParam, level),
		CompressDuration:  compressDuration,
		RecordedAt:        time.Now().UTC(),
	}, nil
}

// levelDifficulties computes the mean difficulty of the last securityParam
// blocks of every bucket up to topLevel, in fixed-point decimal form.
func levelDifficulties(sc superchain.Superchain, securityParam, topLevel int) map[uint16]string {
	out := make(map[uint16]string, topLevel+1)
	for mu := 0; mu <= topLevel && mu < sc.NumLevels(); mu++ {
		bucket := sc.Level(mu)
		if len(bucket) == 0 {
			continue
		}
		n := securityParam
		if n > len(bucket) {
			n = len(bucket)
		}
		sum := new(big.Int)
		for _, block := range bucket[len(bucket)-n:] {
			sum.Add(sum, block.Difficulty())
		}
		out[uint16(mu)] = roundedMean(sum, n).String()
	}
	return out
}

// roundedMean is round(sum/n) half up, computed exactly.
func roundedMean(sum *big.Int, n int) *big.Int {
	numerator := new(big.Int).Lsh(sum, 1)
	numerator.Add(numerator, big.NewInt(int64(n)))
	return numerator.Div(numerator, big.NewInt(2*int64(n)))
}
