package superchain

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidProofOfWork reports a block hash above its target.
	ErrInvalidProofOfWork = errors.New("invalid proof of work")
	// ErrInvalidParameter reports an out-of-range argument.
	ErrInvalidParameter = errors.New("invalid parameter")
)

const (
	// GenesisLevel is the superblock level assigned to the block at height
	// zero. The genesis hash is fixed rather than sampled, so it sits above
	// every level a 256-bit hash can reach.
	GenesisLevel = 256

	// DifficultyScale is the fixed-point denominator of difficulty values:
	// a stored difficulty of 10000 means 1.0000.
	DifficultyScale = 10_000
)

// genesisTargetHex is the Bitcoin maximum target (compact bits 0x1d00ffff).
const genesisTargetHex = "00000000ffff0000000000000000000000000000000000000000000000000000"

var genesisTarget = mustHexInt(genesisTargetHex)

func mustHexInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("superchain: bad hex constant " + s)
	}
	return v
}

// GenesisTarget returns the target difficulty 1 corresponds to.
func GenesisTarget() *big.Int {
	return new(big.Int).Set(genesisTarget)
}

// Block is an immutable proof-of-work block header with its derived
// superblock level and fixed-point difficulty.
type Block struct {
	height     uint64
	target     *big.Int
	hash       *big.Int
	timestamp  int64
	level      int
	difficulty *big.Int
}

// NewBlock validates a header and derives its level and difficulty. The
// target and hash must be positive and the hash must not exceed the target.
func NewBlock(height uint64, target, hash *big.Int, timestamp int64) (Block, error) {
	if target == nil || target.Sign() <= 0 {
		return Block{}, fmt.Errorf("block %d: target must be positive: %w", height, ErrInvalidParameter)
	}
	if hash == nil || hash.Sign() <= 0 {
		return Block{}, fmt.Errorf("block %d: hash must be positive: %w", height, ErrInvalidParameter)
	}
	if hash.Cmp(target) > 0 {
		return Block{}, fmt.Errorf("block %d: hash above target: %w", height, ErrInvalidProofOfWork)
	}

	level := LevelOf(hash, target)
	if height == 0 {
		level = GenesisLevel
	}

	return Block{
		height:     height,
		target:     new(big.Int).Set(target),
		hash:       new(big.Int).Set(hash),
		timestamp:  timestamp,
		level:      level,
		difficulty: difficultyOf(target),
	}, nil
}

// NewGenesisBlock builds the height-zero block, which carries GenesisLevel
// regardless of its hash.
func NewGenesisBlock(target, hash *big.Int, timestamp int64) (Block, error) {
	return NewBlock(0, target, hash, timestamp)
}

// LevelOf returns the superblock level floor(-log2(hash/target)), or -1 when
// the hash exceeds the target. Computed exactly in integer arithmetic:
// floor(log2(target/hash)) is one less than the bit length of the integer
// quotient.
func LevelOf(hash, target *big.Int) int {
	if hash == nil || target == nil || hash.Sign() <= 0 || target.Sign() <= 0 {
		return -1
	}
	if hash.Cmp(target) > 0 {
		return -1
	}
	return new(big.Int).Div(target, hash).BitLen() - 1
}

// difficultyOf returns round(genesisTarget/target * DifficultyScale) with
// ties rounded up, so equal targets yield identical difficulties on every
// platform.
func difficultyOf(target *big.Int) *big.Int {
	num := new(big.Int).Mul(genesisTarget, big.NewInt(DifficultyScale))
	num.Lsh(num, 1)
	num.Add(num, target)
	den := new(big.Int).Lsh(target, 1)
	return num.Div(num, den)
}

func (b Block) Height() uint64 { return b.height }

func (b Block) Timestamp() int64 { return b.timestamp }

// Level is the superblock level derived at construction.
func (b Block) Level() int { return b.level }

// Target returns a copy of the block target.
func (b Block) Target() *big.Int {
	if b.target == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.target)
}

// Hash returns a copy of the block hash interpreted as an integer.
func (b Block) Hash() *big.Int {
	if b.hash == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.hash)
}

// Difficulty returns a copy of the fixed-point difficulty, scaled by
// DifficultyScale.
func (b Block) Difficulty() *big.Int {
	if b.difficulty == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.difficulty)
}

// Equal reports whether two blocks carry the same header fields. Derived
// level and difficulty are not compared separately.
func (b Block) Equal(other Block) bool {
	return b.height == other.height &&
		b.timestamp == other.timestamp &&
		bigEqual(b.target, other.target) &&
		bigEqual(b.hash, other.hash)
}

func (b Block) String() string {
	return fmt.Sprintf("block{height=%d level=%d}", b.height, b.level)
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
