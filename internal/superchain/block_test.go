package superchain

import (
	"errors"
	"math/big"
	"testing"
)

// mkBlock builds a block whose hash undershoots the genesis target by
// exactly level powers of two.
func mkBlock(t *testing.T, height uint64, level int) Block {
	t.Helper()
	target := GenesisTarget()
	hash := new(big.Int).Rsh(target, uint(level))
	b, err := NewBlock(height, target, hash, int64(height)*600)
	if err != nil {
		t.Fatalf("new block %d: %v", height, err)
	}
	if b.Level() != level {
		t.Fatalf("block %d level = %d, want %d", height, b.Level(), level)
	}
	return b
}

// mkChain builds a contiguous chain starting at the given height with one
// block per entry in levels.
func mkChain(t *testing.T, start uint64, levels ...int) Chain {
	t.Helper()
	chain := make(Chain, 0, len(levels))
	for i, level := range levels {
		chain = append(chain, mkBlock(t, start+uint64(i), level))
	}
	return chain
}

func TestNewBlockValidation(t *testing.T) {
	target := GenesisTarget()

	tests := []struct {
		name    string
		target  *big.Int
		hash    *big.Int
		wantErr error
	}{
		{
			name:    "nil target",
			target:  nil,
			hash:    big.NewInt(1),
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "zero target",
			target:  big.NewInt(0),
			hash:    big.NewInt(1),
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "negative target",
			target:  big.NewInt(-5),
			hash:    big.NewInt(1),
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "zero hash",
			target:  target,
			hash:    big.NewInt(0),
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "hash above target",
			target:  target,
			hash:    new(big.Int).Add(target, big.NewInt(1)),
			wantErr: ErrInvalidProofOfWork,
		},
		{
			name:   "hash equals target",
			target: target,
			hash:   target,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBlock(1, tt.target, tt.hash, 0)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewBlock: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewBlock error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLevelOf(t *testing.T) {
	target := GenesisTarget()
	half := new(big.Int).Rsh(target, 1)

	tests := []struct {
		name string
		hash *big.Int
		want int
	}{
		{name: "hash equals target", hash: new(big.Int).Set(target), want: 0},
		{name: "just above half", hash: new(big.Int).Add(half, big.NewInt(1)), want: 0},
		{name: "exactly half", hash: half, want: 1},
		{name: "eighth", hash: new(big.Int).Rsh(target, 3), want: 3},
		{name: "hash one", hash: big.NewInt(1), want: target.BitLen() - 1},
		{name: "above target", hash: new(big.Int).Add(target, big.NewInt(1)), want: -1},
		{name: "zero hash", hash: big.NewInt(0), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelOf(tt.hash, target); got != tt.want {
				t.Errorf("LevelOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDifficultyExactValues(t *testing.T) {
	target := GenesisTarget()

	tests := []struct {
		name   string
		target *big.Int
		want   int64
	}{
		{name: "genesis target", target: target, want: 10_000},
		{name: "half target", target: new(big.Int).Rsh(target, 1), want: 20_000},
		{name: "quarter target", target: new(big.Int).Rsh(target, 2), want: 40_000},
		{name: "double target", target: new(big.Int).Lsh(target, 1), want: 5_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBlock(1, tt.target, big.NewInt(1), 0)
			if err != nil {
				t.Fatalf("NewBlock: %v", err)
			}
			if got := b.Difficulty(); got.Cmp(big.NewInt(tt.want)) != 0 {
				t.Errorf("Difficulty = %s, want %d", got, tt.want)
			}
		})
	}
}

// Difficulty must be the nearest multiple of 1/DifficultyScale, ties up:
// d - 1/2 <= genesisTarget*scale/target < d + 1/2.
func TestDifficultyRounding(t *testing.T) {
	scale := big.NewInt(DifficultyScale)
	for _, delta := range []int64{1, 3, 7, 12_345, 999_999} {
		target := new(big.Int).Sub(GenesisTarget(), big.NewInt(delta))
		b, err := NewBlock(1, target, big.NewInt(1), 0)
		if err != nil {
			t.Fatalf("NewBlock: %v", err)
		}
		d := b.Difficulty()

		exact := new(big.Int).Mul(GenesisTarget(), scale)
		exact.Lsh(exact, 1) // 2 * G * scale

		lower := new(big.Int).Mul(d, target)
		lower.Lsh(lower, 1)
		lower.Sub(lower, target) // (2d - 1) * target
		upper := new(big.Int).Mul(d, target)
		upper.Lsh(upper, 1)
		upper.Add(upper, target) // (2d + 1) * target

		if lower.Cmp(exact) > 0 || exact.Cmp(upper) >= 0 {
			t.Errorf("delta %d: difficulty %s outside half-step window", delta, d)
		}
	}
}

func TestGenesisBlockLevel(t *testing.T) {
	target := GenesisTarget()
	genesis, err := NewGenesisBlock(target, new(big.Int).Set(target), 1231006505)
	if err != nil {
		t.Fatalf("NewGenesisBlock: %v", err)
	}
	if genesis.Level() != GenesisLevel {
		t.Errorf("genesis level = %d, want %d", genesis.Level(), GenesisLevel)
	}
	if genesis.Height() != 0 {
		t.Errorf("genesis height = %d, want 0", genesis.Height())
	}
	if genesis.Difficulty().Cmp(big.NewInt(DifficultyScale)) != 0 {
		t.Errorf("genesis difficulty = %s, want %d", genesis.Difficulty(), DifficultyScale)
	}
}

func TestBlockEqual(t *testing.T) {
	a := mkBlock(t, 7, 2)
	same := mkBlock(t, 7, 2)
	otherHeight := mkBlock(t, 8, 2)
	otherLevel := mkBlock(t, 7, 3)

	if !a.Equal(same) {
		t.Error("identical blocks not equal")
	}
	if a.Equal(otherHeight) {
		t.Error("blocks with different heights equal")
	}
	if a.Equal(otherLevel) {
		t.Error("blocks with different hashes equal")
	}
	if a.Equal(Block{}) {
		t.Error("block equal to zero value")
	}
}

func TestBlockAccessorsCopy(t *testing.T) {
	b := mkBlock(t, 3, 1)

	b.Target().SetInt64(1)
	b.Hash().SetInt64(1)
	b.Difficulty().SetInt64(1)

	if b.Target().Cmp(GenesisTarget()) != 0 {
		t.Error("Target exposed internal state")
	}
	if b.Hash().Cmp(new(big.Int).Rsh(GenesisTarget(), 1)) != 0 {
		t.Error("Hash exposed internal state")
	}
	if b.Difficulty().Cmp(big.NewInt(DifficultyScale)) != 0 {
		t.Error("Difficulty exposed internal state")
	}
}

func TestNewBlockCopiesInputs(t *testing.T) {
	target := GenesisTarget()
	hash := new(big.Int).Rsh(target, 4)
	b, err := NewBlock(5, target, hash, 0)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}

	target.SetInt64(1)
	hash.SetInt64(1)

	if b.Target().Cmp(GenesisTarget()) != 0 {
		t.Error("block target aliases caller's value")
	}
	if b.Level() != 4 {
		t.Errorf("level = %d, want 4", b.Level())
	}
}
