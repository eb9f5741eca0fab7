package headers

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

func TestToBlockMainnetGenesis(t *testing.T) {
	header := Header{
		Height: 0,
		Hash:   "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		Bits:   "1d00ffff",
		Time:   1_231_006_505,
	}

	block, err := ToBlock(header)
	if err != nil {
		t.Fatalf("ToBlock() error = %v", err)
	}
	if block.Height() != 0 {
		t.Errorf("Height() = %d, want 0", block.Height())
	}
	if block.Level() != superchain.GenesisLevel {
		t.Errorf("Level() = %d, want %d", block.Level(), superchain.GenesisLevel)
	}
	if got := block.Difficulty().String(); got != "10000" {
		t.Errorf("Difficulty() = %s, want 10000", got)
	}
	if block.Timestamp() != 1_231_006_505 {
		t.Errorf("Timestamp() = %d, want 1231006505", block.Timestamp())
	}
	if block.Target().Cmp(superchain.GenesisTarget()) != 0 {
		t.Errorf("Target() = %s, want genesis target", block.Target())
	}
}

func TestToBlockMainnetHeightOne(t *testing.T) {
	header := Header{
		Height: 1,
		Hash:   "00000000839a8e6886ab5951d76f411475428afc90947ee320161bbf18eb6048",
		Bits:   "1d00ffff",
		Time:   1_231_469_665,
	}

	block, err := ToBlock(header)
	if err != nil {
		t.Fatalf("ToBlock() error = %v", err)
	}
	if block.Level() != 0 {
		t.Errorf("Level() = %d, want 0", block.Level())
	}
	if got := block.Difficulty().String(); got != "10000" {
		t.Errorf("Difficulty() = %s, want 10000", got)
	}
}

func TestToBlockHigherDifficulty(t *testing.T) {
	// bits 1c7fff00 decodes to 0x7fff00 * 2^200, a hair under half the
	// genesis target, so the difficulty still rounds to 2.
	target := new(big.Int).Lsh(big.NewInt(0x7fff00), 200)
	header := Header{
		Height: 9,
		Hash:   fmt.Sprintf("%064x", target),
		Bits:   "1c7fff00",
		Time:   1_300_000_000,
	}

	block, err := ToBlock(header)
	if err != nil {
		t.Fatalf("ToBlock() error = %v", err)
	}
	if block.Target().Cmp(target) != 0 {
		t.Errorf("Target() = %s, want %s", block.Target(), target)
	}
	if block.Level() != 0 {
		t.Errorf("Level() = %d, want 0", block.Level())
	}
	if got := block.Difficulty().String(); got != "20000" {
		t.Errorf("Difficulty() = %s, want 20000", got)
	}
}

func TestToBlockErrors(t *testing.T) {
	valid := Header{
		Height: 1,
		Hash:   "00000000839a8e6886ab5951d76f411475428afc90947ee320161bbf18eb6048",
		Bits:   "1d00ffff",
		Time:   1_231_469_665,
	}

	t.Run("invalid bits", func(t *testing.T) {
		header := valid
		header.Bits = "zz00ffff"
		if _, err := ToBlock(header); err == nil {
			t.Fatal("ToBlock() expected error, got nil")
		}
	})

	t.Run("invalid hash", func(t *testing.T) {
		header := valid
		header.Hash = "not-a-hash"
		if _, err := ToBlock(header); err == nil {
			t.Fatal("ToBlock() expected error, got nil")
		}
	})

	t.Run("hash above target", func(t *testing.T) {
		header := valid
		header.Hash = strings.Repeat("ff", 32)
		_, err := ToBlock(header)
		if !errors.Is(err, superchain.ErrInvalidProofOfWork) {
			t.Fatalf("ToBlock() error = %v, want ErrInvalidProofOfWork", err)
		}
	})
}

func TestToBlocks(t *testing.T) {
	headers := ScriptedHeaders([]int{1, 0, 2})

	blocks, err := ToBlocks(headers)
	if err != nil {
		t.Fatalf("ToBlocks() error = %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("ToBlocks() returned %d blocks, want 3", len(blocks))
	}
	for i, block := range blocks {
		if block.Height() != uint64(i) {
			t.Errorf("block %d has height %d", i, block.Height())
		}
	}

	headers[1].Bits = "broken"
	if _, err := ToBlocks(headers); err == nil {
		t.Fatal("ToBlocks() expected error, got nil")
	}
}
