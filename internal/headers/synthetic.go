package headers

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/utils"
)

const (
	// genesisBits is the compact encoding of the genesis target.
	genesisBits = 0x1d00ffff

	// maxSyntheticLevel bounds generated levels, staying clear of the 208
	// trailing zero bits of the genesis target. Shifting past those would
	// eat mantissa bits and the generated hash would no longer land on
	// the requested level exactly.
	maxSyntheticLevel = 200

	syntheticBlockInterval = 600
)

// ScriptedHeaders generates one header per entry of levels, the entry being
// the level of the block at that height. Every header carries the genesis
// target, so a block of level mu gets the hash target>>mu.
func ScriptedHeaders(levels []int) []Header {
	headers := make([]Header, 0, len(levels))
	for height, level := range levels {
		headers = append(headers, syntheticHeader(uint64(height), level))
	}
	return headers
}

// NewScriptedSource serves the headers of ScriptedHeaders from memory.
func NewScriptedSource(levels []int) *SliceSource {
	return NewSliceSource(ScriptedHeaders(levels))
}

// RandomHeaders generates total headers whose levels follow a geometric
// distribution: each block reaches level mu with probability p^mu. The same
// seed always yields the same headers.
func RandomHeaders(p float64, seed int64, total uint64) ([]Header, error) {
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("level probability %v outside (0, 1)", p)
	}
	rnd := rand.New(rand.NewSource(seed))
	headers := make([]Header, 0, total)
	for height := uint64(0); height < total; height++ {
		level := 0
		for level < maxSyntheticLevel && rnd.Float64() < p {
			level++
		}
		headers = append(headers, syntheticHeader(height, level))
	}
	return headers, nil
}

// NewRandomSource serves the headers of RandomHeaders from memory.
func NewRandomSource(p float64, seed int64, total uint64) (*SliceSource, error) {
	headers, err := RandomHeaders(p, seed, total)
	if err != nil {
		return nil, err
	}
	return NewSliceSource(headers), nil
}

func syntheticHeader(height uint64, level int) Header {
	if level < 0 {
		level = 0
	}
	if level > maxSyntheticLevel {
		level = maxSyntheticLevel
	}
	hash := new(big.Int).Rsh(superchain.GenesisTarget(), uint(level))
	return Header{
		Height: height,
		Hash:   fmt.Sprintf("%064x", hash),
		Bits:   utils.FormatBits(genesisBits),
		Time:   int64(height) * syntheticBlockInterval,
	}
}
