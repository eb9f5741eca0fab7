package headers

import (
	"fmt"

	"github.com/decred/dcrd/blockchain/standalone/v2"
	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/utils"
)

// ToBlock converts a header into a level-indexed block. The compact bits
// become the target and the hash is checked against it.
func ToBlock(header Header) (superchain.Block, error) {
	bits, err := utils.ParseBits(header.Bits)
	if err != nil {
		return superchain.Block{}, fmt.Errorf("parse bits %q: %w", header.Bits, err)
	}
	target := standalone.CompactToBig(bits)

	hash, err := chainhash.NewHashFromStr(header.Hash)
	if err != nil {
		return superchain.Block{}, fmt.Errorf("parse block hash %q: %w", header.Hash, err)
	}
	hashValue := standalone.HashToBig(hash)

	if header.Height == 0 {
		return superchain.NewGenesisBlock(target, hashValue, header.Time)
	}
	return superchain.NewBlock(header.Height, target, hashValue, header.Time)
}

// ToBlocks converts headers in order.
func ToBlocks(headers []Header) ([]superchain.Block, error) {
	blocks := make([]superchain.Block, 0, len(headers))
	for _, header := range headers {
		block, err := ToBlock(header)
		if err != nil {
			return nil, fmt.Errorf("header at height %d: %w", header.Height, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}
