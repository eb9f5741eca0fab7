// Package export serializes split proofs into a stable JSON document and
// back. Targets and hashes travel as decimal strings so no precision is
// lost, and decoding re-validates every block.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

// BlockJSON is the wire form of a single block.
type BlockJSON struct {
	Height    uint64 `json:"height"`
	Target    string `json:"target"`
	Hash      string `json:"hash"`
	Timestamp int64  `json:"timestamp"`
}

// LevelJSON is one superchain bucket: every block of the given level or
// higher, in height order.
type LevelJSON struct {
	Level  int         `json:"level"`
	Blocks []BlockJSON `json:"blocks"`
}

// ParamsJSON is the wire form of the compression parameters.
type ParamsJSON struct {
	UnstableLen     int `json:"k"`
	SecurityParam   int `json:"security_param"`
	UncompressedLen int `json:"uncompressed_len"`
}

// Document is the full proof export: parameters plus the stabilized prefix
// pi and the raw suffix chi, both as level buckets.
type Document struct {
	Params ParamsJSON  `json:"params"`
	Pi     []LevelJSON `json:"pi"`
	Chi    []LevelJSON `json:"chi"`
}

// NewDocument builds the wire form of a split proof.
func NewDocument(split superchain.SplitProof, params superchain.Params) Document {
	return Document{
		Params: ParamsJSON{
			UnstableLen:     params.UnstableLen,
			SecurityParam:   params.SecurityParam,
			UncompressedLen: params.UncompressedLen,
		},
		Pi:  encodeSide(split.Stable),
		Chi: encodeSide(split.Unstable),
	}
}

// Split decodes the document back into a split proof, re-validating proof of
// work, height order and bucket consistency.
func (d Document) Split() (superchain.SplitProof, superchain.Params, error) {
	params := superchain.Params{
		SecurityParam:   d.Params.SecurityParam,
		UnstableLen:     d.Params.UnstableLen,
		UncompressedLen: d.Params.UncompressedLen,
	}
	if err := params.Validate(); err != nil {
		return superchain.SplitProof{}, superchain.Params{}, fmt.Errorf("decode params: %w", err)
	}
	stable, err := decodeSide(d.Pi)
	if err != nil {
		return superchain.SplitProof{}, superchain.Params{}, fmt.Errorf("decode pi: %w", err)
	}
	unstable, err := decodeSide(d.Chi)
	if err != nil {
		return superchain.SplitProof{}, superchain.Params{}, fmt.Errorf("decode chi: %w", err)
	}
	split := superchain.SplitProof{Stable: stable, Unstable: unstable}
	return split, params, nil
}

// Marshal renders a split proof as indented JSON.
func Marshal(split superchain.SplitProof, params superchain.Params) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(split, params), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode proof: %w", err)
	}
	return data, nil
}

// Unmarshal parses and validates a proof document. Unknown fields are
// rejected.
func Unmarshal(data []byte) (superchain.SplitProof, superchain.Params, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return superchain.SplitProof{}, superchain.Params{}, fmt.Errorf("parse proof: %w", err)
	}
	return doc.Split()
}

// WriteProofFile dumps a split proof to path.
func WriteProofFile(path string, split superchain.SplitProof, params superchain.Params) error {
	data, err := Marshal(split, params)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write proof file: %w", err)
	}
	return nil
}

// ReadProofFile loads a split proof from path.
func ReadProofFile(path string) (superchain.SplitProof, superchain.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return superchain.SplitProof{}, superchain.Params{}, fmt.Errorf("read proof file: %w", err)
	}
	return Unmarshal(data)
}

func encodeSide(sc superchain.Superchain) []LevelJSON {
	levels := make([]LevelJSON, 0, sc.NumLevels())
	for mu := 0; mu < sc.NumLevels(); mu++ {
		bucket := sc.Level(mu)
		blocks := make([]BlockJSON, 0, len(bucket))
		for _, block := range bucket {
			blocks = append(blocks, BlockJSON{
				Height:    block.Height(),
				Target:    block.Target().String(),
				Hash:      block.Hash().String(),
				Timestamp: block.Timestamp(),
			})
		}
		levels = append(levels, LevelJSON{Level: mu, Blocks: blocks})
	}
	return levels
}

func decodeSide(levels []LevelJSON) (superchain.Superchain, error) {
	if len(levels) == 0 {
		return superchain.Superchain{}, nil
	}

	buckets := make([][]superchain.Block, len(levels))
	byHeight := make(map[uint64]superchain.Block)
	for i, level := range levels {
		if level.Level != i {
			return superchain.Superchain{}, fmt.Errorf("bucket %d labeled level %d", i, level.Level)
		}
		bucket := make([]superchain.Block, 0, len(level.Blocks))
		for _, raw := range level.Blocks {
			block, err := decodeBlock(raw)
			if err != nil {
				return superchain.Superchain{}, fmt.Errorf("level %d: %w", i, err)
			}
			if seen, ok := byHeight[block.Height()]; ok {
				if !seen.Equal(block) {
					return superchain.Superchain{}, fmt.Errorf("conflicting blocks at height %d", block.Height())
				}
			} else {
				byHeight[block.Height()] = block
			}
			bucket = append(bucket, block)
		}
		buckets[i] = bucket
	}

	heights := make([]uint64, 0, len(byHeight))
	for height := range byHeight {
		heights = append(heights, height)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	blocks := make([]superchain.Block, 0, len(heights))
	for _, height := range heights {
		blocks = append(blocks, byHeight[height])
	}

	sc, err := superchain.Group(blocks)
	if err != nil {
		return superchain.Superchain{}, err
	}
	if sc.NumLevels() != len(buckets) {
		return superchain.Superchain{}, fmt.Errorf("document has %d buckets, blocks span %d levels",
			len(buckets), sc.NumLevels())
	}
	for mu, want := range buckets {
		got := sc.Level(mu)
		if len(got) != len(want) {
			return superchain.Superchain{}, fmt.Errorf("level %d holds %d blocks, document lists %d",
				mu, len(got), len(want))
		}
		for i := range got {
			if !got[i].Equal(want[i]) {
				return superchain.Superchain{}, fmt.Errorf("level %d block %d does not match its level assignment", mu, i)
			}
		}
	}
	return sc, nil
}

func decodeBlock(raw BlockJSON) (superchain.Block, error) {
	target, err := parseBigInt(raw.Target)
	if err != nil {
		return superchain.Block{}, fmt.Errorf("block at height %d target: %w", raw.Height, err)
	}
	hash, err := parseBigInt(raw.Hash)
	if err != nil {
		return superchain.Block{}, fmt.Errorf("block at height %d hash: %w", raw.Height, err)
	}
	block, err := superchain.NewBlock(raw.Height, target, hash, raw.Timestamp)
	if err != nil {
		return superchain.Block{}, fmt.Errorf("block at height %d: %w", raw.Height, err)
	}
	return block, nil
}

func parseBigInt(value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal integer %q", value)
	}
	return parsed, nil
}
