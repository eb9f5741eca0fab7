// Package headers acquires block headers from a node, from saved files, or
// from synthetic generators, and converts them into level-indexed blocks.
package headers

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/chainproof7000-backend/pkg/safe"
	"github.com/goodnatureofminers/chainproof7000-backend/pkg/workerpool"
)

// NodeSource reads headers from a bitcoin node over RPC, fanning range
// fetches out across a worker pool.
type NodeSource struct {
	rpc     RPCClient
	workers int
}

// NewNodeSource creates a NodeSource. workers bounds the concurrent RPC
// calls during range fetches.
func NewNodeSource(rpc RPCClient, workers int) *NodeSource {
	if workers < 1 {
		workers = 1
	}
	return &NodeSource{
		rpc:     rpc,
		workers: workers,
	}
}

// LatestHeight returns the node's current tip height.
func (s *NodeSource) LatestHeight(_ context.Context) (uint64, error) {
	count, err := s.rpc.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// HeaderAt fetches the header at the given height.
func (s *NodeSource) HeaderAt(ctx context.Context, height uint64) (Header, error) {
	rpcHeight, err := safe.Int64(height)
	if err != nil {
		return Header{}, fmt.Errorf("block height %d exceeds rpc limit: %w", height, err)
	}
	if err := ctx.Err(); err != nil {
		return Header{}, err
	}
	hash, err := s.rpc.GetBlockHash(rpcHeight)
	if err != nil {
		return Header{}, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	verbose, err := s.rpc.GetBlockHeaderVerbose(hash)
	if err != nil {
		return Header{}, fmt.Errorf("get block header %s: %w", hash, err)
	}

	return Header{
		Height: height,
		Hash:   verbose.Hash,
		Bits:   verbose.Bits,
		Time:   verbose.Time,
	}, nil
}

// FetchRange fetches the headers for heights from..to inclusive, preserving
// height order.
func (s *NodeSource) FetchRange(ctx context.Context, from, to uint64) ([]Header, error) {
	if to < from {
		return nil, fmt.Errorf("invalid header range %d..%d", from, to)
	}
	heights := make([]uint64, 0, to-from+1)
	for h := from; h <= to; h++ {
		heights = append(heights, h)
	}
	return workerpool.Map(ctx, s.workers, heights, s.HeaderAt)
}
