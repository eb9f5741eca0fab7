// Package rpcclient wraps the btcd RPC client with call metrics.
package rpcclient

import (
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
)

// RPCMetrics records the outcome and duration of a node RPC call.
type RPCMetrics interface {
	Observe(operation string, err error, started time.Time)
}

// ObservedClient exposes the subset of node RPCs needed for header fetching,
// reporting every call to the metrics sink.
type ObservedClient struct {
	client     *rpcclient.Client
	rpcMetrics RPCMetrics
}

func NewObservedClient(client *rpcclient.Client, rpcMetrics RPCMetrics) *ObservedClient {
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

// GetBlockCount returns the height of the node's best chain tip.
func (r *ObservedClient) GetBlockCount() (int64, error) {
	started := time.Now()
	count, err := r.client.GetBlockCount()
	r.rpcMetrics.Observe("get_block_count", err, started)
	return count, err
}

// GetBlockHash resolves the hash of the block at the given height.
func (r *ObservedClient) GetBlockHash(blockHeight int64) (*chainhash.Hash, error) {
	started := time.Now()
	hash, err := r.client.GetBlockHash(blockHeight)
	r.rpcMetrics.Observe("get_block_hash", err, started)
	return hash, err
}

// GetBlockHeaderVerbose fetches the decoded header for the given block hash.
func (r *ObservedClient) GetBlockHeaderVerbose(blockHash *chainhash.Hash) (*btcjson.GetBlockHeaderVerboseResult, error) {
	started := time.Now()
	header, err := r.client.GetBlockHeaderVerbose(blockHash)
	r.rpcMetrics.Observe("get_block_header_verbose", err, started)
	return header, err
}
