package headers

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type (
	// RPCClient is the subset of the bitcoin RPC surface the node source
	// relies on.
	RPCClient interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlockHeaderVerbose(blockHash *chainhash.Hash) (*btcjson.GetBlockHeaderVerboseResult, error)
	}
)

// Header is a transport-agnostic block header: the hash and compact target
// bits as hex strings plus the block time. Height is positional in header
// files, so it stays out of the JSON form.
type Header struct {
	Height uint64 `json:"-"`
	Hash   string `json:"hash"`
	Bits   string `json:"bits"`
	Time   int64  `json:"time"`
}
