// Package model defines domain models shared by the proof services.
package model

import "time"

// Network names the chain flavor a proof was built against.
type Network string

var (
	Mainnet   Network = "mainnet"
	Testnet   Network = "testnet"
	Regtest   Network = "regtest"
	Synthetic Network = "synthetic"
)

// ProofStat is one observation of the running proof, persisted to
// ClickHouse after every reporting step.
type ProofStat struct {
	Network     Network
	Height      uint64
	ProofLength uint32
	ProofLevel  uint16
	// Score is the proof's summed fixed-point difficulty rendered as a
	// decimal string; it exceeds every native integer width on mainnet.
	Score string
	// LevelDifficulties maps a level to the mean fixed-point difficulty of
	// its most recent blocks, rendered as decimal strings.
	LevelDifficulties map[uint16]string
	CompressDuration  time.Duration
	RecordedAt        time.Time
}
