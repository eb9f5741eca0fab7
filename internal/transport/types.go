package transport

import (
	"github.com/goodnatureofminers/chainproof7000-backend/internal/service"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// ProofProvider serves point-in-time views of a live proof.
type ProofProvider interface {
	Snapshot() service.ProofSnapshot
	SplitSnapshot() (superchain.SplitProof, superchain.Params, error)
}
