package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/headers"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// HeaderSource yields block headers by height, whatever their origin:
	// a node, a file or a generator.
	HeaderSource interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchRange(ctx context.Context, from, to uint64) ([]headers.Header, error)
	}

	// StatSink receives proof observations on the way to storage.
	StatSink interface {
		Record(ctx context.Context, stat model.ProofStat) error
		Flush(ctx context.Context) error
	}

	// ProofStatRepository persists proof observations in batches.
	ProofStatRepository interface {
		InsertProofStats(ctx context.Context, stats []model.ProofStat) error
	}

	CompressorMetrics interface {
		ObserveStep(err error, blocks int, started time.Time)
		SetProofShape(height uint64, length, level int)
	}

	FollowerMetrics interface {
		ObservePoll(err error, started time.Time)
		ObserveExtend(err error, blocks int, started time.Time)
	}
)
