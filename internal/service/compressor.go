package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/export"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/headers"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

// CompressorConfig tunes a batch compression run.
type CompressorConfig struct {
	Network model.Network
	Params  superchain.Params
	// StartHeight is the first height folded into the proof.
	StartHeight uint64
	// BreakAt caps the run at a fixed height; zero chases the source tip.
	BreakAt uint64
	// FetchStep is how many heights each source request covers.
	FetchStep uint64
	// ReportStep is how many heights pass between status reports.
	ReportStep uint64
	// ProofPath, when set, receives the final split proof as JSON.
	ProofPath string
}

// CompressorService folds a chain into a succinct proof one chunk at a
// time, reporting the proof's shape as it grows.
type CompressorService struct {
	logger  *zap.Logger
	source  HeaderSource
	stats   StatSink
	metrics CompressorMetrics
	cfg     CompressorConfig
	tracker *proofTracker
}

// NewCompressorService builds a CompressorService with dependencies.
func NewCompressorService(
	source HeaderSource,
	stats StatSink,
	metrics CompressorMetrics,
	cfg CompressorConfig,
	logger *zap.Logger,
) (*CompressorService, error) {
	if source == nil {
		return nil, errors.New("header source is required")
	}
	if stats == nil {
		return nil, errors.New("stat sink is required")
	}
	if metrics == nil {
		return nil, errors.New("compressor metrics is required")
	}
	tracker, err := newProofTracker(cfg.Params, nil)
	if err != nil {
		return nil, err
	}
	if cfg.FetchStep == 0 {
		cfg.FetchStep = defaultFetchStep
	}
	if cfg.ReportStep == 0 {
		cfg.ReportStep = defaultReportStep
	}

	return &CompressorService{
		logger:  logger.With(zap.String("network", string(cfg.Network))),
		source:  source,
		stats:   stats,
		metrics: metrics,
		cfg:     cfg,
		tracker: tracker,
	}, nil
}

// Run compresses the chain up to the target height and flushes the
// collected stats. It returns early on context cancellation.
func (s *CompressorService) Run(ctx context.Context) error {
	target, err := s.targetHeight(ctx)
	if err != nil {
		return err
	}
	if target < s.cfg.StartHeight {
		return fmt.Errorf("target height %d below start height %d", target, s.cfg.StartHeight)
	}

	s.logger.Info("starting chain compression",
		zap.Uint64("start_height", s.cfg.StartHeight),
		zap.Uint64("target_height", target),
		zap.Int("security_param", s.cfg.Params.SecurityParam),
		zap.Int("unstable_len", s.cfg.Params.UnstableLen),
		zap.Int("uncompressed_len", s.cfg.Params.UncompressedLen))

	var sinceReport uint64
	for next := s.cfg.StartHeight; next <= target; {
		if err := ctx.Err(); err != nil {
			return err
		}

		to := next + s.cfg.FetchStep - 1
		if to > target || to < next {
			to = target
		}

		started := time.Now()
		folded, err := s.step(ctx, next, to)
		s.metrics.ObserveStep(err, folded, started)
		if err != nil {
			return err
		}

		sinceReport += uint64(folded)
		if sinceReport >= s.cfg.ReportStep || to == target {
			if err := s.report(ctx, time.Since(started)); err != nil {
				return err
			}
			sinceReport = 0
		}
		next = to + 1
	}

	if err := s.stats.Flush(ctx); err != nil {
		return err
	}
	if s.cfg.ProofPath != "" {
		if err := s.exportProof(); err != nil {
			return err
		}
	}

	s.logger.Info("chain compression complete",
		zap.Uint64("height", s.tracker.Height()),
		zap.Int("proof_length", s.tracker.Len()),
		zap.Int("proof_level", s.tracker.Level()),
		zap.String("score", s.tracker.Score().String()))
	return nil
}

// Proof returns a copy of the current proof blocks.
func (s *CompressorService) Proof() []superchain.Block {
	return s.tracker.Blocks()
}

// Params returns the compression parameters the service runs with.
func (s *CompressorService) Params() superchain.Params {
	return s.cfg.Params
}

func (s *CompressorService) step(ctx context.Context, from, to uint64) (int, error) {
	fetched, err := s.source.FetchRange(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch headers %d..%d: %w", from, to, err)
	}
	blocks, err := headers.ToBlocks(fetched)
	if err != nil {
		return 0, err
	}
	if err := s.tracker.Extend(blocks); err != nil {
		return 0, err
	}
	return len(blocks), nil
}

func (s *CompressorService) report(ctx context.Context, compressDuration time.Duration) error {
	if s.tracker.Len() == 0 {
		return nil
	}
	stat, err := s.tracker.Stat(s.cfg.Network, compressDuration)
	if err != nil {
		return err
	}

	s.metrics.SetProofShape(stat.Height, int(stat.ProofLength), int(stat.ProofLevel))
	s.logger.Info("proof status",
		zap.Uint64("height", stat.Height),
		zap.Uint32("proof_length", stat.ProofLength),
		zap.Uint16("proof_level", stat.ProofLevel),
		zap.String("score", stat.Score),
		zap.Duration("compress_duration", stat.CompressDuration))

	if err := s.stats.Record(ctx, stat); err != nil {
		return fmt.Errorf("record proof stat: %w", err)
	}
	return nil
}

func (s *CompressorService) targetHeight(ctx context.Context) (uint64, error) {
	latest, err := s.source.LatestHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("latest height: %w", err)
	}
	if s.cfg.BreakAt > 0 && s.cfg.BreakAt < latest {
		return s.cfg.BreakAt, nil
	}
	return latest, nil
}

func (s *CompressorService) exportProof() error {
	split, err := s.tracker.Split()
	if err != nil {
		return fmt.Errorf("dissolve proof: %w", err)
	}
	if err := export.WriteProofFile(s.cfg.ProofPath, split, s.cfg.Params); err != nil {
		return err
	}
	s.logger.Info("proof exported", zap.String("path", s.cfg.ProofPath))
	return nil
}
