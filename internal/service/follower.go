package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/clock"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/headers"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

// FollowerConfig tunes the tip-following loop.
type FollowerConfig struct {
	Network model.Network
	Params  superchain.Params
	// PollInterval separates polls once the proof is in sync.
	PollInterval time.Duration
	// IdleInterval separates polls while the source reports no new blocks.
	IdleInterval time.Duration
	// BatchLimit caps how many heights one extension folds in.
	BatchLimit uint64
}

// ProofSnapshot is a point-in-time view of the follower's proof.
type ProofSnapshot struct {
	Network model.Network
	Params  superchain.Params
	Height  uint64
	Length  int
	Level   int
	Score   *big.Int
}

// FollowerService keeps a compressed proof in step with the chain tip.
// The proof is readable through Snapshot and SplitSnapshot while the
// follow loop runs.
type FollowerService struct {
	logger      *zap.Logger
	source      HeaderSource
	stats       StatSink
	metrics     FollowerMetrics
	cfg         FollowerConfig
	sleep       func(context.Context, time.Duration) error
	blockSignal <-chan struct{}

	mu      sync.RWMutex
	tracker *proofTracker
}

// NewFollowerService builds a FollowerService with dependencies. An
// initial proof, when given, seeds the tracker so the follower resumes
// from its tip instead of genesis.
func NewFollowerService(
	source HeaderSource,
	stats StatSink,
	metrics FollowerMetrics,
	cfg FollowerConfig,
	logger *zap.Logger,
	initial []superchain.Block,
	blockSignal <-chan struct{},
) (*FollowerService, error) {
	if source == nil {
		return nil, errors.New("header source is required")
	}
	if stats == nil {
		return nil, errors.New("stat sink is required")
	}
	if metrics == nil {
		return nil, errors.New("follower metrics is required")
	}
	tracker, err := newProofTracker(cfg.Params, initial)
	if err != nil {
		return nil, err
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = sleepDuration
	}
	if cfg.IdleInterval == 0 {
		cfg.IdleInterval = longSleepDuration
	}
	if cfg.BatchLimit == 0 {
		cfg.BatchLimit = defaultBatchLimit
	}

	return &FollowerService{
		logger:      logger.With(zap.String("network", string(cfg.Network))),
		source:      source,
		stats:       stats,
		metrics:     metrics,
		cfg:         cfg,
		sleep:       clock.SleepWithContext,
		blockSignal: blockSignal,
		tracker:     tracker,
	}, nil
}

// Run starts the follow loop until the context is canceled.
func (s *FollowerService) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrProofRegressed) {
				return err
			}
			s.logger.Warn("follow iteration failed, backing off", zap.Error(err), zap.Duration("sleep", s.cfg.PollInterval))
			if sleepErr := s.wait(ctx, s.cfg.PollInterval); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (s *FollowerService) run(ctx context.Context) error {
	started := time.Now()
	latest, err := s.source.LatestHeight(ctx)
	s.metrics.ObservePoll(err, started)
	if err != nil {
		s.logger.Error("poll latest height failed", zap.Error(err))
		return err
	}

	from, ok := s.nextHeight(latest)
	if !ok {
		s.logger.Debug("proof at chain tip; sleeping", zap.Uint64("height", latest), zap.Duration("sleep", s.cfg.IdleInterval))
		return s.wait(ctx, s.cfg.IdleInterval)
	}

	to := latest
	if span := to - from + 1; span > s.cfg.BatchLimit {
		to = from + s.cfg.BatchLimit - 1
	}

	s.logger.Info("extending proof", zap.Uint64("from", from), zap.Uint64("to", to))
	started = time.Now()
	folded, err := s.extend(ctx, from, to)
	s.metrics.ObserveExtend(err, folded, started)
	if err != nil {
		return err
	}

	if err := s.recordStat(ctx, time.Since(started)); err != nil {
		return err
	}

	if to < latest {
		return nil
	}
	return s.wait(ctx, s.cfg.PollInterval)
}

// nextHeight reports the first height missing from the proof, or false
// when the proof already covers the latest height.
func (s *FollowerService) nextHeight(latest uint64) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tracker.Len() == 0 {
		return 0, true
	}
	tip := s.tracker.Height()
	if tip >= latest {
		return 0, false
	}
	return tip + 1, true
}

func (s *FollowerService) extend(ctx context.Context, from, to uint64) (int, error) {
	fetched, err := s.source.FetchRange(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch headers %d..%d: %w", from, to, err)
	}
	blocks, err := headers.ToBlocks(fetched)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.Extend(blocks); err != nil {
		return 0, err
	}
	return len(blocks), nil
}

func (s *FollowerService) recordStat(ctx context.Context, compressDuration time.Duration) error {
	s.mu.RLock()
	stat, err := s.tracker.Stat(s.cfg.Network, compressDuration)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	s.logger.Info("proof status",
		zap.Uint64("height", stat.Height),
		zap.Uint32("proof_length", stat.ProofLength),
		zap.Uint16("proof_level", stat.ProofLevel),
		zap.String("score", stat.Score))

	if err := s.stats.Record(ctx, stat); err != nil {
		return fmt.Errorf("record proof stat: %w", err)
	}
	return nil
}

func (s *FollowerService) wait(ctx context.Context, d time.Duration) error {
	if s.blockSignal == nil {
		return s.sleep(ctx, d)
	}
	return clock.SleepWithSignal(ctx, d, s.blockSignal)
}

// Snapshot returns the proof's current shape.
func (s *FollowerService) Snapshot() ProofSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProofSnapshot{
		Network: s.cfg.Network,
		Params:  s.cfg.Params,
		Height:  s.tracker.Height(),
		Length:  s.tracker.Len(),
		Level:   s.tracker.Level(),
		Score:   s.tracker.Score(),
	}
}

// SplitSnapshot dissolves the current proof into its stabilized prefix
// and raw suffix.
func (s *FollowerService) SplitSnapshot() (superchain.SplitProof, superchain.Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	split, err := s.tracker.Split()
	if err != nil {
		return superchain.SplitProof{}, superchain.Params{}, err
	}
	return split, s.cfg.Params, nil
}
