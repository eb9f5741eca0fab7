package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
	"github.com/goodnatureofminers/chainproof7000-backend/pkg/batcher"
)

// RepositoryStatSink buffers stats in memory and writes them to the
// repository whenever the buffer fills. Suited to batch runs; not safe for
// concurrent use.
type RepositoryStatSink struct {
	repo     ProofStatRepository
	capacity int
	buffered []model.ProofStat
}

func NewRepositoryStatSink(repo ProofStatRepository, capacity int) *RepositoryStatSink {
	if capacity < 1 {
		capacity = statBufferSize
	}
	return &RepositoryStatSink{
		repo:     repo,
		capacity: capacity,
		buffered: make([]model.ProofStat, 0, capacity),
	}
}

func (s *RepositoryStatSink) Record(ctx context.Context, stat model.ProofStat) error {
	s.buffered = append(s.buffered, stat)
	if len(s.buffered) >= s.capacity {
		return s.Flush(ctx)
	}
	return nil
}

func (s *RepositoryStatSink) Flush(ctx context.Context) error {
	if len(s.buffered) == 0 {
		return nil
	}
	if err := s.repo.InsertProofStats(ctx, s.buffered); err != nil {
		return fmt.Errorf("flush proof stats: %w", err)
	}
	s.buffered = s.buffered[:0]
	return nil
}

// BatcherStatSink hands stats to a background batcher; flushing happens on
// the batcher's own schedule, so Flush is a no-op.
type BatcherStatSink struct {
	batcher *batcher.Batcher[model.ProofStat]
}

func NewBatcherStatSink(b *batcher.Batcher[model.ProofStat]) *BatcherStatSink {
	return &BatcherStatSink{batcher: b}
}

func (s *BatcherStatSink) Record(ctx context.Context, stat model.ProofStat) error {
	return s.batcher.Add(ctx, stat)
}

func (s *BatcherStatSink) Flush(context.Context) error { return nil }

// statLine is the JSON Lines rendering of a proof stat, shaped for offline
// analysis of a run.
type statLine struct {
	Network           string            `json:"network"`
	Height            uint64            `json:"height"`
	ProofLength       uint32            `json:"proof_length"`
	ProofLevel        uint16            `json:"proof_level"`
	Score             string            `json:"score"`
	LevelDifficulties map[uint16]string `json:"level_difficulties,omitempty"`
	CompressMS        int64             `json:"compress_ms"`
	RecordedAt        string            `json:"recorded_at"`
}

// FileStatSink appends one JSON line per stat to a file. Not safe for
// concurrent use.
type FileStatSink struct {
	file *os.File
	enc  *json.Encoder
}

func NewFileStatSink(path string) (*FileStatSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open stats file: %w", err)
	}
	return &FileStatSink{file: file, enc: json.NewEncoder(file)}, nil
}

func (s *FileStatSink) Record(_ context.Context, stat model.ProofStat) error {
	line := statLine{
		Network:           string(stat.Network),
		Height:            stat.Height,
		ProofLength:       stat.ProofLength,
		ProofLevel:        stat.ProofLevel,
		Score:             stat.Score,
		LevelDifficulties: stat.LevelDifficulties,
		CompressMS:        stat.CompressDuration.Milliseconds(),
		RecordedAt:        stat.RecordedAt.Format(time.RFC3339),
	}
	if err := s.enc.Encode(line); err != nil {
		return fmt.Errorf("append stat line: %w", err)
	}
	return nil
}

func (s *FileStatSink) Flush(context.Context) error {
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync stats file: %w", err)
	}
	return nil
}

func (s *FileStatSink) Close() error {
	return s.file.Close()
}

// MultiStatSink fans every stat out to all sinks. Each sink is attempted
// even when an earlier one fails; the first error wins.
type MultiStatSink struct {
	sinks []StatSink
}

func NewMultiStatSink(sinks ...StatSink) *MultiStatSink {
	return &MultiStatSink{sinks: sinks}
}

func (s *MultiStatSink) Record(ctx context.Context, stat model.ProofStat) error {
	var first error
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, stat); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *MultiStatSink) Flush(ctx context.Context) error {
	var first error
	for _, sink := range s.sinks {
		if err := sink.Flush(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NopStatSink discards stats. It backs runs without a configured store.
type NopStatSink struct{}

func (NopStatSink) Record(context.Context, model.ProofStat) error { return nil }

func (NopStatSink) Flush(context.Context) error { return nil }
