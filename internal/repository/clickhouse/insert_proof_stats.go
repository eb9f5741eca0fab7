package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
)

// InsertProofStats stores proof observation rows in ClickHouse.
func (r *Repository) InsertProofStats(ctx context.Context, stats []model.ProofStat) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.ObserveInsert(firstNetwork(stats), len(stats), err, start)
	}()

	if len(stats) == 0 {
		return nil
	}

	const query = `
INSERT INTO proof_stats (
	network,
	height,
	proof_length,
	proof_level,
	score,
	level_difficulties,
	compress_duration_ms,
	recorded_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare proof stats batch: %w", err)
	}

	for _, stat := range stats {
		if err = batch.Append(
			string(stat.Network),
			stat.Height,
			stat.ProofLength,
			stat.ProofLevel,
			stat.Score,
			stat.LevelDifficulties,
			uint64(stat.CompressDuration.Milliseconds()),
			stat.RecordedAt,
		); err != nil {
			return fmt.Errorf("append proof stat: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert proof stats: %w", err)
	}
	return nil
}

func firstNetwork(stats []model.ProofStat) model.Network {
	if len(stats) == 0 {
		return ""
	}
	return stats[0].Network
}
