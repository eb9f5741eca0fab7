package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
)

// LatestProofStat returns the most recent proof observation for a network,
// or ErrNotFound when none was recorded yet.
func (r *Repository) LatestProofStat(ctx context.Context, network model.Network) (model.ProofStat, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.ObserveQuery("latest_proof_stat", network, err, start)
	}()

	const query = `
SELECT
	network,
	height,
	proof_length,
	proof_level,
	score,
	level_difficulties,
	compress_duration_ms,
	recorded_at
FROM proof_stats
WHERE network = ?
ORDER BY height DESC, recorded_at DESC
LIMIT 1`

	rows, err := r.conn.Query(ctx, query, string(network))
	if err != nil {
		return model.ProofStat{}, fmt.Errorf("query latest proof stat: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		err = ErrNotFound
		return model.ProofStat{}, err
	}

	var (
		stat       model.ProofStat
		networkStr string
		durationMS uint64
	)
	if err = rows.Scan(
		&networkStr,
		&stat.Height,
		&stat.ProofLength,
		&stat.ProofLevel,
		&stat.Score,
		&stat.LevelDifficulties,
		&durationMS,
		&stat.RecordedAt,
	); err != nil {
		return model.ProofStat{}, fmt.Errorf("scan latest proof stat: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.ProofStat{}, fmt.Errorf("iterate latest proof stat: %w", err)
	}

	stat.Network = model.Network(networkStr)
	stat.CompressDuration = time.Duration(durationMS) * time.Millisecond
	return stat, nil
}
