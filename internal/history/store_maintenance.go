package history

import (
	"context"
	"fmt"
	"time"
)

// Prune deletes batches started before now minus olderThan. Conversions are
// removed by the foreign key cascade. A non-positive age prunes nothing.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := s.execWithRetry(ctx, `DELETE FROM batches WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every batch and conversion.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if _, err := s.execWithRetry(ctx, `DELETE FROM conversions`); err != nil {
		return 0, fmt.Errorf("clear conversions: %w", err)
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM batches`)
	if err != nil {
		return 0, fmt.Errorf("clear batches: %w", err)
	}
	return res.RowsAffected()
}

// Summary aggregates totals across all recorded conversions.
type Summary struct {
	Batches     int
	Conversions int
	ByStatus    map[Status]int
}

// Summarize returns record counts for status output.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	ctx = ensureContext(ctx)
	summary := Summary{ByStatus: make(map[Status]int)}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM batches`).Scan(&summary.Batches); err != nil {
		return Summary{}, fmt.Errorf("count batches: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM conversions GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("count conversions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.ByStatus[status] = count
		summary.Conversions += count
	}
	return summary, rows.Err()
}
