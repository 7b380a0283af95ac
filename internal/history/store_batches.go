package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const batchColumns = `id, batch_uuid, category, source_format, target_format, output_dir,
    started_at, finished_at, total, succeeded, failed`

const conversionColumns = `id, batch_id, input_path, output_path, status, error_message,
    duration_ms, created_at`

// ErrBatchNotFound is returned when a batch lookup matches nothing.
var ErrBatchNotFound = errors.New("batch not found")

// BeginBatch inserts a new batch row and returns it.
func (s *Store) BeginBatch(ctx context.Context, info BatchInfo) (*Batch, error) {
	if strings.TrimSpace(info.UUID) == "" {
		return nil, errors.New("begin batch: uuid is required")
	}
	started := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO batches (
            batch_uuid, category, source_format, target_format, output_dir, started_at, total
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.UUID,
		info.Category,
		info.SourceFormat,
		info.TargetFormat,
		info.OutputDir,
		formatTime(started),
		info.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetBatch(ctx, id)
}

// RecordResult appends one file result to a batch.
func (s *Store) RecordResult(ctx context.Context, batchID int64, conv Conversion) (*Conversion, error) {
	if _, ok := statusSet[conv.Status]; !ok {
		return nil, fmt.Errorf("record result: unknown status %q", conv.Status)
	}
	created := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO conversions (
            batch_id, input_path, output_path, status, error_message, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID,
		conv.InputPath,
		nullableString(conv.OutputPath),
		conv.Status,
		nullableString(conv.ErrorMessage),
		conv.Duration.Milliseconds(),
		formatTime(created),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	conv.ID = id
	conv.BatchID = batchID
	conv.CreatedAt = parseTime(formatTime(created))
	return &conv, nil
}

// FinishBatch stamps finished_at and recomputes totals from the recorded
// conversions. Skipped files count toward neither succeeded nor failed.
func (s *Store) FinishBatch(ctx context.Context, batchID int64) (*Batch, error) {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE batches
         SET finished_at = ?,
             succeeded = (SELECT COUNT(1) FROM conversions WHERE batch_id = ? AND status = ?),
             failed = (SELECT COUNT(1) FROM conversions WHERE batch_id = ? AND status IN (?, ?, ?))
         WHERE id = ?`,
		formatTime(time.Now()),
		batchID, StatusSucceeded,
		batchID, StatusFailed, StatusRejected, StatusCanceled,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("finish batch: %w", err)
	}
	return s.GetBatch(ctx, batchID)
}

// GetBatch fetches a batch by row id.
func (s *Store) GetBatch(ctx context.Context, id int64) (*Batch, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// FindBatch resolves a user-supplied reference: a numeric row id, a full
// uuid, or a unique uuid prefix.
func (s *Store) FindBatch(ctx context.Context, ref string) (*Batch, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("find batch: empty reference")
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.GetBatch(ctx, id)
	}
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+batchColumns+` FROM batches WHERE batch_uuid LIKE ? ORDER BY id LIMIT 2`,
		strings.ToLower(ref)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	defer rows.Close()

	var matches []*Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("batch reference %q is ambiguous", ref)
	}
}

// ListBatches returns the most recent batches first. A limit <= 0 returns all.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]*Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// Conversions returns the file results of a batch in the order recorded.
func (s *Store) Conversions(ctx context.Context, batchID int64) ([]*Conversion, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+conversionColumns+` FROM conversions WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var conversions []*Conversion
	for rows.Next() {
		conv, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, conv)
	}
	return conversions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (*Batch, error) {
	var (
		batch    Batch
		started  string
		finished sql.NullString
	)
	if err := row.Scan(
		&batch.ID,
		&batch.UUID,
		&batch.Category,
		&batch.SourceFormat,
		&batch.TargetFormat,
		&batch.OutputDir,
		&started,
		&finished,
		&batch.Total,
		&batch.Succeeded,
		&batch.Failed,
	); err != nil {
		return nil, err
	}
	batch.StartedAt = parseTime(started)
	if finished.Valid {
		batch.FinishedAt = parseTime(finished.String)
	}
	return &batch, nil
}

func scanConversion(row scanner) (*Conversion, error) {
	var (
		conv       Conversion
		output     sql.NullString
		errMessage sql.NullString
		durationMS int64
		created    string
	)
	if err := row.Scan(
		&conv.ID,
		&conv.BatchID,
		&conv.InputPath,
		&output,
		&conv.Status,
		&errMessage,
		&durationMS,
		&created,
	); err != nil {
		return nil, fmt.Errorf("scan conversion: %w", err)
	}
	conv.OutputPath = output.String
	conv.ErrorMessage = errMessage.String
	conv.Duration = time.Duration(durationMS) * time.Millisecond
	conv.CreatedAt = parseTime(created)
	return &conv, nil
}
