package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dailyflow/dailyflow/pkg/core"
)

const ingestRunSelect = `SELECT id, dataset, source_type, source_path, file_hash,
	started_at, finished_at, status, metrics, error_message FROM ingest_run`

// AddIngestRun inserts run and returns the stored copy. An empty ID is assigned.
func (s *SQLiteStore) AddIngestRun(ctx context.Context, run *core.IngestRun) (*core.IngestRun, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	if err := checkIngestRun(run); err != nil {
		return nil, err
	}

	stored := *run
	if stored.ID == "" {
		stored.ID = generateID()
	}

	var metrics, errMsg sql.NullString
	if len(stored.Metrics) > 0 {
		metrics = sql.NullString{String: string(stored.Metrics), Valid: true}
	}
	if stored.ErrorMessage != "" {
		errMsg = sql.NullString{String: stored.ErrorMessage, Valid: true}
	}

	s.logger.Debug("recording ingest run",
		slog.String("id", stored.ID),
		slog.String("dataset", stored.Dataset),
		slog.String("status", string(stored.Status)))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_run (id, dataset, source_type, source_path, file_hash,
			started_at, finished_at, status, metrics, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Dataset, string(stored.SourceType), stored.SourcePath, stored.FileHash,
		formatTimestamp(stored.StartedAt), formatTimestamp(stored.FinishedAt), string(stored.Status),
		metrics, errMsg,
	)
	if err != nil {
		s.logger.Error("ingest run insert failed",
			slog.String("source_path", stored.SourcePath), slog.String("file_hash", stored.FileHash), slog.Any("error", err))
		return nil, mapConstraintError(fmt.Errorf("failed to add ingest run: %w", err), tableIngestRun)
	}

	stored.StartedAt = stored.StartedAt.UTC()
	stored.FinishedAt = stored.FinishedAt.UTC()
	return &stored, nil
}

// IsAlreadyProcessed reports whether a successful run exists for fileHash.
// Failed and skipped runs do not count, so a failed file can be retried.
func (s *SQLiteStore) IsAlreadyProcessed(ctx context.Context, fileHash string) (bool, error) {
	if s.db == nil {
		return false, ErrNotOpened
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM ingest_run WHERE file_hash = ? AND status = ?)`,
		fileHash, string(core.IngestStatusSuccess),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ingest run: %w", err)
	}
	return exists, nil
}

// ListIngestRuns returns runs newest first.
func (s *SQLiteStore) ListIngestRuns(ctx context.Context, filter core.IngestRunFilter) ([]*core.IngestRun, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	var (
		where []string
		args  []any
	)
	if filter.Dataset != "" {
		where = append(where, "dataset = ?")
		args = append(args, filter.Dataset)
	}

	query := ingestRunSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, finished_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.IngestRun
	for rows.Next() {
		run, err := scanIngestRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingest run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetIngestRun retrieves a run by ID.
func (s *SQLiteStore) GetIngestRun(ctx context.Context, id string) (*core.IngestRun, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	run, err := scanIngestRun(s.db.QueryRowContext(ctx, ingestRunSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ingest run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingest run: %w", err)
	}
	return run, nil
}

func scanIngestRun(r rowScanner) (*core.IngestRun, error) {
	var (
		run                 core.IngestRun
		sourceType, status  string
		startedAt, finished string
		metrics, errMsg     sql.NullString
	)
	if err := r.Scan(&run.ID, &run.Dataset, &sourceType, &run.SourcePath, &run.FileHash,
		&startedAt, &finished, &status, &metrics, &errMsg); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseTimestamp(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTimestamp(finished); err != nil {
		return nil, err
	}
	run.SourceType = core.SourceType(sourceType)
	run.Status = core.IngestStatus(status)
	if metrics.Valid {
		run.Metrics = []byte(metrics.String)
	}
	run.ErrorMessage = errMsg.String
	return &run, nil
}

func checkIngestRun(run *core.IngestRun) error {
	var missing []string
	if run.Dataset == "" {
		missing = append(missing, "dataset")
	}
	if run.SourceType == "" {
		missing = append(missing, "source_type")
	}
	if run.SourcePath == "" {
		missing = append(missing, "source_path")
	}
	if run.FileHash == "" {
		missing = append(missing, "file_hash")
	}
	if run.StartedAt.IsZero() {
		missing = append(missing, "started_at")
	}
	if run.FinishedAt.IsZero() {
		missing = append(missing, "finished_at")
	}
	if run.Status == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return newRepoError(ErrMissingField, tableIngestRun, "missing required fields: %s", strings.Join(missing, ","))
	}
	return nil
}
