package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dailyflow/dailyflow/pkg/core"
)

// upsertChunkSize bounds the rows of one multi-row INSERT so the statement
// stays under SQLite's bound-parameter limit.
const upsertChunkSize = 500

var moodLogColumns = []string{
	"joy", "interest", "calm", "energy", "anxiety", "sadness",
	"irritation", "fatigue", "fear", "confidence", "sleep",
}

const moodLogSelect = `SELECT id, day, joy, interest, calm, energy, anxiety, sadness,
	irritation, fatigue, fear, confidence, sleep, created_at FROM mood_log`

// UpsertMoodLog inserts or updates the mood log of day. Only non-nil values are
// written; stored values of nil fields are kept.
func (s *SQLiteStore) UpsertMoodLog(ctx context.Context, day time.Time, values core.MoodLogValues) (*core.MoodLog, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	fields := nonNullFields(values.Fields())
	if len(fields) == 0 {
		return nil, newRepoError(ErrEmptyPayload, tableMoodLog, "no fields to upsert")
	}
	for _, f := range fields {
		if v := f.Value.(int64); v < 1 || v > 4 {
			return nil, newRepoError(ErrInvalidScore, tableMoodLog, "%s must be between 1 and 4", f.Name)
		}
	}

	cols := make([]string, 0, len(fields)+1)
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	cols = append(cols, "day")
	args = append(args, formatDay(day))
	for _, f := range fields {
		cols = append(cols, f.Name)
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", f.Name, f.Name))
		args = append(args, f.Value)
	}

	query := fmt.Sprintf(
		`INSERT INTO mood_log (%s) VALUES (%s) ON CONFLICT(day) DO UPDATE SET %s RETURNING id`,
		strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(sets, ", "),
	)

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		s.logger.Error("mood log upsert failed", slog.String("day", formatDay(day)), slog.Any("error", err))
		return nil, mapConstraintError(fmt.Errorf("failed to upsert mood log: %w", err), tableMoodLog)
	}
	return s.GetMoodLogByDay(ctx, day)
}

// BatchUpsertMoodLogs upserts payload in one transaction. For days that already
// exist every column is merged as COALESCE(incoming, stored), so a nil value
// never erases stored data. RowsWritten is the driver's affected-row count.
func (s *SQLiteStore) BatchUpsertMoodLogs(ctx context.Context, payload []core.MoodLogPayload) (core.BatchUpsertResult, error) {
	if s.db == nil {
		return core.BatchUpsertResult{}, ErrNotOpened
	}
	if len(payload) == 0 {
		return core.BatchUpsertResult{}, nil
	}

	days := make([]time.Time, len(payload))
	for i, p := range payload {
		if p.Day.IsZero() {
			return core.BatchUpsertResult{}, newRepoError(ErrEmptyPayload, tableMoodLog, "no day value to upsert")
		}
		if len(nonNullFields(p.Values.Fields())) == 0 {
			return core.BatchUpsertResult{}, newRepoError(ErrEmptyPayload, tableMoodLog,
				"no fields to upsert for %s", formatDay(p.Day))
		}
		days[i] = p.Day
	}

	res := newBatchResult(days)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(payload); start += upsertChunkSize {
			end := min(start+upsertChunkSize, len(payload))
			rows := make([][]any, 0, end-start)
			for _, p := range payload[start:end] {
				row := []any{formatDay(p.Day)}
				for _, f := range p.Values.Fields() {
					row = append(row, f.Value)
				}
				rows = append(rows, row)
			}

			n, err := execCoalesceUpsert(ctx, tx, tableMoodLog, moodLogColumns, rows)
			if err != nil {
				return err
			}
			res.RowsWritten += n
		}
		return nil
	})
	if err != nil {
		s.logger.Error("mood log batch upsert failed",
			slog.Any("min_day", res.MinDay), slog.Any("max_day", res.MaxDay), slog.Any("error", err))
		return core.BatchUpsertResult{}, mapConstraintError(fmt.Errorf("failed to batch upsert mood logs: %w", err), tableMoodLog)
	}

	s.logger.Debug("mood log batch upserted",
		slog.Int64("rows_in", res.RowsIn), slog.Int64("rows_written", res.RowsWritten))
	return res, nil
}

// GetMoodLogByDay returns the mood log of day, or nil when none exists.
func (s *SQLiteStore) GetMoodLogByDay(ctx context.Context, day time.Time) (*core.MoodLog, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	row := s.db.QueryRowContext(ctx, moodLogSelect+` WHERE day = ? LIMIT 1`, formatDay(day))
	m, err := scanMoodLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mood log: %w", err)
	}
	return m, nil
}

// ListMoodLogs returns the mood logs between start and end inclusive, oldest first.
func (s *SQLiteStore) ListMoodLogs(ctx context.Context, start, end time.Time) ([]*core.MoodLog, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx, moodLogSelect+` WHERE day BETWEEN ? AND ? ORDER BY day ASC`,
		formatDay(start), formatDay(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list mood logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.MoodLog
	for rows.Next() {
		m, err := scanMoodLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood log: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMoodLog deletes the mood log of day and returns the number of deleted rows.
func (s *SQLiteStore) DeleteMoodLog(ctx context.Context, day time.Time) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM mood_log WHERE day = ?`, formatDay(day))
	if err != nil {
		return 0, fmt.Errorf("failed to delete mood log: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMoodLog(r rowScanner) (*core.MoodLog, error) {
	var (
		m              core.MoodLog
		day, createdAt string
		scores         [11]sql.NullInt64
	)
	dest := []any{&m.ID, &day}
	for i := range scores {
		dest = append(dest, &scores[i])
	}
	dest = append(dest, &createdAt)

	if err := r.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if m.Day, err = parseDay(day); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}

	v := &m.Values
	for i, p := range []**int{
		&v.Joy, &v.Interest, &v.Calm, &v.Energy, &v.Anxiety, &v.Sadness,
		&v.Irritation, &v.Fatigue, &v.Fear, &v.Confidence, &v.Sleep,
	} {
		*p = intFromNull(scores[i])
	}
	return &m, nil
}

// execCoalesceUpsert runs one multi-row INSERT keyed on day. Each row holds the
// day followed by the values of columns.
func execCoalesceUpsert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = COALESCE(excluded.%s, %s.%s)", c, c, table, c)
	}

	tuple := "(" + placeholders(len(columns)+1) + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*(len(columns)+1))
	for i, r := range rows {
		tuples[i] = tuple
		args = append(args, r...)
	}

	query := fmt.Sprintf(`INSERT INTO %s (day, %s) VALUES %s ON CONFLICT(day) DO UPDATE SET %s`,
		table, strings.Join(columns, ", "), strings.Join(tuples, ", "), strings.Join(sets, ", "))

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func newBatchResult(days []time.Time) core.BatchUpsertResult {
	res := core.BatchUpsertResult{RowsIn: int64(len(days))}
	for i := range days {
		d := days[i]
		if res.MinDay == nil || d.Before(*res.MinDay) {
			res.MinDay = &d
		}
		if res.MaxDay == nil || d.After(*res.MaxDay) {
			res.MaxDay = &d
		}
	}
	return res
}

func nonNullFields(fields []core.Field) []core.Field {
	out := fields[:0:0]
	for _, f := range fields {
		if f.Value != nil {
			out = append(out, f)
		}
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
