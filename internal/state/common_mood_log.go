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

var commonMoodLogColumns = []string{"mood", "note"}

const commonMoodLogSelect = `SELECT id, day, mood, note, created_at FROM common_mood_log`

// MoodTagImpact is a tag attached to a common mood log day with its effect on
// the mood: -1 worse, 0 neutral, 1 better.
type MoodTagImpact struct {
	ID              int64
	CommonMoodLogID int64
	Tag             string
	Impact          int
}

// UpsertCommonMoodLog inserts or updates the common mood log of day. Only
// non-nil values are written. A new day requires a mood.
func (s *SQLiteStore) UpsertCommonMoodLog(ctx context.Context, day time.Time, values core.CommonMoodLogValues) (*core.CommonMoodLog, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	fields := nonNullFields(values.Fields())
	if len(fields) == 0 {
		return nil, newRepoError(ErrEmptyPayload, tableCommonMoodLog, "no fields to upsert")
	}
	if values.Mood != nil && (*values.Mood < 1 || *values.Mood > 7) {
		return nil, newRepoError(ErrInvalidScore, tableCommonMoodLog, "mood must be between 1 and 7")
	}

	var out *core.CommonMoodLog
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM common_mood_log WHERE day = ?)`, formatDay(day),
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to look up day: %w", err)
		}
		if !exists && values.Mood == nil {
			return newRepoError(ErrMissingField, tableCommonMoodLog, "mood is required for the first insert")
		}

		// NOT NULL is checked before conflict resolution, so an existing day
		// is updated in place rather than through INSERT ... ON CONFLICT.
		var (
			query string
			args  []any
		)
		if exists {
			sets := make([]string, 0, len(fields))
			for _, f := range fields {
				sets = append(sets, f.Name+" = ?")
				args = append(args, f.Value)
			}
			args = append(args, formatDay(day))
			query = fmt.Sprintf(`UPDATE common_mood_log SET %s WHERE day = ?
				RETURNING id, day, mood, note, created_at`, strings.Join(sets, ", "))
		} else {
			cols := []string{"day"}
			args = append(args, formatDay(day))
			for _, f := range fields {
				cols = append(cols, f.Name)
				args = append(args, f.Value)
			}
			query = fmt.Sprintf(`INSERT INTO common_mood_log (%s) VALUES (%s)
				RETURNING id, day, mood, note, created_at`,
				strings.Join(cols, ", "), placeholders(len(cols)))
		}

		row, err := scanCommonMoodLog(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		var re *RepoError
		if errors.As(err, &re) {
			return nil, err
		}
		s.logger.Error("common mood log upsert failed", slog.String("day", formatDay(day)), slog.Any("error", err))
		return nil, mapConstraintError(fmt.Errorf("failed to upsert common mood log: %w", err), tableCommonMoodLog)
	}
	return out, nil
}

// BatchUpsertCommonMoodLogs upserts payload in one transaction with the same
// COALESCE merge as BatchUpsertMoodLogs.
func (s *SQLiteStore) BatchUpsertCommonMoodLogs(ctx context.Context, payload []core.CommonMoodLogPayload) (core.BatchUpsertResult, error) {
	if s.db == nil {
		return core.BatchUpsertResult{}, ErrNotOpened
	}
	if len(payload) == 0 {
		return core.BatchUpsertResult{}, nil
	}

	days := make([]time.Time, len(payload))
	for i, p := range payload {
		if p.Day.IsZero() {
			return core.BatchUpsertResult{}, newRepoError(ErrEmptyPayload, tableCommonMoodLog, "no day value to upsert")
		}
		if len(nonNullFields(p.Values.Fields())) == 0 {
			return core.BatchUpsertResult{}, newRepoError(ErrEmptyPayload, tableCommonMoodLog,
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

			n, err := execCoalesceUpsert(ctx, tx, tableCommonMoodLog, commonMoodLogColumns, rows)
			if err != nil {
				return err
			}
			res.RowsWritten += n
		}
		return nil
	})
	if err != nil {
		s.logger.Error("common mood log batch upsert failed",
			slog.Any("min_day", res.MinDay), slog.Any("max_day", res.MaxDay), slog.Any("error", err))
		return core.BatchUpsertResult{}, mapConstraintError(
			fmt.Errorf("failed to batch upsert common mood logs: %w", err), tableCommonMoodLog)
	}

	s.logger.Debug("common mood log batch upserted",
		slog.Int64("rows_in", res.RowsIn), slog.Int64("rows_written", res.RowsWritten))
	return res, nil
}

// GetCommonMoodLogByDay returns the common mood log of day, or nil when none exists.
func (s *SQLiteStore) GetCommonMoodLogByDay(ctx context.Context, day time.Time) (*core.CommonMoodLog, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	m, err := scanCommonMoodLog(s.db.QueryRowContext(ctx, commonMoodLogSelect+` WHERE day = ? LIMIT 1`, formatDay(day)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get common mood log: %w", err)
	}
	return m, nil
}

// ListCommonMoodLogs returns the common mood logs between start and end
// inclusive, oldest first.
func (s *SQLiteStore) ListCommonMoodLogs(ctx context.Context, start, end time.Time) ([]*core.CommonMoodLog, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx, commonMoodLogSelect+` WHERE day BETWEEN ? AND ? ORDER BY day ASC`,
		formatDay(start), formatDay(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list common mood logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.CommonMoodLog
	for rows.Next() {
		m, err := scanCommonMoodLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan common mood log: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteCommonMoodLog deletes the common mood log of day together with its tags.
func (s *SQLiteStore) DeleteCommonMoodLog(ctx context.Context, day time.Time) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM common_mood_log WHERE day = ?`, formatDay(day))
	if err != nil {
		return 0, fmt.Errorf("failed to delete common mood log: %w", err)
	}
	return res.RowsAffected()
}

func scanCommonMoodLog(r rowScanner) (*core.CommonMoodLog, error) {
	var (
		m              core.CommonMoodLog
		day, createdAt string
		mood           sql.NullInt64
		note           sql.NullString
	)
	if err := r.Scan(&m.ID, &day, &mood, &note, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if m.Day, err = parseDay(day); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	m.Values.Mood = intFromNull(mood)
	m.Values.Note = stringFromNull(note)
	return &m, nil
}

// --- Tag operations ---

// UpsertTagImpact sets the impact of tag on the common mood log of day. Tags are
// trimmed and lower-cased.
func (s *SQLiteStore) UpsertTagImpact(ctx context.Context, day time.Time, tag string, impact int) (*MoodTagImpact, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	tag = normalizeTag(tag)
	if tag == "" {
		return nil, newRepoError(ErrMissingField, tableMoodTagImpact, "tag is required")
	}
	if impact < -1 || impact > 1 {
		return nil, newRepoError(ErrInvalidScore, tableMoodTagImpact, "impact must be one of -1, 0, 1")
	}

	var out MoodTagImpact
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		logID, err := commonMoodLogID(ctx, tx, day)
		if err != nil {
			return err
		}

		return tx.QueryRowContext(ctx,
			`INSERT INTO mood_tag_impact (common_mood_log_id, tag, impact) VALUES (?, ?, ?)
			ON CONFLICT(common_mood_log_id, tag) DO UPDATE SET impact = excluded.impact
			RETURNING id, common_mood_log_id, tag, impact`,
			logID, tag, impact,
		).Scan(&out.ID, &out.CommonMoodLogID, &out.Tag, &out.Impact)
	})
	if err != nil {
		var re *RepoError
		if errors.As(err, &re) {
			return nil, err
		}
		s.logger.Error("tag upsert failed", slog.String("day", formatDay(day)), slog.String("tag", tag), slog.Any("error", err))
		return nil, mapConstraintError(fmt.Errorf("failed to upsert tag: %w", err), tableMoodTagImpact)
	}
	return &out, nil
}

// ListTagImpacts returns the tags of day ordered by name. A day without a common
// mood log has no tags.
func (s *SQLiteStore) ListTagImpacts(ctx context.Context, day time.Time) ([]*MoodTagImpact, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.common_mood_log_id, t.tag, t.impact
		FROM mood_tag_impact t JOIN common_mood_log c ON c.id = t.common_mood_log_id
		WHERE c.day = ? ORDER BY t.tag`,
		formatDay(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*MoodTagImpact
	for rows.Next() {
		var t MoodTagImpact
		if err := rows.Scan(&t.ID, &t.CommonMoodLogID, &t.Tag, &t.Impact); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// DeleteTagImpact removes tag from day and returns the number of deleted rows.
func (s *SQLiteStore) DeleteTagImpact(ctx context.Context, day time.Time, tag string) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	tag = normalizeTag(tag)
	if tag == "" {
		return 0, newRepoError(ErrMissingField, tableMoodTagImpact, "tag is required")
	}

	var n int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		logID, err := commonMoodLogID(ctx, tx, day)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM mood_tag_impact WHERE common_mood_log_id = ? AND tag = ?`, logID, tag)
		if err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// ListTags returns every distinct tag in use, sorted.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT tag FROM mood_tag_impact ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

func commonMoodLogID(ctx context.Context, tx *sql.Tx, day time.Time) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM common_mood_log WHERE day = ?`, formatDay(day)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, newRepoError(ErrParentNotFound, tableCommonMoodLog, "no common mood log on %s", formatDay(day))
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up common mood log: %w", err)
	}
	return id, nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
