package core

import (
	"context"
	"encoding/json"
	"time"
)

// DayLayout is the canonical text form of a natural key day.
const DayLayout = "2006-01-02"

// IngestStatus represents the outcome of an ingest run.
type IngestStatus string

// Ingest status constants.
const (
	IngestStatusSuccess IngestStatus = "success"
	IngestStatusFailed  IngestStatus = "failed"
	IngestStatusSkipped IngestStatus = "skipped"
)

// SourceType is the format of an ingested file.
type SourceType string

// Source type constants.
const (
	SourceTypeExcel SourceType = "excel"
	SourceTypeCSV   SourceType = "csv"
)

// IngestRun is the audit record of one pipeline invocation.
// Runs are inserted once and never updated; a retry produces a new run.
type IngestRun struct {
	ID           string
	Dataset      string
	SourceType   SourceType
	SourcePath   string
	FileHash     string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       IngestStatus
	Metrics      json.RawMessage
	ErrorMessage string
}

// IngestRunStore persists ingest audit records.
type IngestRunStore interface {
	AddIngestRun(ctx context.Context, run *IngestRun) (*IngestRun, error)
	IsAlreadyProcessed(ctx context.Context, fileHash string) (bool, error)
	ListIngestRuns(ctx context.Context, filter IngestRunFilter) ([]*IngestRun, error)
}

// IngestRunFilter narrows ListIngestRuns. Zero values mean "no restriction".
type IngestRunFilter struct {
	Dataset string
	Limit   int
}

// BatchUpsertResult summarises one batch upsert. MinDay/MaxDay come from the
// submitted payload, not from a re-query of the table.
type BatchUpsertResult struct {
	RowsIn      int64      `json:"rows_in"`
	RowsWritten int64      `json:"rows_written"`
	MinDay      *time.Time `json:"min_day,omitempty"`
	MaxDay      *time.Time `json:"max_day,omitempty"`
}

// =============================================================================
// Mood log
// =============================================================================

// MoodLogValues holds the 1..4 state scores of a day. Nil means "not filled".
type MoodLogValues struct {
	Joy        *int
	Interest   *int
	Calm       *int
	Energy     *int
	Anxiety    *int
	Sadness    *int
	Irritation *int
	Fatigue    *int
	Fear       *int
	Confidence *int
	Sleep      *int
}

// Fields returns the values in table column order.
func (v MoodLogValues) Fields() []Field {
	return []Field{
		{"joy", intOrNil(v.Joy)},
		{"interest", intOrNil(v.Interest)},
		{"calm", intOrNil(v.Calm)},
		{"energy", intOrNil(v.Energy)},
		{"anxiety", intOrNil(v.Anxiety)},
		{"sadness", intOrNil(v.Sadness)},
		{"irritation", intOrNil(v.Irritation)},
		{"fatigue", intOrNil(v.Fatigue)},
		{"fear", intOrNil(v.Fear)},
		{"confidence", intOrNil(v.Confidence)},
		{"sleep", intOrNil(v.Sleep)},
	}
}

// MoodLogPayload is one natural-key upsert request for mood_log.
type MoodLogPayload struct {
	Day    time.Time
	Values MoodLogValues
}

// MoodLog is a stored mood_log row.
type MoodLog struct {
	ID        int64
	Day       time.Time
	Values    MoodLogValues
	CreatedAt time.Time
}

// MoodLogStore is the storage boundary of the mood log pipeline.
type MoodLogStore interface {
	UpsertMoodLog(ctx context.Context, day time.Time, values MoodLogValues) (*MoodLog, error)
	BatchUpsertMoodLogs(ctx context.Context, payload []MoodLogPayload) (BatchUpsertResult, error)
	GetMoodLogByDay(ctx context.Context, day time.Time) (*MoodLog, error)
}

// =============================================================================
// Common mood log
// =============================================================================

// CommonMoodLogValues holds the overall 1..7 mood of a day and an optional note.
type CommonMoodLogValues struct {
	Mood *int
	Note *string
}

// Fields returns the values in table column order.
func (v CommonMoodLogValues) Fields() []Field {
	var note any
	if v.Note != nil {
		note = *v.Note
	}
	return []Field{
		{"mood", intOrNil(v.Mood)},
		{"note", note},
	}
}

// CommonMoodLogPayload is one natural-key upsert request for common_mood_log.
type CommonMoodLogPayload struct {
	Day    time.Time
	Values CommonMoodLogValues
}

// CommonMoodLog is a stored common_mood_log row.
type CommonMoodLog struct {
	ID        int64
	Day       time.Time
	Values    CommonMoodLogValues
	CreatedAt time.Time
}

// CommonMoodLogStore is the storage boundary of the common mood log pipeline.
type CommonMoodLogStore interface {
	UpsertCommonMoodLog(ctx context.Context, day time.Time, values CommonMoodLogValues) (*CommonMoodLog, error)
	BatchUpsertCommonMoodLogs(ctx context.Context, payload []CommonMoodLogPayload) (BatchUpsertResult, error)
	GetCommonMoodLogByDay(ctx context.Context, day time.Time) (*CommonMoodLog, error)
}

// Field is a named column value; Value is nil for SQL NULL.
type Field struct {
	Name  string
	Value any
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
