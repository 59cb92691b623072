package moodlog

import (
	"context"
	"fmt"
	"math"

	"github.com/dailyflow/dailyflow/internal/ingest/contract"
	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/ingest/source"
	"github.com/dailyflow/dailyflow/internal/ingest/validate"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// Payload converts accepted records into upsert payloads. Records without a day
// cannot be keyed and are rejected.
func Payload(rows []Record) ([]core.MoodLogPayload, error) {
	out := make([]core.MoodLogPayload, 0, len(rows))
	for _, r := range rows {
		if r.Day == nil {
			return nil, fmt.Errorf("row %d of sheet %q has no day", r.Line, r.Sheet)
		}
		out = append(out, core.MoodLogPayload{
			Day: *r.Day,
			Values: core.MoodLogValues{
				Joy:        toInt(r.Joy),
				Interest:   toInt(r.Interest),
				Calm:       toInt(r.Calm),
				Energy:     toInt(r.Energy),
				Anxiety:    toInt(r.Anxiety),
				Sadness:    toInt(r.Sadness),
				Irritation: toInt(r.Irritation),
				Fatigue:    toInt(r.Fatigue),
				Fear:       toInt(r.Fear),
				Confidence: toInt(r.Confidence),
				Sleep:      toInt(r.Sleep),
			},
		})
	}
	return out, nil
}

// Load upserts accepted records by day.
func Load(ctx context.Context, store core.MoodLogStore, rows []Record) (core.BatchUpsertResult, error) {
	payload, err := Payload(rows)
	if err != nil {
		return core.BatchUpsertResult{}, err
	}
	return store.BatchUpsertMoodLogs(ctx, payload)
}

func toInt(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(math.Round(*f))
	return &v
}

// Dataset wires the mood log stages for the runner.
type Dataset struct {
	store core.MoodLogStore
}

// New creates the mood log dataset over store.
func New(store core.MoodLogStore) *Dataset {
	return &Dataset{store: store}
}

// Contract returns the ingest contract.
func (d *Dataset) Contract() contract.Contract { return Contract() }

// Extract reads and normalizes the workbook at path.
func (d *Dataset) Extract(path string) (*dataset.Batch[Record], error) {
	c := Contract()
	frame, err := source.ReadWorkbook(path, c.Sheets, c.Header)
	if err != nil {
		return nil, err
	}
	return Transform(frame), nil
}

// Validate runs the checks and returns the result with its metrics.
func (d *Dataset) Validate(b *dataset.Batch[Record]) (*validate.Result[Code], any) {
	return Validate(b)
}

// Load upserts accepted rows.
func (d *Dataset) Load(ctx context.Context, rows []Record) (core.BatchUpsertResult, error) {
	return Load(ctx, d.store, rows)
}
