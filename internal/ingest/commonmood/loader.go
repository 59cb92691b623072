package commonmood

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
// cannot be keyed and are rejected. Records with neither mood nor note are
// dropped: under COALESCE they would not change a stored day.
func Payload(rows []Record) ([]core.CommonMoodLogPayload, error) {
	out := make([]core.CommonMoodLogPayload, 0, len(rows))
	for _, r := range rows {
		if r.Day == nil {
			return nil, fmt.Errorf("line %d has no day", r.Line)
		}
		if r.Mood == nil && r.Note == nil {
			continue
		}
		p := core.CommonMoodLogPayload{Day: *r.Day}
		if r.Mood != nil {
			p.Values.Mood = core.IntPtr(int(math.Round(*r.Mood)))
		}
		if r.Note != nil {
			p.Values.Note = core.StringPtr(*r.Note)
		}
		out = append(out, p)
	}
	return out, nil
}

// Load upserts accepted records by day.
func Load(ctx context.Context, store core.CommonMoodLogStore, rows []Record) (core.BatchUpsertResult, error) {
	payload, err := Payload(rows)
	if err != nil {
		return core.BatchUpsertResult{}, err
	}
	return store.BatchUpsertCommonMoodLogs(ctx, payload)
}

// Dataset wires the common mood log stages for the runner.
type Dataset struct {
	store core.CommonMoodLogStore
}

// New creates the common mood log dataset over store.
func New(store core.CommonMoodLogStore) *Dataset {
	return &Dataset{store: store}
}

// Contract returns the ingest contract.
func (d *Dataset) Contract() contract.Contract { return Contract() }

// Extract reads and normalizes the CSV file at path.
func (d *Dataset) Extract(path string) (*dataset.Batch[Record], error) {
	frame, err := source.ReadCSV(path, Contract().Header)
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
