// Package runner drives one ingest attempt end to end: audit pre-check, read,
// validate, clean, load and the final audit record.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dailyflow/dailyflow/internal/ingest/audit"
	"github.com/dailyflow/dailyflow/internal/ingest/cleaning"
	"github.com/dailyflow/dailyflow/internal/ingest/contract"
	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
	"github.com/dailyflow/dailyflow/internal/ingest/validate"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// Dataset is the per-dataset half of the pipeline.
type Dataset[R dataset.Record, C validate.Code] interface {
	Contract() contract.Contract
	Extract(path string) (*dataset.Batch[R], error)
	Validate(b *dataset.Batch[R]) (*validate.Result[C], any)
	Load(ctx context.Context, rows []R) (core.BatchUpsertResult, error)
}

// Options configures a Runner.
type Options struct {
	Mode      cleaning.Mode
	BadAction cleaning.BadAction
	// QuarantineDir receives quarantined rows as CSV; empty disables the export.
	QuarantineDir string

	Logger *slog.Logger
	Now    func() time.Time
}

// DefaultOptions returns the policy used when nothing is configured.
func DefaultOptions() Options {
	return Options{Mode: cleaning.ModeTrain, BadAction: cleaning.BadActionQuarantine}
}

// Snapshot is the metrics document stored with an ingest run.
type Snapshot struct {
	Validation     any                     `json:"validation,omitempty"`
	Actions        *cleaning.Actions       `json:"actions,omitempty"`
	Load           *core.BatchUpsertResult `json:"load,omitempty"`
	QuarantineFile string                  `json:"quarantine_file,omitempty"`
}

// Report is the outcome of one Ingest call.
type Report struct {
	Status core.IngestStatus
	// Run is the recorded audit run.
	Run      *core.IngestRun
	Snapshot Snapshot
}

// Runner ingests files of one dataset.
type Runner[R dataset.Record, C validate.Code] struct {
	ds       Dataset[R, C]
	recorder audit.Recorder
	opts     Options
	logger   *slog.Logger
}

// New creates a runner. Invalid policy options are rejected here, before any file
// is touched.
func New[R dataset.Record, C validate.Code](ds Dataset[R, C], recorder audit.Recorder, opts Options) (*Runner[R, C], error) {
	if _, err := cleaning.ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	if _, err := cleaning.ParseBadAction(string(opts.BadAction)); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner[R, C]{
		ds:       ds,
		recorder: recorder,
		opts:     opts,
		logger:   logger.With(slog.String("dataset", ds.Contract().Name)),
	}, nil
}

// Ingest runs the pipeline and returns the recorded status.
func (r *Runner[R, C]) Ingest(ctx context.Context, path string) (core.IngestStatus, error) {
	rep, err := r.IngestReport(ctx, path)
	if err != nil {
		return "", err
	}
	return rep.Status, nil
}

// IngestReport runs the pipeline and returns the recorded run with its metrics.
//
// Failures after the pre-check are recorded as a failed run and reported with a
// nil error. A missing source file and audit store failures are returned.
func (r *Runner[R, C]) IngestReport(ctx context.Context, path string) (*Report, error) {
	c := r.ds.Contract()
	base := audit.Params{
		Dataset:    c.Name,
		SourceType: c.SourceType,
		Path:       path,
		StartedAt:  r.opts.Now(),
		Logger:     r.logger,
		Now:        r.opts.Now,
	}

	pre, err := audit.Run(ctx, r.recorder, base)
	if err != nil {
		return nil, err
	}
	if pre != nil && pre.Status == core.IngestStatusSkipped {
		r.logger.Info("source already ingested, skipping", slog.String("path", path))
		return &Report{Status: pre.Status, Run: pre}, nil
	}

	snap, procErr := r.process(ctx, path, base.StartedAt)

	final := base
	final.FinishedAt = r.opts.Now()
	final.Metrics = snap
	if procErr != nil {
		final.ErrorMessage = strings.ToLower(procErr.Error())
		r.logger.Warn("ingest failed", slog.String("path", path), slog.Any("error", procErr))
	}

	run, err := audit.Run(ctx, r.recorder, final)
	if err != nil {
		return nil, err
	}
	return &Report{Status: run.Status, Run: run, Snapshot: snap}, nil
}

func (r *Runner[R, C]) process(ctx context.Context, path string, started time.Time) (Snapshot, error) {
	var snap Snapshot

	b, err := r.ds.Extract(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read source: %w", err)
	}
	r.logger.Debug("source read", slog.Int("rows", b.Len()), slog.Any("columns", b.Columns()))

	res, metrics := r.ds.Validate(b)
	snap.Validation = metrics
	if len(res.MissingColumns) > 0 {
		return snap, fmt.Errorf("missing required columns: %s", strings.Join(res.MissingColumns, ", "))
	}
	r.logger.Debug("source validated",
		slog.Bool("ok", res.OK),
		slog.Int("rows_bad", res.Metrics.RowsBad),
		slog.Int("warnings", res.Metrics.WarningCount))

	clean, err := cleaning.Apply(b.Rows, res.BadRows, res.WarningRows, r.opts.Mode, r.opts.BadAction)
	if err != nil {
		return snap, err
	}
	snap.Actions = &clean.Actions

	if r.opts.QuarantineDir != "" {
		file, err := cleaning.WriteQuarantine(r.opts.QuarantineDir, r.ds.Contract().Name, b.Columns(), clean, started)
		if err != nil {
			return snap, err
		}
		if file != "" {
			snap.QuarantineFile = file
			r.logger.Info("quarantined rows exported",
				slog.String("file", file), slog.Int("rows", clean.Actions.RowsQuarantine))
		}
	}

	loaded, err := r.ds.Load(ctx, clean.Accepted)
	if err != nil {
		return snap, err
	}
	snap.Load = &loaded
	r.logger.Info("rows loaded",
		slog.Int64("rows_in", loaded.RowsIn), slog.Int64("rows_written", loaded.RowsWritten))
	return snap, nil
}

// Inspection is a dry-run validation outcome with dataset-independent issues.
type Inspection struct {
	OK             bool                     `json:"ok"`
	Rows           int                      `json:"rows"`
	MissingColumns []string                 `json:"missing_columns,omitempty"`
	Issues         []validate.Issue[string] `json:"issues"`
	Metrics        any                      `json:"metrics"`
	Actions        *cleaning.Actions        `json:"actions,omitempty"`
}

// Inspect reads and validates path without writing anything. Actions is the
// partition the configured policy would produce, or nil when it would fail.
func (r *Runner[R, C]) Inspect(path string) (*Inspection, error) {
	if err := audit.CheckSource(path); err != nil {
		return nil, err
	}
	b, err := r.ds.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	res, metrics := r.ds.Validate(b)
	out := &Inspection{
		OK:             res.OK,
		Rows:           b.Len(),
		MissingColumns: res.MissingColumns,
		Metrics:        metrics,
		Issues:         make([]validate.Issue[string], 0, len(res.Issues)),
	}
	for _, is := range res.Issues {
		out.Issues = append(out.Issues, validate.Issue[string]{
			Code:     string(is.Code),
			Severity: is.Severity,
			Message:  is.Message,
			Count:    is.Count,
			Sample:   is.Sample,
			Columns:  is.Columns,
		})
	}
	if len(res.MissingColumns) == 0 {
		if clean, err := cleaning.Apply(b.Rows, res.BadRows, res.WarningRows, r.opts.Mode, r.opts.BadAction); err == nil {
			out.Actions = &clean.Actions
		}
	}
	return out, nil
}
