package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflow/dailyflow/internal/state"
	"github.com/dailyflow/dailyflow/internal/testutil"
	"github.com/dailyflow/dailyflow/pkg/core"
)

func setupStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func params(t *testing.T, path string) Params {
	t.Helper()
	return Params{
		Dataset:    "mood_log",
		SourceType: core.SourceTypeExcel,
		Path:       path,
		StartedAt:  time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC),
		Logger:     testutil.NewTestLogger(t),
		Now:        func() time.Time { return time.Date(2024, 10, 1, 9, 0, 5, 0, time.UTC) },
	}
}

func TestHashFile(t *testing.T) {
	content := strings.Repeat("mood,", 40000)
	path := testutil.WriteFile(t, t.TempDir(), "big.csv", content)

	sum := sha256.Sum256([]byte(content))
	got, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = HashFile(t.TempDir())
	assert.ErrorIs(t, err, ErrSourceNotFound, "directories are not sources")
}

func TestRun_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	path := testutil.WriteFile(t, t.TempDir(), "moods.csv", "day\n2024-10-01\n")

	// Fresh content: pre-check lets the pipeline proceed without a record.
	run, err := Run(ctx, store, params(t, path))
	require.NoError(t, err)
	assert.Nil(t, run)

	p := params(t, path)
	p.FinishedAt = p.StartedAt.Add(time.Minute)
	p.Metrics = map[string]int{"rows_total": 1}
	run, err = Run(ctx, store, p)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.IngestStatusSuccess, run.Status)
	assert.JSONEq(t, `{"rows_total":1}`, string(run.Metrics))

	// Same content again: pre-check records a skip.
	run, err = Run(ctx, store, params(t, path))
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.IngestStatusSkipped, run.Status)
	assert.True(t, run.FinishedAt.Equal(time.Date(2024, 10, 1, 9, 0, 5, 0, time.UTC)))

	runs, err := store.ListIngestRuns(ctx, core.IngestRunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRun_ErrorTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	path := testutil.WriteFile(t, t.TempDir(), "moods.csv", "day\n2024-10-01\n")

	p := params(t, path)
	p.ErrorMessage = "unique constraint failed"
	run, err := Run(ctx, store, p)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.IngestStatusFailed, run.Status)
	assert.Equal(t, "unique constraint failed", run.ErrorMessage)
	assert.True(t, run.FinishedAt.Equal(time.Date(2024, 10, 1, 9, 0, 5, 0, time.UTC)), "finish time defaults to now")

	// A failed run does not count as processed.
	run, err = Run(ctx, store, params(t, path))
	require.NoError(t, err)
	assert.Nil(t, run)

	// An explicit finish time is kept.
	p.FinishedAt = p.StartedAt.Add(2 * time.Second)
	run, err = Run(ctx, store, p)
	require.NoError(t, err)
	assert.Equal(t, core.IngestStatusFailed, run.Status)
	assert.True(t, run.FinishedAt.Equal(p.FinishedAt))
}

func TestRun_MissingSource(t *testing.T) {
	store := setupStore(t)

	_, err := Run(context.Background(), store, params(t, filepath.Join(t.TempDir(), "nope.xlsx")))
	assert.ErrorIs(t, err, ErrSourceNotFound)

	runs, err := store.ListIngestRuns(context.Background(), core.IngestRunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

type failingRecorder struct{}

func (failingRecorder) AddIngestRun(context.Context, *core.IngestRun) (*core.IngestRun, error) {
	return nil, errors.New("database is locked")
}

func (failingRecorder) IsAlreadyProcessed(context.Context, string) (bool, error) {
	return false, errors.New("database is locked")
}

func TestRun_RecorderErrors(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "moods.csv", "day\n")

	_, err := Run(context.Background(), failingRecorder{}, params(t, path))
	assert.ErrorContains(t, err, "failed to check file hash")

	p := params(t, path)
	p.FinishedAt = p.StartedAt
	_, err = Run(context.Background(), failingRecorder{}, p)
	assert.ErrorContains(t, err, "failed to record ingest run")
}
