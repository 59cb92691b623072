package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflow/dailyflow/internal/ingest/cleaning"
	"github.com/dailyflow/dailyflow/internal/ingest/runner"
	"github.com/dailyflow/dailyflow/internal/state"
	"github.com/dailyflow/dailyflow/internal/testutil"
	"github.com/dailyflow/dailyflow/pkg/core"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"common_mood_log", "mood_log"}, Names())
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		wantSource core.SourceType
		wantErr    bool
	}{
		{name: "mood_log", wantSource: core.SourceTypeExcel},
		{name: "common_mood_log", wantSource: core.SourceTypeCSV},
		{name: "sleep_log", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownDataset)
				assert.Contains(t, err.Error(), "common_mood_log, mood_log")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.wantSource, c.SourceType)
			assert.Contains(t, c.Required, "day")
		})
	}
}

func TestNewIngester(t *testing.T) {
	ctx := context.Background()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	_, err := NewIngester("nope", store, runner.DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrUnknownDataset)

	_, err = NewIngester("mood_log", store, runner.Options{Mode: "facts", BadAction: "ignore"}, nil)
	assert.ErrorIs(t, err, cleaning.ErrInvalidBadAction)

	ing, err := NewIngester("common_mood_log", store, runner.DefaultOptions(), testutil.NewTestLogger(t))
	require.NoError(t, err)

	path := testutil.WriteFile(t, t.TempDir(), "export.csv", "Time,Mood,Note\n2024-10-01,great,\n")
	status, err := ing.Ingest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, core.IngestStatusSuccess, status)
}
