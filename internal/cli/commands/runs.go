package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dailyflow/dailyflow/internal/cli/output"
	"github.com/dailyflow/dailyflow/pkg/core"
	"github.com/spf13/cobra"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Dataset string
	Limit   int
}

// RunInfo is one ingest run in the runs document.
type RunInfo struct {
	ID           string            `json:"id"`
	Dataset      string            `json:"dataset"`
	SourceType   core.SourceType   `json:"source_type"`
	SourcePath   string            `json:"source_path"`
	FileHash     string            `json:"file_hash"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Status       core.IngestStatus `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Metrics      json.RawMessage   `json:"metrics,omitempty"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the ingest audit history",
		Long: `List recorded ingest runs, newest first.

Every ingest attempt is recorded, including skipped duplicates and failures.`,
		Example: `  # Last 20 runs
  dailyflow runs

  # Every mood_log run as JSON
  dailyflow runs --dataset mood_log --limit 0 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "Only runs of this dataset")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs (0 for all)")
	registerDatasetCompletion(cmd)

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", opts.Limit)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cmdCtx.Store.ListIngestRuns(cmd.Context(), core.IngestRunFilter{
		Dataset: opts.Dataset,
		Limit:   opts.Limit,
	})
	if err != nil {
		return err
	}
	return renderRuns(cmdCtx.Renderer, runs)
}

func renderRuns(r *output.Renderer, runs []*core.IngestRun) error {
	infos := make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, RunInfo{
			ID:           run.ID,
			Dataset:      run.Dataset,
			SourceType:   run.SourceType,
			SourcePath:   run.SourcePath,
			FileHash:     run.FileHash,
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
			Status:       run.Status,
			ErrorMessage: run.ErrorMessage,
			Metrics:      run.Metrics,
		})
	}
	if handled, err := r.Document(infos); handled {
		return err
	}

	r.Header(1, fmt.Sprintf("Ingest runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Muted("No runs recorded yet")
		return nil
	}

	rows := make([][]any, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []any{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Dataset,
			r.Styles().ForStatus(string(run.Status)).Render(string(run.Status)),
			filepath.Base(run.SourcePath),
			shortHash(run.FileHash),
			run.ErrorMessage,
		})
	}
	r.Table([]string{"Started", "Dataset", "Status", "File", "Hash", "Error"}, rows)
	return nil
}
