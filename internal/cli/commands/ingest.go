package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dailyflow/dailyflow/internal/cli/output"
	"github.com/dailyflow/dailyflow/internal/ingest"
	"github.com/dailyflow/dailyflow/internal/ingest/cleaning"
	"github.com/dailyflow/dailyflow/internal/ingest/runner"
	"github.com/dailyflow/dailyflow/pkg/core"
	"github.com/spf13/cobra"
)

// ErrIngestFailed is returned when the pipeline recorded a failed run.
var ErrIngestFailed = errors.New("ingest failed")

// IngestOptions holds options for the ingest command.
type IngestOptions struct {
	File    string
	Dataset string
}

// IngestOutput is the JSON/YAML document of the ingest command.
type IngestOutput struct {
	Dataset  string            `json:"dataset"`
	File     string            `json:"file"`
	Status   core.IngestStatus `json:"status"`
	RunID    string            `json:"run_id"`
	FileHash string            `json:"file_hash"`
	Error    string            `json:"error,omitempty"`
	Metrics  json.RawMessage   `json:"metrics,omitempty"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a source file into the database",
		Long: `Read, validate, clean and upsert one source file.

Files whose content was already ingested successfully are skipped. Every attempt
is recorded in the ingest audit; see 'dailyflow runs'.

The cleaning policy comes from the ingest section of dailyflow.yaml and can be
overridden per run with --mode, --bad-action and --quarantine-dir.`,
		Example: `  # Ingest a mood workbook
  dailyflow ingest --dataset mood_log --file moods.xlsx

  # Ingest an exported CSV, dropping bad rows instead of quarantining them
  dailyflow ingest -d common_mood_log -f export.csv --bad-action skip

  # Machine-readable result
  dailyflow ingest -d common_mood_log -f export.csv --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Source file (relative paths also tried under data_dir)")
	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "Dataset name (see 'dailyflow datasets')")
	cmd.Flags().String("mode", "", "Cleaning mode (facts|train)")
	cmd.Flags().String("bad-action", "", "Bad row action (fail_fast|skip|quarantine)")
	cmd.Flags().String("quarantine-dir", "", "Directory receiving quarantined rows as CSV")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("dataset")

	registerDatasetCompletion(cmd)
	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var modes []string
		for _, m := range cleaning.Modes() {
			modes = append(modes, string(m))
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("bad-action", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var actions []string
		for _, a := range cleaning.BadActions() {
			actions = append(actions, string(a))
		}
		return actions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runIngest(cmd *cobra.Command, opts *IngestOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	ing, err := ingest.NewIngester(opts.Dataset, cmdCtx.Store, policyOptions(cmdCtx), cmdCtx.Logger)
	if err != nil {
		return err
	}

	path := cfg.ResolveSourcePath(opts.File)
	cmdCtx.Logger.Debug("ingesting", slog.String("dataset", opts.Dataset), slog.String("path", path))

	rep, err := ing.IngestReport(cmd.Context(), path)
	if err != nil {
		return err
	}

	if err := renderIngest(cmdCtx.Renderer, opts.Dataset, path, rep); err != nil {
		return err
	}
	if rep.Status == core.IngestStatusFailed {
		return fmt.Errorf("%w: %s", ErrIngestFailed, rep.Run.ErrorMessage)
	}
	return nil
}

// policyOptions builds runner options from the loaded configuration.
func policyOptions(cmdCtx *CommandContext) runner.Options {
	return runner.Options{
		Mode:          cleaning.Mode(cmdCtx.Cfg.Ingest.Mode),
		BadAction:     cleaning.BadAction(cmdCtx.Cfg.Ingest.BadAction),
		QuarantineDir: cmdCtx.Cfg.Ingest.QuarantineDir,
		Logger:        cmdCtx.Logger,
	}
}

func renderIngest(r *output.Renderer, dataset, path string, rep *runner.Report) error {
	doc := IngestOutput{
		Dataset: dataset,
		File:    path,
		Status:  rep.Status,
	}
	if rep.Run != nil {
		doc.RunID = rep.Run.ID
		doc.FileHash = rep.Run.FileHash
		doc.Error = rep.Run.ErrorMessage
		doc.Metrics = rep.Run.Metrics
	}
	if handled, err := r.Document(doc); handled {
		return err
	}

	r.Header(1, fmt.Sprintf("Ingest %s", dataset))
	r.KeyValue("File", filepath.Base(path))
	r.KeyValue("Status", string(rep.Status))
	if doc.RunID != "" {
		r.KeyValue("Run", doc.RunID)
	}

	switch rep.Status {
	case core.IngestStatusSkipped:
		r.Muted("Content already ingested (sha256 " + shortHash(doc.FileHash) + ")")
		return nil
	case core.IngestStatusFailed:
		r.KeyValue("Error", doc.Error)
	}

	snap := rep.Snapshot
	if a := snap.Actions; a != nil {
		r.KeyValue("Policy", fmt.Sprintf("%s / %s", a.Mode, a.BadAction))
		r.KeyValue("Rows", fmt.Sprintf("%d in, %d bad, %d warn, %d out, %d quarantined",
			a.RowsIn, a.RowsBad, a.RowsWarn, a.RowsOut, a.RowsQuarantine))
	}
	if l := snap.Load; l != nil {
		r.KeyValue("Written", l.RowsWritten)
		if l.MinDay != nil && l.MaxDay != nil {
			r.KeyValue("Days", fmt.Sprintf("%s .. %s", l.MinDay.Format(core.DayLayout), l.MaxDay.Format(core.DayLayout)))
		}
	}
	if snap.QuarantineFile != "" {
		r.KeyValue("Quarantine", snap.QuarantineFile)
	}
	if rep.Status == core.IngestStatusSuccess {
		r.Success(fmt.Sprintf("Ingested %s in %s", filepath.Base(path), runDuration(rep.Run)))
	}
	return nil
}

func runDuration(run *core.IngestRun) time.Duration {
	if run == nil {
		return 0
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func registerDatasetCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("dataset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return ingest.Names(), cobra.ShellCompDirectiveNoFileComp
	})
}
