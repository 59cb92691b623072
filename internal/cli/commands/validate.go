package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dailyflow/dailyflow/internal/cli/output"
	"github.com/dailyflow/dailyflow/internal/ingest"
	"github.com/dailyflow/dailyflow/internal/ingest/runner"
	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned when a dry run finds error-level issues.
var ErrValidationFailed = errors.New("validation failed")

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	File    string
	Dataset string
}

// ValidateOutput is the JSON/YAML document of the validate command.
type ValidateOutput struct {
	Dataset string `json:"dataset"`
	File    string `json:"file"`
	*runner.Inspection
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a source file without loading it",
		Long: `Read and validate one source file and report every issue found.

Nothing is written: no rows, no audit record, no quarantine file. The row
counts show what the configured cleaning policy would do. The command exits
non-zero when the file has error-level issues or lacks required columns.`,
		Example: `  # Check a workbook before ingesting it
  dailyflow validate --dataset mood_log --file moods.xlsx

  # Issues as JSON for scripts
  dailyflow validate -d common_mood_log -f export.csv -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Source file (relative paths also tried under data_dir)")
	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "Dataset name (see 'dailyflow datasets')")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("dataset")
	registerDatasetCompletion(cmd)

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	// Inspect never touches the store.
	ing, err := ingest.NewIngester(opts.Dataset, nil, policyOptions(cmdCtx), cmdCtx.Logger)
	if err != nil {
		return err
	}

	path := cmdCtx.Cfg.ResolveSourcePath(opts.File)
	in, err := ing.Inspect(path)
	if err != nil {
		return err
	}

	if err := renderInspection(cmdCtx.Renderer, opts.Dataset, path, in); err != nil {
		return err
	}
	if !in.OK {
		return fmt.Errorf("%w: %s", ErrValidationFailed, filepath.Base(path))
	}
	return nil
}

func renderInspection(r *output.Renderer, dataset, path string, in *runner.Inspection) error {
	if handled, err := r.Document(ValidateOutput{Dataset: dataset, File: path, Inspection: in}); handled {
		return err
	}

	r.Header(1, fmt.Sprintf("Validate %s", dataset))
	r.KeyValue("File", filepath.Base(path))
	r.KeyValue("Rows", in.Rows)
	if len(in.MissingColumns) > 0 {
		r.KeyValue("Missing columns", strings.Join(in.MissingColumns, ", "))
	}
	if a := in.Actions; a != nil {
		r.KeyValue("Policy", fmt.Sprintf("%s / %s", a.Mode, a.BadAction))
		r.KeyValue("Would load", fmt.Sprintf("%d of %d rows (%d quarantined)", a.RowsOut, a.RowsIn, a.RowsQuarantine))
	}
	r.Println("")

	if len(in.Issues) == 0 {
		if in.OK {
			r.Success("No issues found")
		}
		return nil
	}

	rows := make([][]any, 0, len(in.Issues))
	for _, is := range in.Issues {
		rows = append(rows, []any{
			is.Severity.String(),
			is.Code,
			is.Count,
			strings.Join(is.Columns, ", "),
			formatSample(is.Sample),
			is.Message,
		})
	}
	r.Table([]string{"Severity", "Code", "Rows", "Columns", "Sample", "Message"}, rows)
	return nil
}

// formatSample joins the sampled zero-based row indices.
func formatSample(sample []int) string {
	parts := make([]string, len(sample))
	for i, idx := range sample {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ", ")
}
