// Package main provides tests for the dailyflow CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflow/dailyflow/internal/cli"
	"github.com/dailyflow/dailyflow/internal/cli/commands"
	"github.com/dailyflow/dailyflow/internal/cli/config"
	"github.com/dailyflow/dailyflow/internal/ingest"
)

const exportCSV = "Time,Mood,Note\n" +
	"2024-10-01 20:00,good,walk\n" +
	"2024-10-02 21:00,bad,\n"

// Line 3 is out of range, line 4 has no optional fields.
const mixedCSV = "Time,Mood,Note\n" +
	"2024-10-01,good,walk\n" +
	"2024-10-02,12,\n" +
	"2024-10-03,,\n" +
	"2024-10-04,neutral,\n"

// execute runs the root command and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := cli.NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dailyflow v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"ingest", "validate", "runs", "datasets", "migrate", "completion"} {
		assert.Contains(t, out, expected, "help output should list %q", expected)
	}
}

func TestIngestCommand_SuccessThenSkipped(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state", "app.db")
	file := writeFile(t, dir, "export.csv", exportCSV)
	args := []string{"ingest", "-d", "common_mood_log", "-f", file, "--state", statePath, "-o", "json"}

	out, _, err := execute(t, args...)
	require.NoError(t, err)

	var first commands.IngestOutput
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, "success", string(first.Status))
	assert.Len(t, first.FileHash, 64)
	var metrics struct {
		Load struct {
			RowsWritten int `json:"rows_written"`
		} `json:"load"`
	}
	require.NoError(t, json.Unmarshal(first.Metrics, &metrics))
	assert.Equal(t, 2, metrics.Load.RowsWritten)
	assert.FileExists(t, statePath)

	out, _, err = execute(t, args...)
	require.NoError(t, err)

	var second commands.IngestOutput
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, "skipped", string(second.Status))
	assert.Equal(t, first.FileHash, second.FileHash)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestIngestCommand_ResolvesFileInDataDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "export-2024.csv", exportCSV)

	out, _, err := execute(t, "ingest", "-d", "common_mood_log", "-f", "export-2024.csv",
		"--data-dir", dir, "--state", filepath.Join(dir, "app.db"), "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Ingest common_mood_log")
	assert.Contains(t, out, "- **Status:** success")
	assert.Contains(t, out, "- **Written:** 2")
}

func TestIngestCommand_FailFast(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "export.csv", mixedCSV)

	out, _, err := execute(t, "ingest", "-d", "common_mood_log", "-f", file,
		"--state", filepath.Join(dir, "app.db"), "--bad-action", "fail_fast", "-o", "json")
	require.ErrorIs(t, err, commands.ErrIngestFailed)

	var doc commands.IngestOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "failed", string(doc.Status))
	assert.Contains(t, doc.Error, "validation failed: 1 bad rows")
}

func TestIngestCommand_QuarantineFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "dailyflow.yaml", `state_path: db/app.db
data_dir: inbox
log_level: warn
ingest:
  mode: train
  bad_action: quarantine
  quarantine_dir: quarantine
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "inbox"), 0750))
	writeFile(t, filepath.Join(dir, "inbox"), "export.csv", mixedCSV)

	out, _, err := execute(t, "ingest", "--config", cfgPath, "-d", "common_mood_log", "-f", "export.csv", "-o", "json")
	require.NoError(t, err)

	var doc commands.IngestOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "success", string(doc.Status))
	assert.FileExists(t, filepath.Join(dir, "db", "app.db"))

	matches, err := filepath.Glob(filepath.Join(dir, "quarantine", "common_mood_log_quarantine_*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestIngestCommand_UnknownDataset(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "export.csv", exportCSV)

	_, _, err := execute(t, "ingest", "-d", "sleep_log", "-f", file, "--state", filepath.Join(dir, "app.db"))
	assert.ErrorIs(t, err, ingest.ErrUnknownDataset)
}

func TestIngestCommand_MissingFlags(t *testing.T) {
	_, _, err := execute(t, "ingest", "-d", "mood_log")
	assert.ErrorContains(t, err, `required flag(s) "file" not set`)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "app.db")
	file := writeFile(t, dir, "export.csv", mixedCSV)

	out, _, err := execute(t, "validate", "-d", "common_mood_log", "-f", file, "--state", statePath, "-o", "json")
	require.ErrorIs(t, err, commands.ErrValidationFailed)

	var doc struct {
		OK     bool `json:"ok"`
		Rows   int  `json:"rows"`
		Issues []struct {
			Code     string `json:"code"`
			Severity string `json:"severity"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.False(t, doc.OK)
	assert.Equal(t, 4, doc.Rows)
	require.Len(t, doc.Issues, 2)
	assert.Equal(t, "error", doc.Issues[0].Severity)
	assert.NoFileExists(t, statePath, "a dry run does not open the database")
}

func TestValidateCommand_Clean(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "export.csv", exportCSV)

	out, _, err := execute(t, "validate", "-d", "common_mood_log", "-f", file, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Validate common_mood_log")
	assert.Contains(t, out, "No issues found")
}

func TestRunsCommand(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "app.db")
	file := writeFile(t, dir, "export.csv", exportCSV)

	for range 2 {
		_, _, err := execute(t, "ingest", "-d", "common_mood_log", "-f", file, "--state", statePath)
		require.NoError(t, err)
	}

	out, _, err := execute(t, "runs", "--state", statePath, "-o", "json")
	require.NoError(t, err)

	var runs []commands.RunInfo
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "skipped", string(runs[0].Status))
	assert.Equal(t, "success", string(runs[1].Status))

	out, _, err = execute(t, "runs", "--state", statePath, "--limit", "1", "--dataset", "mood_log", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	assert.Empty(t, runs)

	_, _, err = execute(t, "runs", "--state", statePath, "--limit", "-1")
	assert.ErrorContains(t, err, "--limit must not be negative")
}

func TestDatasetsCommand(t *testing.T) {
	out, _, err := execute(t, "datasets", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Datasets (2)")
	assert.Contains(t, out, "| common_mood_log | csv |")
	assert.Contains(t, out, "| mood_log | excel |")
}

func TestMigrateCommand(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "app.db")

	out, _, err := execute(t, "migrate", "--state", statePath, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1")
	assert.FileExists(t, statePath)
}

func TestInvalidConfiguration(t *testing.T) {
	_, _, err := execute(t, "datasets", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "unknown output mode")

	_, _, err = execute(t, "ingest", "-d", "mood_log", "-f", "x.xlsx", "--mode", "both")
	assert.ErrorContains(t, err, "ingest.mode")
}
