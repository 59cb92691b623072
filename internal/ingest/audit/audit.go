// Package audit records ingest runs and guards against ingesting the same file
// content twice.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dailyflow/dailyflow/pkg/core"
)

// ErrSourceNotFound is returned when the source path is not a regular file.
var ErrSourceNotFound = errors.New("source file not found")

// hashChunkSize is the read buffer of HashFile.
const hashChunkSize = 64 * 1024

// Recorder is the audit store Run writes to.
type Recorder interface {
	AddIngestRun(ctx context.Context, run *core.IngestRun) (*core.IngestRun, error)
	IsAlreadyProcessed(ctx context.Context, fileHash string) (bool, error)
}

// Params describes one audit call.
//
// A call with ErrorMessage records a failed run. A call without FinishedAt is
// the pre-flight check. Any other call records a successful run.
type Params struct {
	Dataset      string
	SourceType   core.SourceType
	Path         string
	StartedAt    time.Time
	FinishedAt   time.Time
	ErrorMessage string
	Metrics      any

	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run hashes the source file and records the outcome described by p.
//
// The pre-flight check returns a nil run when the content has not been
// ingested yet, and a skipped run when it has.
func Run(ctx context.Context, recorder Recorder, p Params) (*core.IngestRun, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	hash, err := HashFile(p.Path)
	if err != nil {
		return nil, err
	}

	run := &core.IngestRun{
		Dataset:    p.Dataset,
		SourceType: p.SourceType,
		SourcePath: p.Path,
		FileHash:   hash,
		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,
	}

	switch {
	case p.ErrorMessage != "":
		if run.FinishedAt.IsZero() {
			run.FinishedAt = now()
		}
		run.Status = core.IngestStatusFailed
		run.ErrorMessage = p.ErrorMessage
		if run.Metrics, err = encodeMetrics(p.Metrics); err != nil {
			return nil, err
		}

	case p.FinishedAt.IsZero():
		processed, err := recorder.IsAlreadyProcessed(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to check file hash: %w", err)
		}
		if !processed {
			logger.Debug("source not ingested yet", slog.String("path", p.Path), slog.String("file_hash", hash))
			return nil, nil
		}
		run.FinishedAt = now()
		run.Status = core.IngestStatusSkipped

	default:
		run.Status = core.IngestStatusSuccess
		if run.Metrics, err = encodeMetrics(p.Metrics); err != nil {
			return nil, err
		}
	}

	stored, err := recorder.AddIngestRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("failed to record ingest run: %w", err)
	}

	logger.Info("ingest run recorded",
		slog.String("status", string(stored.Status)),
		slog.String("file_hash", stored.FileHash))
	return stored, nil
}

// CheckSource returns ErrSourceNotFound unless path is a regular file.
func CheckSource(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	return nil
}

// HashFile returns the hex sha256 digest of the file at path.
func HashFile(path string) (string, error) {
	if err := CheckSource(path); err != nil {
		return "", err
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is the ingest source chosen by the user
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	// The wrapper hides File.WriteTo so reads go through the fixed buffer.
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, make([]byte, hashChunkSize)); err != nil {
		return "", fmt.Errorf("failed to hash source file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func encodeMetrics(m any) (json.RawMessage, error) {
	if m == nil {
		return nil, nil
	}
	if raw, ok := m.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	return b, nil
}
