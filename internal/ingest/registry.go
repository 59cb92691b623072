// Package ingest maps dataset names to their contracts and pipelines.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dailyflow/dailyflow/internal/ingest/audit"
	"github.com/dailyflow/dailyflow/internal/ingest/commonmood"
	"github.com/dailyflow/dailyflow/internal/ingest/contract"
	"github.com/dailyflow/dailyflow/internal/ingest/moodlog"
	"github.com/dailyflow/dailyflow/internal/ingest/runner"
	"github.com/dailyflow/dailyflow/pkg/core"
)

// ErrUnknownDataset is returned for a dataset name without a contract.
var ErrUnknownDataset = errors.New("unknown dataset")

// Store is everything the registered pipelines write to.
type Store interface {
	core.MoodLogStore
	core.CommonMoodLogStore
	audit.Recorder
}

// Ingester is a dataset pipeline with its record types erased.
type Ingester interface {
	Ingest(ctx context.Context, path string) (core.IngestStatus, error)
	IngestReport(ctx context.Context, path string) (*runner.Report, error)
	Inspect(path string) (*runner.Inspection, error)
}

type entry struct {
	contract func() contract.Contract
	build    func(store Store, opts runner.Options) (Ingester, error)
}

var registry = map[string]entry{
	moodlog.Name: {
		contract: moodlog.Contract,
		build: func(store Store, opts runner.Options) (Ingester, error) {
			r, err := runner.New[moodlog.Record, moodlog.Code](moodlog.New(store), store, opts)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	},
	commonmood.Name: {
		contract: commonmood.Contract,
		build: func(store Store, opts runner.Options) (Ingester, error) {
			r, err := runner.New[commonmood.Record, commonmood.Code](commonmood.New(store), store, opts)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	},
}

// Names returns the registered dataset names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the contract of the named dataset.
func Lookup(name string) (contract.Contract, error) {
	e, ok := registry[name]
	if !ok {
		return contract.Contract{}, unknown(name)
	}
	return e.contract(), nil
}

// NewIngester builds the pipeline of the named dataset over store.
func NewIngester(name string, store Store, opts runner.Options, logger *slog.Logger) (Ingester, error) {
	e, ok := registry[name]
	if !ok {
		return nil, unknown(name)
	}
	if logger != nil {
		opts.Logger = logger
	}
	return e.build(store, opts)
}

func unknown(name string) error {
	return fmt.Errorf("%w: %q (expected one of: %s)", ErrUnknownDataset, name, strings.Join(Names(), ", "))
}
