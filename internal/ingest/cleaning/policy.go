// Package cleaning partitions a validated dataset into accepted and quarantined
// rows according to the configured mode and bad-row action.
package cleaning

import (
	"errors"
	"fmt"

	"github.com/dailyflow/dailyflow/internal/ingest/dataset"
)

// Mode controls whether warning rows are accepted.
type Mode string

// Modes.
const (
	// ModeFacts keeps warning rows; used for raw fact storage.
	ModeFacts Mode = "facts"
	// ModeTrain also drops warning rows from the accepted set.
	ModeTrain Mode = "train"
)

// BadAction controls what happens to error rows.
type BadAction string

// Bad-row actions.
const (
	// BadActionFailFast aborts the run when any bad row exists.
	BadActionFailFast BadAction = "fail_fast"
	// BadActionSkip drops bad rows.
	BadActionSkip BadAction = "skip"
	// BadActionQuarantine moves bad rows into a separate set.
	BadActionQuarantine BadAction = "quarantine"
)

// Configuration errors.
var (
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidBadAction = errors.New("invalid bad_action")
)

// Modes returns all valid modes.
func Modes() []Mode { return []Mode{ModeFacts, ModeTrain} }

// BadActions returns all valid bad-row actions.
func BadActions() []BadAction {
	return []BadAction{BadActionFailFast, BadActionSkip, BadActionQuarantine}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFacts, ModeTrain:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected facts or train)", ErrInvalidMode, s)
	}
}

// ParseBadAction validates a bad-row action string.
func ParseBadAction(s string) (BadAction, error) {
	switch a := BadAction(s); a {
	case BadActionFailFast, BadActionSkip, BadActionQuarantine:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q (expected fail_fast, skip or quarantine)", ErrInvalidBadAction, s)
	}
}

// ValidationFailedError is returned by Apply under fail_fast when bad rows exist.
type ValidationFailedError struct {
	BadRows int
	Mode    Mode
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("Validation failed: %d bad rows (errors). Mode=%s. Consider bad_action='quarantine' or 'skip'.",
		e.BadRows, e.Mode)
}

// Actions summarizes what the policy did.
type Actions struct {
	Mode           Mode      `json:"mode"`
	BadAction      BadAction `json:"bad_action"`
	RowsIn         int       `json:"rows_in"`
	RowsBad        int       `json:"rows_bad"`
	RowsWarn       int       `json:"rows_warn"`
	RowsOut        int       `json:"rows_out"`
	RowsQuarantine int       `json:"rows_quarantine"`
}

// Result is the partitioned dataset.
type Result[R any] struct {
	Accepted    []R
	Quarantined []R

	// QuarantinedIndex holds the source row index of every quarantined row.
	QuarantinedIndex []int
	Actions          Actions
}

// Apply partitions rows using the bad and warning masks of a validation result.
//
// Bad rows never reach the accepted set. In train mode warning rows are dropped
// too. Only bad rows are quarantined; warning rows dropped by train mode are
// discarded.
func Apply[R any](rows []R, bad, warn dataset.Mask, mode Mode, action BadAction) (*Result[R], error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if _, err := ParseBadAction(string(action)); err != nil {
		return nil, err
	}
	if len(bad) != len(rows) || len(warn) != len(rows) {
		return nil, fmt.Errorf("mask length mismatch: rows=%d bad=%d warn=%d", len(rows), len(bad), len(warn))
	}

	badCount := bad.Count()
	if action == BadActionFailFast && badCount > 0 {
		return nil, &ValidationFailedError{BadRows: badCount, Mode: mode}
	}

	keep := bad.Not()
	if mode == ModeTrain {
		for i, w := range warn {
			if w {
				keep[i] = false
			}
		}
	}

	res := &Result[R]{}
	res.Accepted, _ = dataset.Filter(rows, keep)
	if action == BadActionQuarantine {
		res.Quarantined, res.QuarantinedIndex = dataset.Filter(rows, bad)
	}

	res.Actions = Actions{
		Mode:           mode,
		BadAction:      action,
		RowsIn:         len(rows),
		RowsBad:        badCount,
		RowsWarn:       warn.Count(),
		RowsOut:        len(res.Accepted),
		RowsQuarantine: len(res.Quarantined),
	}
	return res, nil
}
