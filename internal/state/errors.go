package state

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories surfaced by the store. Match them with errors.Is.
var (
	ErrNotOpened      = errors.New("database not opened")
	ErrDuplicateDay   = errors.New("entry for this day already exists")
	ErrDuplicate      = errors.New("duplicate entry")
	ErrInvalidScore   = errors.New("out of allowed range")
	ErrForeignKey     = errors.New("related entity not found")
	ErrIntegrity      = errors.New("integrity error")
	ErrEmptyPayload   = errors.New("no fields to upsert")
	ErrMissingField   = errors.New("missing required field")
	ErrParentNotFound = errors.New("parent entity not found")
)

// RepoError is a storage failure translated into the store's error taxonomy.
type RepoError struct {
	Kind    error
	Table   string
	Message string
	Cause   error
}

func (e *RepoError) Error() string {
	var b strings.Builder
	if e.Table != "" {
		b.WriteString(e.Table)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the category and the underlying driver error.
func (e *RepoError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newRepoError(kind error, table, format string, args ...any) *RepoError {
	return &RepoError{Kind: kind, Table: table, Message: fmt.Sprintf(format, args...)}
}

// mapConstraintError translates a constraint violation reported by the driver
// into a RepoError. The driver exposes the violated constraint only through the
// message text, so classification is done on the lower-cased message. Errors that
// are not constraint violations are returned unchanged.
func mapConstraintError(err error, table string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "constraint failed") {
		return err
	}

	re := &RepoError{Table: table, Cause: err}
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		if table != "" && strings.Contains(msg, table+".day") {
			re.Kind = ErrDuplicateDay
			re.Message = dayExistsMessage(table)
		} else {
			re.Kind = ErrDuplicate
			re.Message = "duplicate for this entry"
		}
	case strings.Contains(msg, "check constraint failed"):
		re.Kind = ErrInvalidScore
		re.Message = "out of allowed range"
	case strings.Contains(msg, "foreign key constraint failed"):
		re.Kind = ErrForeignKey
		re.Message = "related entity not found (foreign key violation)"
	default:
		re.Kind = ErrIntegrity
		re.Message = "integrity error"
	}
	return re
}

func dayExistsMessage(table string) string {
	switch table {
	case tableMoodLog:
		return "mood log for this day already exists"
	case tableCommonMoodLog:
		return "common mood log for this day already exists"
	default:
		return table + " entry for this day already exists"
	}
}
