package core

import "strings"

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a validation issue.
type Severity int

// Severity levels for validation issues.
const (
	// SeverityError marks rows that must not be loaded.
	SeverityError Severity = iota
	// SeverityWarning marks rows that are loadable but suspicious.
	SeverityWarning
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity as its name so metrics and reports stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	default:
		return SeverityWarning, false
	}
}
