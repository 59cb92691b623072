// Package core defines the shared language of the dailyflow system.
//
// This package contains:
//   - Domain entities (IngestRun, mood log payloads, batch upsert results)
//   - Enumerations shared across layers (Severity, IngestStatus, SourceType)
//   - Service interfaces implemented by the state store
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
