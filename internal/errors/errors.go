package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrInvalidTempo         = errors.New("tempo out of range")
	ErrInvalidTimeSignature = errors.New("unsupported time signature")
	ErrInvalidBarCount      = errors.New("unsupported bar count")
	ErrUnknownStyle         = errors.New("unknown style")
	ErrEmptyStore           = errors.New("sample store is empty")
	ErrSampleNotFound       = errors.New("sample not found")
	ErrCorruptedSample      = errors.New("sample file corrupted or unreadable")
)

// ConfigError reports an invalid generation parameter. The pipeline fails
// fast on these before any generation work happens.
type ConfigError struct {
	Field  string // "bpm", "time_signature", "bar_count"
	Value  string
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a ConfigError
func NewConfigError(field, value, reason string, cause error) *ConfigError {
	return &ConfigError{
		Field:  field,
		Value:  value,
		Reason: reason,
		Cause:  cause,
	}
}

// ResolveError represents a sample resolution shortfall for one note id.
// These are recoverable: the resolver walks its fallback chain, and only a
// fully exhausted chain surfaces one of these, at which point the caller
// drops the affected events instead of failing the request.
type ResolveError struct {
	NoteID string
	Family string
	Cause  error
}

func (e *ResolveError) Error() string {
	if e.Family != "" {
		return fmt.Sprintf("no sample for note %q in family %q", e.NoteID, e.Family)
	}
	return fmt.Sprintf("no sample for note %q", e.NoteID)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// IsRecoverable returns true if dropping the affected events still yields
// a playable render.
func (e *ResolveError) IsRecoverable() bool {
	return true
}
