// Package fault defines the error taxonomy shared by every mptkit component.
//
// Every error returned by the core falls into exactly one Category so a caller
// can branch on it without parsing messages.
package fault

import (
	"errors"
	"fmt"
	"time"
)

// Category classifies an error by who can fix it and whether the ledger saw it.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryPrecondition
	CategoryTransport
	CategoryEngineRejection
	CategoryAmbiguous
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryPrecondition:
		return "precondition"
	case CategoryTransport:
		return "transport"
	case CategoryEngineRejection:
		return "engine_rejection"
	case CategoryAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Sentinel errors, matchable with errors.Is through the typed wrappers.
var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidField        = errors.New("invalid field value")
	ErrMetadataTooLarge    = errors.New("metadata too large")
	ErrDuplicateSubmission = errors.New("duplicate submission")
)

// ValidationError is a local, pre-submission input error.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "validation failed"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && e.Reason == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MissingField returns a ValidationError for an absent required field.
func MissingField(name string) *ValidationError {
	return &ValidationError{Field: name, Reason: "required", Err: ErrMissingField}
}

// InvalidOperation returns a ValidationError for a request that can never
// succeed, such as a payment to oneself.
func InvalidOperation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: ErrInvalidOperation}
}

// Invalid returns a ValidationError for a malformed field value.
func Invalid(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidField}
}

// MetadataTooLargeError reports an encoded metadata blob over the byte budget.
type MetadataTooLargeError struct {
	ActualBytes int
	LimitBytes  int
}

func (e *MetadataTooLargeError) Error() string {
	return fmt.Sprintf("metadata too large: %d bytes exceeds limit of %d bytes", e.ActualBytes, e.LimitBytes)
}

func (e *MetadataTooLargeError) Unwrap() error { return ErrMetadataTooLarge }

// PreconditionError means the operation is not yet permitted for the
// issuance's current state.
type PreconditionError struct {
	Operation string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s not permitted: %s", e.Operation, e.Reason)
}

// TransportError wraps connection failures, timeouts and malformed responses
// after the retry budget is spent.
type TransportError struct {
	Op       string
	Attempts int
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	msg := "transport: " + e.Op
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	if e.Timeout {
		msg += ": timed out"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// EngineRejection is an explicit refusal by the ledger. Code is the
// protocol-level result code, kept verbatim.
type EngineRejection struct {
	Code      string
	Message   string
	Hash      string
	Validated bool
}

func (e *EngineRejection) Error() string {
	msg := e.Message
	if msg == "" {
		msg = Describe(e.Code)
	}
	if e.Hash != "" {
		return fmt.Sprintf("ledger rejected %s (%s): %s", e.Hash, e.Code, msg)
	}
	return fmt.Sprintf("ledger rejected transaction (%s): %s", e.Code, msg)
}

// AmbiguousOutcome means the transaction was submitted but its final status
// could not be confirmed. The operation may or may not have happened.
type AmbiguousOutcome struct {
	Hash       string
	LastStatus string
	Waited     time.Duration
	Err        error
}

func (e *AmbiguousOutcome) Error() string {
	msg := fmt.Sprintf("outcome of %s unknown (last status %s", e.Hash, e.LastStatus)
	if e.Waited > 0 {
		msg += fmt.Sprintf(", waited %s", e.Waited)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AmbiguousOutcome) Unwrap() error { return e.Err }

// CategoryOf returns the category of err, looking through wrapping.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	var (
		ve *ValidationError
		me *MetadataTooLargeError
		pe *PreconditionError
		te *TransportError
		ee *EngineRejection
		ae *AmbiguousOutcome
	)
	switch {
	case errors.As(err, &ae):
		return CategoryAmbiguous
	case errors.As(err, &ee):
		return CategoryEngineRejection
	case errors.As(err, &pe):
		return CategoryPrecondition
	case errors.As(err, &me), errors.As(err, &ve):
		return CategoryValidation
	case errors.As(err, &te):
		return CategoryTransport
	default:
		return CategoryUnknown
	}
}
