// Package submit drives a signed transaction from submission to a final,
// validated outcome.
package submit

import (
	"time"

	"github.com/google/uuid"

	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/tx"
)

// Status is where an operation stands.
type Status string

const (
	StatusBuilt            Status = "built"
	StatusSubmitted        Status = "submitted"
	StatusQueued           Status = "queued"
	StatusProvisional      Status = "provisional"
	StatusRejected         Status = "rejected"
	StatusValidatedSuccess Status = "validated_success"
	StatusValidatedFailure Status = "validated_failure"
	StatusTimedOut         Status = "timed_out"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusValidatedSuccess, StatusValidatedFailure, StatusTimedOut:
		return true
	}
	return false
}

// Immediate is the classification of the server's answer to submit.
type Immediate int

const (
	ImmediateRejected Immediate = iota
	ImmediateQueued
	ImmediateProvisional
)

func (i Immediate) String() string {
	switch i {
	case ImmediateQueued:
		return "queued"
	case ImmediateProvisional:
		return "provisional"
	default:
		return "rejected"
	}
}

// Classify maps an immediate engine code to how the pipeline proceeds.
// tec codes claim a fee and can still land in a validated ledger, so they
// are awaited like tes; the final code comes from validation.
func Classify(code string) Immediate {
	switch fault.ClassOf(code) {
	case fault.ClassSuccess, fault.ClassClaimed:
		return ImmediateProvisional
	case fault.ClassRetry:
		return ImmediateQueued
	default:
		return ImmediateRejected
	}
}

// RawOutcome is the classified answer to a single submit call.
type RawOutcome struct {
	Class   Immediate
	Code    string
	Message string
	Hash    string
}

// PendingOperation tracks one lifecycle action while it is in flight.
type PendingOperation struct {
	ID          uuid.UUID
	Kind        tx.Kind
	Tx          *tx.Transaction
	Hash        string
	Status      Status
	Code        string
	CreatedAt   time.Time
	SubmittedAt time.Time
	FinishedAt  time.Time
}

// NewOperation wraps a built transaction.
func NewOperation(t *tx.Transaction) *PendingOperation {
	return &PendingOperation{
		ID:        uuid.New(),
		Kind:      t.Op,
		Tx:        t,
		Status:    StatusBuilt,
		CreatedAt: time.Now().UTC(),
	}
}

// FinalOutcome is the normalized result of an operation.
type FinalOutcome struct {
	Status  Status
	Hash    string
	Code    string
	Message string
	// Tx is the validated transaction, when one was seen.
	Tx *ledger.TxResult
	// Provisional marks a success taken on trust from the immediate
	// engine result because validation could not be confirmed.
	Provisional bool
	// Abandoned marks a wait cut short by the caller. The transaction may
	// still be applied.
	Abandoned bool
	Waited    time.Duration
}

// Succeeded reports whether the outcome counts as success for the caller.
func (o *FinalOutcome) Succeeded() bool {
	return o != nil && o.Status == StatusValidatedSuccess
}

// Err converts a non-success outcome into its typed error.
func (o *FinalOutcome) Err() error {
	switch o.Status {
	case StatusValidatedSuccess:
		return nil
	case StatusRejected:
		return &fault.EngineRejection{Code: o.Code, Message: o.Message, Hash: o.Hash}
	case StatusValidatedFailure:
		return &fault.EngineRejection{Code: o.Code, Message: o.Message, Hash: o.Hash, Validated: true}
	default:
		last := o.Code
		if last == "" {
			last = string(o.Status)
		}
		return &fault.AmbiguousOutcome{Hash: o.Hash, LastStatus: last, Waited: o.Waited}
	}
}
