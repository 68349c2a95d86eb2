// Package journal is the append-only audit trail of finished operations.
// Entries are written once and never rewritten.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Klingon-tech/mptkit/internal/submit"
)

var (
	ErrNotFound     = errors.New("journal entry not found")
	ErrDuplicateKey = errors.New("journal entry already exists")
)

// Entry records one finished operation.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	Kind         string    `json:"kind"`
	Account      string    `json:"account"`
	IssuanceID   string    `json:"issuance_id,omitempty"`
	Counterparty string    `json:"counterparty,omitempty"`
	Hash         string    `json:"hash,omitempty"`
	Status       string    `json:"status"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
	Provisional  bool      `json:"provisional,omitempty"`
	Abandoned    bool      `json:"abandoned,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Account    string
	IssuanceID string
	Limit      int
}

func (f Filter) match(e *Entry) bool {
	if f.Account != "" && e.Account != f.Account && e.Counterparty != f.Account {
		return false
	}
	if f.IssuanceID != "" && e.IssuanceID != f.IssuanceID {
		return false
	}
	return true
}

// Store persists entries.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id uuid.UUID) (*Entry, error)
	// List returns matching entries, newest first.
	List(ctx context.Context, f Filter) ([]*Entry, error)
	Close() error
}

// FromOperation builds the entry for a finished operation. issuanceID
// overrides the transaction's own reference, which a create does not have.
func FromOperation(op *submit.PendingOperation, out *submit.FinalOutcome, issuanceID string) *Entry {
	e := &Entry{
		ID:         op.ID,
		Kind:       string(op.Kind),
		Hash:       op.Hash,
		Status:     string(op.Status),
		Code:       op.Code,
		CreatedAt:  op.CreatedAt,
		FinishedAt: op.FinishedAt,
	}
	if op.Tx != nil {
		e.Account = op.Tx.Account
		e.IssuanceID = op.Tx.IssuanceID()
		e.Counterparty = op.Tx.Counterparty()
	}
	if issuanceID != "" {
		e.IssuanceID = issuanceID
	}
	if out != nil {
		e.Status = string(out.Status)
		e.Code = out.Code
		e.Message = out.Message
		e.Provisional = out.Provisional
		e.Abandoned = out.Abandoned
		if out.Hash != "" {
			e.Hash = out.Hash
		}
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now().UTC()
	}
	return e
}
