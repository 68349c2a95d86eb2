package lifecycle

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/mptkit/internal/submit"
	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// ErrNotConfirmed is returned by Apply for outcomes that must not advance
// state: anything other than a validated success, including successes
// taken on trust.
var ErrNotConfirmed = errors.New("outcome not confirmed by validation")

// ErrUnknownIssuance is returned by Apply for an issuance never tracked.
var ErrUnknownIssuance = errors.New("issuance not tracked")

type holderKey struct {
	id      types.IssuanceID
	address string
}

// Tracker keeps the last known state of issuances and their holders and
// advances it from confirmed outcomes only.
type Tracker struct {
	mu        sync.RWMutex
	issuances map[types.IssuanceID]*Issuance
	holders   map[holderKey]*Holder
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		issuances: make(map[types.IssuanceID]*Issuance),
		holders:   make(map[holderKey]*Holder),
	}
}

// Track stores or replaces an issuance snapshot.
func (t *Tracker) Track(iss *Issuance) {
	if iss == nil || iss.ID.IsZero() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *iss
	t.issuances[iss.ID] = &cp
}

// TrackHolder stores or replaces a holder snapshot.
func (t *Tracker) TrackHolder(h *Holder) {
	if h == nil || h.IssuanceID.IsZero() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *h
	t.holders[holderKey{h.IssuanceID, h.Address}] = &cp
}

// Issuance returns a copy of the tracked snapshot.
func (t *Tracker) Issuance(id types.IssuanceID) (*Issuance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	iss, ok := t.issuances[id]
	if !ok {
		return nil, false
	}
	cp := *iss
	return &cp, true
}

// Holder returns a copy of the tracked holder snapshot.
func (t *Tracker) Holder(id types.IssuanceID, address string) (*Holder, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.holders[holderKey{id, address}]
	if !ok {
		return nil, false
	}
	cp := *h
	return &cp, true
}

// Apply advances state from a finished operation. Outcomes that are not a
// validated, non-provisional success change nothing.
func (t *Tracker) Apply(op *submit.PendingOperation, out *submit.FinalOutcome) error {
	if op == nil || op.Tx == nil || !out.Succeeded() || out.Provisional {
		return ErrNotConfirmed
	}
	if op.Kind == tx.KindCreate {
		// The identifier is only known to the caller; it calls Track.
		return nil
	}

	id, err := types.ParseIssuanceID(op.Tx.IssuanceID())
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	iss, ok := t.issuances[id]
	if !ok {
		return ErrUnknownIssuance
	}

	switch op.Kind {
	case tx.KindAuthorize, tx.KindRevoke:
		h := t.holder(id, op.Tx.MPTokenHolder)
		h.Authorized = op.Kind == tx.KindAuthorize
	case tx.KindOptIn:
		h := t.holder(id, op.Tx.Account)
		h.Exists = true
		if !iss.Capabilities.RequireAuth {
			h.Authorized = true
		}
	case tx.KindOptOut:
		delete(t.holders, holderKey{id, op.Tx.Account})
	case tx.KindIssue:
		delta := minorOf(op.Tx)
		iss.OutstandingAmount = iss.Outstanding().Add(delta).String()
		iss.everIssued = true
		h := t.holder(id, op.Tx.Destination)
		h.Exists = true
		h.Balance = balanceOf(h).Add(delta).String()
	case tx.KindClawback:
		delta := minorOf(op.Tx)
		iss.OutstandingAmount = clampZero(iss.Outstanding().Sub(delta)).String()
		h := t.holder(id, op.Tx.Holder)
		h.Balance = clampZero(balanceOf(h).Sub(delta)).String()
	case tx.KindLock, tx.KindUnlock:
		locked := op.Kind == tx.KindLock
		if op.Tx.Holder == "" {
			iss.Locked = locked
		} else {
			t.holder(id, op.Tx.Holder).Locked = locked
		}
	case tx.KindDestroy:
		iss.Destroyed = true
	}
	return nil
}

// holder returns the tracked holder, creating an empty one. Callers hold
// the write lock.
func (t *Tracker) holder(id types.IssuanceID, address string) *Holder {
	k := holderKey{id, address}
	h, ok := t.holders[k]
	if !ok {
		h = &Holder{Address: address, IssuanceID: id, Balance: "0"}
		t.holders[k] = h
	}
	return h
}

func minorOf(t *tx.Transaction) decimal.Decimal {
	if t.Amount == nil {
		return decimal.Zero
	}
	d, err := amount.ParseMinor(t.Amount.Value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func balanceOf(h *Holder) decimal.Decimal {
	d, err := amount.ParseMinor(orZero(h.Balance))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
