package lifecycle

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/tx"
)

func exists(iss *Issuance) bool {
	return iss != nil && !iss.ID.IsZero() && !iss.Destroyed
}

// CanIssue reports whether units may be sent to holder: the issuance exists
// and either does not require authorization or holder is authorized.
func CanIssue(iss *Issuance, holder *Holder) bool {
	if !exists(iss) {
		return false
	}
	if !iss.Capabilities.RequireAuth {
		return true
	}
	return holder != nil && holder.Authorized
}

// CanDestroy reports whether nothing is outstanding.
func CanDestroy(iss *Issuance) bool {
	return exists(iss) && isZero(iss.OutstandingAmount) && iss.OutstandingAmount != ""
}

// CanClawback reports whether the issuance allows clawback, is not locked,
// and holder has a positive balance.
func CanClawback(iss *Issuance, holder *Holder) bool {
	if !exists(iss) || !iss.Capabilities.CanClawback || iss.Locked {
		return false
	}
	if holder == nil {
		return false
	}
	bal, err := amount.ParseMinor(holder.Balance)
	return err == nil && bal.IsPositive()
}

func denied(op tx.Kind, format string, args ...any) error {
	return &fault.PreconditionError{Operation: string(op), Reason: fmt.Sprintf(format, args...)}
}

// CheckIssue is CanIssue plus the supply ceiling, as an error.
func CheckIssue(iss *Issuance, holder *Holder, minor string) error {
	if !exists(iss) {
		return denied(tx.KindIssue, "issuance does not exist")
	}
	if !CanIssue(iss, holder) {
		return denied(tx.KindIssue, "holder is not authorized for issuance %s", iss.ID)
	}
	if iss.MaximumAmount == "" {
		return nil
	}
	max, err := amount.ParseMinor(iss.MaximumAmount)
	if err != nil {
		return nil
	}
	add, err := amount.ParseMinor(minor)
	if err != nil {
		return err
	}
	if total := iss.Outstanding().Add(add); total.GreaterThan(max) {
		return denied(tx.KindIssue, "outstanding %s + %s would exceed maximum %s", iss.Outstanding(), add, max)
	}
	return nil
}

// CheckDestroy is CanDestroy as an error.
func CheckDestroy(iss *Issuance) error {
	if !exists(iss) {
		return denied(tx.KindDestroy, "issuance does not exist")
	}
	if !CanDestroy(iss) {
		return denied(tx.KindDestroy, "outstanding supply is %s, must be 0", orZero(iss.OutstandingAmount))
	}
	return nil
}

// CheckClawback is CanClawback as an error, also requiring the amount not
// to exceed the holder's balance.
func CheckClawback(iss *Issuance, holder *Holder, minor string) error {
	switch {
	case !exists(iss):
		return denied(tx.KindClawback, "issuance does not exist")
	case !iss.Capabilities.CanClawback:
		return denied(tx.KindClawback, "issuance was created without clawback")
	case iss.Locked:
		return denied(tx.KindClawback, "issuance is locked")
	case !CanClawback(iss, holder):
		return denied(tx.KindClawback, "holder has no balance")
	}
	bal, _ := amount.ParseMinor(holder.Balance)
	want, err := amount.ParseMinor(minor)
	if err != nil {
		return err
	}
	if want.GreaterThan(bal) {
		return denied(tx.KindClawback, "amount %s exceeds holder balance %s", want, bal)
	}
	return nil
}

// CheckAuthorize requires an issuance that gates holders.
func CheckAuthorize(op tx.Kind, iss *Issuance) error {
	if !exists(iss) {
		return denied(op, "issuance does not exist")
	}
	if !iss.Capabilities.RequireAuth {
		return denied(op, "issuance does not require authorization")
	}
	return nil
}

// CheckLock requires a lockable issuance.
func CheckLock(op tx.Kind, iss *Issuance) error {
	if !exists(iss) {
		return denied(op, "issuance does not exist")
	}
	if !iss.Capabilities.CanLock {
		return denied(op, "issuance was created without the lock capability")
	}
	return nil
}

// CheckOptOut requires a zero balance.
func CheckOptOut(holder *Holder) error {
	if holder == nil || !holder.Exists {
		return denied(tx.KindOptOut, "holder has no token object")
	}
	if bal, err := decimal.NewFromString(holder.Balance); err != nil || !bal.IsZero() {
		return denied(tx.KindOptOut, "holder balance %s must be 0", holder.Balance)
	}
	return nil
}
