package mpt

import (
	"errors"
	"fmt"
	"math/bits"
)

// Capabilities are the six creation-time issuance flags. They are fixed
// when the issuance is created and never change afterwards.
type Capabilities struct {
	CanLock     bool `json:"can_lock"`
	RequireAuth bool `json:"require_auth"`
	CanEscrow   bool `json:"can_escrow"`
	CanTrade    bool `json:"can_trade"`
	CanTransfer bool `json:"can_transfer"`
	CanClawback bool `json:"can_clawback"`
}

// FlagTable assigns bit positions to capability, operation and runtime flags.
// Callers integrating against a different protocol revision can supply their
// own table.
type FlagTable struct {
	// Creation-time capabilities (MPTokenIssuanceCreate and the issuance object).
	CanLock     uint32
	RequireAuth uint32
	CanEscrow   uint32
	CanTrade    uint32
	CanTransfer uint32
	CanClawback uint32

	// MPTokenIssuanceSet.
	Lock   uint32
	Unlock uint32

	// MPTokenAuthorize.
	Unauthorize uint32

	// Runtime bits on ledger objects.
	Locked           uint32
	HolderAuthorized uint32
}

// DefaultFlags is the bit table used by the reference product.
var DefaultFlags = FlagTable{
	CanLock:     0x0001,
	RequireAuth: 0x0002,
	CanEscrow:   0x0004,
	CanTrade:    0x0008,
	CanTransfer: 0x0010,
	CanClawback: 0x0020,

	Lock:   0x0001,
	Unlock: 0x0002,

	Unauthorize: 0x0001,

	Locked:           0x0001,
	HolderAuthorized: 0x0002,
}

// RippledFlags matches the constants of the reference server, where the
// locked bit has its own position below the capability bits.
var RippledFlags = FlagTable{
	CanLock:     0x0002,
	RequireAuth: 0x0004,
	CanEscrow:   0x0008,
	CanTrade:    0x0010,
	CanTransfer: 0x0020,
	CanClawback: 0x0040,

	Lock:   0x0001,
	Unlock: 0x0002,

	Unauthorize: 0x0001,

	Locked:           0x0001,
	HolderAuthorized: 0x0002,
}

// FlagTableByName returns a published table by name.
func FlagTableByName(name string) (FlagTable, error) {
	switch name {
	case "", "default":
		return DefaultFlags, nil
	case "rippled":
		return RippledFlags, nil
	default:
		return FlagTable{}, fmt.Errorf("unknown flag table %q", name)
	}
}

// Encode packs capabilities into a flags integer.
func (t FlagTable) Encode(c Capabilities) uint32 {
	var f uint32
	if c.CanLock {
		f |= t.CanLock
	}
	if c.RequireAuth {
		f |= t.RequireAuth
	}
	if c.CanEscrow {
		f |= t.CanEscrow
	}
	if c.CanTrade {
		f |= t.CanTrade
	}
	if c.CanTransfer {
		f |= t.CanTransfer
	}
	if c.CanClawback {
		f |= t.CanClawback
	}
	return f
}

// Decode unpacks a flags integer into capabilities. Bits outside the
// capability mask are ignored.
func (t FlagTable) Decode(flags uint32) Capabilities {
	return Capabilities{
		CanLock:     flags&t.CanLock != 0,
		RequireAuth: flags&t.RequireAuth != 0,
		CanEscrow:   flags&t.CanEscrow != 0,
		CanTrade:    flags&t.CanTrade != 0,
		CanTransfer: flags&t.CanTransfer != 0,
		CanClawback: flags&t.CanClawback != 0,
	}
}

// CapabilityMask is the union of the six capability bits.
func (t FlagTable) CapabilityMask() uint32 {
	return t.CanLock | t.RequireAuth | t.CanEscrow | t.CanTrade | t.CanTransfer | t.CanClawback
}

// IssuanceLocked reports whether an issuance object's flags carry the
// locked bit. When the table places Locked inside the capability mask the
// two cannot be told apart and the result is false.
func (t FlagTable) IssuanceLocked(flags uint32) bool {
	if t.LockedBitAmbiguous() {
		return false
	}
	return flags&t.Locked != 0
}

// LockedBitAmbiguous reports whether the locked runtime bit overlaps a
// capability bit in this table.
func (t FlagTable) LockedBitAmbiguous() bool {
	return t.Locked&t.CapabilityMask() != 0
}

// HolderLocked reports the locked bit of a holder's token object.
func (t FlagTable) HolderLocked(flags uint32) bool {
	return flags&t.Locked != 0
}

// HolderAuthorizedBit reports the authorized bit of a holder's token object.
func (t FlagTable) HolderAuthorizedBit(flags uint32) bool {
	return flags&t.HolderAuthorized != 0
}

var errFlagTable = errors.New("invalid flag table")

// Validate checks that every bit is a single set bit, that the six
// capabilities are distinct and that paired operation bits differ.
func (t FlagTable) Validate() error {
	caps := []struct {
		name string
		bit  uint32
	}{
		{"CanLock", t.CanLock},
		{"RequireAuth", t.RequireAuth},
		{"CanEscrow", t.CanEscrow},
		{"CanTrade", t.CanTrade},
		{"CanTransfer", t.CanTransfer},
		{"CanClawback", t.CanClawback},
		{"Lock", t.Lock},
		{"Unlock", t.Unlock},
		{"Unauthorize", t.Unauthorize},
		{"Locked", t.Locked},
		{"HolderAuthorized", t.HolderAuthorized},
	}
	for _, c := range caps {
		if bits.OnesCount32(c.bit) != 1 {
			return fmt.Errorf("%w: %s must be a single bit, got %#x", errFlagTable, c.name, c.bit)
		}
	}
	if bits.OnesCount32(t.CapabilityMask()) != 6 {
		return fmt.Errorf("%w: capability bits overlap", errFlagTable)
	}
	if t.Lock == t.Unlock {
		return fmt.Errorf("%w: lock and unlock share bit %#x", errFlagTable, t.Lock)
	}
	if t.Locked == t.HolderAuthorized {
		return fmt.Errorf("%w: locked and authorized share bit %#x", errFlagTable, t.Locked)
	}
	return nil
}
