// Package lifecycle mirrors the ledger's ordering rules for token
// issuances so impossible operations are refused before they cost a fee.
package lifecycle

import (
	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// State is an issuance's position in its lifecycle.
type State string

const (
	StateUndefined   State = "undefined"
	StateCreated     State = "created"
	StateIssued      State = "issued"
	StateLocked      State = "locked"
	StateDestroyable State = "destroyable"
	StateDestroyed   State = "destroyed"
)

// Issuance is a snapshot of one issuance as last observed.
type Issuance struct {
	ID                types.IssuanceID `json:"id"`
	IDStrategy        string           `json:"id_strategy,omitempty"`
	Issuer            string           `json:"issuer"`
	Sequence          uint32           `json:"sequence"`
	Flags             uint32           `json:"flags"`
	Capabilities      mpt.Capabilities `json:"capabilities"`
	AssetScale        uint8            `json:"asset_scale"`
	TransferFee       uint16           `json:"transfer_fee"`
	MaximumAmount     string           `json:"maximum_amount,omitempty"`
	OutstandingAmount string           `json:"outstanding_amount"`
	LockedAmount      string           `json:"locked_amount,omitempty"`
	Locked            bool             `json:"locked"`
	Destroyed         bool             `json:"destroyed,omitempty"`
	MetadataHex       string           `json:"metadata_hex,omitempty"`
	Metadata          *metadata.Record `json:"metadata,omitempty"`

	// everIssued is set once units were seen outstanding, separating a
	// fresh issuance from one drained back to zero.
	everIssued bool
}

// FromEntry builds a snapshot from a listing entry. id is the already
// resolved identifier. Undecodable metadata leaves Metadata nil.
func FromEntry(e *mpt.IssuanceEntry, id types.IssuanceID, flags mpt.FlagTable, codec *metadata.Codec) *Issuance {
	iss := &Issuance{
		ID:                id,
		Issuer:            e.Issuer,
		Sequence:          e.Sequence,
		Flags:             e.Flags,
		Capabilities:      flags.Decode(e.Flags),
		AssetScale:        e.AssetScale,
		TransferFee:       e.TransferFee,
		MaximumAmount:     e.MaximumAmount,
		OutstandingAmount: e.OutstandingAmount,
		LockedAmount:      e.LockedAmount,
		Locked:            flags.IssuanceLocked(e.Flags),
		MetadataHex:       e.MPTokenMetadata,
	}
	if iss.OutstandingAmount == "" {
		iss.OutstandingAmount = "0"
	}
	iss.everIssued = !isZero(iss.OutstandingAmount)
	if e.MPTokenMetadata != "" && codec != nil {
		if rec, ok := codec.Decode(e.MPTokenMetadata); ok {
			iss.Metadata = rec
		}
	}
	return iss
}

// State derives the lifecycle state.
func (i *Issuance) State() State {
	switch {
	case i == nil || i.ID.IsZero():
		return StateUndefined
	case i.Destroyed:
		return StateDestroyed
	case i.Locked:
		return StateLocked
	case isZero(i.OutstandingAmount) && !i.everIssued:
		return StateCreated
	case isZero(i.OutstandingAmount):
		return StateDestroyable
	default:
		return StateIssued
	}
}

// Outstanding returns the outstanding supply, zero when unparsable.
func (i *Issuance) Outstanding() decimal.Decimal {
	d, err := amount.ParseMinor(orZero(i.OutstandingAmount))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Holder is one account's relationship with an issuance.
type Holder struct {
	Address    string           `json:"address"`
	IssuanceID types.IssuanceID `json:"issuance_id"`
	// Exists is true when the holder owns an MPToken object for the issuance.
	Exists     bool   `json:"exists"`
	Balance    string `json:"balance"`
	Authorized bool   `json:"authorized"`
	Locked     bool   `json:"locked"`
}

// HolderFromEntry builds a holder snapshot from an MPToken entry. The
// holder counts as authorized when the issuance does not require
// authorization, or when the entry carries the authorized bit.
func HolderFromEntry(e *mpt.TokenEntry, id types.IssuanceID, requireAuth bool, flags mpt.FlagTable) *Holder {
	h := &Holder{
		Address:    e.Account,
		IssuanceID: id,
		Exists:     true,
		Balance:    orZero(e.MPTAmount),
		Locked:     flags.HolderLocked(e.Flags),
	}
	h.Authorized = !requireAuth || flags.HolderAuthorizedBit(e.Flags)
	return h
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// isZero reports whether s is an integer string equal to zero. Empty counts
// as zero; anything unparsable does not.
func isZero(s string) bool {
	if s == "" {
		return true
	}
	d, err := amount.ParseMinor(s)
	return err == nil && d.IsZero()
}
