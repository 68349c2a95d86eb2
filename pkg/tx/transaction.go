// Package tx defines the token lifecycle transactions and their builder.
package tx

import (
	"encoding/json"
	"fmt"
)

// Transaction types.
const (
	TypeIssuanceCreate  = "MPTokenIssuanceCreate"
	TypeAuthorize       = "MPTokenAuthorize"
	TypePayment         = "Payment"
	TypeIssuanceSet     = "MPTokenIssuanceSet"
	TypeClawback        = "Clawback"
	TypeIssuanceDestroy = "MPTokenIssuanceDestroy"
)

// Kind names a lifecycle operation.
type Kind string

const (
	KindCreate    Kind = "create"
	KindAuthorize Kind = "authorize"
	KindRevoke    Kind = "revoke"
	KindOptIn     Kind = "opt_in"
	KindOptOut    Kind = "opt_out"
	KindIssue     Kind = "issue"
	KindLock      Kind = "lock"
	KindUnlock    Kind = "unlock"
	KindClawback  Kind = "clawback"
	KindDestroy   Kind = "destroy"
)

// Transaction is an unsigned request in the ledger's JSON form. Sequence,
// Fee and LastLedgerSequence are left for the signer to fill in.
type Transaction struct {
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Flags           uint32 `json:"Flags,omitempty"`

	AssetScale      *uint8  `json:"AssetScale,omitempty"`
	TransferFee     *uint16 `json:"TransferFee,omitempty"`
	MaximumAmount   string  `json:"MaximumAmount,omitempty"`
	MPTokenMetadata string  `json:"MPTokenMetadata,omitempty"`

	MPTokenIssuanceID string `json:"MPTokenIssuanceID,omitempty"`
	MPTokenHolder     string `json:"MPTokenHolder,omitempty"`
	Holder            string `json:"Holder,omitempty"`

	Destination string     `json:"Destination,omitempty"`
	Amount      *MPTAmount `json:"Amount,omitempty"`

	Sequence           uint32 `json:"Sequence,omitempty"`
	Fee                string `json:"Fee,omitempty"`
	LastLedgerSequence uint32 `json:"LastLedgerSequence,omitempty"`

	// Op is the lifecycle operation this transaction performs.
	Op Kind `json:"-"`
}

// MPTAmount is an amount of a multi-purpose token in minor units.
type MPTAmount struct {
	MPTIssuanceID string `json:"mpt_issuance_id"`
	Value         string `json:"value"`
}

// JSON returns the canonical JSON encoding of the transaction.
func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}

// String returns a short description for logs.
func (t *Transaction) String() string {
	return fmt.Sprintf("%s(%s) from %s", t.TransactionType, t.Op, t.Account)
}

// IssuanceID returns the issuance the transaction refers to, from whichever
// field carries it.
func (t *Transaction) IssuanceID() string {
	if t.MPTokenIssuanceID != "" {
		return t.MPTokenIssuanceID
	}
	if t.Amount != nil {
		return t.Amount.MPTIssuanceID
	}
	return ""
}

// Counterparty returns the holder or destination account, if any.
func (t *Transaction) Counterparty() string {
	switch {
	case t.Destination != "":
		return t.Destination
	case t.Holder != "":
		return t.Holder
	default:
		return t.MPTokenHolder
	}
}
