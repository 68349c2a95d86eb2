package mpt

import "encoding/json"

// Ledger entry type tags.
const (
	EntryTypeIssuance = "MPTokenIssuance"
	EntryTypeToken    = "MPToken"
)

// TransactionMeta is the post-execution metadata of a transaction as
// returned by the tx and submit commands. Servers disagree on where the
// created issuance id lives, so several shapes are accepted.
type TransactionMeta struct {
	TransactionResult string `json:"TransactionResult"`
	TransactionIndex  uint32 `json:"TransactionIndex,omitempty"`

	MPTIssuanceID     string `json:"mpt_issuance_id,omitempty"`
	MPTokenIssuanceID string `json:"MPTokenIssuanceID,omitempty"`

	AffectedNodes []AffectedNode `json:"AffectedNodes,omitempty"`
	// CreatedNodes is emitted by some older client libraries in place of
	// AffectedNodes.
	CreatedNodes []AffectedNode `json:"CreatedNodes,omitempty"`
}

// AffectedNode wraps exactly one of the three node kinds.
type AffectedNode struct {
	CreatedNode  *LedgerNode `json:"CreatedNode,omitempty"`
	ModifiedNode *LedgerNode `json:"ModifiedNode,omitempty"`
	DeletedNode  *LedgerNode `json:"DeletedNode,omitempty"`
}

// LedgerNode is a ledger object touched by a transaction.
type LedgerNode struct {
	LedgerEntryType string                     `json:"LedgerEntryType"`
	LedgerIndex     string                     `json:"LedgerIndex,omitempty"`
	Index           string                     `json:"index,omitempty"`
	NewFields       map[string]json.RawMessage `json:"NewFields,omitempty"`
	FinalFields     map[string]json.RawMessage `json:"FinalFields,omitempty"`
}

// key returns whichever object key field the server populated.
func (n *LedgerNode) key() string {
	if n.LedgerIndex != "" {
		return n.LedgerIndex
	}
	return n.Index
}

// stringField returns a string-valued field of a raw field map.
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// IssuanceEntry is an MPTokenIssuance object from an account_objects listing.
type IssuanceEntry struct {
	LedgerEntryType   string `json:"LedgerEntryType"`
	Index             string `json:"index,omitempty"`
	MPTIssuanceID     string `json:"mpt_issuance_id,omitempty"`
	MPTokenIssuanceID string `json:"MPTokenIssuanceID,omitempty"`
	Issuer            string `json:"Issuer"`
	Sequence          uint32 `json:"Sequence"`
	Flags             uint32 `json:"Flags"`
	AssetScale        uint8  `json:"AssetScale,omitempty"`
	TransferFee       uint16 `json:"TransferFee,omitempty"`
	MaximumAmount     string `json:"MaximumAmount,omitempty"`
	OutstandingAmount string `json:"OutstandingAmount,omitempty"`
	LockedAmount      string `json:"LockedAmount,omitempty"`
	MPTokenMetadata   string `json:"MPTokenMetadata,omitempty"`
}

// TokenEntry is an MPToken object, one holder's balance of one issuance.
type TokenEntry struct {
	LedgerEntryType   string `json:"LedgerEntryType"`
	Index             string `json:"index,omitempty"`
	Account           string `json:"Account"`
	MPTokenIssuanceID string `json:"MPTokenIssuanceID"`
	MPTAmount         string `json:"MPTAmount,omitempty"`
	LockedAmount      string `json:"LockedAmount,omitempty"`
	Flags             uint32 `json:"Flags"`
}
