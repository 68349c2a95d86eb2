package service

import (
	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// Local computations that need no ledger.

// DeriveIdentifier computes the long issuance identifier of issuer's
// issuance created at sequence.
func DeriveIdentifier(issuer string, sequence uint32) (types.IssuanceID, error) {
	return mpt.DeriveFromAddress(issuer, sequence)
}

// ParseMetadata decodes a hex metadata blob. It never fails; ok is false
// when the blob is not valid metadata.
func ParseMetadata(blob string) (*metadata.Record, bool) {
	return metadata.Decode(blob)
}

// BuildMetadata encodes a metadata record to hex.
func BuildMetadata(r metadata.Record) (string, error) {
	return metadata.Encode(r)
}

// ToMinorUnits converts a display value to minor units at scale.
func ToMinorUnits(display string, scale int) (string, error) {
	return amount.ToMinorUnits(display, scale)
}

// ToDisplay converts minor units to a display value at scale.
func ToDisplay(minor string, scale int) (string, error) {
	return amount.ToDisplay(minor, scale)
}
