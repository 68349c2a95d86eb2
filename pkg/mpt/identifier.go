// Package mpt implements the issuance identifier codec and the flag tables of
// multi-purpose tokens.
package mpt

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/Klingon-tech/mptkit/pkg/crypto"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// IssuanceNamespace is the two-byte space tag that prefixes every issuance
// key preimage.
var IssuanceNamespace = [2]byte{0x00, 0x49}

// Derive computes the long (256-bit) issuance identifier:
//
//	SHA512Half(0x0049 || issuer(20) || BE32(sequence))
func Derive(issuer types.AccountID, sequence uint32) types.IssuanceID {
	var seq [4]byte
	binary.BigEndian.PutUint32(seq[:], sequence)
	h := crypto.SHA512Half(IssuanceNamespace[:], issuer[:], seq[:])
	return types.NewLongIssuanceID([types.LongIssuanceIDSize]byte(h))
}

// DeriveFromAddress is Derive for an issuer given as a classic address or a
// 40-character hex account id.
func DeriveFromAddress(issuer string, sequence uint32) (types.IssuanceID, error) {
	id, err := types.ParseAccount(issuer)
	if err != nil {
		return types.IssuanceID{}, &fault.ValidationError{Field: "issuer", Reason: err.Error(), Err: fault.ErrInvalidField}
	}
	return Derive(id, sequence), nil
}

// ComposeShort builds the short (192-bit) identifier used by the ledger's
// own mpt_issuance_id field: BE32(sequence) || issuer(20).
func ComposeShort(issuer types.AccountID, sequence uint32) types.IssuanceID {
	var raw [types.ShortIssuanceIDSize]byte
	binary.BigEndian.PutUint32(raw[:4], sequence)
	copy(raw[4:], issuer[:])
	return types.NewShortIssuanceID(raw)
}

// SplitShort recovers issuer and sequence from a short identifier.
func SplitShort(id types.IssuanceID) (types.AccountID, uint32, bool) {
	if id.Kind() != types.KindShort {
		return types.AccountID{}, 0, false
	}
	b := id.Bytes()
	var issuer types.AccountID
	copy(issuer[:], b[4:])
	return issuer, binary.BigEndian.Uint32(b[:4]), true
}

// IsWellFormed reports whether s is exactly 48 or 64 hex characters.
func IsWellFormed(s string) bool {
	if len(s) != types.ShortIssuanceIDSize*2 && len(s) != types.LongIssuanceIDSize*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
