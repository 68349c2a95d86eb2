// Package crypto provides the hash constructions used by the ledger.
package crypto

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/Klingon-tech/mptkit/pkg/types"
	"golang.org/x/crypto/ripemd160"
)

// SHA512Half computes SHA-512 over the concatenated parts and returns the
// first 256 bits.
func SHA512Half(parts ...[]byte) types.Hash {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	sum := h.Sum(nil)
	var out types.Hash
	copy(out[:], sum[:types.HashSize])
	return out
}

// AccountIDFromPublicKey derives an account id from a 33-byte public key.
// AccountID = RIPEMD160(SHA256(pubkey)).
func AccountIDFromPublicKey(pubKey []byte) types.AccountID {
	inner := sha256.Sum256(pubKey)
	r := ripemd160.New()
	r.Write(inner[:])
	var id types.AccountID
	copy(id[:], r.Sum(nil))
	return id
}
