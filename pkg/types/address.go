package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// AccountIDSize is the length of an account identifier in bytes.
const AccountIDSize = 20

// Classic address layout: version(1) || account id(20) || checksum(4).
const (
	accountVersion  byte = 0x00
	checksumSize         = 4
	addressBodySize      = 1 + AccountIDSize + checksumSize

	minAddressLength = 25
	maxAddressLength = 35
)

// ledgerAlphabet is the base58 dictionary used by classic addresses.
// Version byte 0x00 maps to 'r', so every classic address starts with it.
var ledgerAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

// Address errors.
var (
	ErrAddressEmpty    = errors.New("address is empty")
	ErrAddressPrefix   = errors.New("address must start with 'r'")
	ErrAddressLength   = errors.New("invalid address length")
	ErrAddressEncoding = errors.New("invalid address encoding")
	ErrAddressVersion  = errors.New("invalid address version")
	ErrAddressChecksum = errors.New("address checksum mismatch")
)

// AccountID is the 160-bit identifier behind a classic address.
type AccountID [AccountIDSize]byte

// IsZero returns true if the account id is all zeros.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// String returns the classic (base58check) address, e.g. "rHb9CJ...".
func (a AccountID) String() string {
	body := make([]byte, 0, addressBodySize)
	body = append(body, accountVersion)
	body = append(body, a[:]...)
	sum := checksum(body)
	body = append(body, sum[:]...)
	return base58.EncodeAlphabet(body, ledgerAlphabet)
}

// Hex returns the raw uppercase hex-encoded account id.
func (a AccountID) Hex() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// Bytes returns a copy of the account id as a byte slice.
func (a AccountID) Bytes() []byte {
	b := make([]byte, AccountIDSize)
	copy(b, a[:])
	return b
}

// MarshalJSON encodes the account id as a classic address.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a classic address into an account id.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := DecodeAddress(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// DecodeAddress parses a classic address into its account id, verifying the
// version byte and checksum.
func DecodeAddress(s string) (AccountID, error) {
	if s == "" {
		return AccountID{}, ErrAddressEmpty
	}
	if s[0] != 'r' {
		return AccountID{}, ErrAddressPrefix
	}
	if len(s) < minAddressLength || len(s) > maxAddressLength {
		return AccountID{}, fmt.Errorf("%w: %d chars", ErrAddressLength, len(s))
	}
	raw, err := base58.DecodeAlphabet(s, ledgerAlphabet)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %v", ErrAddressEncoding, err)
	}
	if len(raw) != addressBodySize {
		return AccountID{}, fmt.Errorf("%w: %d bytes", ErrAddressLength, len(raw))
	}
	if raw[0] != accountVersion {
		return AccountID{}, ErrAddressVersion
	}
	sum := checksum(raw[:1+AccountIDSize])
	if string(sum[:]) != string(raw[1+AccountIDSize:]) {
		return AccountID{}, ErrAddressChecksum
	}
	var id AccountID
	copy(id[:], raw[1:1+AccountIDSize])
	return id, nil
}

// ValidateAddress reports whether s is a well-formed classic address.
func ValidateAddress(s string) error {
	_, err := DecodeAddress(s)
	return err
}

// ParseAccount accepts either a classic address or a 40-character hex
// account id.
func ParseAccount(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if len(s) == AccountIDSize*2 {
		if b, err := hex.DecodeString(s); err == nil {
			var id AccountID
			copy(id[:], b)
			return id, nil
		}
	}
	return DecodeAddress(s)
}

// checksum returns the first four bytes of SHA256(SHA256(payload)).
func checksum(payload []byte) [checksumSize]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [checksumSize]byte
	copy(out[:], second[:checksumSize])
	return out
}
