package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Issuance identifier sizes. Two protocol revisions coexist: the short form
// (192 bits) and the long form (256 bits, a SHA-512 half).
const (
	ShortIssuanceIDSize = 24
	LongIssuanceIDSize  = 32
)

// IDKind tags which revision an IssuanceID belongs to.
type IDKind uint8

const (
	KindInvalid IDKind = iota
	KindShort
	KindLong
)

func (k IDKind) String() string {
	switch k {
	case KindShort:
		return "short"
	case KindLong:
		return "long"
	default:
		return "invalid"
	}
}

// ErrIssuanceIDFormat is returned for identifiers that are neither 48 nor 64
// hex characters.
var ErrIssuanceIDFormat = errors.New("issuance id must be 48 or 64 hex characters")

// IssuanceID names one token issuance. It is either Short (24 bytes) or Long
// (32 bytes); the two are never padded or truncated into each other.
// The zero value is KindInvalid.
type IssuanceID struct {
	kind IDKind
	raw  [LongIssuanceIDSize]byte
}

// NewLongIssuanceID wraps a 32-byte identifier.
func NewLongIssuanceID(b [LongIssuanceIDSize]byte) IssuanceID {
	return IssuanceID{kind: KindLong, raw: b}
}

// NewShortIssuanceID wraps a 24-byte identifier.
func NewShortIssuanceID(b [ShortIssuanceIDSize]byte) IssuanceID {
	id := IssuanceID{kind: KindShort}
	copy(id.raw[:], b[:])
	return id
}

// ParseIssuanceID parses a 48 or 64 character hex string (any case).
func ParseIssuanceID(s string) (IssuanceID, error) {
	s = strings.TrimSpace(s)
	if len(s) != ShortIssuanceIDSize*2 && len(s) != LongIssuanceIDSize*2 {
		return IssuanceID{}, fmt.Errorf("%w: got %d", ErrIssuanceIDFormat, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return IssuanceID{}, fmt.Errorf("%w: %v", ErrIssuanceIDFormat, err)
	}
	id := IssuanceID{kind: KindLong}
	if len(b) == ShortIssuanceIDSize {
		id.kind = KindShort
	}
	copy(id.raw[:], b)
	return id, nil
}

// MustParseIssuanceID is ParseIssuanceID for constants and tests.
func MustParseIssuanceID(s string) IssuanceID {
	id, err := ParseIssuanceID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Kind returns the protocol revision of the identifier.
func (id IssuanceID) Kind() IDKind {
	return id.kind
}

// IsZero returns true for the zero (invalid) identifier.
func (id IssuanceID) IsZero() bool {
	return id.kind == KindInvalid
}

// Len returns the identifier size in bytes (0, 24 or 32).
func (id IssuanceID) Len() int {
	switch id.kind {
	case KindShort:
		return ShortIssuanceIDSize
	case KindLong:
		return LongIssuanceIDSize
	default:
		return 0
	}
}

// Bytes returns a copy of the identifier bytes.
func (id IssuanceID) Bytes() []byte {
	b := make([]byte, id.Len())
	copy(b, id.raw[:id.Len()])
	return b
}

// String returns the canonical uppercase hex form, or "" for the zero value.
func (id IssuanceID) String() string {
	if id.kind == KindInvalid {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString(id.raw[:id.Len()]))
}

// MarshalText implements encoding.TextMarshaler.
func (id IssuanceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string yields
// the zero value.
func (id *IssuanceID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = IssuanceID{}
		return nil
	}
	parsed, err := ParseIssuanceID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
