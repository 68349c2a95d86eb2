package tx

import (
	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// Limits enforced on issuance creation.
const (
	MaxAssetScale  = amount.MaxScale
	MaxTransferFee = 50000
)

// Builder constructs lifecycle transactions. It performs no network I/O.
type Builder struct {
	flags mpt.FlagTable
}

// NewBuilder creates a builder that encodes flags with the given table.
func NewBuilder(flags mpt.FlagTable) *Builder {
	return &Builder{flags: flags}
}

// Flags returns the builder's flag table.
func (b *Builder) Flags() mpt.FlagTable {
	return b.flags
}

// CreateParams describes a new issuance.
type CreateParams struct {
	Account      string
	AssetScale   int
	Capabilities mpt.Capabilities
	// TransferFee is in units of 1/10 basis point (0-50000).
	TransferFee int
	// MaximumAmount is the supply ceiling in minor units. Empty means none.
	MaximumAmount string
	// Metadata is an already encoded hex blob. Empty means none.
	Metadata string
}

// CreateIssuance builds an MPTokenIssuanceCreate.
func (b *Builder) CreateIssuance(p CreateParams) (*Transaction, error) {
	if err := checkAccount("Account", p.Account); err != nil {
		return nil, err
	}
	if p.AssetScale < 0 || p.AssetScale > MaxAssetScale {
		return nil, fault.Invalid("AssetScale", "must be between 0 and %d, got %d", MaxAssetScale, p.AssetScale)
	}
	if p.TransferFee < 0 || p.TransferFee > MaxTransferFee {
		return nil, fault.Invalid("TransferFee", "must be between 0 and %d, got %d", MaxTransferFee, p.TransferFee)
	}
	if p.TransferFee > 0 && !p.Capabilities.CanTransfer {
		return nil, fault.Invalid("TransferFee", "a transfer fee requires the transferable capability")
	}
	if p.MaximumAmount != "" {
		if err := amount.ValidateMaximum(p.MaximumAmount); err != nil {
			return nil, err
		}
	}
	if len(p.Metadata)%2 != 0 || !isHex(p.Metadata) {
		return nil, fault.Invalid("MPTokenMetadata", "must be hex encoded")
	}
	if len(p.Metadata) > metadata.MaxHexLength {
		return nil, &fault.MetadataTooLargeError{ActualBytes: len(p.Metadata) / 2, LimitBytes: metadata.MaxBytes}
	}

	scale := uint8(p.AssetScale)
	t := &Transaction{
		TransactionType: TypeIssuanceCreate,
		Account:         p.Account,
		Flags:           b.flags.Encode(p.Capabilities),
		AssetScale:      &scale,
		MaximumAmount:   p.MaximumAmount,
		MPTokenMetadata: p.Metadata,
		Op:              KindCreate,
	}
	if p.TransferFee > 0 {
		fee := uint16(p.TransferFee)
		t.TransferFee = &fee
	}
	return t, nil
}

// AuthorizeHolder builds the issuer-side MPTokenAuthorize that lets holder
// hold the issuance.
func (b *Builder) AuthorizeHolder(issuer string, id types.IssuanceID, holder string) (*Transaction, error) {
	return b.authorize(issuer, id, holder, false)
}

// RevokeAuthorization builds the issuer-side MPTokenAuthorize with the
// unauthorize bit set.
func (b *Builder) RevokeAuthorization(issuer string, id types.IssuanceID, holder string) (*Transaction, error) {
	return b.authorize(issuer, id, holder, true)
}

func (b *Builder) authorize(issuer string, id types.IssuanceID, holder string, revoke bool) (*Transaction, error) {
	if err := checkAccount("Account", issuer); err != nil {
		return nil, err
	}
	if err := checkIssuance(id); err != nil {
		return nil, err
	}
	if err := checkAccount("MPTokenHolder", holder); err != nil {
		return nil, err
	}
	if holder == issuer {
		return nil, fault.InvalidOperation("MPTokenHolder", "the issuer cannot authorize itself")
	}
	t := &Transaction{
		TransactionType:   TypeAuthorize,
		Account:           issuer,
		MPTokenIssuanceID: id.String(),
		MPTokenHolder:     holder,
		Op:                KindAuthorize,
	}
	if revoke {
		t.Flags = b.flags.Unauthorize
		t.Op = KindRevoke
	}
	return t, nil
}

// OptIn builds the holder-side MPTokenAuthorize that creates the holder's
// token object.
func (b *Builder) OptIn(holder string, id types.IssuanceID) (*Transaction, error) {
	return b.optIn(holder, id, false)
}

// OptOut builds the holder-side MPTokenAuthorize that deletes the holder's
// empty token object.
func (b *Builder) OptOut(holder string, id types.IssuanceID) (*Transaction, error) {
	return b.optIn(holder, id, true)
}

func (b *Builder) optIn(holder string, id types.IssuanceID, out bool) (*Transaction, error) {
	if err := checkAccount("Account", holder); err != nil {
		return nil, err
	}
	if err := checkIssuance(id); err != nil {
		return nil, err
	}
	t := &Transaction{
		TransactionType:   TypeAuthorize,
		Account:           holder,
		MPTokenIssuanceID: id.String(),
		Op:                KindOptIn,
	}
	if out {
		t.Flags = b.flags.Unauthorize
		t.Op = KindOptOut
	}
	return t, nil
}

// Issue builds a Payment of minor units from the issuer to destination.
func (b *Builder) Issue(issuer, destination string, id types.IssuanceID, minor string) (*Transaction, error) {
	if err := checkAccount("Account", issuer); err != nil {
		return nil, err
	}
	if err := checkAccount("Destination", destination); err != nil {
		return nil, err
	}
	if destination == issuer {
		return nil, fault.InvalidOperation("Destination", "cannot issue to the issuer account")
	}
	if err := checkIssuance(id); err != nil {
		return nil, err
	}
	if err := amount.CheckMinor("Amount", minor); err != nil {
		return nil, err
	}
	return &Transaction{
		TransactionType: TypePayment,
		Account:         issuer,
		Destination:     destination,
		Amount:          &MPTAmount{MPTIssuanceID: id.String(), Value: minor},
		Op:              KindIssue,
	}, nil
}

// SetLockState builds an MPTokenIssuanceSet that locks or unlocks the whole
// issuance, or a single holder's balance when holder is non-empty.
func (b *Builder) SetLockState(account string, id types.IssuanceID, holder string, lock bool) (*Transaction, error) {
	if err := checkAccount("Account", account); err != nil {
		return nil, err
	}
	if err := checkIssuance(id); err != nil {
		return nil, err
	}
	if holder != "" {
		if err := checkAccount("Holder", holder); err != nil {
			return nil, err
		}
	}
	t := &Transaction{
		TransactionType:   TypeIssuanceSet,
		Account:           account,
		MPTokenIssuanceID: id.String(),
		Holder:            holder,
		Flags:             b.flags.Unlock,
		Op:                KindUnlock,
	}
	if lock {
		t.Flags = b.flags.Lock
		t.Op = KindLock
	}
	return t, nil
}

// Clawback builds a Clawback of minor units from holder back to the issuer.
// The caller must check the clawback capability first.
func (b *Builder) Clawback(issuer, holder string, id types.IssuanceID, minor string) (*Transaction, error) {
	if err := checkAccount("Account", issuer); err != nil {
		return nil, err
	}
	if err := checkAccount("Holder", holder); err != nil {
		return nil, err
	}
	if holder == issuer {
		return nil, fault.InvalidOperation("Holder", "cannot claw back from the issuer account")
	}
	if err := checkIssuance(id); err != nil {
		return nil, err
	}
	if err := amount.CheckMinor("Amount", minor); err != nil {
		return nil, err
	}
	return &Transaction{
		TransactionType: TypeClawback,
		Account:         issuer,
		Holder:          holder,
		Amount:          &MPTAmount{MPTIssuanceID: id.String(), Value: minor},
		Op:              KindClawback,
	}, nil
}

// DestroyIssuance builds an MPTokenIssuanceDestroy.
func (b *Builder) DestroyIssuance(account string, id types.IssuanceID) (*Transaction, error) {
	if err := checkAccount("Account", account); err != nil {
		return nil, err
	}
	if err := checkIssuance(id); err != nil {
		return nil, err
	}
	return &Transaction{
		TransactionType:   TypeIssuanceDestroy,
		Account:           account,
		MPTokenIssuanceID: id.String(),
		Op:                KindDestroy,
	}, nil
}

func checkAccount(field, addr string) error {
	if addr == "" {
		return fault.MissingField(field)
	}
	if err := types.ValidateAddress(addr); err != nil {
		return &fault.ValidationError{Field: field, Reason: err.Error(), Err: fault.ErrInvalidField}
	}
	return nil
}

func checkIssuance(id types.IssuanceID) error {
	if id.IsZero() {
		return fault.MissingField("MPTokenIssuanceID")
	}
	return nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
