package tx

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

const (
	issuerAddr = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	holderAddr = "rrrrrrrrrrrrrrrrrrrrrhoLvTp"
)

var testID = types.MustParseIssuanceID(strings.Repeat("AB", 32))

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *fault.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Field
}

func TestCreateIssuance(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	txn, err := b.CreateIssuance(CreateParams{
		Account:       issuerAddr,
		AssetScale:    2,
		Capabilities:  mpt.Capabilities{CanLock: true, CanTransfer: true, CanClawback: true},
		TransferFee:   250,
		MaximumAmount: "1000000",
		Metadata:      "7B7D",
	})
	require.NoError(t, err)
	assert.Equal(t, TypeIssuanceCreate, txn.TransactionType)
	assert.Equal(t, KindCreate, txn.Op)
	assert.Equal(t, uint32(0x01|0x10|0x20), txn.Flags)
	require.NotNil(t, txn.AssetScale)
	assert.Equal(t, uint8(2), *txn.AssetScale)
	require.NotNil(t, txn.TransferFee)
	assert.Equal(t, uint16(250), *txn.TransferFee)
}

func TestCreateIssuance_OmitsAbsentFields(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	txn, err := b.CreateIssuance(CreateParams{Account: issuerAddr})
	require.NoError(t, err)
	data, err := txn.JSON()
	require.NoError(t, err)
	s := string(data)
	for _, field := range []string{"MaximumAmount", "MPTokenMetadata", "TransferFee", "Flags"} {
		assert.NotContains(t, s, field)
	}
}

func TestCreateIssuance_FlagIdempotence(t *testing.T) {
	for _, table := range []mpt.FlagTable{mpt.DefaultFlags, mpt.RippledFlags} {
		b := NewBuilder(table)
		caps := mpt.Capabilities{RequireAuth: true, CanTrade: true, CanClawback: true}
		first, err := b.CreateIssuance(CreateParams{Account: issuerAddr, Capabilities: caps})
		require.NoError(t, err)
		second, err := b.CreateIssuance(CreateParams{Account: issuerAddr, Capabilities: caps})
		require.NoError(t, err)
		assert.Equal(t, first.Flags, second.Flags)
		assert.Equal(t, caps, table.Decode(first.Flags))
	}
}

func TestCreateIssuance_Validation(t *testing.T) {
	tests := []struct {
		name  string
		p     CreateParams
		field string
	}{
		{"missing account", CreateParams{}, "Account"},
		{"bad account", CreateParams{Account: "rNotReal"}, "Account"},
		{"scale too high", CreateParams{Account: issuerAddr, AssetScale: 16}, "AssetScale"},
		{"negative scale", CreateParams{Account: issuerAddr, AssetScale: -1}, "AssetScale"},
		{"fee too high", CreateParams{Account: issuerAddr, TransferFee: 50001, Capabilities: mpt.Capabilities{CanTransfer: true}}, "TransferFee"},
		{"fee without transfer", CreateParams{Account: issuerAddr, TransferFee: 10}, "TransferFee"},
		{"zero maximum", CreateParams{Account: issuerAddr, MaximumAmount: "0"}, "MaximumAmount"},
		{"decimal maximum", CreateParams{Account: issuerAddr, MaximumAmount: "1.5"}, "MaximumAmount"},
		{"maximum overflow", CreateParams{Account: issuerAddr, MaximumAmount: "9223372036854775808"}, "MaximumAmount"},
		{"odd metadata", CreateParams{Account: issuerAddr, Metadata: "ABC"}, "MPTokenMetadata"},
		{"non-hex metadata", CreateParams{Account: issuerAddr, Metadata: "ZZ"}, "MPTokenMetadata"},
	}

	b := NewBuilder(mpt.DefaultFlags)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.CreateIssuance(tt.p)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestCreateIssuance_MetadataTooLarge(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	_, err := b.CreateIssuance(CreateParams{Account: issuerAddr, Metadata: strings.Repeat("AB", 1025)})
	var tooLarge *fault.MetadataTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 1025, tooLarge.ActualBytes)
}

func TestAuthorizeAndRevoke(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)

	auth, err := b.AuthorizeHolder(issuerAddr, testID, holderAddr)
	require.NoError(t, err)
	assert.Equal(t, TypeAuthorize, auth.TransactionType)
	assert.Equal(t, uint32(0), auth.Flags)
	assert.Equal(t, holderAddr, auth.MPTokenHolder)
	assert.Equal(t, testID.String(), auth.MPTokenIssuanceID)
	assert.Equal(t, KindAuthorize, auth.Op)

	rev, err := b.RevokeAuthorization(issuerAddr, testID, holderAddr)
	require.NoError(t, err)
	assert.Equal(t, mpt.DefaultFlags.Unauthorize, rev.Flags)
	assert.Equal(t, KindRevoke, rev.Op)

	_, err = b.AuthorizeHolder(issuerAddr, types.IssuanceID{}, holderAddr)
	assert.ErrorIs(t, err, fault.ErrMissingField)
	assert.Equal(t, "MPTokenIssuanceID", fieldOf(t, err))

	_, err = b.AuthorizeHolder(issuerAddr, testID, "")
	assert.Equal(t, "MPTokenHolder", fieldOf(t, err))

	_, err = b.AuthorizeHolder(issuerAddr, testID, issuerAddr)
	assert.ErrorIs(t, err, fault.ErrInvalidOperation)
}

func TestOptInOut(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	in, err := b.OptIn(holderAddr, testID)
	require.NoError(t, err)
	assert.Empty(t, in.MPTokenHolder)
	assert.Equal(t, holderAddr, in.Account)
	assert.Equal(t, KindOptIn, in.Op)

	out, err := b.OptOut(holderAddr, testID)
	require.NoError(t, err)
	assert.Equal(t, mpt.DefaultFlags.Unauthorize, out.Flags)
	assert.Equal(t, KindOptOut, out.Op)
}

func TestIssue(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	txn, err := b.Issue(issuerAddr, holderAddr, testID, "1500")
	require.NoError(t, err)
	assert.Equal(t, TypePayment, txn.TransactionType)
	assert.Equal(t, holderAddr, txn.Destination)
	require.NotNil(t, txn.Amount)
	assert.Equal(t, "1500", txn.Amount.Value)
	assert.Equal(t, testID.String(), txn.Amount.MPTIssuanceID)
}

func TestIssue_Rejects(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)

	_, err := b.Issue(issuerAddr, issuerAddr, testID, "1")
	assert.True(t, errors.Is(err, fault.ErrInvalidOperation))
	assert.Equal(t, fault.CategoryValidation, fault.CategoryOf(err))

	_, err = b.Issue(issuerAddr, "", testID, "1")
	assert.Equal(t, "Destination", fieldOf(t, err))

	for _, bad := range []string{"", "0", "1.5", "-2"} {
		_, err = b.Issue(issuerAddr, holderAddr, testID, bad)
		assert.ErrorIs(t, err, fault.ErrInvalidAmount, "amount %q", bad)
	}
}

func TestSetLockState(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)

	lock, err := b.SetLockState(issuerAddr, testID, "", true)
	require.NoError(t, err)
	assert.Equal(t, mpt.DefaultFlags.Lock, lock.Flags)
	assert.Empty(t, lock.Holder)
	assert.Equal(t, KindLock, lock.Op)

	unlock, err := b.SetLockState(issuerAddr, testID, holderAddr, false)
	require.NoError(t, err)
	assert.Equal(t, mpt.DefaultFlags.Unlock, unlock.Flags)
	assert.Equal(t, holderAddr, unlock.Holder)
	assert.Equal(t, KindUnlock, unlock.Op)

	assert.Zero(t, lock.Flags&unlock.Flags, "lock and unlock bits must be exclusive")

	_, err = b.SetLockState(issuerAddr, testID, "rBad", true)
	assert.Equal(t, "Holder", fieldOf(t, err))
}

func TestClawback(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	txn, err := b.Clawback(issuerAddr, holderAddr, testID, "10")
	require.NoError(t, err)
	assert.Equal(t, TypeClawback, txn.TransactionType)
	assert.Equal(t, holderAddr, txn.Holder)
	assert.Equal(t, "10", txn.Amount.Value)

	_, err = b.Clawback(issuerAddr, "", testID, "10")
	assert.Equal(t, "Holder", fieldOf(t, err))

	_, err = b.Clawback(issuerAddr, issuerAddr, testID, "10")
	assert.ErrorIs(t, err, fault.ErrInvalidOperation)
}

func TestDestroyIssuance(t *testing.T) {
	b := NewBuilder(mpt.DefaultFlags)
	txn, err := b.DestroyIssuance(issuerAddr, testID)
	require.NoError(t, err)
	assert.Equal(t, TypeIssuanceDestroy, txn.TransactionType)
	assert.Equal(t, uint32(0), txn.Flags)
	assert.Nil(t, txn.Amount)

	_, err = b.DestroyIssuance("", testID)
	assert.ErrorIs(t, err, fault.ErrMissingField)
}
