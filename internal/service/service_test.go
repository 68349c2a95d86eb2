package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/mptkit/internal/idcache"
	"github.com/Klingon-tech/mptkit/internal/journal"
	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/internal/ledger/mocks"
	"github.com/Klingon-tech/mptkit/internal/lifecycle"
	"github.com/Klingon-tech/mptkit/internal/signer"
	"github.com/Klingon-tech/mptkit/internal/storage"
	"github.com/Klingon-tech/mptkit/internal/submit"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

const (
	issuerAddr = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	holderAddr = "rrrrrrrrrrrrrrrrrrrrrhoLvTp"
)

type fixture struct {
	client  *mocks.MockClient
	svc     *Service
	cache   *idcache.Store
	journal *journal.MemoryStore
	signed  []*tx.Transaction
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctl := gomock.NewController(t)
	f := &fixture{
		client:  mocks.NewMockClient(ctl),
		cache:   idcache.New(storage.NewMemory(), zerolog.Nop()),
		journal: journal.NewMemoryStore(),
	}
	sign := signer.Func(func(_ context.Context, txn *tx.Transaction) (signer.SignedTx, error) {
		f.signed = append(f.signed, txn)
		n := len(f.signed)
		return signer.SignedTx{Blob: fmt.Sprintf("BLOB%d", n), Hash: hashOf(n)}, nil
	})
	pipeline := submit.New(f.client, submit.Config{
		PollInterval:    5 * time.Millisecond,
		MaxWait:         time.Second,
		DuplicateWindow: time.Minute,
	}, zerolog.Nop())
	f.svc = New(Deps{
		Ledger:   f.client,
		Signer:   sign,
		Pipeline: pipeline,
		Cache:    f.cache,
		Journal:  f.journal,
		Log:      zerolog.Nop(),
	})
	return f
}

func hashOf(n int) string { return fmt.Sprintf("%064X", n) }

func issuerID(t *testing.T) types.AccountID {
	t.Helper()
	a, err := types.DecodeAddress(issuerAddr)
	require.NoError(t, err)
	return a
}

func (f *fixture) issuances(owner string, entries ...string) {
	f.client.EXPECT().AccountObjects(gomock.Any(), owner, ledger.ObjectIssuance, gomock.Any()).
		Return(page(entries...), nil).AnyTimes()
}

func (f *fixture) tokens(owner string, entries ...string) {
	f.client.EXPECT().AccountObjects(gomock.Any(), owner, ledger.ObjectToken, gomock.Any()).
		Return(page(entries...), nil).AnyTimes()
}

// validates scripts the n-th signed blob to be accepted and then validated
// with code.
func (f *fixture) validates(n int, code string, res *ledger.TxResult) {
	f.client.EXPECT().Submit(gomock.Any(), fmt.Sprintf("BLOB%d", n)).
		Return(&ledger.SubmitResult{EngineResult: "tesSUCCESS", Hash: hashOf(n)}, nil)
	if res == nil {
		res = &ledger.TxResult{}
	}
	res.Hash = hashOf(n)
	res.Validated = true
	if res.Meta == nil {
		res.Meta = &mpt.TransactionMeta{}
	}
	res.Meta.TransactionResult = code
	f.client.EXPECT().Tx(gomock.Any(), hashOf(n)).Return(res, nil).MinTimes(1)
}

func page(entries ...string) *ledger.ObjectsPage {
	p := &ledger.ObjectsPage{}
	for _, e := range entries {
		p.Objects = append(p.Objects, json.RawMessage(e))
	}
	return p
}

func issuanceJSON(id types.IssuanceID, seq uint32, flags uint32, max, outstanding string) string {
	return fmt.Sprintf(`{"LedgerEntryType":"MPTokenIssuance","mpt_issuance_id":%q,"Issuer":%q,"Sequence":%d,"Flags":%d,"MaximumAmount":%q,"OutstandingAmount":%q}`,
		id.String(), issuerAddr, seq, flags, max, outstanding)
}

func tokenJSON(id types.IssuanceID, balance string, flags uint32) string {
	return fmt.Sprintf(`{"LedgerEntryType":"MPToken","Account":%q,"MPTokenIssuanceID":%q,"MPTAmount":%q,"Flags":%d}`,
		holderAddr, id.String(), balance, flags)
}

func TestCreate_ResolvesIDFromMeta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	want := mpt.Derive(issuerID(t), 9)

	f.client.EXPECT().AccountInfo(gomock.Any(), issuerAddr).Return(&ledger.AccountInfo{Account: issuerAddr, Sequence: 9}, nil)
	f.validates(1, "tesSUCCESS", &ledger.TxResult{
		Account:  issuerAddr,
		Sequence: 9,
		Meta:     &mpt.TransactionMeta{MPTokenIssuanceID: want.String()},
	})

	res, err := f.svc.Create(ctx, CreateRequest{
		Account:       issuerAddr,
		AssetScale:    2,
		Capabilities:  mpt.Capabilities{CanLock: true, CanClawback: true},
		MaximumAmount: "100000",
	})
	require.NoError(t, err)
	assert.Equal(t, want, res.IssuanceID)
	assert.Equal(t, tx.KindCreate, res.Kind)
	assert.True(t, res.Outcome.Succeeded())

	iss, ok := f.svc.Tracker().Issuance(want)
	require.True(t, ok)
	assert.Equal(t, lifecycle.StateCreated, iss.State())
	assert.Equal(t, mpt.StrategyMetaField.String(), iss.IDStrategy)
	assert.Equal(t, uint8(2), iss.AssetScale)
	assert.True(t, iss.Capabilities.CanClawback)

	cached, ok := f.cache.Lookup(issuerID(t), 9)
	require.True(t, ok)
	assert.Equal(t, want, cached)

	entries, err := f.journal.List(ctx, journal.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, want.String(), entries[0].IssuanceID)
	assert.Equal(t, string(submit.StatusValidatedSuccess), entries[0].Status)
	assert.Equal(t, hashOf(1), entries[0].Hash)
}

func TestCreate_DerivesWhenMetaSilent(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().AccountInfo(gomock.Any(), issuerAddr).Return(&ledger.AccountInfo{}, nil)
	f.validates(1, "tesSUCCESS", &ledger.TxResult{Account: issuerAddr, Sequence: 42})

	res, err := f.svc.Create(context.Background(), CreateRequest{Account: issuerAddr})
	require.NoError(t, err)
	assert.Equal(t, mpt.Derive(issuerID(t), 42), res.IssuanceID)

	iss, ok := f.svc.Tracker().Issuance(res.IssuanceID)
	require.True(t, ok)
	assert.Equal(t, "derived", iss.IDStrategy)
}

func TestCreate_EncodesMetadata(t *testing.T) {
	f := newFixture(t)
	rec := metadata.Record{CurrencyCode: "USDX", Name: "Dollar X", AssetClass: "rwa"}
	want, err := metadata.Encode(rec)
	require.NoError(t, err)

	f.client.EXPECT().AccountInfo(gomock.Any(), issuerAddr).Return(&ledger.AccountInfo{}, nil)
	f.validates(1, "tesSUCCESS", &ledger.TxResult{Account: issuerAddr, Sequence: 3})

	res, err := f.svc.Create(context.Background(), CreateRequest{Account: issuerAddr, Metadata: &rec})
	require.NoError(t, err)
	require.Len(t, f.signed, 1)
	assert.Equal(t, want, f.signed[0].MPTokenMetadata)

	iss, _ := f.svc.Tracker().Issuance(res.IssuanceID)
	require.NotNil(t, iss.Metadata)
	assert.Equal(t, "Dollar X", iss.Metadata.Name)
}

func TestCreate_AccountMissing(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().AccountInfo(gomock.Any(), issuerAddr).
		Return(nil, fmt.Errorf("account_info: %w", ledger.ErrAccountNotFound))

	_, err := f.svc.Create(context.Background(), CreateRequest{Account: issuerAddr})
	assert.Equal(t, fault.CategoryPrecondition, fault.CategoryOf(err))
	assert.Empty(t, f.signed)
}

func TestCreate_InvalidFieldsNeverReachLedger(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateRequest{Account: issuerAddr, AssetScale: 20})
	var ve *fault.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "AssetScale", ve.Field)
}

func TestIssue_UpdatesTrackerAndJournal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := mpt.Derive(issuerID(t), 7)

	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "100", "90"))
	f.tokens(holderAddr, tokenJSON(id, "90", 0))
	f.validates(1, "tesSUCCESS", nil)

	res, err := f.svc.Issue(ctx, issuerAddr, holderAddr, id, "5")
	require.NoError(t, err)
	assert.Equal(t, submit.StatusValidatedSuccess, res.Outcome.Status)

	iss, _ := f.svc.Tracker().Issuance(id)
	assert.Equal(t, "95", iss.OutstandingAmount)
	h, _ := f.svc.Tracker().Holder(id, holderAddr)
	assert.Equal(t, "95", h.Balance)

	entries, err := f.journal.List(ctx, journal.Filter{Account: holderAddr})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "issue", entries[0].Kind)
	assert.Equal(t, holderAddr, entries[0].Counterparty)
}

func TestIssue_SupplyCeiling(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "100", "90"))
	f.tokens(holderAddr, tokenJSON(id, "90", 0))

	_, err := f.svc.Issue(context.Background(), issuerAddr, holderAddr, id, "11")
	var pe *fault.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "issue", pe.Operation)
	assert.Empty(t, f.signed)
}

func TestIssue_UnauthorizedHolder(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	gated := mpt.DefaultFlags.Encode(mpt.Capabilities{RequireAuth: true})
	f.issuances(issuerAddr, issuanceJSON(id, 7, gated, "", "0"))
	f.tokens(holderAddr, tokenJSON(id, "0", 0))

	_, err := f.svc.Issue(context.Background(), issuerAddr, holderAddr, id, "1")
	assert.Equal(t, fault.CategoryPrecondition, fault.CategoryOf(err))

	h, err := f.svc.HolderStatus(context.Background(), holderAddr, id)
	require.NoError(t, err)
	assert.True(t, h.Exists)
	assert.False(t, h.Authorized)
}

func TestDestroy_Preconditions(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	other := mpt.Derive(issuerID(t), 8)
	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "", "1"))

	_, err := f.svc.Destroy(context.Background(), issuerAddr, id)
	var pe *fault.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "outstanding")

	_, err = f.svc.Destroy(context.Background(), issuerAddr, other)
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "does not exist")
	assert.Empty(t, f.signed)
}

func TestDestroy_ValidatedFailureIsJournaled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := mpt.Derive(issuerID(t), 7)
	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "", "0"))
	f.validates(1, "tecHAS_OBLIGATIONS", nil)

	res, err := f.svc.Destroy(ctx, issuerAddr, id)
	var rej *fault.EngineRejection
	require.ErrorAs(t, err, &rej)
	assert.True(t, rej.Validated)
	assert.Equal(t, "tecHAS_OBLIGATIONS", rej.Code)
	require.NotNil(t, res)
	assert.Equal(t, submit.StatusValidatedFailure, res.Outcome.Status)

	iss, _ := f.svc.Tracker().Issuance(id)
	assert.False(t, iss.Destroyed)

	entries, _ := f.journal.List(ctx, journal.Filter{IssuanceID: id.String()})
	require.Len(t, entries, 1)
	assert.Equal(t, "tecHAS_OBLIGATIONS", entries[0].Code)
}

func TestDestroy_RejectedImmediately(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "", "0"))
	f.client.EXPECT().Submit(gomock.Any(), "BLOB1").
		Return(&ledger.SubmitResult{EngineResult: "temMALFORMED", Hash: hashOf(1)}, nil)

	res, err := f.svc.Destroy(context.Background(), issuerAddr, id)
	var rej *fault.EngineRejection
	require.ErrorAs(t, err, &rej)
	assert.False(t, rej.Validated)
	assert.Equal(t, submit.StatusRejected, res.Outcome.Status)
}

func TestAuthorize_RequiresGatedIssuance(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "", "0"))

	_, err := f.svc.Authorize(context.Background(), issuerAddr, id, holderAddr)
	var pe *fault.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "authorize", pe.Operation)
}

func TestAuthorizeThenRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := mpt.Derive(issuerID(t), 7)
	gated := mpt.DefaultFlags.Encode(mpt.Capabilities{RequireAuth: true})
	f.issuances(issuerAddr, issuanceJSON(id, 7, gated, "", "0"))
	f.validates(1, "tesSUCCESS", nil)
	f.validates(2, "tesSUCCESS", nil)

	_, err := f.svc.Authorize(ctx, issuerAddr, id, holderAddr)
	require.NoError(t, err)
	h, _ := f.svc.Tracker().Holder(id, holderAddr)
	assert.True(t, h.Authorized)

	res, err := f.svc.Revoke(ctx, issuerAddr, id, holderAddr)
	require.NoError(t, err)
	assert.Equal(t, tx.KindRevoke, res.Kind)
	h, _ = f.svc.Tracker().Holder(id, holderAddr)
	assert.False(t, h.Authorized)
}

func TestLock_ShortIDMatchesListing(t *testing.T) {
	f := newFixture(t)
	short := mpt.ComposeShort(issuerID(t), 7)
	lockable := mpt.DefaultFlags.Encode(mpt.Capabilities{CanLock: true})
	// No identifier fields: the listing resolves by derivation.
	f.issuances(issuerAddr, fmt.Sprintf(`{"LedgerEntryType":"MPTokenIssuance","Issuer":%q,"Sequence":7,"Flags":%d}`, issuerAddr, lockable))
	f.validates(1, "tesSUCCESS", nil)

	_, err := f.svc.Lock(context.Background(), issuerAddr, short, "")
	require.NoError(t, err)

	iss, ok := f.svc.Tracker().Issuance(short)
	require.True(t, ok)
	assert.Equal(t, lifecycle.StateLocked, iss.State())

	cached, ok := f.cache.Lookup(issuerID(t), 7)
	require.True(t, ok, "derived identifier should be cached")
	assert.Equal(t, mpt.Derive(issuerID(t), 7), cached)
}

func TestLock_NotLockable(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	f.issuances(issuerAddr, issuanceJSON(id, 7, 0, "", "0"))

	_, err := f.svc.Unlock(context.Background(), issuerAddr, id, holderAddr)
	var pe *fault.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "unlock", pe.Operation)
}

func TestClawback(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	caps := mpt.DefaultFlags.Encode(mpt.Capabilities{CanClawback: true})
	f.issuances(issuerAddr, issuanceJSON(id, 7, caps, "", "10"))
	f.tokens(holderAddr, tokenJSON(id, "10", 0))
	f.validates(1, "tesSUCCESS", nil)

	_, err := f.svc.Clawback(context.Background(), issuerAddr, holderAddr, id, "11")
	assert.Equal(t, fault.CategoryPrecondition, fault.CategoryOf(err))

	_, err = f.svc.Clawback(context.Background(), issuerAddr, holderAddr, id, "4")
	require.NoError(t, err)
	iss, _ := f.svc.Tracker().Issuance(id)
	assert.Equal(t, "6", iss.OutstandingAmount)
}

func TestOptInOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := mpt.Derive(issuerID(t), 7)

	f.validates(1, "tesSUCCESS", nil)
	res, err := f.svc.OptIn(ctx, holderAddr, id)
	require.NoError(t, err)
	assert.Equal(t, tx.KindOptIn, res.Kind)
	assert.Equal(t, holderAddr, f.signed[0].Account)

	f.tokens(holderAddr, tokenJSON(id, "3", 0))
	_, err = f.svc.OptOut(ctx, holderAddr, id)
	var pe *fault.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "balance")
	assert.Len(t, f.signed, 1)
}

func TestHolderStatus_NoTokenObject(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	f.tokens(holderAddr)

	h, err := f.svc.HolderStatus(context.Background(), holderAddr, id)
	require.NoError(t, err)
	assert.False(t, h.Exists)
	assert.False(t, h.Authorized)
	assert.Equal(t, "0", h.Balance)

	_, err = f.svc.HolderStatus(context.Background(), "rBad", id)
	assert.Error(t, err)
}

func TestHolderStatus_ShortIDResolvesIssuer(t *testing.T) {
	f := newFixture(t)
	short := mpt.ComposeShort(issuerID(t), 7)
	gated := mpt.DefaultFlags.Encode(mpt.Capabilities{RequireAuth: true})
	f.issuances(issuerAddr, issuanceJSON(short, 7, gated, "", "0"))
	f.tokens(holderAddr, tokenJSON(short, "0", mpt.DefaultFlags.HolderAuthorized))

	h, err := f.svc.HolderStatus(context.Background(), holderAddr, short)
	require.NoError(t, err)
	assert.True(t, h.Exists)
	assert.True(t, h.Authorized)
}

func TestListIssuances(t *testing.T) {
	f := newFixture(t)
	id := mpt.Derive(issuerID(t), 7)
	blob, err := metadata.Encode(metadata.Record{CurrencyCode: "GOLD", Name: "Gold"})
	require.NoError(t, err)

	f.issuances(issuerAddr,
		fmt.Sprintf(`{"LedgerEntryType":"MPTokenIssuance","mpt_issuance_id":%q,"Issuer":%q,"Sequence":7,"OutstandingAmount":"5","MPTokenMetadata":%q}`, id, issuerAddr, blob),
		fmt.Sprintf(`{"LedgerEntryType":"MPTokenIssuance","Issuer":%q,"Sequence":8,"MPTokenMetadata":"ZZ"}`, issuerAddr),
		`{"LedgerEntryType":"MPTokenIssuance","Issuer":"","Sequence":0}`,
	)

	list, err := f.svc.ListIssuances(context.Background(), issuerAddr)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "direct_field", list[0].IDStrategy)
	assert.Equal(t, lifecycle.StateIssued, list[0].State())
	require.NotNil(t, list[0].Metadata)
	assert.Equal(t, "GOLD", list[0].Metadata.CurrencyCode)

	assert.Equal(t, mpt.Derive(issuerID(t), 8), list[1].ID)
	assert.Nil(t, list[1].Metadata, "undecodable metadata is not an error")

	entries, err := f.cache.List(issuerID(t))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestQueries_MalformedAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListIssuances(ctx, "not-an-address")
	assert.Equal(t, fault.CategoryValidation, fault.CategoryOf(err))
	assert.ErrorIs(t, err, fault.ErrInvalidField)

	_, err = f.svc.ListIssuances(ctx, "")
	assert.ErrorIs(t, err, fault.ErrMissingField)

	_, err = f.svc.HolderStatus(ctx, "not-an-address", mpt.Derive(issuerID(t), 7))
	assert.Equal(t, fault.CategoryValidation, fault.CategoryOf(err))
}

func TestListIssuances_TransportError(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().AccountObjects(gomock.Any(), issuerAddr, ledger.ObjectIssuance, gomock.Any()).
		Return(nil, &fault.TransportError{Op: "account_objects", Attempts: 1, Err: ledger.ErrConnectionLost})

	_, err := f.svc.ListIssuances(context.Background(), issuerAddr)
	assert.Equal(t, fault.CategoryTransport, fault.CategoryOf(err))
	assert.True(t, errors.Is(err, ledger.ErrConnectionLost))
}

func TestExecute_NoSigner(t *testing.T) {
	f := newFixture(t)
	f.svc.signer = nil
	_, err := f.svc.OptIn(context.Background(), holderAddr, mpt.Derive(issuerID(t), 1))
	assert.ErrorIs(t, err, signer.ErrNoSigner)
}

func TestExecute_SignerFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.signer = signer.Func(func(context.Context, *tx.Transaction) (signer.SignedTx, error) {
		return signer.SignedTx{}, errors.New("device unplugged")
	})
	_, err := f.svc.OptIn(context.Background(), holderAddr, mpt.Derive(issuerID(t), 1))
	assert.ErrorContains(t, err, "device unplugged")

	entries, _ := f.journal.List(context.Background(), journal.Filter{})
	assert.Empty(t, entries, "nothing submitted, nothing journaled")
}

func TestLocalHelpers(t *testing.T) {
	id, err := DeriveIdentifier(issuerAddr, 7)
	require.NoError(t, err)
	assert.Equal(t, mpt.Derive(issuerID(t), 7), id)

	_, err = DeriveIdentifier("not-an-address", 7)
	assert.Equal(t, fault.CategoryValidation, fault.CategoryOf(err))
	_, err = DeriveIdentifier("rBAD", 7)
	assert.ErrorIs(t, err, fault.ErrInvalidField)

	blob, err := BuildMetadata(metadata.Record{CurrencyCode: "ABC", Name: "Alpha"})
	require.NoError(t, err)
	rec, ok := ParseMetadata(blob)
	require.True(t, ok)
	assert.Equal(t, "Alpha", rec.Name)

	minor, err := ToMinorUnits("1.25", 2)
	require.NoError(t, err)
	assert.Equal(t, "125", minor)
	display, err := ToDisplay(minor, 2)
	require.NoError(t, err)
	assert.Equal(t, "1.25", display)
}

func TestTransactionStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mpt.Derive(issuerID(t), 4)

	f.client.EXPECT().Tx(gomock.Any(), hashOf(1)).Return(&ledger.TxResult{
		Hash:            hashOf(1),
		TransactionType: tx.TypeIssuanceCreate,
		Account:         issuerAddr,
		Validated:       true,
		LedgerIndex:     812,
		Meta:            &mpt.TransactionMeta{TransactionResult: "tesSUCCESS", MPTokenIssuanceID: created.String()},
	}, nil)
	f.client.EXPECT().Tx(gomock.Any(), hashOf(2)).Return(nil, fmt.Errorf("tx: %w", ledger.ErrTxNotFound))

	st, err := f.svc.TransactionStatus(ctx, hashOf(1))
	require.NoError(t, err)
	assert.True(t, st.Found)
	assert.True(t, st.Validated)
	assert.Equal(t, "tesSUCCESS", st.Code)
	assert.Equal(t, uint32(812), st.LedgerIndex)
	assert.Equal(t, created, st.IssuanceID)

	st, err = f.svc.TransactionStatus(ctx, hashOf(2))
	require.NoError(t, err)
	assert.False(t, st.Found)

	_, err = f.svc.TransactionStatus(ctx, "XYZ")
	assert.Equal(t, fault.CategoryValidation, fault.CategoryOf(err))
}
