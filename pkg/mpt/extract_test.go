package mpt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/mptkit/pkg/types"
)

var (
	longA  = strings.Repeat("A1", 32)
	longB  = strings.Repeat("B2", 32)
	shortC = strings.Repeat("C3", 24)
)

func TestExtractFromCreationResult_Priority(t *testing.T) {
	tests := []struct {
		name     string
		meta     string
		want     string
		strategy Strategy
	}{
		{
			name: "direct meta field wins",
			meta: `{"mpt_issuance_id":"` + shortC + `","AffectedNodes":[
				{"CreatedNode":{"LedgerEntryType":"MPTokenIssuance","LedgerIndex":"` + longA + `"}}]}`,
			want:     shortC,
			strategy: StrategyMetaField,
		},
		{
			name: "created node ledger index",
			meta: `{"AffectedNodes":[
				{"ModifiedNode":{"LedgerEntryType":"AccountRoot","LedgerIndex":"` + longB + `"}},
				{"CreatedNode":{"LedgerEntryType":"DirectoryNode","LedgerIndex":"` + longB + `"}},
				{"CreatedNode":{"LedgerEntryType":"MPTokenIssuance","LedgerIndex":"` + longA + `"}}]}`,
			want:     longA,
			strategy: StrategyCreatedNode,
		},
		{
			name: "created nodes list with lowercase index",
			meta: `{"CreatedNodes":[
				{"CreatedNode":{"LedgerEntryType":"MPTokenIssuance","index":"` + longB + `"}}]}`,
			want:     longB,
			strategy: StrategyCreatedNode,
		},
		{
			name: "new fields fallback",
			meta: `{"AffectedNodes":[
				{"CreatedNode":{"LedgerEntryType":"MPTokenIssuance","LedgerIndex":"bad",
				 "NewFields":{"MPTokenIssuanceID":"` + shortC + `","Sequence":7}}}]}`,
			want:     shortC,
			strategy: StrategyNewFields,
		},
		{
			name: "malformed direct field skipped",
			meta: `{"mpt_issuance_id":"ABCD","AffectedNodes":[
				{"CreatedNode":{"LedgerEntryType":"MPTokenIssuance","LedgerIndex":"` + longA + `"}}]}`,
			want:     longA,
			strategy: StrategyCreatedNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta TransactionMeta
			require.NoError(t, json.Unmarshal([]byte(tt.meta), &meta))

			id, s, err := ExtractFromCreationResult(&meta)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
			assert.Equal(t, tt.strategy, s)
		})
	}
}

func TestExtractFromCreationResult_NotFound(t *testing.T) {
	metas := []*TransactionMeta{
		nil,
		{},
		{AffectedNodes: []AffectedNode{{CreatedNode: &LedgerNode{LedgerEntryType: "Offer", LedgerIndex: longA}}}},
		{AffectedNodes: []AffectedNode{{ModifiedNode: &LedgerNode{LedgerEntryType: EntryTypeIssuance, LedgerIndex: longA}}}},
	}
	for i, m := range metas {
		_, _, err := ExtractFromCreationResult(m)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("case %d: error = %v, want ErrNotFound", i, err)
		}
	}
}

func TestExtractFromListing_Priority(t *testing.T) {
	issuer := testIssuer(t)
	cached := types.MustParseIssuanceID(longB)
	cache := SequenceMap{42: cached}

	tests := []struct {
		name     string
		entry    IssuanceEntry
		cache    Lookup
		want     types.IssuanceID
		strategy Strategy
	}{
		{
			name:     "direct field",
			entry:    IssuanceEntry{MPTIssuanceID: shortC, Index: longA, Issuer: issuer.String(), Sequence: 42},
			cache:    cache,
			want:     types.MustParseIssuanceID(shortC),
			strategy: StrategyDirectField,
		},
		{
			name:     "index",
			entry:    IssuanceEntry{Index: longA, Issuer: issuer.String(), Sequence: 42},
			cache:    cache,
			want:     types.MustParseIssuanceID(longA),
			strategy: StrategyIndex,
		},
		{
			name:     "wrong size direct field falls through to cache",
			entry:    IssuanceEntry{MPTIssuanceID: "ABCDEF", Issuer: issuer.String(), Sequence: 42},
			cache:    cache,
			want:     cached,
			strategy: StrategyCache,
		},
		{
			name:     "derived",
			entry:    IssuanceEntry{Issuer: issuer.String(), Sequence: 42},
			cache:    SequenceMap{},
			want:     Derive(issuer, 42),
			strategy: StrategyDerived,
		},
		{
			name:     "derived with nil cache",
			entry:    IssuanceEntry{Issuer: issuer.String(), Sequence: 42},
			want:     Derive(issuer, 42),
			strategy: StrategyDerived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, s, err := ExtractFromListing(&tt.entry, tt.cache)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
			assert.Equal(t, tt.strategy, s)
		})
	}
}

func TestExtractFromListing_NotFound(t *testing.T) {
	entries := []*IssuanceEntry{
		nil,
		{},
		{Issuer: "garbage", Sequence: 5},
		{Issuer: testIssuer(t).String()},
	}
	for i, e := range entries {
		_, _, err := ExtractFromListing(e, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("case %d: error = %v, want ErrNotFound", i, err)
		}
	}
}

// Create-then-derive: a listing carrying only issuer and sequence resolves
// to the derived identifier.
func TestCreateThenDerive(t *testing.T) {
	issuer := testIssuer(t)
	want := Derive(issuer, 42)
	require.Equal(t, want, Derive(issuer, 42))

	r := NewResolver(zerolog.Nop())
	got, _, err := r.FromListing(&IssuanceEntry{Issuer: issuer.String(), Sequence: 42}, SequenceMap{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got.String(), 64)
}

func TestResolver_FromCreationResult(t *testing.T) {
	r := NewResolver(zerolog.Nop())
	_, _, err := r.FromCreationResult(&TransactionMeta{})
	assert.ErrorIs(t, err, ErrNotFound)

	id, s, err := r.FromCreationResult(&TransactionMeta{MPTokenIssuanceID: longA})
	require.NoError(t, err)
	assert.Equal(t, longA, id.String())
	assert.Equal(t, StrategyMetaField, s)
}
