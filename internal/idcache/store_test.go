package idcache

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Klingon-tech/mptkit/internal/storage"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

var (
	issuerA = types.AccountID{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11, 0x22, 0x33}
	issuerB = types.AccountID{0xB5}
)

func TestStore_PutLookup(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())

	_, ok := s.Lookup(issuerA, 42)
	assert.False(t, ok, "empty cache should miss")

	id := mpt.Derive(issuerA, 42)
	require.NoError(t, s.Put(issuerA, 42, id))

	got, ok := s.Lookup(issuerA, 42)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = s.Lookup(issuerA, 43)
	assert.False(t, ok)
	_, ok = s.Lookup(issuerB, 42)
	assert.False(t, ok)

	_, err := s.Get(issuerB, 42)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStore_ShortIDsSurvive(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())
	short := mpt.ComposeShort(issuerA, 7)
	require.NoError(t, s.Put(issuerA, 7, short))

	got, ok := s.Lookup(issuerA, 7)
	require.True(t, ok)
	assert.Equal(t, types.KindShort, got.Kind())
	assert.Equal(t, short.String(), got.String())
}

func TestStore_RejectsZeroID(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())
	assert.Error(t, s.Put(issuerA, 1, types.IssuanceID{}))
}

func TestStore_ListAndDelete(t *testing.T) {
	s := New(storage.NewMemory(), zerolog.Nop())
	for _, seq := range []uint32{3, 1, 2} {
		require.NoError(t, s.Put(issuerA, seq, mpt.Derive(issuerA, seq)))
	}
	require.NoError(t, s.Put(issuerB, 1, mpt.Derive(issuerB, 1)))

	entries, err := s.List(issuerA)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, uint32(i+1), e.Sequence, "entries are in sequence order")
		assert.Equal(t, mpt.Derive(issuerA, e.Sequence), e.ID)
	}

	require.NoError(t, s.Delete(issuerA, 2))
	require.NoError(t, s.Delete(issuerA, 99))
	entries, err = s.List(issuerA)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_SkipsCorruptValues(t *testing.T) {
	db := storage.NewMemory()
	s := New(db, zerolog.Nop())
	require.NoError(t, db.Put(entryKey(issuerA, 5), []byte("not-an-id")))
	require.NoError(t, s.Put(issuerA, 6, mpt.Derive(issuerA, 6)))

	_, ok := s.Lookup(issuerA, 5)
	assert.False(t, ok)

	entries, err := s.List(issuerA)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(6), entries[0].Sequence)
}

func TestStore_FeedsResolver(t *testing.T) {
	db, err := storage.NewBadgerInMemory()
	require.NoError(t, err)
	defer db.Close()

	s := New(storage.NewPrefixDB(db, []byte("testnet/")), zerolog.Nop())
	cached := mpt.ComposeShort(issuerA, 9)
	require.NoError(t, s.Put(issuerA, 9, cached))

	entry := &mpt.IssuanceEntry{Issuer: issuerA.String(), Sequence: 9}
	got, strategy, err := mpt.ExtractFromListing(entry, s)
	require.NoError(t, err)
	assert.Equal(t, mpt.StrategyCache, strategy)
	assert.Equal(t, cached, got)
}

func TestStore_PutManyAndClear(t *testing.T) {
	db, err := storage.NewBadgerInMemory()
	require.NoError(t, err)
	defer db.Close()
	s := New(db, zerolog.Nop())

	require.NoError(t, s.PutMany([]Entry{
		{Issuer: issuerA, Sequence: 1, ID: mpt.Derive(issuerA, 1)},
		{Issuer: issuerA, Sequence: 2, ID: mpt.ComposeShort(issuerA, 2)},
		{Issuer: issuerB, Sequence: 5},
	}))

	entries, err := s.List(issuerA)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	_, ok := s.Lookup(issuerB, 5)
	assert.False(t, ok, "zero identifiers are not written")

	require.NoError(t, db.Put([]byte("other"), []byte("x")))
	require.NoError(t, s.Clear())
	entries, err = s.List(issuerA)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = db.Get([]byte("other"))
	assert.NoError(t, err, "Clear only touches cache keys")
}
