// Package idcache persists resolved issuance identifiers keyed by the
// issuer account and the creating sequence.
package idcache

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/mptkit/internal/storage"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

var prefixID = []byte("id/") // id/<issuer(20)><seq(4 BE)> -> issuance id text

const keyLen = 3 + types.AccountIDSize + 4

// Entry is one cached pair.
type Entry struct {
	Issuer   types.AccountID
	Sequence uint32
	ID       types.IssuanceID
}

// Store is a persistent (issuer, sequence) -> identifier table. It satisfies
// mpt.Lookup.
type Store struct {
	db  storage.DB
	log zerolog.Logger
}

// New creates a cache over db.
func New(db storage.DB, l zerolog.Logger) *Store {
	return &Store{db: db, log: l}
}

// Put records the identifier of an issuance.
func (s *Store) Put(issuer types.AccountID, sequence uint32, id types.IssuanceID) error {
	if id.IsZero() {
		return fmt.Errorf("idcache put: empty issuance id")
	}
	if err := s.db.Put(entryKey(issuer, sequence), []byte(id.String())); err != nil {
		return fmt.Errorf("idcache put: %w", err)
	}
	return nil
}

// PutMany records several identifiers in one batch. Entries with an empty
// identifier are skipped.
func (s *Store) PutMany(entries []Entry) error {
	pairs := make([]storage.Pair, 0, len(entries))
	for _, e := range entries {
		if e.ID.IsZero() {
			continue
		}
		pairs = append(pairs, storage.Pair{Key: entryKey(e.Issuer, e.Sequence), Value: []byte(e.ID.String())})
	}
	if err := s.db.PutBatch(pairs); err != nil {
		return fmt.Errorf("idcache put: %w", err)
	}
	return nil
}

// Get returns the cached identifier or storage.ErrNotFound.
func (s *Store) Get(issuer types.AccountID, sequence uint32) (types.IssuanceID, error) {
	data, err := s.db.Get(entryKey(issuer, sequence))
	if err != nil {
		return types.IssuanceID{}, fmt.Errorf("idcache get: %w", err)
	}
	id, err := types.ParseIssuanceID(string(data))
	if err != nil {
		return types.IssuanceID{}, fmt.Errorf("idcache get: %w", err)
	}
	return id, nil
}

// Lookup implements mpt.Lookup. Read failures and corrupt values count as a
// miss so the resolver falls through to derivation.
func (s *Store) Lookup(issuer types.AccountID, sequence uint32) (types.IssuanceID, bool) {
	id, err := s.Get(issuer, sequence)
	if err != nil {
		return types.IssuanceID{}, false
	}
	return id, true
}

// Delete removes a pair. Deleting a missing pair is not an error.
func (s *Store) Delete(issuer types.AccountID, sequence uint32) error {
	return s.db.Delete(entryKey(issuer, sequence))
}

// Clear removes every cached pair.
func (s *Store) Clear() error {
	if err := s.db.DropPrefix(prefixID); err != nil {
		return fmt.Errorf("idcache clear: %w", err)
	}
	return nil
}

// ForEach visits every well-formed entry in key order.
func (s *Store) ForEach(fn func(Entry) error) error {
	return s.db.ForEach(prefixID, func(key, value []byte) error {
		if len(key) != keyLen {
			return nil
		}
		id, err := types.ParseIssuanceID(string(value))
		if err != nil {
			s.log.Warn().Hex("key", key).Msg("Skipping corrupt cache entry")
			return nil
		}
		var e Entry
		copy(e.Issuer[:], key[len(prefixID):])
		e.Sequence = binary.BigEndian.Uint32(key[len(prefixID)+types.AccountIDSize:])
		e.ID = id
		return fn(e)
	})
}

// List returns the cached entries for one issuer.
func (s *Store) List(issuer types.AccountID) ([]Entry, error) {
	entries := []Entry{}
	err := s.ForEach(func(e Entry) error {
		if e.Issuer == issuer {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func entryKey(issuer types.AccountID, sequence uint32) []byte {
	key := make([]byte, keyLen)
	copy(key, prefixID)
	copy(key[len(prefixID):], issuer[:])
	binary.BigEndian.PutUint32(key[len(prefixID)+types.AccountIDSize:], sequence)
	return key
}
