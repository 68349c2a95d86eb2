package mpt

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/mptkit/pkg/types"
)

// ErrNotFound is returned when no source yields a well-formed identifier.
// Callers must not guess in that case.
var ErrNotFound = errors.New("issuance id not found")

// Strategy names the source an identifier was resolved from.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyMetaField
	StrategyCreatedNode
	StrategyNewFields
	StrategyDirectField
	StrategyIndex
	StrategyCache
	StrategyDerived
)

func (s Strategy) String() string {
	switch s {
	case StrategyMetaField:
		return "meta_field"
	case StrategyCreatedNode:
		return "created_node_index"
	case StrategyNewFields:
		return "new_fields"
	case StrategyDirectField:
		return "direct_field"
	case StrategyIndex:
		return "index"
	case StrategyCache:
		return "cache"
	case StrategyDerived:
		return "derived"
	default:
		return "none"
	}
}

// Lookup is an optional table of identifiers already known to the caller.
type Lookup interface {
	Lookup(issuer types.AccountID, sequence uint32) (types.IssuanceID, bool)
}

// SequenceMap is a Lookup keyed by sequence only, for callers that track a
// single issuer.
type SequenceMap map[uint32]types.IssuanceID

// Lookup implements Lookup.
func (m SequenceMap) Lookup(_ types.AccountID, sequence uint32) (types.IssuanceID, bool) {
	id, ok := m[sequence]
	return id, ok
}

// Resolver resolves identifiers from heterogeneous ledger responses and logs
// the strategy that succeeded.
type Resolver struct {
	Log zerolog.Logger
}

// NewResolver creates a resolver that logs to l.
func NewResolver(l zerolog.Logger) *Resolver {
	return &Resolver{Log: l}
}

// FromCreationResult resolves the identifier of a freshly created issuance
// from transaction metadata. Sources, in order: a direct identifier field on
// the metadata, the key of a created MPTokenIssuance node, an identifier
// field inside that node's NewFields.
func (r *Resolver) FromCreationResult(meta *TransactionMeta) (types.IssuanceID, Strategy, error) {
	id, s, err := ExtractFromCreationResult(meta)
	if err != nil {
		r.Log.Debug().Msg("issuance id not present in creation result")
		return id, s, err
	}
	r.Log.Debug().Str("strategy", s.String()).Str("id", id.String()).Msg("resolved issuance id")
	return id, s, nil
}

// FromListing resolves the identifier of a listed issuance. Sources, in
// order: a direct identifier field, the object key, the cache, derivation
// from issuer and sequence.
func (r *Resolver) FromListing(entry *IssuanceEntry, cache Lookup) (types.IssuanceID, Strategy, error) {
	id, s, err := ExtractFromListing(entry, cache)
	if err != nil {
		r.Log.Debug().Uint32("sequence", entry.Sequence).Msg("issuance id not resolvable from listing")
		return id, s, err
	}
	r.Log.Debug().
		Str("strategy", s.String()).
		Str("id", id.String()).
		Uint32("sequence", entry.Sequence).
		Msg("resolved issuance id")
	return id, s, nil
}

// ExtractFromCreationResult is FromCreationResult without logging.
func ExtractFromCreationResult(meta *TransactionMeta) (types.IssuanceID, Strategy, error) {
	if meta == nil {
		return types.IssuanceID{}, StrategyNone, ErrNotFound
	}
	for _, c := range []string{meta.MPTIssuanceID, meta.MPTokenIssuanceID} {
		if id, ok := parse(c); ok {
			return id, StrategyMetaField, nil
		}
	}

	created := createdIssuances(meta)
	for _, n := range created {
		if id, ok := parse(n.key()); ok {
			return id, StrategyCreatedNode, nil
		}
	}
	for _, n := range created {
		for _, field := range []string{"mpt_issuance_id", "MPTokenIssuanceID"} {
			if id, ok := parse(stringField(n.NewFields, field)); ok {
				return id, StrategyNewFields, nil
			}
		}
	}
	return types.IssuanceID{}, StrategyNone, ErrNotFound
}

// ExtractFromListing is FromListing without logging. cache may be nil.
func ExtractFromListing(entry *IssuanceEntry, cache Lookup) (types.IssuanceID, Strategy, error) {
	if entry == nil {
		return types.IssuanceID{}, StrategyNone, ErrNotFound
	}
	for _, c := range []string{entry.MPTIssuanceID, entry.MPTokenIssuanceID} {
		if id, ok := parse(c); ok {
			return id, StrategyDirectField, nil
		}
	}
	if id, ok := parse(entry.Index); ok {
		return id, StrategyIndex, nil
	}

	issuer, issuerErr := types.ParseAccount(entry.Issuer)
	if cache != nil && entry.Sequence != 0 {
		if id, ok := cache.Lookup(issuer, entry.Sequence); ok && !id.IsZero() {
			return id, StrategyCache, nil
		}
	}
	if issuerErr == nil && entry.Sequence != 0 {
		return Derive(issuer, entry.Sequence), StrategyDerived, nil
	}
	return types.IssuanceID{}, StrategyNone, ErrNotFound
}

func createdIssuances(meta *TransactionMeta) []*LedgerNode {
	var out []*LedgerNode
	for _, list := range [][]AffectedNode{meta.AffectedNodes, meta.CreatedNodes} {
		for _, an := range list {
			if an.CreatedNode != nil && an.CreatedNode.LedgerEntryType == EntryTypeIssuance {
				out = append(out, an.CreatedNode)
			}
		}
	}
	return out
}

// parse accepts only well-formed candidates; anything else is skipped so a
// wrong-length value is never returned.
func parse(s string) (types.IssuanceID, bool) {
	if !IsWellFormed(s) {
		return types.IssuanceID{}, false
	}
	id, err := types.ParseIssuanceID(s)
	return id, err == nil
}
