package service

import (
	"context"
	"errors"

	"github.com/Klingon-tech/mptkit/internal/idcache"
	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/internal/lifecycle"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// ListIssuances returns every issuance owned by issuer. Entries whose
// identifier cannot be resolved are skipped; undecodable metadata leaves
// Metadata nil.
func (s *Service) ListIssuances(ctx context.Context, issuer string) ([]*lifecycle.Issuance, error) {
	if err := checkAddress("issuer", issuer); err != nil {
		return nil, err
	}
	entries, err := ledger.ListIssuances(ctx, s.ledger, issuer)
	if err != nil {
		return nil, err
	}

	out := make([]*lifecycle.Issuance, 0, len(entries))
	var learned []idcache.Entry
	for i := range entries {
		e := &entries[i]
		id, strategy, err := s.resolver.FromListing(e, s.lookup())
		if err != nil {
			s.log.Warn().Uint32("sequence", e.Sequence).Str("issuer", e.Issuer).Msg("Skipping issuance without identifier")
			continue
		}
		iss := lifecycle.FromEntry(e, id, s.builder.Flags(), s.codec)
		iss.IDStrategy = strategy.String()
		if strategy != mpt.StrategyCache {
			if issuerID, err := types.DecodeAddress(e.Issuer); err == nil {
				learned = append(learned, idcache.Entry{Issuer: issuerID, Sequence: e.Sequence, ID: id})
			}
		}
		s.tracker.Track(iss)
		out = append(out, iss)
	}
	s.remember(learned)
	s.log.Debug().Str("issuer", issuer).Int("count", len(out)).Int("cached", len(learned)).Msg("Listed issuances")
	return out, nil
}

// HolderStatus reports holder's relationship with an issuance. A holder
// without a token object is returned with Exists false.
func (s *Service) HolderStatus(ctx context.Context, holder string, id types.IssuanceID) (*lifecycle.Holder, error) {
	if err := checkAddress("holder", holder); err != nil {
		return nil, err
	}
	requireAuth := s.requiresAuth(ctx, id)

	tokens, err := ledger.ListTokens(ctx, s.ledger, holder)
	if err != nil {
		return nil, err
	}
	h := &lifecycle.Holder{Address: holder, IssuanceID: id, Balance: "0"}
	for i := range tokens {
		tok := &tokens[i]
		tokID, err := types.ParseIssuanceID(tok.MPTokenIssuanceID)
		if err != nil || !s.sameIssuance(tokID, id) {
			continue
		}
		h = lifecycle.HolderFromEntry(tok, id, requireAuth, s.builder.Flags())
		h.Address = holder
		break
	}
	s.tracker.TrackHolder(h)
	return h, nil
}

// issuance fetches the current state of one of issuer's issuances. A nil
// issuance with a nil error means issuer has no such issuance.
func (s *Service) issuance(ctx context.Context, issuer string, id types.IssuanceID) (*lifecycle.Issuance, error) {
	list, err := s.ListIssuances(ctx, issuer)
	if err != nil {
		return nil, err
	}
	for _, iss := range list {
		if matches(id, iss) {
			if iss.ID != id {
				// Track under the form the caller uses so outcomes apply to it.
				cp := *iss
				cp.ID = id
				s.tracker.Track(&cp)
				return &cp, nil
			}
			return iss, nil
		}
	}
	return nil, nil
}

// requiresAuth reports whether the issuance gates holders. Unknown
// issuances whose issuer cannot be recovered from the identifier are
// treated as ungated.
func (s *Service) requiresAuth(ctx context.Context, id types.IssuanceID) bool {
	if iss, ok := s.tracker.Issuance(id); ok {
		return iss.Capabilities.RequireAuth
	}
	if issuer, _, ok := mpt.SplitShort(id); ok {
		iss, err := s.issuance(ctx, issuer.String(), id)
		if err == nil && iss != nil {
			return iss.Capabilities.RequireAuth
		}
	}
	s.log.Debug().Str("id", id.String()).Msg("Issuance unknown, assuming no authorization requirement")
	return false
}

// sameIssuance compares identifiers, accepting the short and long forms of
// one tracked issuance as equal.
func (s *Service) sameIssuance(a, b types.IssuanceID) bool {
	if a == b {
		return true
	}
	if iss, ok := s.tracker.Issuance(b); ok {
		return matches(a, iss)
	}
	if iss, ok := s.tracker.Issuance(a); ok {
		return matches(b, iss)
	}
	return false
}

// matches reports whether id names iss in either identifier form.
func matches(id types.IssuanceID, iss *lifecycle.Issuance) bool {
	if iss.ID == id {
		return true
	}
	issuer, err := types.DecodeAddress(iss.Issuer)
	if err != nil {
		return false
	}
	switch id.Kind() {
	case types.KindShort:
		return id == mpt.ComposeShort(issuer, iss.Sequence)
	case types.KindLong:
		return id == mpt.Derive(issuer, iss.Sequence)
	}
	return false
}

func (s *Service) lookup() mpt.Lookup {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

func (s *Service) remember(entries []idcache.Entry) {
	if s.cache == nil || len(entries) == 0 {
		return
	}
	if err := s.cache.PutMany(entries); err != nil {
		s.log.Warn().Err(err).Int("count", len(entries)).Msg("Identifier cache write failed")
	}
}

// TxStatus is what the ledger currently knows about a submitted transaction.
type TxStatus struct {
	Hash        string           `json:"hash"`
	Found       bool             `json:"found"`
	Validated   bool             `json:"validated"`
	Code        string           `json:"code,omitempty"`
	LedgerIndex uint32           `json:"ledger_index,omitempty"`
	Type        string           `json:"type,omitempty"`
	Account     string           `json:"account,omitempty"`
	IssuanceID  types.IssuanceID `json:"issuance_id,omitzero"`
}

// TransactionStatus looks up a transaction by hash, typically one whose
// outcome was ambiguous. A hash the server has never seen is reported with
// Found false rather than as an error.
func (s *Service) TransactionStatus(ctx context.Context, hash string) (*TxStatus, error) {
	h, err := types.HexToHash(hash)
	if err != nil {
		return nil, fault.Invalid("hash", "%v", err)
	}
	st := &TxStatus{Hash: h.String()}
	res, err := s.ledger.Tx(ctx, st.Hash)
	if errors.Is(err, ledger.ErrTxNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	st.Found = true
	st.Validated = res.Validated
	st.Code = res.Result()
	st.LedgerIndex = res.LedgerIndex
	st.Type = res.TransactionType
	st.Account = res.Account
	if st.Validated && st.Type == tx.TypeIssuanceCreate && fault.IsSuccess(st.Code) {
		if id, _, err := s.resolver.FromCreationResult(res.Meta); err == nil {
			st.IssuanceID = id
		}
	}
	return st, nil
}

func checkAddress(field, addr string) error {
	if addr == "" {
		return fault.MissingField(field)
	}
	if _, err := types.DecodeAddress(addr); err != nil {
		return &fault.ValidationError{Field: field, Reason: err.Error(), Err: fault.ErrInvalidField}
	}
	return nil
}
