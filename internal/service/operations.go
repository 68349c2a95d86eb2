package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/internal/lifecycle"
	"github.com/Klingon-tech/mptkit/internal/submit"
	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// CreateRequest describes a new issuance.
type CreateRequest struct {
	Account      string
	AssetScale   int
	Capabilities mpt.Capabilities
	TransferFee  int
	// MaximumAmount is in minor units. Empty means no ceiling.
	MaximumAmount string
	// Metadata is encoded with the service codec. MetadataHex is used
	// as-is when Metadata is nil.
	Metadata    *metadata.Record
	MetadataHex string
}

// Create creates an issuance. On validated success the result carries the
// new identifier, resolved from the transaction metadata or, failing that,
// derived from the creating transaction's account and sequence.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	blob := req.MetadataHex
	if req.Metadata != nil {
		var err error
		if blob, err = s.codec.Encode(*req.Metadata); err != nil {
			return nil, err
		}
	}
	t, err := s.builder.CreateIssuance(tx.CreateParams{
		Account:       req.Account,
		AssetScale:    req.AssetScale,
		Capabilities:  req.Capabilities,
		TransferFee:   req.TransferFee,
		MaximumAmount: req.MaximumAmount,
		Metadata:      blob,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.AccountInfo(ctx, req.Account); err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, &fault.PreconditionError{
				Operation: string(tx.KindCreate),
				Reason:    fmt.Sprintf("account %s does not exist", req.Account),
			}
		}
		return nil, err
	}
	return s.execute(ctx, t, types.IssuanceID{})
}

// Authorize lets holder hold an issuance that requires authorization.
func (s *Service) Authorize(ctx context.Context, issuer string, id types.IssuanceID, holder string) (*Result, error) {
	return s.authorize(ctx, issuer, id, holder, false)
}

// Revoke withdraws a holder's authorization.
func (s *Service) Revoke(ctx context.Context, issuer string, id types.IssuanceID, holder string) (*Result, error) {
	return s.authorize(ctx, issuer, id, holder, true)
}

func (s *Service) authorize(ctx context.Context, issuer string, id types.IssuanceID, holder string, revoke bool) (*Result, error) {
	build, kind := s.builder.AuthorizeHolder, tx.KindAuthorize
	if revoke {
		build, kind = s.builder.RevokeAuthorization, tx.KindRevoke
	}
	t, err := build(issuer, id, holder)
	if err != nil {
		return nil, err
	}
	iss, err := s.issuance(ctx, issuer, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckAuthorize(kind, iss); err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// OptIn creates holder's token object for an issuance.
func (s *Service) OptIn(ctx context.Context, holder string, id types.IssuanceID) (*Result, error) {
	t, err := s.builder.OptIn(holder, id)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// OptOut removes holder's token object. The balance must be zero.
func (s *Service) OptOut(ctx context.Context, holder string, id types.IssuanceID) (*Result, error) {
	t, err := s.builder.OptOut(holder, id)
	if err != nil {
		return nil, err
	}
	h, err := s.HolderStatus(ctx, holder, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckOptOut(h); err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// Issue sends minor units of a token from its issuer to holder.
func (s *Service) Issue(ctx context.Context, issuer, holder string, id types.IssuanceID, minor string) (*Result, error) {
	t, err := s.builder.Issue(issuer, holder, id, minor)
	if err != nil {
		return nil, err
	}
	iss, err := s.issuance(ctx, issuer, id)
	if err != nil {
		return nil, err
	}
	h, err := s.HolderStatus(ctx, holder, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckIssue(iss, h, minor); err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// SetLock locks or unlocks an issuance, or only one holder's balance when
// holder is not empty.
func (s *Service) SetLock(ctx context.Context, issuer string, id types.IssuanceID, holder string, lock bool) (*Result, error) {
	t, err := s.builder.SetLockState(issuer, id, holder, lock)
	if err != nil {
		return nil, err
	}
	iss, err := s.issuance(ctx, issuer, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckLock(t.Op, iss); err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// Lock is SetLock(lock=true).
func (s *Service) Lock(ctx context.Context, issuer string, id types.IssuanceID, holder string) (*Result, error) {
	return s.SetLock(ctx, issuer, id, holder, true)
}

// Unlock is SetLock(lock=false).
func (s *Service) Unlock(ctx context.Context, issuer string, id types.IssuanceID, holder string) (*Result, error) {
	return s.SetLock(ctx, issuer, id, holder, false)
}

// Clawback takes minor units back from holder.
func (s *Service) Clawback(ctx context.Context, issuer, holder string, id types.IssuanceID, minor string) (*Result, error) {
	t, err := s.builder.Clawback(issuer, holder, id, minor)
	if err != nil {
		return nil, err
	}
	iss, err := s.issuance(ctx, issuer, id)
	if err != nil {
		return nil, err
	}
	h, err := s.HolderStatus(ctx, holder, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckClawback(iss, h, minor); err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// Destroy removes an issuance with nothing outstanding.
func (s *Service) Destroy(ctx context.Context, issuer string, id types.IssuanceID) (*Result, error) {
	t, err := s.builder.DestroyIssuance(issuer, id)
	if err != nil {
		return nil, err
	}
	iss, err := s.issuance(ctx, issuer, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckDestroy(iss); err != nil {
		return nil, err
	}
	return s.execute(ctx, t, id)
}

// recordCreated resolves the identifier of a validated create and makes it
// known to the cache and the tracker. The zero ID is returned when it
// cannot be resolved.
func (s *Service) recordCreated(t *tx.Transaction, out *submit.FinalOutcome) types.IssuanceID {
	res := out.Tx
	if res == nil {
		s.log.Warn().Str("tx", out.Hash).Msg("Create validated without transaction details, identifier unknown")
		return types.IssuanceID{}
	}

	id, strategy, err := s.resolver.FromCreationResult(res.Meta)
	issuer, addrErr := types.DecodeAddress(res.Account)
	if err != nil {
		if addrErr != nil {
			s.log.Warn().Err(addrErr).Str("tx", out.Hash).Msg("Issuance identifier not resolvable")
			return types.IssuanceID{}
		}
		// The ledger keys the issuance by the creating transaction's sequence.
		id, strategy = mpt.Derive(issuer, res.Sequence), mpt.StrategyDerived
		s.log.Info().
			Str("tx", out.Hash).
			Str("id", id.String()).
			Str("strategy", strategy.String()).
			Msg("Issuance identifier derived from account and sequence")
	}

	if s.cache != nil && addrErr == nil {
		if err := s.cache.Put(issuer, res.Sequence, id); err != nil {
			s.log.Warn().Err(err).Str("id", id.String()).Msg("Identifier cache write failed")
		}
	}

	iss := &lifecycle.Issuance{
		ID:                id,
		IDStrategy:        strategy.String(),
		Issuer:            t.Account,
		Sequence:          res.Sequence,
		Flags:             t.Flags,
		Capabilities:      s.builder.Flags().Decode(t.Flags),
		MaximumAmount:     t.MaximumAmount,
		OutstandingAmount: "0",
		MetadataHex:       t.MPTokenMetadata,
	}
	if t.AssetScale != nil {
		iss.AssetScale = *t.AssetScale
	}
	if t.TransferFee != nil {
		iss.TransferFee = *t.TransferFee
	}
	if t.MPTokenMetadata != "" {
		iss.Metadata, _ = s.codec.Decode(t.MPTokenMetadata)
	}
	s.tracker.Track(iss)
	return id
}
