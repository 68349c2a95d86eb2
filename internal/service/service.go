// Package service exposes the token lifecycle operations: each one builds a
// transaction, checks it against the current issuance state, has it signed,
// submits it and records the outcome.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/mptkit/internal/idcache"
	"github.com/Klingon-tech/mptkit/internal/journal"
	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/internal/lifecycle"
	klog "github.com/Klingon-tech/mptkit/internal/log"
	"github.com/Klingon-tech/mptkit/internal/signer"
	"github.com/Klingon-tech/mptkit/internal/submit"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// Deps are the collaborators of a Service. Ledger, Signer and Pipeline are
// required for operations; Cache and Journal may be nil.
type Deps struct {
	Ledger   ledger.Client
	Signer   signer.Signer
	Pipeline *submit.Pipeline
	Builder  *tx.Builder
	Codec    *metadata.Codec
	Tracker  *lifecycle.Tracker
	Cache    *idcache.Store
	Journal  journal.Store
	Log      zerolog.Logger
}

// Service runs lifecycle operations against one ledger.
type Service struct {
	ledger   ledger.Client
	signer   signer.Signer
	pipeline *submit.Pipeline
	builder  *tx.Builder
	codec    *metadata.Codec
	tracker  *lifecycle.Tracker
	cache    *idcache.Store
	journal  journal.Store
	resolver *mpt.Resolver
	log      zerolog.Logger

	// closers run on Close, last opened first.
	closers []func() error
}

// New creates a service. Missing builder, codec and tracker get defaults.
func New(d Deps) *Service {
	s := &Service{
		ledger:   d.Ledger,
		signer:   d.Signer,
		pipeline: d.Pipeline,
		builder:  d.Builder,
		codec:    d.Codec,
		tracker:  d.Tracker,
		cache:    d.Cache,
		journal:  d.Journal,
		resolver: mpt.NewResolver(d.Log),
		log:      d.Log,
	}
	if s.builder == nil {
		s.builder = tx.NewBuilder(mpt.DefaultFlags)
	}
	if s.codec == nil {
		s.codec = metadata.NewCodec(false, d.Log)
	}
	if s.tracker == nil {
		s.tracker = lifecycle.NewTracker()
	}
	return s
}

// Result is what an operation entry point returns once the transaction was
// handed to the ledger.
type Result struct {
	OperationID uuid.UUID
	Kind        tx.Kind
	// IssuanceID is the issuance acted on; for create, the new one when it
	// could be resolved.
	IssuanceID types.IssuanceID
	Outcome    *submit.FinalOutcome
}

// Builder returns the transaction builder, for callers that only need an
// unsigned transaction.
func (s *Service) Builder() *tx.Builder { return s.builder }

// Tracker returns the lifecycle tracker.
func (s *Service) Tracker() *lifecycle.Tracker { return s.tracker }

// Cache returns the identifier cache, nil when caching is off.
func (s *Service) Cache() *idcache.Store { return s.cache }

// Journal returns the operation journal, nil when none is configured.
func (s *Service) Journal() journal.Store { return s.journal }

// Close releases everything opened by Open.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// execute signs and submits a built transaction, then records the outcome.
// issuanceID is the identifier the journal entry is filed under.
func (s *Service) execute(ctx context.Context, t *tx.Transaction, issuanceID types.IssuanceID) (*Result, error) {
	if s.signer == nil {
		return nil, signer.ErrNoSigner
	}
	op := submit.NewOperation(t)
	l := s.log.With().Str("op", string(op.Kind)).Str("operation_id", op.ID.String()).Logger()

	signed, err := s.signer.Sign(ctx, t)
	if err != nil {
		return nil, err
	}
	op.Hash = signed.Hash
	l = klog.WithTx(l, signed.Hash)
	l.Debug().Str("blob", klog.Truncate(signed.Blob, 16)).Msg("Signed")

	out, runErr := s.pipeline.Run(ctx, op, signed.Blob)
	if out == nil {
		return nil, runErr
	}

	res := &Result{OperationID: op.ID, Kind: op.Kind, IssuanceID: issuanceID, Outcome: out}
	if op.Kind == tx.KindCreate && out.Succeeded() {
		res.IssuanceID = s.recordCreated(t, out)
	} else if err := s.tracker.Apply(op, out); err != nil && !errors.Is(err, lifecycle.ErrNotConfirmed) {
		l.Debug().Err(err).Msg("Tracker not updated")
	}

	s.appendJournal(ctx, op, out, res.IssuanceID)
	l.Debug().Str("status", string(out.Status)).Str("issuance", res.IssuanceID.String()).Msg("Outcome recorded")
	return res, runErr
}

func (s *Service) appendJournal(ctx context.Context, op *submit.PendingOperation, out *submit.FinalOutcome, id types.IssuanceID) {
	if s.journal == nil {
		return
	}
	var idText string
	if !id.IsZero() {
		idText = id.String()
	}
	// The outcome is already decided; a journal failure must not hide it.
	if err := s.journal.Append(context.WithoutCancel(ctx), journal.FromOperation(op, out, idText)); err != nil {
		s.log.Error().Err(err).Str("tx", out.Hash).Msg("Journal append failed")
	}
}
