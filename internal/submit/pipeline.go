package submit

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/pkg/fault"
)

// Config controls waiting for validation.
type Config struct {
	PollInterval time.Duration
	MaxWait      time.Duration
	// TrustProvisional accepts a tesSUCCESS immediate result as success
	// when validation cannot be confirmed in time. The outcome is still
	// marked Provisional.
	TrustProvisional bool
	// DuplicateWindow is how long a submitted hash is remembered.
	DuplicateWindow time.Duration
}

// DefaultConfig returns a 3s poll with a 20s ceiling.
func DefaultConfig() Config {
	return Config{
		PollInterval:    3 * time.Second,
		MaxWait:         20 * time.Second,
		DuplicateWindow: 5 * time.Minute,
	}
}

// Pipeline submits signed blobs and waits for their final status. A
// submitted transaction is polled, never resubmitted.
type Pipeline struct {
	client ledger.Client
	cfg    Config
	log    zerolog.Logger
	seen   *gocache.Cache
}

// New creates a pipeline over client. Non-positive durations in cfg take
// their DefaultConfig values.
func New(client ledger.Client, cfg Config, l zerolog.Logger) *Pipeline {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = def.DuplicateWindow
	}
	return &Pipeline{
		client: client,
		cfg:    cfg,
		log:    l,
		seen:   gocache.New(cfg.DuplicateWindow, 2*cfg.DuplicateWindow),
	}
}

// Run submits blob and, unless it is rejected outright, waits for the final
// outcome. The returned error is the outcome's typed error, or a
// validation/transport error when submission itself failed. A submit that
// failed after the blob may have left is polled like any other.
func (p *Pipeline) Run(ctx context.Context, op *PendingOperation, blob string) (*FinalOutcome, error) {
	raw, err := p.Submit(ctx, op, blob)
	var amb *fault.AmbiguousOutcome
	if errors.As(err, &amb) {
		out := p.AwaitFinal(ctx, op, &RawOutcome{Class: ImmediateQueued, Hash: amb.Hash})
		return out, out.Err()
	}
	if err != nil {
		return nil, err
	}
	if raw.Class == ImmediateRejected {
		out := &FinalOutcome{Status: StatusRejected, Hash: raw.Hash, Code: raw.Code, Message: raw.Message}
		p.finish(op, out)
		return out, out.Err()
	}
	out := p.AwaitFinal(ctx, op, raw)
	return out, out.Err()
}

// Submit sends blob once and classifies the immediate answer.
func (p *Pipeline) Submit(ctx context.Context, op *PendingOperation, blob string) (*RawOutcome, error) {
	if blob == "" {
		return nil, fault.MissingField("tx_blob")
	}
	key := op.Hash
	if key == "" {
		key = blob
	}
	if err := p.seen.Add(key, op.ID, gocache.DefaultExpiration); err != nil {
		return nil, &fault.ValidationError{
			Field:  "tx_blob",
			Reason: "already submitted, await its outcome instead",
			Err:    fault.ErrDuplicateSubmission,
		}
	}

	res, err := p.client.Submit(ctx, blob)
	if err != nil {
		var te *fault.TransportError
		if errors.As(err, &te) && te.Op == "connect" {
			// Never reached the server, so a later retry is not a duplicate.
			p.seen.Delete(key)
			p.log.Warn().Err(err).Str("op", string(op.Kind)).Msg("Submit failed")
			return nil, err
		}
		var se *ledger.ServerError
		if op.Hash == "" || errors.As(err, &se) {
			p.log.Warn().Err(err).Str("op", string(op.Kind)).Msg("Submit failed")
			return nil, err
		}
		p.log.Warn().Err(err).Str("op", string(op.Kind)).Str("tx", op.Hash).Msg("Submit failed, transaction may still apply")
		op.SubmittedAt = time.Now().UTC()
		op.Status = StatusSubmitted
		return nil, &fault.AmbiguousOutcome{Hash: op.Hash, LastStatus: string(StatusSubmitted), Err: err}
	}

	raw := &RawOutcome{
		Class:   Classify(res.EngineResult),
		Code:    res.EngineResult,
		Message: res.EngineResultMessage,
		Hash:    res.Hash,
	}
	if raw.Hash == "" {
		raw.Hash = op.Hash
	}
	if op.Hash == "" && raw.Hash != "" {
		op.Hash = raw.Hash
		p.seen.Set(raw.Hash, op.ID, gocache.DefaultExpiration)
	}
	op.SubmittedAt = time.Now().UTC()
	op.Code = raw.Code
	switch raw.Class {
	case ImmediateQueued:
		op.Status = StatusQueued
	case ImmediateProvisional:
		op.Status = StatusProvisional
	default:
		op.Status = StatusSubmitted
	}

	p.log.Info().
		Str("tx", raw.Hash).
		Str("op", string(op.Kind)).
		Str("engine_result", raw.Code).
		Str("class", raw.Class.String()).
		Msg("Submitted")
	return raw, nil
}

// AwaitFinal polls for the validated status of raw.Hash until it is found,
// MaxWait elapses, or ctx is cancelled. It never returns success for a
// transaction that was not seen validated unless TrustProvisional allows it.
func (p *Pipeline) AwaitFinal(ctx context.Context, op *PendingOperation, raw *RawOutcome) *FinalOutcome {
	start := time.Now()
	timedOut := func(abandoned bool) *FinalOutcome {
		out := &FinalOutcome{
			Status:    StatusTimedOut,
			Hash:      raw.Hash,
			Code:      raw.Code,
			Message:   raw.Message,
			Abandoned: abandoned,
			Waited:    time.Since(start),
		}
		if !abandoned && p.cfg.TrustProvisional && raw.Class == ImmediateProvisional && fault.IsSuccess(raw.Code) {
			out.Status = StatusValidatedSuccess
			out.Provisional = true
			p.log.Warn().Str("tx", raw.Hash).Msg("Validation unconfirmed, trusting provisional result")
		}
		p.finish(op, out)
		return out
	}

	if raw.Hash == "" {
		p.log.Warn().Str("op", string(op.Kind)).Msg("No transaction hash to poll")
		return timedOut(false)
	}

	deadline := time.NewTimer(p.cfg.MaxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Str("tx", raw.Hash).Msg("Caller stopped waiting")
			return timedOut(true)
		case <-deadline.C:
			p.log.Warn().Str("tx", raw.Hash).Dur("waited", time.Since(start)).Msg("Not validated in time")
			return timedOut(false)
		case <-ticker.C:
		}

		res, err := p.client.Tx(ctx, raw.Hash)
		switch {
		case errors.Is(err, ledger.ErrTxNotFound):
			p.log.Debug().Str("tx", raw.Hash).Msg("Not found yet")
			continue
		case err != nil:
			p.log.Debug().Err(err).Str("tx", raw.Hash).Msg("Lookup failed")
			continue
		case !res.Validated:
			continue
		}

		out := &FinalOutcome{
			Status: StatusValidatedSuccess,
			Hash:   raw.Hash,
			Code:   res.Result(),
			Tx:     res,
			Waited: time.Since(start),
		}
		if !fault.IsSuccess(out.Code) {
			out.Status = StatusValidatedFailure
			out.Message = fault.Describe(out.Code)
		}
		p.finish(op, out)
		return out
	}
}

func (p *Pipeline) finish(op *PendingOperation, out *FinalOutcome) {
	op.Status = out.Status
	op.Code = out.Code
	if op.Hash == "" {
		op.Hash = out.Hash
	}
	op.FinishedAt = time.Now().UTC()
	p.log.Info().
		Str("tx", out.Hash).
		Str("op", string(op.Kind)).
		Str("status", string(out.Status)).
		Str("code", out.Code).
		Bool("provisional", out.Provisional).
		Msg("Operation finished")
}
