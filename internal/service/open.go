package service

import (
	"context"
	"fmt"

	"github.com/Klingon-tech/mptkit/config"
	"github.com/Klingon-tech/mptkit/internal/idcache"
	"github.com/Klingon-tech/mptkit/internal/journal"
	"github.com/Klingon-tech/mptkit/internal/ledger"
	"github.com/Klingon-tech/mptkit/internal/lifecycle"
	klog "github.com/Klingon-tech/mptkit/internal/log"
	"github.com/Klingon-tech/mptkit/internal/signer"
	"github.com/Klingon-tech/mptkit/internal/storage"
	"github.com/Klingon-tech/mptkit/internal/submit"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
)

// Open assembles a service from configuration. The ledger connection is
// made on first use. Call Close when done.
func Open(ctx context.Context, cfg *config.Config) (*Service, error) {
	logger := klog.Service
	defer klog.Benchmark("open service")()

	// ── 1. Configuration ────────────────────────────────────────────
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	flags, err := mpt.FlagTableByName(cfg.Ledger.FlagTable)
	if err != nil {
		return nil, err
	}

	// ── 2. Data directories ─────────────────────────────────────────
	if err := config.EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	s := New(Deps{
		Builder: tx.NewBuilder(flags),
		Codec:   metadata.NewCodec(cfg.Metadata.Strict, klog.Codec),
		Tracker: lifecycle.NewTracker(),
		Log:     logger,
	})
	fail := func(err error) (*Service, error) {
		s.Close()
		return nil, err
	}

	// ── 3. Ledger connection ────────────────────────────────────────
	ws := ledger.DefaultWSConfig()
	ws.HandshakeTimeout = cfg.Ledger.ConnectTimeout
	ws.RequestTimeout = cfg.Ledger.RequestTimeout
	ws.RateLimit = cfg.Ledger.RateLimit
	ws.Burst = cfg.Ledger.Burst
	mgr := ledger.NewWSManager(cfg.Ledger.URL, ws, ledger.ManagerConfig{
		Attempts:       cfg.Ledger.ConnectAttempts,
		Backoff:        cfg.Ledger.RetryBackoff,
		ConnectTimeout: cfg.Ledger.ConnectTimeout,
	}, klog.Ledger)
	s.ledger = mgr
	s.closers = append(s.closers, mgr.Close)

	s.pipeline = submit.New(mgr, submit.Config{
		PollInterval:     cfg.Submit.PollInterval,
		MaxWait:          cfg.Submit.MaxWait,
		TrustProvisional: cfg.Submit.TrustProvisional,
		DuplicateWindow:  cfg.Submit.DuplicateWindow,
	}, klog.Submit)

	// ── 4. Identifier cache ─────────────────────────────────────────
	if cfg.Cache.Enabled {
		db, err := storage.NewBadger(cfg.CacheDir(), klog.Storage)
		if err != nil {
			return fail(fmt.Errorf("open identifier cache: %w", err))
		}
		s.closers = append(s.closers, db.Close)
		s.cache = idcache.New(storage.NewPrefixDB(db, []byte(string(cfg.Network)+"/")), klog.Storage)
		logger.Debug().Str("path", cfg.CacheDir()).Msg("Identifier cache opened")
	}

	// ── 5. Journal ──────────────────────────────────────────────────
	if cfg.Journal.DSN != "" {
		pg, err := journal.OpenPostgres(ctx, cfg.Journal.DSN)
		if err != nil {
			return fail(fmt.Errorf("open journal: %w", err))
		}
		s.journal = pg
	} else {
		s.journal = journal.NewMemoryStore()
	}
	s.closers = append(s.closers, s.journal.Close)

	// ── 6. Signer ───────────────────────────────────────────────────
	if cfg.Signer.Command != "" {
		es, err := signer.NewExecSigner(cfg.Signer.Command, cfg.Signer.Timeout, logger)
		if err != nil {
			return fail(err)
		}
		s.signer = es
	}

	logger.Debug().
		Str("network", string(cfg.Network)).
		Str("url", cfg.Ledger.URL).
		Bool("cache", s.cache != nil).
		Bool("postgres_journal", cfg.Journal.DSN != "").
		Bool("signer", s.signer != nil).
		Msg("Service ready")
	return s, nil
}
