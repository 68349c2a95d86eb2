package config

import (
	"fmt"
	"net/url"

	klog "github.com/Klingon-tech/mptkit/internal/log"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
)

// Validate checks configuration for impossible values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	switch cfg.Network {
	case Mainnet, Testnet, Devnet:
	default:
		return fmt.Errorf("network must be %q, %q or %q", Mainnet, Testnet, Devnet)
	}

	u, err := url.Parse(cfg.Ledger.URL)
	if err != nil {
		return fmt.Errorf("ledger.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("ledger.url must use ws:// or wss://, got %q", cfg.Ledger.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("ledger.url has no host")
	}
	if cfg.Ledger.ConnectAttempts < 1 {
		return fmt.Errorf("ledger.connect_attempts must be at least 1")
	}
	if cfg.Ledger.ConnectTimeout <= 0 {
		return fmt.Errorf("ledger.connect_timeout must be positive")
	}
	if cfg.Ledger.RetryBackoff < 0 {
		return fmt.Errorf("ledger.retry_backoff must not be negative")
	}
	if cfg.Ledger.RequestTimeout <= 0 {
		return fmt.Errorf("ledger.request_timeout must be positive")
	}
	if cfg.Ledger.RateLimit < 0 || cfg.Ledger.Burst < 0 {
		return fmt.Errorf("ledger.rate_limit and ledger.burst must not be negative")
	}
	if _, err := mpt.FlagTableByName(cfg.Ledger.FlagTable); err != nil {
		return fmt.Errorf("ledger.flags: %w", err)
	}

	if cfg.Submit.PollInterval <= 0 {
		return fmt.Errorf("submit.poll_interval must be positive")
	}
	if cfg.Submit.MaxWait <= 0 {
		return fmt.Errorf("submit.max_wait must be positive")
	}
	if cfg.Submit.PollInterval > cfg.Submit.MaxWait {
		return fmt.Errorf("submit.poll_interval (%s) exceeds submit.max_wait (%s)",
			cfg.Submit.PollInterval, cfg.Submit.MaxWait)
	}
	if cfg.Submit.DuplicateWindow <= 0 {
		return fmt.Errorf("submit.duplicate_window must be positive")
	}

	if cfg.Signer.Timeout < 0 {
		return fmt.Errorf("signer.timeout must not be negative")
	}
	if !klog.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	return nil
}
