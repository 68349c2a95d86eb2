package config

import "time"

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Ledger: LedgerConfig{
			URL:             "wss://xrplcluster.com",
			ConnectTimeout:  10 * time.Second,
			ConnectAttempts: 3,
			RetryBackoff:    time.Second,
			RequestTimeout:  15 * time.Second,
			RateLimit:       10,
			Burst:           5,
			FlagTable:       "default",
		},
		Submit: SubmitConfig{
			PollInterval:    3 * time.Second,
			MaxWait:         20 * time.Second,
			DuplicateWindow: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Signer: SignerConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Ledger.URL = "wss://s.altnet.rippletest.net:51233"
	return cfg
}

// DefaultDevnet returns the default configuration for devnet.
func DefaultDevnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Devnet
	cfg.Ledger.URL = "wss://s.devnet.rippletest.net:51233"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	case Devnet:
		return DefaultDevnet()
	default:
		return DefaultMainnet()
	}
}
