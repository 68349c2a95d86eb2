// Package config handles mptctl configuration.
//
// Values are resolved in order: built-in defaults for the network, the
// config file, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies which ledger network to talk to.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
	Devnet  NetworkType = "devnet"
)

// Config holds runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Ledger   LedgerConfig
	Submit   SubmitConfig
	Metadata MetadataConfig
	Cache    CacheConfig
	Journal  JournalConfig
	Signer   SignerConfig
	Log      LogConfig
}

// LedgerConfig holds the server connection settings.
type LedgerConfig struct {
	URL             string        `conf:"ledger.url"`
	ConnectTimeout  time.Duration `conf:"ledger.connect_timeout"`
	ConnectAttempts int           `conf:"ledger.connect_attempts"`
	// RetryBackoff grows linearly: attempt n waits n*RetryBackoff.
	RetryBackoff   time.Duration `conf:"ledger.retry_backoff"`
	RequestTimeout time.Duration `conf:"ledger.request_timeout"`
	RateLimit      float64       `conf:"ledger.rate_limit"` // requests per second, 0 = unlimited
	Burst          int           `conf:"ledger.burst"`
	// FlagTable names the published flag bit table ("default" or "rippled").
	FlagTable string `conf:"ledger.flags"`
}

// SubmitConfig controls waiting for validation.
type SubmitConfig struct {
	PollInterval     time.Duration `conf:"submit.poll_interval"`
	MaxWait          time.Duration `conf:"submit.max_wait"`
	TrustProvisional bool          `conf:"submit.trust_provisional"`
	DuplicateWindow  time.Duration `conf:"submit.duplicate_window"`
}

// MetadataConfig holds metadata codec settings.
type MetadataConfig struct {
	// Strict rejects asset classes and subclasses outside the vocabulary.
	Strict bool `conf:"metadata.strict"`
}

// CacheConfig holds the identifier cache settings.
type CacheConfig struct {
	Enabled bool   `conf:"cache.enabled"`
	Path    string `conf:"cache.path"` // default: <datadir>/<network>/idcache
}

// JournalConfig selects the operation journal backend.
type JournalConfig struct {
	// DSN is a postgres connection string. Empty keeps the journal in memory.
	DSN string `conf:"journal.dsn"`
}

// SignerConfig holds the external signing command.
type SignerConfig struct {
	Command string        `conf:"signer.cmd"`
	Timeout time.Duration `conf:"signer.timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.mptkit
//	macOS:   ~/Library/Application Support/Mptkit
//	Windows: %APPDATA%\Mptkit
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mptkit"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Mptkit")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Mptkit")
		}
		return filepath.Join(home, "AppData", "Roaming", "Mptkit")
	default:
		return filepath.Join(home, ".mptkit")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// CacheDir returns the identifier cache directory.
func (c *Config) CacheDir() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(c.NetworkDataDir(), "idcache")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "mptkit.conf")
}

// ExplorerTxURL returns the block explorer page for a transaction hash.
func (c *Config) ExplorerTxURL(hash string) string {
	return explorerBase(c.Network) + "/transactions/" + hash
}

func explorerBase(network NetworkType) string {
	switch network {
	case Testnet:
		return "https://testnet.xrpl.org"
	case Devnet:
		return "https://devnet.xrpl.org"
	default:
		return "https://livenet.xrpl.org"
	}
}
