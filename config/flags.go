package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrHelp is returned by ParseFlags when usage was requested.
var ErrHelp = flag.ErrHelp

// Flags holds parsed global command-line flags. Parsing stops at the first
// positional argument, the subcommand; it and everything after it land in
// Args.
type Flags struct {
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Ledger
	URL       string
	FlagTable string

	// Submission
	MaxWait          time.Duration
	TrustProvisional bool

	// Storage
	NoCache    bool
	JournalDSN string

	// Signing
	SignerCmd string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetTrustProvisional bool
	SetLogJSON          bool
}

// ParseFlags parses global flags from args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("mptctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet, testnet or devnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Ledger
	fs.StringVar(&f.URL, "url", "", "Ledger server websocket URL")
	fs.StringVar(&f.FlagTable, "flags", "", "Flag bit table (default or rippled)")

	// Submission
	fs.DurationVar(&f.MaxWait, "max-wait", 0, "Maximum time to wait for validation")
	fs.BoolVar(&f.TrustProvisional, "trust-provisional", false, "Accept an unconfirmed tesSUCCESS as success")

	// Storage
	fs.BoolVar(&f.NoCache, "no-cache", false, "Do not use the identifier cache")
	fs.StringVar(&f.JournalDSN, "journal-dsn", "", "Postgres DSN for the operation journal")

	// Signing
	fs.StringVar(&f.SignerCmd, "signer-cmd", "", "External signing command")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.Help {
		return f, ErrHelp
	}

	f.SetTrustProvisional = isFlagSet(fs, "trust-provisional")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Ledger
	if f.URL != "" {
		cfg.Ledger.URL = f.URL
	}
	if f.FlagTable != "" {
		cfg.Ledger.FlagTable = f.FlagTable
	}

	// Submission
	if f.MaxWait != 0 {
		cfg.Submit.MaxWait = f.MaxWait
	}
	if f.SetTrustProvisional {
		cfg.Submit.TrustProvisional = f.TrustProvisional
	}

	// Storage
	if f.NoCache {
		cfg.Cache.Enabled = false
	}
	if f.JournalDSN != "" {
		cfg.Journal.DSN = f.JournalDSN
	}

	// Signing
	if f.SignerCmd != "" {
		cfg.Signer.Command = f.SignerCmd
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the global usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

const usage = `mptctl - multi-purpose token issuance toolkit

Usage:
  mptctl [global options] <command> [arguments]

Global Options:
  --network       Network: mainnet (default), testnet or devnet
  --datadir       Data directory (default: ~/.mptkit)
  --config, -c    Config file path (default: <datadir>/mptkit.conf)
  --url           Ledger server websocket URL
  --flags         Flag bit table: default or rippled
  --max-wait      Maximum time to wait for validation (default: 20s)
  --trust-provisional
                  Accept an unconfirmed tesSUCCESS as (provisional) success
  --no-cache      Do not use the identifier cache
  --journal-dsn   Postgres DSN for the operation journal
  --signer-cmd    External signing command
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path
  --log-json      Output logs as JSON

Local Commands:
  derive <issuer> <sequence>           Derive an issuance identifier
  id check <id>                        Show the kind of an identifier
  address <pubkey-hex>                 Classic address of a public key
  metadata encode [flags]              Encode token metadata to hex
  metadata decode <hex>                Decode token metadata
  metadata classes                     List known asset classes
  amount to-minor <value> <scale>      Display value to minor units
  amount to-display <value> <scale>    Minor units to display value
  build <op> [flags]                   Print an unsigned transaction

Ledger Commands:
  issuances [--json] <issuer>          List an account's issuances
  holder [--issuer <r...>] <address> <id>
                                       Show a holder's status
  status <tx-hash>                     Look up a submitted transaction
  journal [flags]                      Show recorded operations
  cache list [issuer]                  Show cached identifiers
  cache clear                          Empty the identifier cache

Operations (require --signer-cmd):
  create     --account <r...> [flags]
  authorize  --issuer <r...> --id <id> --holder <r...>
  revoke     --issuer <r...> --id <id> --holder <r...>
  opt-in     --holder <r...> --id <id>
  opt-out    --holder <r...> --id <id>
  issue      --issuer <r...> --id <id> --holder <r...> --amount <minor>
             (or --value <display> --scale <n> instead of --amount)
  lock       --issuer <r...> --id <id> [--holder <r...>]
  unlock     --issuer <r...> --id <id> [--holder <r...>]
  clawback   --issuer <r...> --id <id> --holder <r...> --amount <minor>
  destroy    --issuer <r...> --id <id>

Run 'mptctl <command> --help' for command flags.
`

// Load resolves configuration from defaults, the config file and flags, in
// that order of increasing precedence.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, flags, err
	}

	network := Mainnet
	if flags.Network != "" {
		network = NetworkType(strings.ToLower(flags.Network))
	}
	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	// A network chosen in the file selects that network's defaults.
	if n, ok := fileValues["network"]; ok && flags.Network == "" && NetworkType(strings.ToLower(n)) != cfg.Network {
		dataDir := cfg.DataDir
		cfg = Default(NetworkType(strings.ToLower(n)))
		cfg.DataDir = dataDir
	}

	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
