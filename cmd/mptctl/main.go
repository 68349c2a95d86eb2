// mptctl is a command-line front end for multi-purpose token issuance.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/mptkit/config"
	klog "github.com/Klingon-tech/mptkit/internal/log"
	"github.com/Klingon-tech/mptkit/internal/service"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		config.PrintUsage(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
	if flags.Version {
		fmt.Printf("mptctl version %s\n", version)
		return
	}
	if len(flags.Args) == 0 {
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("initializing logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := flags.Args[0]
	args := flags.Args[1:]

	switch cmd {
	// Local
	case "derive":
		cmdDerive(args)
	case "id":
		cmdID(args)
	case "address":
		cmdAddress(args)
	case "metadata":
		cmdMetadata(args)
	case "amount":
		cmdAmount(args)
	case "build":
		cmdBuild(cfg, args)

	// Ledger queries
	case "issuances":
		withService(ctx, cfg, func(s *service.Service) { cmdIssuances(ctx, s, args) })
	case "holder":
		withService(ctx, cfg, func(s *service.Service) { cmdHolder(ctx, s, args) })
	case "status":
		withService(ctx, cfg, func(s *service.Service) { cmdStatus(ctx, s, args) })
	case "journal":
		withService(ctx, cfg, func(s *service.Service) { cmdJournal(ctx, s, args) })
	case "cache":
		withService(ctx, cfg, func(s *service.Service) { cmdCache(s, args) })

	// Operations
	case "create", "authorize", "revoke", "opt-in", "opt-out", "issue", "lock", "unlock", "clawback", "destroy":
		withService(ctx, cfg, func(s *service.Service) { cmdOperation(ctx, cfg, s, cmd, args) })

	case "help":
		config.PrintUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}
}

// withService opens the service, runs fn and closes it again. A non-zero
// code recorded by fail is used as the exit status after Close.
func withService(ctx context.Context, cfg *config.Config, fn func(*service.Service)) {
	s, err := service.Open(ctx, cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			klog.Service.Warn().Err(err).Msg("Close failed")
		}
		if code != 0 {
			os.Exit(code)
		}
	}()
	fn(s)
}
