package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/Klingon-tech/mptkit/internal/idcache"
	"github.com/Klingon-tech/mptkit/internal/journal"
	"github.com/Klingon-tech/mptkit/internal/service"
	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// ── issuances ───────────────────────────────────────────────────────────

func cmdIssuances(ctx context.Context, s *service.Service, args []string) {
	fs := flag.NewFlagSet("issuances", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: mptctl issuances [--json] <issuer>")
	}

	list, err := s.ListIssuances(ctx, fs.Arg(0))
	if err != nil {
		fail(err)
		return
	}
	if jsonOutput(*asJSON) {
		printJSON(list)
		return
	}
	if len(list) == 0 {
		fmt.Println("No issuances.")
		return
	}
	for _, iss := range list {
		fmt.Printf("ID:          %s\n", iss.ID)
		fmt.Printf("  Sequence:    %d\n", iss.Sequence)
		fmt.Printf("  State:       %s\n", iss.State())
		fmt.Printf("  Scale:       %d\n", iss.AssetScale)
		outstanding := iss.OutstandingAmount
		if d, err := amount.ToDisplay(iss.OutstandingAmount, int(iss.AssetScale)); err == nil {
			outstanding = d
		}
		fmt.Printf("  Outstanding: %s\n", outstanding)
		if iss.MaximumAmount != "" {
			fmt.Printf("  Maximum:     %s\n", iss.MaximumAmount)
		}
		if iss.TransferFee > 0 {
			fmt.Printf("  Fee:         %d\n", iss.TransferFee)
		}
		fmt.Printf("  Caps:        %s\n", capsString(iss.Capabilities))
		if iss.Metadata != nil {
			fmt.Printf("  Token:       %s (%s)\n", iss.Metadata.Name, iss.Metadata.CurrencyCode)
		}
		fmt.Printf("  ID source:   %s\n", iss.IDStrategy)
	}
}

func capsString(c mpt.Capabilities) string {
	var names []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{c.CanLock, "lock"},
		{c.RequireAuth, "auth"},
		{c.CanEscrow, "escrow"},
		{c.CanTrade, "trade"},
		{c.CanTransfer, "transfer"},
		{c.CanClawback, "clawback"},
	} {
		if f.on {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

// ── holder ──────────────────────────────────────────────────────────────

func cmdHolder(ctx context.Context, s *service.Service, args []string) {
	fs := flag.NewFlagSet("holder", flag.ExitOnError)
	issuer := fs.String("issuer", "", "Issuer, used to learn whether the issuance requires authorization")
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Parse(args)
	if fs.NArg() != 2 {
		fatal("Usage: mptctl holder [--issuer <address>] [--json] <address> <id>")
	}
	id, err := types.ParseIssuanceID(fs.Arg(1))
	if err != nil {
		fatalErr(err)
	}

	if *issuer != "" {
		if _, err := s.ListIssuances(ctx, *issuer); err != nil {
			fail(err)
			return
		}
	}
	h, err := s.HolderStatus(ctx, fs.Arg(0), id)
	if err != nil {
		fail(err)
		return
	}
	if jsonOutput(*asJSON) {
		printJSON(h)
		return
	}
	fmt.Printf("Holder:     %s\n", h.Address)
	fmt.Printf("Issuance:   %s\n", h.IssuanceID)
	fmt.Printf("Opted in:   %t\n", h.Exists)
	fmt.Printf("Balance:    %s\n", h.Balance)
	fmt.Printf("Authorized: %t\n", h.Authorized)
	fmt.Printf("Locked:     %t\n", h.Locked)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(ctx context.Context, s *service.Service, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: mptctl status [--json] <tx-hash>")
	}

	st, err := s.TransactionStatus(ctx, fs.Arg(0))
	if err != nil {
		fail(err)
		return
	}
	if jsonOutput(*asJSON) {
		printJSON(st)
		return
	}
	fmt.Printf("Hash:      %s\n", st.Hash)
	if !st.Found {
		fmt.Println("Status:    not found")
		return
	}
	status := "pending"
	if st.Validated {
		status = fmt.Sprintf("validated in ledger %d", st.LedgerIndex)
	}
	fmt.Printf("Status:    %s\n", status)
	fmt.Printf("Type:      %s\n", st.Type)
	fmt.Printf("Account:   %s\n", st.Account)
	if st.Code != "" {
		fmt.Printf("Result:    %s\n", st.Code)
	}
	if !st.IssuanceID.IsZero() {
		fmt.Printf("Issuance:  %s\n", st.IssuanceID)
	}
}

// ── journal ─────────────────────────────────────────────────────────────

func cmdJournal(ctx context.Context, s *service.Service, args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	account := fs.String("account", "", "Only operations involving this account")
	id := fs.String("id", "", "Only operations on this issuance")
	limit := fs.Int("limit", 20, "Maximum entries")
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Parse(args)

	if s.Journal() == nil {
		fatal("no journal configured")
	}
	entries, err := s.Journal().List(ctx, journal.Filter{Account: *account, IssuanceID: *id, Limit: *limit})
	if err != nil {
		fail(err)
		return
	}
	if jsonOutput(*asJSON) {
		printJSON(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %-9s  %-18s  %-12s  %s\n",
			e.FinishedAt.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Status, e.Code, e.Hash)
	}
}

// ── cache ───────────────────────────────────────────────────────────────

func cmdCache(s *service.Service, args []string) {
	if len(args) < 1 {
		fatal("Usage: mptctl cache <list [issuer]|clear>")
	}
	c := s.Cache()
	if c == nil {
		fatal("identifier cache is disabled")
	}
	switch args[0] {
	case "list":
		var (
			entries []idcache.Entry
			err     error
		)
		if len(args) > 1 {
			issuer, perr := types.ParseAccount(args[1])
			if perr != nil {
				fatalErr(perr)
			}
			entries, err = c.List(issuer)
		} else {
			err = c.ForEach(func(e idcache.Entry) error {
				entries = append(entries, e)
				return nil
			})
		}
		if err != nil {
			fail(err)
			return
		}
		for _, e := range entries {
			fmt.Printf("%s  %10d  %s\n", e.Issuer, e.Sequence, e.ID)
		}
	case "clear":
		if err := c.Clear(); err != nil {
			fail(err)
			return
		}
		fmt.Println("Identifier cache cleared.")
	default:
		fatal("Unknown cache command: %s", args[0])
	}
}
