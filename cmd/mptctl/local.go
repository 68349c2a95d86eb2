package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Klingon-tech/mptkit/config"
	klog "github.com/Klingon-tech/mptkit/internal/log"
	"github.com/Klingon-tech/mptkit/internal/service"
	"github.com/Klingon-tech/mptkit/pkg/crypto"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// ── derive ──────────────────────────────────────────────────────────────

func cmdDerive(args []string) {
	if len(args) != 2 {
		fatal("Usage: mptctl derive <issuer> <sequence>")
	}
	seq, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fatal("invalid sequence: %v", err)
	}
	issuer, err := types.ParseAccount(args[0])
	if err != nil {
		fatalErr(err)
	}
	long, err := service.DeriveIdentifier(args[0], uint32(seq))
	if err != nil {
		fatalErr(err)
	}
	fmt.Printf("Issuer:   %s\n", issuer)
	fmt.Printf("Sequence: %d\n", seq)
	fmt.Printf("Long ID:  %s\n", long)
	fmt.Printf("Short ID: %s\n", mpt.ComposeShort(issuer, uint32(seq)))
}

// ── id ──────────────────────────────────────────────────────────────────

func cmdID(args []string) {
	if len(args) != 2 || args[0] != "check" {
		fatal("Usage: mptctl id check <id>")
	}
	id, err := types.ParseIssuanceID(args[1])
	if err != nil {
		fatalErr(err)
	}
	fmt.Printf("ID:     %s\n", id)
	fmt.Printf("Kind:   %s (%d bytes)\n", id.Kind(), id.Len())
	if issuer, seq, ok := mpt.SplitShort(id); ok {
		fmt.Printf("Issuer: %s\n", issuer)
		fmt.Printf("Sequence: %d\n", seq)
		fmt.Printf("Long ID:  %s\n", mpt.Derive(issuer, seq))
	}
}

// ── address ─────────────────────────────────────────────────────────────

func cmdAddress(args []string) {
	if len(args) != 1 {
		fatal("Usage: mptctl address <pubkey-hex>")
	}
	pub, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
	if err != nil {
		fatal("invalid public key hex: %v", err)
	}
	if len(pub) != 33 {
		fatal("public key must be 33 bytes, got %d", len(pub))
	}
	id := crypto.AccountIDFromPublicKey(pub)
	fmt.Printf("Address:    %s\n", id)
	fmt.Printf("Account ID: %s\n", id.Hex())
}

// ── metadata ────────────────────────────────────────────────────────────

// linkList collects repeated --link url|title[|category] flags.
type linkList []metadata.Weblink

func (l *linkList) String() string { return fmt.Sprintf("%d links", len(*l)) }

func (l *linkList) Set(v string) error {
	parts := strings.Split(v, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("link must be url|title or url|title|category")
	}
	w := metadata.Weblink{URL: parts[0], Title: parts[1]}
	if len(parts) == 3 {
		w.Category = parts[2]
	}
	*l = append(*l, w)
	return nil
}

// recordFlags registers the metadata record flags on fs.
func recordFlags(fs *flag.FlagSet) func() *metadata.Record {
	code := fs.String("code", "", "Currency code (3-20 of A-Z, 0-9)")
	name := fs.String("name", "", "Token name")
	desc := fs.String("desc", "", "Description")
	icon := fs.String("icon", "", "Icon URL")
	class := fs.String("class", "", "Asset class")
	subclass := fs.String("subclass", "", "Asset subclass")
	var links linkList
	fs.Var(&links, "link", "Weblink as url|title[|category] (repeatable)")

	return func() *metadata.Record {
		if *code == "" && *name == "" && *desc == "" && *icon == "" && *class == "" && len(links) == 0 {
			return nil
		}
		return &metadata.Record{
			CurrencyCode:  *code,
			Name:          *name,
			Description:   *desc,
			IconURL:       *icon,
			AssetClass:    *class,
			AssetSubclass: *subclass,
			Weblinks:      links,
		}
	}
}

func cmdMetadata(args []string) {
	if len(args) < 1 {
		fatal("Usage: mptctl metadata <encode|decode> [args]")
	}
	switch args[0] {
	case "encode":
		cmdMetadataEncode(args[1:])
	case "decode":
		if len(args) != 2 {
			fatal("Usage: mptctl metadata decode <hex>")
		}
		rec, ok := service.ParseMetadata(args[1])
		if !ok {
			fatal("not valid token metadata")
		}
		printJSON(rec)
	case "classes":
		for _, c := range metadata.AssetClasses {
			fmt.Printf("%-12s %s\n", c.Value, c.Label)
			for _, sub := range metadata.Subclasses(c.Value) {
				fmt.Printf("  %s\n", sub)
			}
		}
	default:
		fatal("Unknown metadata command: %s\nUsage: mptctl metadata <encode|decode|classes> [args]", args[0])
	}
}

func cmdMetadataEncode(args []string) {
	fs := flag.NewFlagSet("metadata encode", flag.ExitOnError)
	record := recordFlags(fs)
	strict := fs.Bool("strict", false, "Reject unknown asset classes")
	fs.Parse(args)

	rec := record()
	if rec == nil {
		fmt.Fprintf(os.Stderr, `Usage: mptctl metadata encode [flags]

Required:
  --code <CODE>       Currency code (3-20 of A-Z, 0-9)
  --name <name>       Token name

Optional:
  --desc <text>       Description
  --icon <url>        Icon URL
  --class <class>     Asset class (see 'mptctl metadata classes')
  --subclass <sub>    Asset subclass
  --link <url|title[|category]>
                      Weblink, repeatable
  --strict            Reject unknown asset classes
`)
		os.Exit(1)
	}

	blob, err := metadata.NewCodec(*strict, klog.Codec).Encode(*rec)
	if err != nil {
		fatalErr(err)
	}
	fmt.Println(blob)
	fmt.Fprintf(os.Stderr, "%d of %d bytes\n", len(blob)/2, metadata.MaxBytes)
}

// ── amount ──────────────────────────────────────────────────────────────

func cmdAmount(args []string) {
	if len(args) != 3 {
		fatal("Usage: mptctl amount <to-minor|to-display> <value> <scale>")
	}
	scale, err := strconv.Atoi(args[2])
	if err != nil {
		fatal("invalid scale: %v", err)
	}
	var out string
	switch args[0] {
	case "to-minor":
		out, err = service.ToMinorUnits(args[1], scale)
	case "to-display":
		out, err = service.ToDisplay(args[1], scale)
	default:
		fatal("Unknown amount command: %s", args[0])
	}
	if err != nil {
		fatalErr(err)
	}
	fmt.Println(out)
}

// ── build ───────────────────────────────────────────────────────────────

func cmdBuild(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: mptctl build <op> [flags]")
	}
	op := args[0]
	a := parseOpArgs("build "+op, args[1:])

	flags, err := mpt.FlagTableByName(cfg.Ledger.FlagTable)
	if err != nil {
		fatalErr(err)
	}
	codec := metadata.NewCodec(cfg.Metadata.Strict, klog.Codec)
	t, err := buildTx(tx.NewBuilder(flags), codec, op, a)
	if err != nil {
		fatalErr(err)
	}
	data, err := t.JSON()
	if err != nil {
		fatal("encode transaction: %v", err)
	}
	fmt.Println(string(data))
}
