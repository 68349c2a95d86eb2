package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Klingon-tech/mptkit/config"
	"github.com/Klingon-tech/mptkit/internal/service"
	"github.com/Klingon-tech/mptkit/internal/submit"
	"github.com/Klingon-tech/mptkit/pkg/amount"
	"github.com/Klingon-tech/mptkit/pkg/metadata"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
	"github.com/Klingon-tech/mptkit/pkg/tx"
	"github.com/Klingon-tech/mptkit/pkg/types"
)

// opArgs holds the flags shared by build and the operation commands.
type opArgs struct {
	account string
	holder  string
	idText  string
	amount  string
	value   string
	scale   int
	jsonOut bool

	// create
	assetScale  int
	transferFee int
	maximum     string
	metadataHex string
	caps        mpt.Capabilities
	record      func() *metadata.Record
}

func parseOpArgs(name string, args []string) *opArgs {
	a := &opArgs{}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&a.account, "account", "", "Signing account (issuer, or holder for opt-in/opt-out)")
	fs.StringVar(&a.account, "issuer", "", "Alias for --account")
	fs.StringVar(&a.holder, "holder", "", "Holder address")
	fs.StringVar(&a.idText, "id", "", "Issuance ID (48 or 64 hex characters)")
	fs.StringVar(&a.amount, "amount", "", "Amount in minor units")
	fs.StringVar(&a.value, "value", "", "Amount in display units, scaled with --scale")
	fs.IntVar(&a.scale, "scale", 0, "Asset scale for --value")
	fs.BoolVar(&a.jsonOut, "json", false, "Print the result as JSON")

	fs.IntVar(&a.assetScale, "asset-scale", 0, "Decimal places of the new issuance (0-15)")
	fs.IntVar(&a.transferFee, "transfer-fee", 0, "Transfer fee in 1/10 basis points (0-50000)")
	fs.StringVar(&a.maximum, "max", "", "Supply ceiling in minor units")
	fs.StringVar(&a.metadataHex, "metadata-hex", "", "Pre-encoded metadata blob")
	fs.BoolVar(&a.caps.CanLock, "can-lock", false, "Allow locking")
	fs.BoolVar(&a.caps.RequireAuth, "require-auth", false, "Require holder authorization")
	fs.BoolVar(&a.caps.CanEscrow, "can-escrow", false, "Allow escrow")
	fs.BoolVar(&a.caps.CanTrade, "can-trade", false, "Allow trading")
	fs.BoolVar(&a.caps.CanTransfer, "can-transfer", false, "Allow holder-to-holder transfer")
	fs.BoolVar(&a.caps.CanClawback, "can-clawback", false, "Allow clawback")
	a.record = recordFlags(fs)
	fs.Parse(args)

	// The holder signs its own opt-in and opt-out.
	switch strings.TrimPrefix(name, "build ") {
	case "opt-in", "opt-out":
		if a.account == "" {
			a.account = a.holder
		}
	}
	return a
}

func (a *opArgs) require(op string, fields ...string) {
	for _, f := range fields {
		var v string
		switch f {
		case "account":
			v = a.account
		case "holder":
			v = a.holder
		case "id":
			v = a.idText
		}
		if v == "" {
			fatal("%s requires --%s", op, f)
		}
	}
}

func (a *opArgs) id() types.IssuanceID {
	id, err := types.ParseIssuanceID(a.idText)
	if err != nil {
		fatalErr(err)
	}
	return id
}

// minor returns the amount in minor units, scaling --value when --amount is
// not given.
func (a *opArgs) minor(op string) string {
	if a.amount != "" {
		return a.amount
	}
	if a.value == "" {
		fatal("%s requires --amount or --value", op)
	}
	v, err := amount.ToMinorUnits(a.value, a.scale)
	if err != nil {
		fatalErr(err)
	}
	return v
}

// buildTx builds the unsigned transaction for op without touching the ledger.
func buildTx(b *tx.Builder, codec *metadata.Codec, op string, a *opArgs) (*tx.Transaction, error) {
	switch op {
	case "create":
		a.require(op, "account")
		blob := a.metadataHex
		if rec := a.record(); rec != nil {
			var err error
			if blob, err = codec.Encode(*rec); err != nil {
				return nil, err
			}
		}
		return b.CreateIssuance(tx.CreateParams{
			Account:       a.account,
			AssetScale:    a.assetScale,
			Capabilities:  a.caps,
			TransferFee:   a.transferFee,
			MaximumAmount: a.maximum,
			Metadata:      blob,
		})
	case "authorize":
		a.require(op, "account", "id", "holder")
		return b.AuthorizeHolder(a.account, a.id(), a.holder)
	case "revoke":
		a.require(op, "account", "id", "holder")
		return b.RevokeAuthorization(a.account, a.id(), a.holder)
	case "opt-in":
		a.require(op, "account", "id")
		return b.OptIn(a.account, a.id())
	case "opt-out":
		a.require(op, "account", "id")
		return b.OptOut(a.account, a.id())
	case "issue":
		a.require(op, "account", "id", "holder")
		return b.Issue(a.account, a.holder, a.id(), a.minor(op))
	case "lock", "unlock":
		a.require(op, "account", "id")
		return b.SetLockState(a.account, a.id(), a.holder, op == "lock")
	case "clawback":
		a.require(op, "account", "id", "holder")
		return b.Clawback(a.account, a.holder, a.id(), a.minor(op))
	case "destroy":
		a.require(op, "account", "id")
		return b.DestroyIssuance(a.account, a.id())
	default:
		fatal("Unknown operation: %s", op)
		return nil, nil
	}
}

// cmdOperation runs a lifecycle operation end to end.
func cmdOperation(ctx context.Context, cfg *config.Config, s *service.Service, op string, args []string) {
	a := parseOpArgs(op, args)

	var (
		res *service.Result
		err error
	)
	switch op {
	case "create":
		a.require(op, "account")
		res, err = s.Create(ctx, service.CreateRequest{
			Account:       a.account,
			AssetScale:    a.assetScale,
			Capabilities:  a.caps,
			TransferFee:   a.transferFee,
			MaximumAmount: a.maximum,
			Metadata:      a.record(),
			MetadataHex:   a.metadataHex,
		})
	case "authorize":
		a.require(op, "account", "id", "holder")
		res, err = s.Authorize(ctx, a.account, a.id(), a.holder)
	case "revoke":
		a.require(op, "account", "id", "holder")
		res, err = s.Revoke(ctx, a.account, a.id(), a.holder)
	case "opt-in":
		a.require(op, "account", "id")
		res, err = s.OptIn(ctx, a.account, a.id())
	case "opt-out":
		a.require(op, "account", "id")
		res, err = s.OptOut(ctx, a.account, a.id())
	case "issue":
		a.require(op, "account", "id", "holder")
		res, err = s.Issue(ctx, a.account, a.holder, a.id(), a.minor(op))
	case "lock":
		a.require(op, "account", "id")
		res, err = s.Lock(ctx, a.account, a.id(), a.holder)
	case "unlock":
		a.require(op, "account", "id")
		res, err = s.Unlock(ctx, a.account, a.id(), a.holder)
	case "clawback":
		a.require(op, "account", "id", "holder")
		res, err = s.Clawback(ctx, a.account, a.holder, a.id(), a.minor(op))
	case "destroy":
		a.require(op, "account", "id")
		res, err = s.Destroy(ctx, a.account, a.id())
	}

	if res != nil {
		printResult(cfg, op, res, a.jsonOut)
	}
	if err != nil {
		fail(err)
	}
}

type resultJSON struct {
	OperationID string `json:"operation_id"`
	Operation   string `json:"operation"`
	Status      string `json:"status"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
	Hash        string `json:"hash,omitempty"`
	IssuanceID  string `json:"issuance_id,omitempty"`
	Explorer    string `json:"explorer,omitempty"`
	Provisional bool   `json:"provisional,omitempty"`
	Abandoned   bool   `json:"abandoned,omitempty"`
	Waited      string `json:"waited"`
}

func printResult(cfg *config.Config, op string, res *service.Result, forceJSON bool) {
	out := res.Outcome
	if out == nil {
		out = &submit.FinalOutcome{}
	}
	r := resultJSON{
		OperationID: res.OperationID.String(),
		Operation:   op,
		Status:      string(out.Status),
		Code:        out.Code,
		Message:     out.Message,
		Hash:        out.Hash,
		Provisional: out.Provisional,
		Abandoned:   out.Abandoned,
		Waited:      out.Waited.Round(time.Millisecond).String(),
	}
	if !res.IssuanceID.IsZero() {
		r.IssuanceID = res.IssuanceID.String()
	}
	if out.Hash != "" {
		r.Explorer = cfg.ExplorerTxURL(out.Hash)
	}

	if jsonOutput(forceJSON) {
		printJSON(r)
		return
	}
	fmt.Printf("Operation:   %s\n", r.Operation)
	fmt.Printf("Status:      %s\n", r.Status)
	if r.Code != "" {
		fmt.Printf("Result:      %s\n", r.Code)
	}
	if r.Message != "" {
		fmt.Printf("Message:     %s\n", r.Message)
	}
	if r.Hash != "" {
		fmt.Printf("Hash:        %s\n", r.Hash)
	}
	if r.IssuanceID != "" {
		fmt.Printf("Issuance ID: %s\n", r.IssuanceID)
	}
	if r.Explorer != "" {
		fmt.Printf("Explorer:    %s\n", r.Explorer)
	}
	fmt.Printf("Waited:      %s\n", r.Waited)
	if r.Provisional {
		fmt.Fprintln(os.Stderr, "Note: success was taken from the preliminary result; validation was not confirmed.")
	}
	if r.Abandoned {
		fmt.Fprintln(os.Stderr, "Note: the wait was interrupted before a final result.")
	}
}
