// Package ledger talks to a ledger server: account queries, transaction
// submission and lookup, and paginated object listings.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/mptkit/pkg/mpt"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/Klingon-tech/mptkit/internal/ledger Client

// Object types accepted by account_objects.
const (
	ObjectIssuance = "mpt_issuance"
	ObjectToken    = "mptoken"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTxNotFound      = errors.New("transaction not found")
	ErrConnectionLost  = errors.New("connection lost")
	ErrClosed          = errors.New("client closed")
)

// ServerError is an error response returned by the server.
type ServerError struct {
	Command string
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Command, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Code)
}

// AccountInfo is the subset of account_info the core needs.
type AccountInfo struct {
	Account    string `json:"Account"`
	Balance    string `json:"Balance"`
	Sequence   uint32 `json:"Sequence"`
	OwnerCount uint32 `json:"OwnerCount"`
}

// SubmitResult is the server's immediate answer to a submit.
type SubmitResult struct {
	EngineResult        string
	EngineResultMessage string
	Hash                string
	Accepted            bool
	Applied             bool
	Broadcast           bool
	Queued              bool
}

// TxResult is a looked-up transaction.
type TxResult struct {
	Hash            string
	TransactionType string
	Account         string
	Sequence        uint32
	Validated       bool
	LedgerIndex     uint32
	Meta            *mpt.TransactionMeta
}

// Result returns the engine result recorded in the metadata, or "" when
// the transaction has no metadata yet.
func (r *TxResult) Result() string {
	if r == nil || r.Meta == nil {
		return ""
	}
	return r.Meta.TransactionResult
}

// ObjectsPage is one page of account_objects.
type ObjectsPage struct {
	Objects []json.RawMessage
	Marker  json.RawMessage
}

// Client is the ledger capability consumed by the rest of mptkit.
type Client interface {
	AccountInfo(ctx context.Context, address string) (*AccountInfo, error)
	Submit(ctx context.Context, blob string) (*SubmitResult, error)
	Tx(ctx context.Context, hash string) (*TxResult, error)
	AccountObjects(ctx context.Context, address, objectType string, marker json.RawMessage) (*ObjectsPage, error)
	Connected() bool
	Close() error
}
