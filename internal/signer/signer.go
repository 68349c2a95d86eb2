// Package signer turns unsigned transactions into signed blobs. Key
// material never enters mptkit; signing is delegated.
package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/mptkit/pkg/tx"
)

// ErrNoSigner is returned when an operation needs a signer and none is
// configured.
var ErrNoSigner = errors.New("no signer configured")

// SignedTx is a signed transaction ready for submission.
type SignedTx struct {
	Blob string `json:"tx_blob"`
	Hash string `json:"hash"`
}

// Signer signs a transaction, filling in sequence and fee as needed.
type Signer interface {
	Sign(ctx context.Context, t *tx.Transaction) (SignedTx, error)
}

// Func adapts a function to Signer.
type Func func(ctx context.Context, t *tx.Transaction) (SignedTx, error)

// Sign implements Signer.
func (f Func) Sign(ctx context.Context, t *tx.Transaction) (SignedTx, error) {
	return f(ctx, t)
}

// ExecSigner runs an external command per transaction. The unsigned
// transaction JSON is written to its stdin; it must print
// {"tx_blob": "...", "hash": "..."} on stdout.
type ExecSigner struct {
	Command string
	Args    []string
	Timeout time.Duration
	Log     zerolog.Logger
}

// NewExecSigner splits a command line on whitespace.
func NewExecSigner(cmdline string, timeout time.Duration, l zerolog.Logger) (*ExecSigner, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, ErrNoSigner
	}
	return &ExecSigner{Command: fields[0], Args: fields[1:], Timeout: timeout, Log: l}, nil
}

// Sign implements Signer.
func (s *ExecSigner) Sign(ctx context.Context, t *tx.Transaction) (SignedTx, error) {
	in, err := t.JSON()
	if err != nil {
		return SignedTx{}, fmt.Errorf("signer: marshal: %w", err)
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return SignedTx{}, fmt.Errorf("signer %s: %w: %s", s.Command, err, msg)
		}
		return SignedTx{}, fmt.Errorf("signer %s: %w", s.Command, err)
	}

	var out SignedTx
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return SignedTx{}, fmt.Errorf("signer %s: decode output: %w", s.Command, err)
	}
	if out.Blob == "" {
		return SignedTx{}, fmt.Errorf("signer %s: output has no tx_blob", s.Command)
	}
	out.Hash = strings.ToUpper(out.Hash)

	s.Log.Debug().Str("tx", out.Hash).Str("op", string(t.Op)).Msg("Signed")
	return out, nil
}
