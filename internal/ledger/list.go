package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/mptkit/pkg/fault"
	"github.com/Klingon-tech/mptkit/pkg/mpt"
)

// PageLimit is the page size requested from account_objects.
const PageLimit = 400

// ListObjects follows markers until the listing is exhausted. A server
// that hands back a marker it already returned ends the loop with an error
// rather than spinning forever.
func ListObjects(ctx context.Context, c Client, address, objectType string) ([]json.RawMessage, error) {
	var (
		all    []json.RawMessage
		marker json.RawMessage
		seen   = make(map[string]struct{})
	)
	for {
		page, err := c.AccountObjects(ctx, address, objectType, marker)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Objects...)

		next := bytes.TrimSpace(page.Marker)
		if len(next) == 0 || bytes.Equal(next, []byte("null")) {
			return all, nil
		}
		if _, dup := seen[string(next)]; dup {
			return nil, &fault.TransportError{
				Op:       "account_objects",
				Attempts: 1,
				Err:      fmt.Errorf("server repeated marker %s", next),
			}
		}
		seen[string(next)] = struct{}{}
		marker = next
	}
}

// ListIssuances returns every MPTokenIssuance owned by issuer.
func ListIssuances(ctx context.Context, c Client, issuer string) ([]mpt.IssuanceEntry, error) {
	raw, err := ListObjects(ctx, c, issuer, ObjectIssuance)
	if err != nil {
		return nil, err
	}
	out := make([]mpt.IssuanceEntry, 0, len(raw))
	for _, r := range raw {
		var e mpt.IssuanceEntry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, malformed("account_objects", err)
		}
		if e.LedgerEntryType != "" && e.LedgerEntryType != mpt.EntryTypeIssuance {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ListTokens returns every MPToken held by holder.
func ListTokens(ctx context.Context, c Client, holder string) ([]mpt.TokenEntry, error) {
	raw, err := ListObjects(ctx, c, holder, ObjectToken)
	if err != nil {
		return nil, err
	}
	out := make([]mpt.TokenEntry, 0, len(raw))
	for _, r := range raw {
		var e mpt.TokenEntry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, malformed("account_objects", err)
		}
		if e.LedgerEntryType != "" && e.LedgerEntryType != mpt.EntryTypeToken {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func malformed(op string, err error) error {
	return &fault.TransportError{Op: op, Attempts: 1, Err: fmt.Errorf("malformed response: %w", err)}
}
