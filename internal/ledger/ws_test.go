package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlerFunc answers one request; it returns the result object or an
// error code.
type handlerFunc func(req map[string]any) (result any, errCode string)

func newServer(t *testing.T, handle handlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var writeMu sync.Mutex
		for {
			var req map[string]any
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			go func(req map[string]any) {
				result, code := handle(req)
				resp := map[string]any{"id": req["id"], "type": "response"}
				if code != "" {
					resp["status"] = "error"
					resp["error"] = code
					resp["error_message"] = "test error"
				} else {
					resp["status"] = "success"
					resp["result"] = result
				}
				writeMu.Lock()
				defer writeMu.Unlock()
				conn.WriteJSON(resp)
			}(req)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTest(t *testing.T, url string) *WSClient {
	t.Helper()
	cfg := DefaultWSConfig()
	cfg.RateLimit = 0
	cfg.RequestTimeout = 2 * time.Second
	c, err := DialWS(context.Background(), url, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestWSClient_AccountInfo(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) {
		assert.Equal(t, "account_info", req["command"])
		assert.Equal(t, "validated", req["ledger_index"])
		if req["account"] != "rIssuer" {
			return nil, "actNotFound"
		}
		return map[string]any{
			"account_data": map[string]any{"Account": "rIssuer", "Balance": "100000000", "Sequence": 42, "OwnerCount": 3},
		}, ""
	})
	c := dialTest(t, url)

	info, err := c.AccountInfo(context.Background(), "rIssuer")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), info.Sequence)
	assert.Equal(t, uint32(3), info.OwnerCount)
	assert.Equal(t, "100000000", info.Balance)

	_, err = c.AccountInfo(context.Background(), "rMissing")
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestWSClient_SubmitAndTx(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) {
		switch req["command"] {
		case "submit":
			return map[string]any{
				"engine_result":         "tesSUCCESS",
				"engine_result_message": "The transaction was applied.",
				"accepted":              true,
				"tx_json":               map[string]any{"hash": "ABC123"},
			}, ""
		case "tx":
			if req["transaction"] != "ABC123" {
				return nil, "txnNotFound"
			}
			return map[string]any{
				"hash":            "ABC123",
				"Account":         "rIssuer",
				"Sequence":        7,
				"TransactionType": "MPTokenIssuanceCreate",
				"validated":       true,
				"ledger_index":    900,
				"meta": map[string]any{
					"TransactionResult": "tesSUCCESS",
					"mpt_issuance_id":   strings.Repeat("0", 48),
				},
			}, ""
		}
		return nil, "unknownCmd"
	})
	c := dialTest(t, url)
	ctx := context.Background()

	sub, err := c.Submit(ctx, "DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, "tesSUCCESS", sub.EngineResult)
	assert.Equal(t, "ABC123", sub.Hash)
	assert.True(t, sub.Accepted)

	res, err := c.Tx(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, res.Validated)
	assert.Equal(t, "rIssuer", res.Account)
	assert.Equal(t, uint32(7), res.Sequence)
	assert.Equal(t, "tesSUCCESS", res.Result())
	require.NotNil(t, res.Meta)
	assert.Equal(t, strings.Repeat("0", 48), res.Meta.MPTIssuanceID)

	_, err = c.Tx(ctx, "NOPE")
	assert.True(t, errors.Is(err, ErrTxNotFound))
}

func TestWSClient_TxAPIv2Shape(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) {
		return map[string]any{
			"hash":      "FEED",
			"validated": false,
			"tx_json":   map[string]any{"Account": "rHolder", "Sequence": 9, "TransactionType": "Payment"},
		}, ""
	})
	c := dialTest(t, url)

	res, err := c.Tx(context.Background(), "FEED")
	require.NoError(t, err)
	assert.Equal(t, "FEED", res.Hash)
	assert.Equal(t, "rHolder", res.Account)
	assert.Equal(t, uint32(9), res.Sequence)
	assert.False(t, res.Validated)
	assert.Equal(t, "", res.Result())
}

func TestWSClient_ServerError(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) { return nil, "invalidParams" })
	c := dialTest(t, url)

	_, err := c.AccountObjects(context.Background(), "rX", ObjectIssuance, nil)
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "invalidParams", se.Code)
	assert.Equal(t, "account_objects", se.Command)
}

func TestWSClient_AccountObjectsMarker(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) {
		assert.Equal(t, float64(PageLimit), req["limit"])
		assert.Equal(t, ObjectToken, req["type"])
		if req["marker"] == nil {
			return map[string]any{"account_objects": []any{map[string]any{"index": "A"}}, "marker": "m1"}, ""
		}
		return map[string]any{"account_objects": []any{map[string]any{"index": "B"}}}, ""
	})
	c := dialTest(t, url)

	all, err := ListObjects(context.Background(), c, "rHolder", ObjectToken)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.JSONEq(t, `{"index":"B"}`, string(all[1]))
}

func TestWSClient_ConcurrentRequests(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) {
		time.Sleep(10 * time.Millisecond)
		return map[string]any{"account_data": map[string]any{"Account": req["account"]}}, ""
	})
	c := dialTest(t, url)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := "r" + strings.Repeat("x", i+1)
			info, err := c.AccountInfo(context.Background(), addr)
			if assert.NoError(t, err) {
				assert.Equal(t, addr, info.Account, "responses must be correlated by id")
			}
		}(i)
	}
	wg.Wait()
}

func TestWSClient_DeliverRepeatedID(t *testing.T) {
	c := &WSClient{pending: make(map[uint64]chan *wsResponse), log: zerolog.Nop()}
	ch := make(chan *wsResponse, 1)
	c.pending[7] = ch

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.deliver(&wsResponse{ID: 7, Status: "success"})
		c.deliver(&wsResponse{ID: 7, Status: "error"})
		c.deliver(&wsResponse{ID: 8})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked on a repeated response id")
	}
	resp := <-ch
	assert.Equal(t, "success", resp.Status, "the first response wins")
}

func TestWSClient_ServerRepeatsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req map[string]any
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := map[string]any{
				"id": req["id"], "type": "response", "status": "success",
				"result": map[string]any{"account_data": map[string]any{"Account": req["account"]}},
			}
			for i := 0; i < 3; i++ {
				conn.WriteJSON(resp)
			}
		}
	}))
	defer srv.Close()

	c := dialTest(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	for _, addr := range []string{"rA", "rB", "rC"} {
		info, err := c.AccountInfo(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, addr, info.Account)
	}
}

func TestWSClient_ConnectionLost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Read one request and hang up without answering.
		conn.ReadMessage()
		conn.Close()
	}))
	defer srv.Close()

	c := dialTest(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	_, err := c.AccountInfo(context.Background(), "rA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionLost))
	assert.Eventually(t, func() bool { return !c.Connected() }, time.Second, 10*time.Millisecond)

	_, err = c.Submit(context.Background(), "00")
	assert.True(t, errors.Is(err, ErrConnectionLost))
}

func TestWSClient_Closed(t *testing.T) {
	url := newServer(t, func(req map[string]any) (any, string) { return map[string]any{}, "" })
	c := dialTest(t, url)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.False(t, c.Connected())

	_, err := c.Tx(context.Background(), "AA")
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestWSResponse_Decode(t *testing.T) {
	r := &wsResponse{Status: "success", Result: json.RawMessage(`{"x":1}`)}
	var out struct{ X int }
	require.NoError(t, r.decode("cmd", &out))
	assert.Equal(t, 1, out.X)

	r = &wsResponse{Status: "success"}
	assert.Error(t, r.decode("cmd", &out))
	assert.NoError(t, r.decode("cmd", nil))
}
