package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Klingon-tech/mptkit/pkg/mpt"
)

// WSConfig configures a websocket client.
type WSConfig struct {
	HandshakeTimeout time.Duration
	RequestTimeout   time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	// RateLimit is the outbound request rate per second. Zero disables pacing.
	RateLimit float64
	Burst     int
}

// DefaultWSConfig returns the settings used against public servers.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		HandshakeTimeout: 10 * time.Second,
		RequestTimeout:   15 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     30 * time.Second,
		RateLimit:        10,
		Burst:            5,
	}
}

// WSClient implements Client over the server's websocket JSON API.
// Requests are correlated with responses by id, so it is safe for
// concurrent use.
type WSClient struct {
	url     string
	cfg     WSConfig
	log     zerolog.Logger
	limiter *rate.Limiter

	conn    *websocket.Conn
	writeMu sync.Mutex

	nextID    atomic.Uint64
	pending   map[uint64]chan *wsResponse
	pendingMu sync.Mutex

	connected atomic.Bool
	closed    atomic.Bool
	done      chan struct{}
	wg        sync.WaitGroup
}

// DialWS connects to url and starts the reader.
func DialWS(ctx context.Context, url string, cfg WSConfig, l zerolog.Logger) (*WSClient, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}

	c := &WSClient{
		url:     url,
		cfg:     cfg,
		log:     l,
		conn:    conn,
		pending: make(map[uint64]chan *wsResponse),
		done:    make(chan struct{}),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	c.connected.Store(true)

	c.wg.Add(1)
	go c.readLoop()
	if cfg.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop()
	}

	l.Debug().Str("url", url).Msg("Connected")
	return c, nil
}

// Connected reports whether the socket is still usable.
func (c *WSClient) Connected() bool {
	return c.connected.Load() && !c.closed.Load()
}

// AccountInfo returns the validated account root of address.
func (c *WSClient) AccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	var res struct {
		AccountData AccountInfo `json:"account_data"`
	}
	err := c.call(ctx, "account_info", map[string]any{
		"account":      address,
		"ledger_index": "validated",
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res.AccountData, nil
}

// Submit sends a signed blob.
func (c *WSClient) Submit(ctx context.Context, blob string) (*SubmitResult, error) {
	var res struct {
		EngineResult        string `json:"engine_result"`
		EngineResultMessage string `json:"engine_result_message"`
		Accepted            bool   `json:"accepted"`
		Applied             bool   `json:"applied"`
		Broadcast           bool   `json:"broadcast"`
		Queued              bool   `json:"queued"`
		TxJSON              struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := c.call(ctx, "submit", map[string]any{"tx_blob": blob}, &res); err != nil {
		return nil, err
	}
	return &SubmitResult{
		EngineResult:        res.EngineResult,
		EngineResultMessage: res.EngineResultMessage,
		Hash:                res.TxJSON.Hash,
		Accepted:            res.Accepted,
		Applied:             res.Applied,
		Broadcast:           res.Broadcast,
		Queued:              res.Queued,
	}, nil
}

// txFields is the part of a tx result shared by API v1 (top level) and
// v2 (nested under tx_json).
type txFields struct {
	Hash            string `json:"hash"`
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Sequence        uint32 `json:"Sequence"`
}

// Tx looks up a transaction by hash.
func (c *WSClient) Tx(ctx context.Context, hash string) (*TxResult, error) {
	var res struct {
		txFields
		TxJSON      *txFields            `json:"tx_json"`
		Validated   bool                 `json:"validated"`
		LedgerIndex uint32               `json:"ledger_index"`
		Meta        *mpt.TransactionMeta `json:"meta"`
	}
	if err := c.call(ctx, "tx", map[string]any{"transaction": hash}, &res); err != nil {
		return nil, err
	}
	f := res.txFields
	if res.TxJSON != nil {
		f = *res.TxJSON
		if f.Hash == "" {
			f.Hash = res.Hash
		}
	}
	return &TxResult{
		Hash:            f.Hash,
		TransactionType: f.TransactionType,
		Account:         f.Account,
		Sequence:        f.Sequence,
		Validated:       res.Validated,
		LedgerIndex:     res.LedgerIndex,
		Meta:            res.Meta,
	}, nil
}

// AccountObjects returns one page of objects of objectType owned by address.
func (c *WSClient) AccountObjects(ctx context.Context, address, objectType string, marker json.RawMessage) (*ObjectsPage, error) {
	params := map[string]any{
		"account":      address,
		"type":         objectType,
		"limit":        PageLimit,
		"ledger_index": "validated",
	}
	if len(marker) > 0 {
		params["marker"] = marker
	}
	var res struct {
		AccountObjects []json.RawMessage `json:"account_objects"`
		Marker         json.RawMessage   `json:"marker"`
	}
	if err := c.call(ctx, "account_objects", params, &res); err != nil {
		return nil, err
	}
	return &ObjectsPage{Objects: res.AccountObjects, Marker: res.Marker}, nil
}

// Close shuts the connection down and fails outstanding requests.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.wg.Wait()
	return err
}

func (c *WSClient) call(ctx context.Context, command string, params map[string]any, out any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.connected.Load() {
		return fmt.Errorf("%s: %w", command, ErrConnectionLost)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", command, err)
		}
	}
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	id := c.nextID.Add(1)
	req := make(map[string]any, len(params)+2)
	for k, v := range params {
		req[k] = v
	}
	req["id"] = id
	req["command"] = command

	ch := make(chan *wsResponse, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()
	// The reader may have failed between the first check and registration.
	if !c.connected.Load() {
		return fmt.Errorf("%s: %w", command, ErrConnectionLost)
	}

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.connected.Store(false)
		return fmt.Errorf("%s: write: %w: %v", command, ErrConnectionLost, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return fmt.Errorf("%s: %w", command, ErrConnectionLost)
		}
		return resp.decode(command, out)
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", command, ctx.Err())
	}
}

func (c *WSClient) readLoop() {
	defer c.wg.Done()
	defer c.failPending()

	for {
		var resp wsResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.connected.Store(false)
			if !c.closed.Load() {
				c.log.Warn().Err(err).Str("url", c.url).Msg("Connection lost")
			}
			return
		}
		if resp.Type != "" && resp.Type != "response" {
			// Stream messages (ledgerClosed, transaction) are not subscribed to.
			continue
		}

		c.deliver(&resp)
	}
}

// deliver hands resp to the request waiting for its id. It never blocks:
// a repeated id finds the slot full and is dropped.
func (c *WSClient) deliver(resp *wsResponse) {
	c.pendingMu.Lock()
	ch, ok := c.pending[resp.ID]
	c.pendingMu.Unlock()
	if !ok {
		c.log.Debug().Uint64("id", resp.ID).Msg("Dropping response for unknown request")
		return
	}
	select {
	case ch <- resp:
	default:
		c.log.Debug().Uint64("id", resp.ID).Msg("Dropping repeated response")
	}
}

func (c *WSClient) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.connected.Store(false)
				return
			}
		}
	}
}

type wsResponse struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

func (r *wsResponse) decode(command string, out any) error {
	if r.Status == "error" || r.Error != "" {
		switch r.Error {
		case "actNotFound":
			return fmt.Errorf("%s: %w", command, ErrAccountNotFound)
		case "txnNotFound":
			return fmt.Errorf("%s: %w", command, ErrTxNotFound)
		}
		return &ServerError{Command: command, Code: r.Error, Message: r.ErrorMessage}
	}
	if out == nil {
		return nil
	}
	if len(r.Result) == 0 {
		return fmt.Errorf("%s: response has no result", command)
	}
	if err := json.Unmarshal(r.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", command, err)
	}
	return nil
}
