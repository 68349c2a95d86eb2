package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Klingon-tech/mptkit/pkg/fault"
)

// Dialer opens a new connection.
type Dialer func(ctx context.Context) (Client, error)

// ManagerConfig bounds connection establishment.
type ManagerConfig struct {
	Attempts       int
	Backoff        time.Duration // multiplied by the attempt number
	ConnectTimeout time.Duration
}

// DefaultManagerConfig returns three attempts with 1s linear backoff.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Attempts:       3,
		Backoff:        time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

// Manager owns the shared connection. Concurrent callers that need a
// connection while one is being established wait for the same attempt and
// share its result. A failed attempt is forgotten so the next caller
// retries. Manager itself implements Client; every error it returns other
// than ErrAccountNotFound and ErrTxNotFound is a *fault.TransportError.
type Manager struct {
	dial  Dialer
	cfg   ManagerConfig
	log   zerolog.Logger
	group singleflight.Group

	mu     sync.Mutex
	client Client
	closed bool

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager creates a manager that connects lazily with dial.
func NewManager(dial Dialer, cfg ManagerConfig, l zerolog.Logger) *Manager {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Manager{dial: dial, cfg: cfg, log: l, sleep: sleepCtx}
}

// NewWSManager is NewManager with a websocket dialer for url.
func NewWSManager(url string, ws WSConfig, cfg ManagerConfig, l zerolog.Logger) *Manager {
	return NewManager(func(ctx context.Context) (Client, error) {
		return DialWS(ctx, url, ws, l)
	}, cfg, l)
}

// Client returns the live connection, establishing it if needed.
func (m *Manager) Client(ctx context.Context) (Client, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, &fault.TransportError{Op: "connect", Err: ErrClosed}
	}
	if m.client != nil && m.client.Connected() {
		c := m.client
		m.mu.Unlock()
		return c, nil
	}
	m.mu.Unlock()

	v, err, shared := m.group.Do("connect", func() (any, error) {
		return m.connect(ctx)
	})
	if shared {
		m.log.Debug().Msg("Joined in-flight connection attempt")
	}
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

func (m *Manager) connect(ctx context.Context) (Client, error) {
	m.mu.Lock()
	stale := m.client
	m.client = nil
	m.mu.Unlock()
	if stale != nil {
		stale.Close()
	}

	var lastErr error
	for attempt := 1; attempt <= m.cfg.Attempts; attempt++ {
		dialCtx, cancel := ctx, context.CancelFunc(func() {})
		if m.cfg.ConnectTimeout > 0 {
			dialCtx, cancel = context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		}
		c, err := m.dial(dialCtx)
		cancel()
		if err == nil {
			m.mu.Lock()
			if m.closed {
				m.mu.Unlock()
				c.Close()
				return nil, &fault.TransportError{Op: "connect", Attempts: attempt, Err: ErrClosed}
			}
			m.client = c
			m.mu.Unlock()
			if attempt > 1 {
				m.log.Info().Int("attempt", attempt).Msg("Connected after retry")
			}
			return c, nil
		}

		lastErr = err
		m.log.Warn().Err(err).Int("attempt", attempt).Int("max", m.cfg.Attempts).Msg("Connection attempt failed")
		if ctx.Err() != nil {
			break
		}
		if attempt < m.cfg.Attempts {
			if err := m.sleep(ctx, m.cfg.Backoff*time.Duration(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}
	return nil, &fault.TransportError{
		Op:       "connect",
		Attempts: m.cfg.Attempts,
		Timeout:  errors.Is(lastErr, context.DeadlineExceeded),
		Err:      lastErr,
	}
}

// AccountInfo implements Client.
func (m *Manager) AccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	info, err := c.AccountInfo(ctx, address)
	return info, m.wrap("account_info", err)
}

// Submit implements Client. A submission is never retried here.
func (m *Manager) Submit(ctx context.Context, blob string) (*SubmitResult, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.Submit(ctx, blob)
	return res, m.wrap("submit", err)
}

// Tx implements Client.
func (m *Manager) Tx(ctx context.Context, hash string) (*TxResult, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.Tx(ctx, hash)
	return res, m.wrap("tx", err)
}

// AccountObjects implements Client.
func (m *Manager) AccountObjects(ctx context.Context, address, objectType string, marker json.RawMessage) (*ObjectsPage, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	page, err := c.AccountObjects(ctx, address, objectType, marker)
	return page, m.wrap("account_objects", err)
}

// Connected reports whether a live connection is held.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil && m.client.Connected()
}

// Close closes the held connection. The manager cannot be reused.
func (m *Manager) Close() error {
	m.mu.Lock()
	c := m.client
	m.client = nil
	m.closed = true
	m.mu.Unlock()
	if c != nil {
		return c.Close()
	}
	return nil
}

func (m *Manager) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrTxNotFound) {
		return err
	}
	var te *fault.TransportError
	if errors.As(err, &te) {
		return err
	}
	return &fault.TransportError{
		Op:       op,
		Attempts: 1,
		Timeout:  errors.Is(err, context.DeadlineExceeded),
		Err:      err,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
