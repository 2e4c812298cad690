package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

// Errors.
var (
	ErrNoAccounts  = errors.New("wallet exposed no accounts")
	ErrNoBridgeURL = errors.New("wallet bridge URL not configured")
)

// Invoker submits state-changing calls on behalf of the connected account.
type Invoker interface {
	Invoke(ctx context.Context, call starknet.FunctionCall) (string, error)
}

// SessionManager owns the single optional session slot. All methods are safe
// for concurrent use.
type SessionManager struct {
	mu        sync.Mutex
	store     SessionStore
	dial      Dialer
	bridgeURL string
	token     string
	log       zerolog.Logger

	loaded   bool
	current  *Session
	provider Provider
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithInMemoryStore keeps the session in memory only.
func WithInMemoryStore() Option {
	return func(m *SessionManager) { m.store = &memStore{} }
}

// WithStore sets a custom session store.
func WithStore(s SessionStore) Option {
	return func(m *SessionManager) { m.store = s }
}

// WithBridge sets the wallet bridge endpoint and its bearer token.
func WithBridge(url, token string) Option {
	return func(m *SessionManager) {
		m.bridgeURL = url
		m.token = token
	}
}

// WithDialer replaces the bridge dialer.
func WithDialer(d Dialer) Option {
	return func(m *SessionManager) { m.dial = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *SessionManager) { m.log = l }
}

// NewSessionManager creates a disconnected manager.
func NewSessionManager(opts ...Option) *SessionManager {
	m := &SessionManager{
		store: &memStore{},
		dial:  DialProvider,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect toggles the connection. With an active session it disconnects and
// returns (nil, nil). Otherwise it asks the wallet for its account; a user
// refusal leaves the manager disconnected and also returns (nil, nil).
func (m *SessionManager) Connect(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(); err != nil {
		return nil, err
	}
	if m.current != nil {
		return nil, m.teardown()
	}
	if m.bridgeURL == "" {
		return nil, ErrNoBridgeURL
	}

	p, err := m.dial(ctx, m.bridgeURL, m.token)
	if err != nil {
		return nil, err
	}
	accounts, err := p.RequestAccounts(ctx)
	if errors.Is(err, ErrUserRefused) {
		p.Close()
		m.log.Debug().Str("bridge", m.bridgeURL).Msg("connection refused by user")
		return nil, nil
	}
	if err != nil {
		p.Close()
		return nil, err
	}
	if len(accounts) == 0 {
		p.Close()
		return nil, ErrNoAccounts
	}
	addr, err := felt.ParseAddress(accounts[0])
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("wallet account: %w", err)
	}
	chainID, err := p.RequestChainID(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("wallet did not report a chain id")
	}

	sess := &Session{
		Address:     felt.FormatAddress(addr),
		ChainID:     chainID,
		BridgeURL:   m.bridgeURL,
		ConnectedAt: time.Now().UTC(),
	}
	if err := m.store.Save(sess); err != nil {
		p.Close()
		return nil, err
	}
	m.current = sess
	m.provider = p
	m.log.Info().Str("address", sess.Address).Str("chain", chainID).Msg("wallet connected")
	return sess, nil
}

// Disconnect clears the session. Calling it while disconnected is a no-op.
func (m *SessionManager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	if m.current == nil {
		return nil
	}
	return m.teardown()
}

// Address returns the connected account address, or ("", false).
func (m *SessionManager) Address() (string, bool) {
	sess := m.Current()
	if sess == nil {
		return "", false
	}
	return sess.Address, true
}

// Current returns a copy of the active session, or nil.
func (m *SessionManager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		m.log.Warn().Err(err).Msg("loading session")
		return nil
	}
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// Invoker returns the write capability of the connected account, or nil when
// disconnected.
func (m *SessionManager) Invoker() Invoker {
	if m.Current() == nil {
		return nil
	}
	return &account{m: m}
}

// Close releases the bridge connection without ending the session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.provider != nil {
		m.provider.Close()
		m.provider = nil
	}
}

// providerFor returns a live provider for the current session, dialing the
// bridge recorded in the session if needed.
func (m *SessionManager) providerFor(ctx context.Context) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, errors.New("wallet disconnected")
	}
	if m.provider != nil {
		return m.provider, nil
	}
	url := m.current.BridgeURL
	if url == "" {
		url = m.bridgeURL
	}
	p, err := m.dial(ctx, url, m.token)
	if err != nil {
		return nil, err
	}
	m.provider = p
	return p, nil
}

func (m *SessionManager) teardown() error {
	if m.provider != nil {
		m.provider.Close()
		m.provider = nil
	}
	addr := m.current.Address
	m.current = nil
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	m.log.Info().Str("address", addr).Msg("wallet disconnected")
	return nil
}

func (m *SessionManager) load() error {
	if m.loaded {
		return nil
	}
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	m.current = sess
	m.loaded = true
	return nil
}

// account is the Invoker bound to a SessionManager.
type account struct {
	m *SessionManager
}

func (a *account) Invoke(ctx context.Context, call starknet.FunctionCall) (string, error) {
	p, err := a.m.providerFor(ctx)
	if err != nil {
		return "", err
	}
	inv := NewInvokeCall(call.ContractAddress, call.EntryPoint, call.Calldata)
	return p.AddInvokeTransaction(ctx, []InvokeCall{inv})
}
