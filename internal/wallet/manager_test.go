package wallet

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

type fakeProvider struct {
	accounts   []string
	accountErr error
	chainID    string
	hash       string
	invoked    [][]InvokeCall
	closed     int
}

func (p *fakeProvider) RequestAccounts(context.Context) ([]string, error) {
	return p.accounts, p.accountErr
}

func (p *fakeProvider) RequestChainID(context.Context) (string, error) { return p.chainID, nil }

func (p *fakeProvider) AddInvokeTransaction(_ context.Context, calls []InvokeCall) (string, error) {
	p.invoked = append(p.invoked, calls)
	return p.hash, nil
}

func (p *fakeProvider) Close() { p.closed++ }

func dialerFor(p *fakeProvider, dials *int) Dialer {
	return func(context.Context, string, string) (Provider, error) {
		if dials != nil {
			*dials++
		}
		return p, nil
	}
}

func newTestManager(p *fakeProvider, opts ...Option) *SessionManager {
	base := []Option{WithInMemoryStore(), WithBridge("http://wallet.test", ""), WithDialer(dialerFor(p, nil))}
	return NewSessionManager(append(base, opts...)...)
}

// ---------------------------------------------------------------------------
// Connect / Disconnect
// ---------------------------------------------------------------------------

func TestConnectStoresSession(t *testing.T) {
	p := &fakeProvider{accounts: []string{"0x00000abc"}, chainID: "0x534e5f5345504f4c4941"}
	m := newTestManager(p)

	sess, err := m.Connect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "0xabc", sess.Address)
	assert.Equal(t, "0x534e5f5345504f4c4941", sess.ChainID)
	assert.Equal(t, "http://wallet.test", sess.BridgeURL)

	addr, ok := m.Address()
	assert.True(t, ok)
	assert.Equal(t, "0xabc", addr)
	assert.NotNil(t, m.Invoker())
}

func TestConnectTogglesOff(t *testing.T) {
	p := &fakeProvider{accounts: []string{"0xabc"}}
	m := newTestManager(p)

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	sess, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Nil(t, m.Current())
	assert.Equal(t, 1, p.closed)
}

func TestConnectRefusedStaysDisconnected(t *testing.T) {
	p := &fakeProvider{accountErr: fmt.Errorf("wallet_requestAccounts: %w", ErrUserRefused)}
	m := newTestManager(p)

	sess, err := m.Connect(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, sess)

	addr, ok := m.Address()
	assert.False(t, ok)
	assert.Empty(t, addr)
	assert.Nil(t, m.Invoker())
}

func TestConnectNoAccounts(t *testing.T) {
	m := newTestManager(&fakeProvider{})
	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoAccounts)
	assert.Nil(t, m.Current())
}

func TestConnectWithoutBridgeURL(t *testing.T) {
	m := NewSessionManager(WithInMemoryStore())
	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoBridgeURL)
}

func TestDisconnectIdempotent(t *testing.T) {
	p := &fakeProvider{accounts: []string{"0xabc"}}
	m := newTestManager(p)

	require.NoError(t, m.Disconnect())
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Disconnect())
	require.NoError(t, m.Disconnect())
	assert.Nil(t, m.Current())
}

func TestCurrentReturnsCopy(t *testing.T) {
	m := newTestManager(&fakeProvider{accounts: []string{"0xabc"}})
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	s := m.Current()
	s.Address = "0xdead"
	addr, _ := m.Address()
	assert.Equal(t, "0xabc", addr)
}

func TestConcurrentReadersDuringConnect(t *testing.T) {
	m := newTestManager(&fakeProvider{accounts: []string{"0xabc"}})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Address()
		}()
	}
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	wg.Wait()
}

// ---------------------------------------------------------------------------
// Invoker
// ---------------------------------------------------------------------------

func TestInvokerSubmitsThroughProvider(t *testing.T) {
	p := &fakeProvider{accounts: []string{"0xabc"}, hash: "0xbeef"}
	m := newTestManager(p)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	hash, err := m.Invoker().Invoke(context.Background(), starknet.FunctionCall{
		ContractAddress: big.NewInt(0x70),
		EntryPoint:      "burn",
		Calldata:        []*big.Int{big.NewInt(5), big.NewInt(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", hash)
	require.Len(t, p.invoked, 1)
	assert.Equal(t, "0x70", p.invoked[0][0].ContractAddress)
	assert.Equal(t, []string{"0x5", "0x0"}, p.invoked[0][0].Calldata)
}

func TestInvokerAfterDisconnectFails(t *testing.T) {
	m := newTestManager(&fakeProvider{accounts: []string{"0xabc"}})
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	inv := m.Invoker()
	require.NoError(t, m.Disconnect())
	_, err = inv.Invoke(context.Background(), starknet.FunctionCall{ContractAddress: big.NewInt(1), EntryPoint: "burn"})
	assert.Error(t, err)
}

func TestSessionSurvivesRestartWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	p := &fakeProvider{accounts: []string{"0xabc"}, hash: "0x1"}

	first := NewSessionManager(WithStore(NewFileStore(path)), WithBridge("http://wallet.test", ""), WithDialer(dialerFor(p, nil)))
	_, err := first.Connect(context.Background())
	require.NoError(t, err)
	first.Close()

	dials := 0
	second := NewSessionManager(WithStore(NewFileStore(path)), WithDialer(dialerFor(p, &dials)))
	addr, ok := second.Address()
	require.True(t, ok)
	assert.Equal(t, "0xabc", addr)

	_, err = second.Invoker().Invoke(context.Background(), starknet.FunctionCall{ContractAddress: big.NewInt(1), EntryPoint: "claim_ownership"})
	require.NoError(t, err)
	assert.Equal(t, 1, dials)

	require.NoError(t, second.Disconnect())
	third := NewSessionManager(WithStore(NewFileStore(path)))
	assert.Nil(t, third.Current())
}
