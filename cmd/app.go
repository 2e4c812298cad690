package cmd

import (
	"context"
	"errors"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/config"
	"github.com/Mohsinsiddi/stark20/internal/contract"
	"github.com/Mohsinsiddi/stark20/internal/journal"
	"github.com/Mohsinsiddi/stark20/internal/rpc"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
	"github.com/Mohsinsiddi/stark20/internal/txflow"
	"github.com/Mohsinsiddi/stark20/internal/wallet"
)

// sessionPath is where the wallet session survives between invocations.
var sessionPath = wallet.DefaultSessionPath

// dialNode validates the config and connects to the best configured node.
func dialNode(ctx context.Context) (*starknet.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	algo, _ := rpc.ParseAlgorithm(cfg.RPCAlgorithm)

	selectCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	url, err := rpc.Select(selectCtx, cfg.Endpoints(), algo, probe)
	cancel()
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("url", url).Str("algorithm", string(algo)).Msg("node selected")
	return starknet.Dial(ctx, url)
}

func descriptor() (*abi.Descriptor, error) {
	if cfg.ABIFile != "" {
		return abi.Load(cfg.ABIFile)
	}
	return abi.BuiltinDescriptor("erc20")
}

// bridgeToken looks up the bearer token for url. A missing token is fine:
// local bridges usually run without one.
func bridgeToken(url string) string {
	tok, err := wallet.DefaultKeystore().Token(url)
	if err != nil && !errors.Is(err, wallet.ErrTokenNotFound) {
		logger.Warn().Err(err).Msg("could not read bridge token")
	}
	return tok
}

// sessions returns the manager backed by the session file. bridgeURL
// overrides the bridge of a fresh connection; a persisted session keeps the
// bridge it was opened with. The keychain is only consulted when the manager
// will talk to the bridge. opts are applied last.
func sessions(bridgeURL string, dial bool, opts ...wallet.Option) *wallet.SessionManager {
	store := wallet.NewFileStore(sessionPath())
	if bridgeURL == "" {
		bridgeURL = cfg.WalletURL
	}
	if sess, err := store.Load(); err == nil && sess != nil && sess.BridgeURL != "" {
		bridgeURL = sess.BridgeURL
	}
	var tok string
	if dial {
		tok = bridgeToken(bridgeURL)
	}
	return wallet.NewSessionManager(append([]wallet.Option{
		wallet.WithStore(store),
		wallet.WithBridge(bridgeURL, tok),
		wallet.WithLogger(logger),
	}, opts...)...)
}

// token bundles what a contract command needs. Close releases the node
// connection and the wallet bridge.
type token struct {
	node     *starknet.Client
	gateway  *contract.Gateway
	sessions *wallet.SessionManager
}

func (t *token) Close() {
	if t.sessions != nil {
		t.sessions.Close()
	}
	if t.node != nil {
		t.node.Close()
	}
}

// openToken connects to the node and builds the gateway. With write set the
// wallet session is required and checked before any network access. check,
// when given, runs after the session check and before the node is dialled.
func openToken(ctx context.Context, write bool, check ...func() error) (*token, error) {
	desc, err := descriptor()
	if err != nil {
		return nil, err
	}

	t := &token{}
	var invoker contract.Invoker
	if write {
		t.sessions = sessions("", true)
		inv := t.sessions.Invoker()
		if inv == nil {
			t.Close()
			return nil, contract.ErrNotConnected
		}
		invoker = inv
	}
	for _, c := range check {
		if err := c(); err != nil {
			t.Close()
			return nil, err
		}
	}

	if t.node, err = dialNode(ctx); err != nil {
		t.Close()
		return nil, err
	}
	if t.gateway, err = contract.New(desc, cfg.ContractAddress, t.node, invoker); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// pipeline confirms calls of t, recording every transition in the journal.
func (t *token) pipeline(observers ...txflow.Observer) *txflow.Pipeline {
	j := journal.Open(journal.DefaultPath(cfg.Dir())).WithLogger(logger)
	opts := []txflow.Option{
		txflow.WithTimeout(cfg.ConfirmTimeout),
		txflow.WithPollInterval(cfg.PollInterval),
		txflow.WithLogger(logger),
		txflow.WithObserver(j.Observe),
	}
	for _, o := range observers {
		opts = append(opts, txflow.WithObserver(o))
	}
	return txflow.New(t.node, t.gateway, opts...)
}
