package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/stark20/internal/felt"
)

// Wallet API error codes.
const (
	CodeNotAllowed      = 111
	CodeInvalidRequest  = 112
	CodeUserRefusedOp   = 113
	CodeInvalidParams   = 114
	CodeAccountNotFound = 115
)

// ErrUserRefused is returned when the user declines a wallet prompt.
var ErrUserRefused = errors.New("user refused the request")

// Provider is the signing wallet as seen by the client.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	RequestChainID(ctx context.Context) (string, error)
	AddInvokeTransaction(ctx context.Context, calls []InvokeCall) (string, error)
	Close()
}

// Dialer opens a Provider for a bridge endpoint.
type Dialer func(ctx context.Context, url, token string) (Provider, error)

// InvokeCall is one call of a multicall invoke transaction.
type InvokeCall struct {
	ContractAddress string   `json:"contract_address"`
	EntryPoint      string   `json:"entry_point"`
	Calldata        []string `json:"calldata"`
}

// NewInvokeCall renders a call for the wallet API.
func NewInvokeCall(contract *big.Int, entryPoint string, calldata []*big.Int) InvokeCall {
	return InvokeCall{
		ContractAddress: felt.Hex(contract),
		EntryPoint:      entryPoint,
		Calldata:        felt.HexSlice(calldata),
	}
}

// Bridge speaks the wallet JSON-RPC API (wallet_requestAccounts,
// wallet_addInvokeTransaction, ...) to a local signing wallet.
type Bridge struct {
	url string
	rpc *rpc.Client
}

// DialBridge connects to a wallet bridge. A non-empty token is sent as a
// bearer Authorization header.
func DialBridge(ctx context.Context, url, token string) (*Bridge, error) {
	opts := []rpc.ClientOption{
		// Signing prompts wait on the user.
		rpc.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
	}
	if token != "" {
		opts = append(opts, rpc.WithHeader("Authorization", "Bearer "+token))
	}
	c, err := rpc.DialOptions(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("dialing wallet bridge %s: %w", url, err)
	}
	return &Bridge{url: url, rpc: c}, nil
}

// DialProvider is the default Dialer.
func DialProvider(ctx context.Context, url, token string) (Provider, error) {
	return DialBridge(ctx, url, token)
}

// RequestAccounts asks the wallet to expose its account, prompting the user
// if needed.
func (b *Bridge) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	params := map[string]bool{"silent_mode": false}
	if err := b.rpc.CallContext(ctx, &accounts, "wallet_requestAccounts", params); err != nil {
		return nil, bridgeErr("wallet_requestAccounts", err)
	}
	return accounts, nil
}

// RequestChainID returns the chain the wallet is connected to.
func (b *Bridge) RequestChainID(ctx context.Context) (string, error) {
	var id string
	if err := b.rpc.CallContext(ctx, &id, "wallet_requestChainId"); err != nil {
		return "", bridgeErr("wallet_requestChainId", err)
	}
	return id, nil
}

// AddInvokeTransaction asks the wallet to sign and broadcast calls and
// returns the transaction hash.
func (b *Bridge) AddInvokeTransaction(ctx context.Context, calls []InvokeCall) (string, error) {
	var res struct {
		TransactionHash string `json:"transaction_hash"`
	}
	params := map[string]interface{}{"calls": calls}
	if err := b.rpc.CallContext(ctx, &res, "wallet_addInvokeTransaction", params); err != nil {
		return "", bridgeErr("wallet_addInvokeTransaction", err)
	}
	if res.TransactionHash == "" {
		return "", errors.New("wallet_addInvokeTransaction: empty transaction hash")
	}
	return res.TransactionHash, nil
}

// Close releases the connection.
func (b *Bridge) Close() { b.rpc.Close() }

func bridgeErr(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeUserRefusedOp {
		return fmt.Errorf("%s: %w", method, ErrUserRefused)
	}
	return fmt.Errorf("%s: %w", method, err)
}
