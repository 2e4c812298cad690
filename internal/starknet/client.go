package starknet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
)

// Node error codes defined by the Starknet JSON-RPC API.
const (
	CodeContractNotFound = 20
	CodeBlockNotFound    = 24
	CodeTxHashNotFound   = 29
	CodeContractError    = 40
)

// ErrTxNotFound is returned while the node has not seen a transaction yet.
var ErrTxNotFound = errors.New("transaction hash not found")

// Client is a Starknet JSON-RPC client bound to one node endpoint.
type Client struct {
	url string
	rpc *rpc.Client
}

// Dial connects to the node at url. HTTP endpoints are not contacted until
// the first call.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &Client{url: url, rpc: c}, nil
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// Close releases the underlying connection.
func (c *Client) Close() { c.rpc.Close() }

// FunctionCall is a read-only contract invocation.
type FunctionCall struct {
	ContractAddress *big.Int
	EntryPoint      string
	Calldata        []*big.Int
}

type wireCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

// Call executes a view function against the latest block and returns the
// raw result felts.
func (c *Client) Call(ctx context.Context, call FunctionCall) ([]*big.Int, error) {
	req := wireCall{
		ContractAddress:    felt.Hex(call.ContractAddress),
		EntryPointSelector: felt.Hex(abi.Selector(call.EntryPoint)),
		Calldata:           felt.HexSlice(call.Calldata),
	}
	var out []string
	if err := c.rpc.CallContext(ctx, &out, "starknet_call", req, "latest"); err != nil {
		return nil, fmt.Errorf("starknet_call %s: %w", call.EntryPoint, err)
	}
	res, err := felt.ParseSlice(out)
	if err != nil {
		return nil, fmt.Errorf("starknet_call %s: %w", call.EntryPoint, err)
	}
	return res, nil
}

// TransactionReceipt fetches a receipt. ErrTxNotFound is returned while the
// transaction is unknown to the node.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var r Receipt
	if err := c.rpc.CallContext(ctx, &r, "starknet_getTransactionReceipt", hash); err != nil {
		if ErrorCode(err) == CodeTxHashNotFound {
			return nil, fmt.Errorf("%s: %w", hash, ErrTxNotFound)
		}
		return nil, fmt.Errorf("starknet_getTransactionReceipt: %w", err)
	}
	if r.TransactionHash == "" {
		r.TransactionHash = hash
	}
	return &r, nil
}

// ChainID returns the chain id reported by the node, e.g. "0x534e5f5345504f4c4941".
func (c *Client) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := c.rpc.CallContext(ctx, &id, "starknet_chainId"); err != nil {
		return "", fmt.Errorf("starknet_chainId: %w", err)
	}
	return id, nil
}

// BlockNumber returns the latest accepted block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := c.rpc.CallContext(ctx, &n, "starknet_blockNumber"); err != nil {
		return 0, fmt.Errorf("starknet_blockNumber: %w", err)
	}
	return n, nil
}

// Ping measures the round-trip latency of a starknet_blockNumber request.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := c.BlockNumber(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// WaitForReceipt polls every interval until the transaction reaches L2 or
// L1 finality, or ctx is done. A reverted receipt is returned without error;
// callers inspect ExecutionStatus.
func (c *Client) WaitForReceipt(ctx context.Context, hash string, interval time.Duration) (*Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		r, err := c.TransactionReceipt(ctx, hash)
		switch {
		case errors.Is(err, ErrTxNotFound):
		case err != nil:
			return nil, err
		case r.Final():
			return r, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// ErrorCode extracts the JSON-RPC error code from err, or 0.
func ErrorCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}
