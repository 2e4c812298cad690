package starknet

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
)

type rpcRequest struct {
	Method string            `json:"method"`
	ID     json.RawMessage   `json:"id"`
	Params []json.RawMessage `json:"params"`
}

// rpcMock serves canned results keyed by method. A value of type rpcErr is
// returned as a JSON-RPC error.
type rpcErr struct {
	Code    int
	Message string
}

func rpcMock(t *testing.T, responses map[string]interface{}, seen func(rpcRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if seen != nil {
			seen(req)
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch v := responses[req.Method].(type) {
		case nil:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		case rpcErr:
			resp["error"] = map[string]interface{}{"code": v.Code, "message": v.Message}
		case func() interface{}:
			if res := v(); res != nil {
				if e, ok := res.(rpcErr); ok {
					resp["error"] = map[string]interface{}{"code": e.Code, "message": e.Message}
					break
				}
				resp["result"] = res
			}
		default:
			resp["result"] = v
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// ---------------------------------------------------------------------------
// Call
// ---------------------------------------------------------------------------

func TestCallEncodesRequest(t *testing.T) {
	var got rpcRequest
	srv := rpcMock(t, map[string]interface{}{
		"starknet_call": []string{"0x3e8", "0x0"},
	}, func(r rpcRequest) { got = r })

	c := dial(t, srv.URL)
	res, err := c.Call(context.Background(), FunctionCall{
		ContractAddress: big.NewInt(0xabc),
		EntryPoint:      "balance_of",
		Calldata:        []*big.Int{big.NewInt(0x123)},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, int64(1000), res[0].Int64())
	assert.Equal(t, int64(0), res[1].Int64())

	require.Len(t, got.Params, 2)
	var call wireCall
	require.NoError(t, json.Unmarshal(got.Params[0], &call))
	assert.Equal(t, "0xabc", call.ContractAddress)
	assert.Equal(t, felt.Hex(abi.Selector("balance_of")), call.EntryPointSelector)
	assert.Equal(t, []string{"0x123"}, call.Calldata)

	var block string
	require.NoError(t, json.Unmarshal(got.Params[1], &block))
	assert.Equal(t, "latest", block)
}

func TestCallNodeError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_call": rpcErr{Code: CodeContractNotFound, Message: "Contract not found"},
	}, nil)

	_, err := dial(t, srv.URL).Call(context.Background(), FunctionCall{
		ContractAddress: big.NewInt(1), EntryPoint: "name",
	})
	require.Error(t, err)
	assert.Equal(t, CodeContractNotFound, ErrorCode(err))
}

func TestCallBadFelt(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_call": []string{"0xzz"},
	}, nil)

	_, err := dial(t, srv.URL).Call(context.Background(), FunctionCall{
		ContractAddress: big.NewInt(1), EntryPoint: "name",
	})
	assert.ErrorIs(t, err, felt.ErrValue)
}

// ---------------------------------------------------------------------------
// Receipts
// ---------------------------------------------------------------------------

func receiptJSON(finality, execution string) map[string]interface{} {
	return map[string]interface{}{
		"transaction_hash": "0xfeed",
		"type":             "INVOKE",
		"execution_status": execution,
		"finality_status":  finality,
		"block_number":     42,
		"events": []map[string]interface{}{{
			"from_address": "0xabc",
			"keys":         []string{"0x1", "0x2"},
			"data":         []string{"0x3e8", "0x0"},
		}},
	}
}

func TestTransactionReceipt(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_getTransactionReceipt": receiptJSON(FinalityAcceptedOnL2, ExecutionSucceeded),
	}, nil)

	r, err := dial(t, srv.URL).TransactionReceipt(context.Background(), "0xfeed")
	require.NoError(t, err)
	assert.True(t, r.Final())
	assert.False(t, r.Reverted())
	assert.Equal(t, uint64(42), r.BlockNumber)
	require.Len(t, r.Events, 1)
	assert.True(t, r.Events[0].EmittedBy(big.NewInt(0xabc)))
	assert.Equal(t, int64(1), r.Events[0].Selector().Int64())
}

func TestTransactionReceiptNotFound(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpcErr{Code: CodeTxHashNotFound, Message: "Transaction hash not found"},
	}, nil)

	_, err := dial(t, srv.URL).TransactionReceipt(context.Background(), "0xfeed")
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestWaitForReceiptPollsUntilAccepted(t *testing.T) {
	var calls atomic.Int32
	srv := rpcMock(t, map[string]interface{}{
		"starknet_getTransactionReceipt": func() interface{} {
			switch calls.Add(1) {
			case 1:
				return rpcErr{Code: CodeTxHashNotFound, Message: "Transaction hash not found"}
			case 2:
				return receiptJSON("RECEIVED", ExecutionSucceeded)
			}
			return receiptJSON(FinalityAcceptedOnL2, ExecutionSucceeded)
		},
	}, nil)

	r, err := dial(t, srv.URL).WaitForReceipt(context.Background(), "0xfeed", 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, FinalityAcceptedOnL2, r.FinalityStatus)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitForReceiptTimeout(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpcErr{Code: CodeTxHashNotFound, Message: "Transaction hash not found"},
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := dial(t, srv.URL).WaitForReceipt(ctx, "0xfeed", 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForReceiptNodeError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_getTransactionReceipt": rpcErr{Code: -32603, Message: "internal"},
	}, nil)

	_, err := dial(t, srv.URL).WaitForReceipt(context.Background(), "0xfeed", time.Millisecond)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTxNotFound)
}

// ---------------------------------------------------------------------------
// Chain info
// ---------------------------------------------------------------------------

func TestChainIDAndBlockNumber(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"starknet_chainId":     "0x534e5f5345504f4c4941",
		"starknet_blockNumber": 123456,
	}, nil)
	c := dial(t, srv.URL)

	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x534e5f5345504f4c4941", id)

	n, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), n)

	lat, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Greater(t, lat, time.Duration(0))
	assert.Equal(t, srv.URL, c.URL())
}

func TestEventHelpersTolerateGarbage(t *testing.T) {
	ev := Event{FromAddress: "nope", Keys: []string{"zz"}}
	assert.Nil(t, ev.Selector())
	assert.False(t, ev.EmittedBy(big.NewInt(1)))
	assert.Nil(t, Event{}.Selector())
}
