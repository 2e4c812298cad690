package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bridgeRequest struct {
	Method string            `json:"method"`
	ID     json.RawMessage   `json:"id"`
	Params []json.RawMessage `json:"params"`
}

// bridgeMock answers wallet_* methods. Values of type int are returned as
// JSON-RPC error codes.
func bridgeMock(t *testing.T, responses map[string]interface{}, seen func(*http.Request, bridgeRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req bridgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if seen != nil {
			seen(r, req)
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch v := responses[req.Method].(type) {
		case nil:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		case int:
			resp["error"] = map[string]interface{}{"code": v, "message": "wallet error"}
		default:
			resp["result"] = v
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// Bridge
// ---------------------------------------------------------------------------

func TestBridgeRequestAccounts(t *testing.T) {
	var auth string
	srv := bridgeMock(t, map[string]interface{}{
		"wallet_requestAccounts": []string{"0x0123abc"},
		"wallet_requestChainId":  "0x534e5f5345504f4c4941",
	}, func(r *http.Request, _ bridgeRequest) { auth = r.Header.Get("Authorization") })

	b, err := DialBridge(context.Background(), srv.URL, "s3cret")
	require.NoError(t, err)
	defer b.Close()

	accounts, err := b.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0123abc"}, accounts)
	assert.Equal(t, "Bearer s3cret", auth)

	id, err := b.RequestChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x534e5f5345504f4c4941", id)
}

func TestBridgeRefusalMapsToErrUserRefused(t *testing.T) {
	srv := bridgeMock(t, map[string]interface{}{
		"wallet_requestAccounts":      CodeUserRefusedOp,
		"wallet_addInvokeTransaction": CodeUserRefusedOp,
	}, nil)

	b, err := DialBridge(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, ErrUserRefused)
	_, err = b.AddInvokeTransaction(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUserRefused)
}

func TestBridgeOtherErrorsAreNotRefusals(t *testing.T) {
	srv := bridgeMock(t, map[string]interface{}{"wallet_requestAccounts": CodeNotAllowed}, nil)

	b, err := DialBridge(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.RequestAccounts(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserRefused)
}

func TestBridgeAddInvokeTransaction(t *testing.T) {
	var got bridgeRequest
	srv := bridgeMock(t, map[string]interface{}{
		"wallet_addInvokeTransaction": map[string]string{"transaction_hash": "0xbeef"},
	}, func(_ *http.Request, r bridgeRequest) { got = r })

	b, err := DialBridge(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer b.Close()

	call := NewInvokeCall(big.NewInt(0xabc), "mint", []*big.Int{big.NewInt(0x123), big.NewInt(1000), big.NewInt(0)})
	hash, err := b.AddInvokeTransaction(context.Background(), []InvokeCall{call})
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", hash)

	require.Len(t, got.Params, 1)
	var params struct {
		Calls []InvokeCall `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(got.Params[0], &params))
	require.Len(t, params.Calls, 1)
	assert.Equal(t, "0xabc", params.Calls[0].ContractAddress)
	assert.Equal(t, "mint", params.Calls[0].EntryPoint)
	assert.Equal(t, []string{"0x123", "0x3e8", "0x0"}, params.Calls[0].Calldata)
}

func TestBridgeEmptyHash(t *testing.T) {
	srv := bridgeMock(t, map[string]interface{}{
		"wallet_addInvokeTransaction": map[string]string{},
	}, nil)

	b, err := DialBridge(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.AddInvokeTransaction(context.Background(), nil)
	assert.Error(t, err)
}
