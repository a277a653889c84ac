package ethrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNode answers JSON-RPC requests from a canned method -> result map.
// A nil entry answers with result null.
type stubNode struct {
	results map[string]any
	errors  map[string]*RPCError
	calls   []string
}

func (n *stubNode) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     uint64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n.calls = append(n.calls, req.Method)

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr, ok := n.errors[req.Method]; ok {
			resp["error"] = rpcErr
		} else {
			resp["result"] = n.results[req.Method]
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func newStubClient(t *testing.T, node *stubNode) *Client {
	t.Helper()
	srv := httptest.NewServer(node.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestCall(t *testing.T) {
	node := &stubNode{results: map[string]any{
		"eth_call": "0x0000000000000000000000000000000000000000000000000000000000000001",
	}}
	client := newStubClient(t, node)

	out, err := client.Call(context.Background(), "0xcafe", []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Len(t, out, 32)
	assert.Equal(t, byte(1), out[31])
	assert.Equal(t, []string{"eth_call"}, node.calls)
}

func TestTransactionReceipt(t *testing.T) {
	node := &stubNode{results: map[string]any{
		"eth_getTransactionReceipt": map[string]any{
			"status":      "0x1",
			"blockNumber": "0x10",
			"logs": []any{
				map[string]any{
					"address": "0xABCDEF0123456789abcdef0123456789ABCDEF01",
					"topics": []string{
						"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
					},
					"data": "0x01",
				},
			},
		},
	}}
	client := newStubClient(t, node)

	receipt, err := client.TransactionReceipt(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(16), receipt.BlockNumber)
	require.Len(t, receipt.Logs, 1)
	// Addresses are normalized to lowercase for comparisons.
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", receipt.Logs[0].Address)
	assert.Equal(t, []byte{0x01}, receipt.Logs[0].Data)
}

func TestTransactionReceiptAbsent(t *testing.T) {
	node := &stubNode{results: map[string]any{"eth_getTransactionReceipt": nil}}
	client := newStubClient(t, node)

	_, err := client.TransactionReceipt(context.Background(), "0xdead")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionByHash(t *testing.T) {
	node := &stubNode{results: map[string]any{
		"eth_getTransactionByHash": map[string]any{
			"hash":        "0xDEAD",
			"from":        "0x1111111111111111111111111111111111111111",
			"to":          "0x2222222222222222222222222222222222222222",
			"value":       "0x38d7ea4c68000",
			"input":       "0x",
			"blockNumber": "0x20",
		},
	}}
	client := newStubClient(t, node)

	tx, err := client.TransactionByHash(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.False(t, tx.Pending())
	assert.Equal(t, "0x2222222222222222222222222222222222222222", tx.To)
	assert.Equal(t, "1000000000000000", tx.Value.String())
	assert.Empty(t, tx.Input)
}

func TestTransactionByHashPending(t *testing.T) {
	node := &stubNode{results: map[string]any{
		"eth_getTransactionByHash": map[string]any{
			"hash":  "0xdead",
			"from":  "0x1111111111111111111111111111111111111111",
			"to":    "0x2222222222222222222222222222222222222222",
			"value": "0x0",
			"input": "0x",
		},
	}}
	client := newStubClient(t, node)

	tx, err := client.TransactionByHash(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.True(t, tx.Pending())
}

func TestRPCErrorSurfaces(t *testing.T) {
	node := &stubNode{
		results: map[string]any{},
		errors: map[string]*RPCError{
			"eth_call": {Code: -32000, Message: "execution reverted"},
		},
	}
	client := newStubClient(t, node)

	_, err := client.Call(context.Background(), "0xcafe", nil)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestMalformedHexResult(t *testing.T) {
	node := &stubNode{results: map[string]any{"eth_call": "0xzz"}}
	client := newStubClient(t, node)

	_, err := client.Call(context.Background(), "0xcafe", nil)
	assert.Error(t, err)
}
