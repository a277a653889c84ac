package ethrpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gatewei/gatewei/internal/observability/metrics"
)

// ErrNotFound reports a transaction hash the node does not know about.
var ErrNotFound = errors.New("not known to the chain")

// Client issues stateless reads against one JSON-RPC endpoint. It applies a
// per-call timeout and no retries; callers re-drive failed calls.
type Client struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// New creates a client for the given JSON-RPC endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call executes a read-only contract call against the latest block and
// returns the raw return data.
func (c *Client) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	params := []any{
		map[string]string{"to": to, "data": "0x" + hex.EncodeToString(data)},
		"latest",
	}

	var result string
	if err := c.do(ctx, "eth_call", params, &result); err != nil {
		return nil, err
	}
	out, err := parseHexBytes(result)
	if err != nil {
		return nil, fmt.Errorf("eth_call result: %w", err)
	}
	return out, nil
}

// TransactionReceipt fetches the receipt for a mined transaction. A hash the
// chain has no receipt for returns ErrNotFound.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var wire *receiptWire
	if err := c.do(ctx, "eth_getTransactionReceipt", []any{hash}, &wire); err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, fmt.Errorf("receipt for %s: %w", hash, ErrNotFound)
	}
	return wire.parse()
}

// TransactionByHash fetches the raw transaction. An unknown hash returns
// ErrNotFound; a known but unmined transaction has a nil block number.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	var wire *transactionWire
	if err := c.do(ctx, "eth_getTransactionByHash", []any{hash}, &wire); err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, fmt.Errorf("transaction %s: %w", hash, ErrNotFound)
	}
	return wire.parse()
}

// do performs one JSON-RPC round trip and unmarshals the result.
func (c *Client) do(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRPCRequest(method, "transport_error")
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordRPCRequest(method, "http_error")
		return fmt.Errorf("calling %s: HTTP %d", method, resp.StatusCode)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.RecordRPCRequest(method, "bad_response")
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if envelope.Error != nil {
		metrics.RecordRPCRequest(method, "rpc_error")
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}

	if len(envelope.Result) == 0 {
		// Some nodes omit "result" entirely instead of sending null.
		envelope.Result = json.RawMessage("null")
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		metrics.RecordRPCRequest(method, "bad_result")
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	metrics.RecordRPCRequest(method, "ok")
	return nil
}
