//go:build e2e

package e2e

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatewei/gatewei/internal/config"
	"github.com/gatewei/gatewei/internal/records"
	"github.com/gatewei/gatewei/internal/server"
	"github.com/gatewei/gatewei/internal/vault"
	"github.com/gatewei/gatewei/pkg/client"
)

// Fixed addresses for the fake chain. The vault contract emits events, the
// creator receives payments, the payer sends them.
const (
	contractAddr = "0xcccccccccccccccccccccccccccccccccccccccc"
	creatorAddr  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	payerAddr    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

// priceWei is the configured resource price on the test server.
var priceWei = big.NewInt(1_000_000)

// TestContext holds shared test infrastructure
type TestContext struct {
	Chain      *fakeChain
	TestServer *httptest.Server
	Store      records.Store
}

// fakeChain is an in-process JSON-RPC node stub. Calls are answered from
// calldata-keyed stubs; receipts and transactions from hash-keyed fixtures.
type fakeChain struct {
	mu       sync.Mutex
	server   *httptest.Server
	calls    map[string]string
	receipts map[string]json.RawMessage
	txs      map[string]json.RawMessage
}

func newFakeChain() *fakeChain {
	fc := &fakeChain{
		calls:    make(map[string]string),
		receipts: make(map[string]json.RawMessage),
		txs:      make(map[string]json.RawMessage),
	}
	fc.server = httptest.NewServer(http.HandlerFunc(fc.handle))
	return fc
}

func (fc *fakeChain) URL() string { return fc.server.URL }

func (fc *fakeChain) Close() { fc.server.Close() }

func (fc *fakeChain) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
		ID     uint64            `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	var result json.RawMessage
	switch req.Method {
	case "eth_call":
		var callObj struct {
			To   string `json:"to"`
			Data string `json:"data"`
		}
		if err := json.Unmarshal(req.Params[0], &callObj); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ret, ok := fc.calls[strings.ToLower(callObj.Data)]
		if !ok {
			ret = "0x"
		}
		result, _ = json.Marshal(ret)
	case "eth_getTransactionReceipt":
		var hash string
		_ = json.Unmarshal(req.Params[0], &hash)
		result = fc.receipts[strings.ToLower(hash)]
	case "eth_getTransactionByHash":
		var hash string
		_ = json.Unmarshal(req.Params[0], &hash)
		result = fc.txs[strings.ToLower(hash)]
	}
	if result == nil {
		result = json.RawMessage("null")
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// stubCall registers a return value for one exact calldata payload.
func (fc *fakeChain) stubCall(calldata []byte, returnHex string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.calls["0x"+hex.EncodeToString(calldata)] = returnHex
}

// stubReceipt registers a receipt fixture for a transaction hash.
func (fc *fakeChain) stubReceipt(txHash string, receipt map[string]any) {
	raw, _ := json.Marshal(receipt)
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.receipts[strings.ToLower(txHash)] = raw
}

// stubTx registers a transaction fixture for a transaction hash.
func (fc *fakeChain) stubTx(txHash string, tx map[string]any) {
	raw, _ := json.Marshal(tx)
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.txs[strings.ToLower(txHash)] = raw
}

// ABI word builders for fixtures.

func word(n *big.Int) string {
	return fmt.Sprintf("%064x", n)
}

func wordUint(n uint64) string {
	return fmt.Sprintf("%064x", n)
}

func addressWord(addr string) string {
	return strings.Repeat("0", 24) + strings.TrimPrefix(strings.ToLower(addr), "0x")
}

func paddedString(s string) string {
	h := hex.EncodeToString([]byte(s))
	if rem := len(h) % 64; rem != 0 {
		h += strings.Repeat("0", 64-rem)
	}
	return h
}

// paymentLogJSON builds the wire form of one PaymentReceived log:
// topics [topic0, payer, creator], data [offset][amount][timestamp][len][id].
func paymentLogJSON(emitter, payer, creator, resourceID string, amount *big.Int, timestamp uint64) map[string]any {
	data := "0x" + wordUint(96) + word(amount) + wordUint(timestamp) +
		wordUint(uint64(len(resourceID))) + paddedString(resourceID)
	return map[string]any{
		"address": emitter,
		"topics": []string{
			"0x" + hex.EncodeToString(vault.PaymentReceivedTopic[:]),
			"0x" + addressWord(payer),
			"0x" + addressWord(creator),
		},
		"data": data,
	}
}

// minedReceipt builds a receipt fixture. Status 1 is success.
func minedReceipt(status uint64, logs ...map[string]any) map[string]any {
	if logs == nil {
		logs = []map[string]any{}
	}
	return map[string]any{
		"status":      fmt.Sprintf("0x%x", status),
		"blockNumber": "0x10",
		"logs":        logs,
	}
}

// minedTx builds a mined transaction fixture sent to the given address.
func minedTx(hash, to string) map[string]any {
	return map[string]any{
		"hash":        hash,
		"from":        payerAddr,
		"to":          to,
		"value":       "0x" + priceWei.Text(16),
		"input":       "0x",
		"blockNumber": "0x10",
	}
}

// pendingTx builds an unmined transaction fixture (no block number).
func pendingTx(hash, to string) map[string]any {
	return map[string]any{
		"hash":  hash,
		"from":  payerAddr,
		"to":    to,
		"value": "0x" + priceWei.Text(16),
		"input": "0x",
	}
}

// resourceReturnHex encodes getResource's return tuple: six head words plus
// two string offsets, then the string tails.
func resourceReturnHex(price *big.Int, lifetime, active, exists bool, contentType, contentRef string) string {
	boolWord := func(b bool) string {
		if b {
			return wordUint(1)
		}
		return wordUint(0)
	}

	ctTail := wordUint(uint64(len(contentType))) + paddedString(contentType)
	crOffset := 8*32 + len(ctTail)/2

	head := word(price) + boolWord(lifetime) + boolWord(active) + boolWord(exists) +
		wordUint(8*32) + wordUint(uint64(crOffset)) + wordUint(7) + word(new(big.Int).Mul(price, big.NewInt(7)))
	crTail := wordUint(uint64(len(contentRef))) + paddedString(contentRef)

	return "0x" + head + ctTail + crTail
}

func boolReturnHex(b bool) string {
	if b {
		return "0x" + wordUint(1)
	}
	return "0x" + wordUint(0)
}

// stubResource registers getResource and hasAccess answers for one resource.
func stubResource(t *testing.T, fc *fakeChain, resourceID, contentRef, contentType string, wallets map[string]bool) {
	t.Helper()

	getData, err := vault.EncodeGetResource(resourceID)
	require.NoError(t, err)
	fc.stubCall(getData, resourceReturnHex(priceWei, true, true, true, contentType, contentRef))

	for wallet, has := range wallets {
		accessData, err := vault.EncodeHasAccess(resourceID, wallet)
		require.NoError(t, err)
		fc.stubCall(accessData, boolReturnHex(has))
	}
}

// stubMissingResource answers getResource with exists=false.
func stubMissingResource(t *testing.T, fc *fakeChain, resourceID string) {
	t.Helper()
	getData, err := vault.EncodeGetResource(resourceID)
	require.NoError(t, err)
	fc.stubCall(getData, resourceReturnHex(big.NewInt(0), false, false, false, "", ""))
}

// startServerE starts the gatewei server in-process against the fake chain
// with a sqlite record store (error-returning variant for TestMain).
func startServerE(rpcURL string) (*httptest.Server, records.Store, error) {
	dbDir, err := os.MkdirTemp("", "gatewei-e2e-")
	if err != nil {
		return nil, nil, fmt.Errorf("creating sqlite dir: %w", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Chain: config.ChainConfig{
			RPCURL:         rpcURL,
			ChainID:        31337,
			RequestTimeout: 5,
		},
		Payment: config.PaymentConfig{
			ContractAddress: contractAddr,
			Beneficiary:     creatorAddr,
			PriceWei:        priceWei,
		},
		Records: config.RecordsConfig{
			Backend: "sqlite",
			SQLite:  config.SQLiteConfig{Path: filepath.Join(dbDir, "records.db")},
		},
		Cache:     config.CacheConfig{Enabled: false},
		Auth:      config.AuthConfig{Type: "api-key"},
		Logging:   config.LoggingConfig{Level: "debug", Format: "text"},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Security:  config.SecurityConfig{FilterEnabled: false, MaxBodySizeMB: 50},
		Proxy:     config.ProxyConfig{TrustProxy: false},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store, err := records.New(cfg.Records, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server: %w", err)
	}

	testServer := httptest.NewServer(srv.Handler())
	return testServer, store, nil
}

// newClient creates a new API client for the test server
func newClient(testServer *httptest.Server, apiKey string) *client.Client {
	return client.New(testServer.URL, apiKey)
}

// createTestAPIKey creates a test API key using the store directly
func createTestAPIKey(t *testing.T, store records.Store, name string) string {
	key, err := store.CreateAPIKey(context.Background(), name)
	require.NoError(t, err, "Failed to create API key")
	return key
}

// assertHTTPError asserts that an error is an APIError with the expected code
func assertHTTPError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	require.Error(t, err, "Expected an error")
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok, "Error should be an APIError")
	require.Equal(t, expectedCode, apiErr.Code, "Error code mismatch")
}

// txHashN builds a distinct valid transaction hash from a single byte.
func txHashN(b byte) string {
	return "0x" + strings.Repeat(fmt.Sprintf("%02x", b), 32)
}
