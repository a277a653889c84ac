// Package ethrpc is a thin JSON-RPC 2.0 client for stateless reads against
// an EVM node: eth_call, receipts, and raw transactions.
package ethrpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// request is the JSON-RPC 2.0 request envelope.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

// response is the JSON-RPC 2.0 response envelope. Result stays raw until the
// caller knows what shape to parse it into.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Wire-format structs: every numeric field arrives as a hex string exactly
// as the node sends it. Parsing into typed values happens in a second step
// so deserialization stays a plain field mapping.

type receiptWire struct {
	Status      string    `json:"status"`
	BlockNumber string    `json:"blockNumber"`
	Logs        []logWire `json:"logs"`
}

type logWire struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

type transactionWire struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	Input       string `json:"input"`
	BlockNumber string `json:"blockNumber"`
}

// Receipt is the typed record of a mined transaction's outcome.
type Receipt struct {
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	Logs        []Log
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool { return r.Status == 1 }

// Log is one structured event record emitted during execution.
type Log struct {
	Address string // lowercase 0x hex of the emitting contract
	Topics  [][32]byte
	Data    []byte
}

// Transaction is the typed form of a raw transaction.
type Transaction struct {
	Hash        string
	From        string
	To          string // empty for contract creation
	Value       *big.Int
	Input       []byte
	BlockNumber *uint64 // nil while the transaction is still pending
}

// Pending reports whether the transaction has not been mined yet.
func (tx *Transaction) Pending() bool { return tx.BlockNumber == nil }

func (w *receiptWire) parse() (*Receipt, error) {
	status, err := parseHexUint(w.Status)
	if err != nil {
		return nil, fmt.Errorf("receipt status: %w", err)
	}
	blockNumber, err := parseHexUint(w.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("receipt block number: %w", err)
	}

	logs := make([]Log, 0, len(w.Logs))
	for i, lw := range w.Logs {
		l, err := lw.parse()
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		logs = append(logs, *l)
	}
	return &Receipt{Status: status, BlockNumber: blockNumber, Logs: logs}, nil
}

func (w *logWire) parse() (*Log, error) {
	data, err := parseHexBytes(w.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	topics := make([][32]byte, 0, len(w.Topics))
	for i, t := range w.Topics {
		raw, err := parseHexBytes(t)
		if err != nil {
			return nil, fmt.Errorf("topic %d: %w", i, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("topic %d: %d bytes, want 32", i, len(raw))
		}
		var topic [32]byte
		copy(topic[:], raw)
		topics = append(topics, topic)
	}
	return &Log{Address: strings.ToLower(w.Address), Topics: topics, Data: data}, nil
}

func (w *transactionWire) parse() (*Transaction, error) {
	value, err := parseHexBig(w.Value)
	if err != nil {
		return nil, fmt.Errorf("transaction value: %w", err)
	}
	input, err := parseHexBytes(w.Input)
	if err != nil {
		return nil, fmt.Errorf("transaction input: %w", err)
	}

	tx := &Transaction{
		Hash:  strings.ToLower(w.Hash),
		From:  strings.ToLower(w.From),
		To:    strings.ToLower(w.To),
		Value: value,
		Input: input,
	}
	if w.BlockNumber != "" {
		blockNumber, err := parseHexUint(w.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("transaction block number: %w", err)
		}
		tx.BlockNumber = &blockNumber
	}
	return tx, nil
}

// parseHexUint parses a 0x-prefixed hex quantity into a uint64.
func parseHexUint(s string) (uint64, error) {
	n, err := parseHexBig(s)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("hex quantity %q overflows uint64", s)
	}
	return n.Uint64(), nil
}

// parseHexBig parses a 0x-prefixed hex quantity at arbitrary precision.
// An empty or bare "0x" value parses as zero, matching node behavior.
func parseHexBig(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("malformed hex quantity %q", s)
	}
	return n, nil
}

// parseHexBytes parses 0x-prefixed hex data into raw bytes.
func parseHexBytes(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return []byte{}, nil
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("malformed hex data %q", s)
	}
	return b, nil
}
