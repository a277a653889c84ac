// Package vault binds the fixed call and event shapes of the content vault
// contract. The contract's surface is an external given: selectors, calldata
// layout, and event layout here must match it bit-for-bit or verification
// silently breaks.
package vault

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/gatewei/gatewei/internal/abi"
)

// Canonical signatures of the vault surface.
const (
	hasAccessSig      = "hasAccess(string,address)"
	getResourceSig    = "getResource(string)"
	payForResourceSig = "payForResource(string,bytes32)"
	paymentEventSig   = "PaymentReceived(address,address,string,uint256,uint256)"
)

// PaymentReceivedTopic is the topic-0 hash of the payment event.
var PaymentReceivedTopic = abi.EventTopic(paymentEventSig)

// ErrNotPaymentEvent reports a log that is not a PaymentReceived event
// (wrong topic-0 or wrong indexed-topic count). Callers scanning mixed logs
// skip these rather than failing.
var ErrNotPaymentEvent = errors.New("not a PaymentReceived event")

// Resource is the decoded on-chain resource record. It is read-only here;
// only the contract mutates it.
type Resource struct {
	Price          *big.Int
	LifetimeAccess bool
	Active         bool
	Exists         bool
	ContentType    string
	ContentRef     string
	PaymentCount   *big.Int
	TotalRevenue   *big.Int
}

// resourceShape mirrors getResource's fixed-then-dynamic return tuple.
var resourceShape = []abi.FieldShape{
	{Name: "price", Type: "uint256"},
	{Name: "lifetimeAccess", Type: "bool"},
	{Name: "active", Type: "bool"},
	{Name: "exists", Type: "bool"},
	{Name: "contentType", Type: "string"},
	{Name: "contentRef", Type: "string"},
	{Name: "paymentCount", Type: "uint256"},
	{Name: "totalRevenue", Type: "uint256"},
}

// paymentDataShape mirrors the non-indexed data section of PaymentReceived.
// The amount sits at head word index 1; the resource id string is reached
// through the offset at head word index 0.
var paymentDataShape = []abi.FieldShape{
	{Name: "resourceId", Type: "string"},
	{Name: "amount", Type: "uint256"},
	{Name: "timestamp", Type: "uint256"},
}

// EncodeHasAccess builds calldata for hasAccess(resourceId, wallet).
func EncodeHasAccess(resourceID, wallet string) ([]byte, error) {
	return abi.EncodeCall(hasAccessSig, []abi.Value{
		abi.StringValue(resourceID),
		abi.AddressValue(wallet),
	})
}

// DecodeHasAccess decodes the boolean return of hasAccess.
func DecodeHasAccess(data []byte) (bool, error) {
	decoded, err := abi.DecodeReturn(data, []abi.FieldShape{{Name: "granted", Type: "bool"}})
	if err != nil {
		return false, fmt.Errorf("decoding hasAccess return: %w", err)
	}
	return decoded.At(0).Bool(), nil
}

// EncodeGetResource builds calldata for getResource(resourceId).
func EncodeGetResource(resourceID string) ([]byte, error) {
	return abi.EncodeCall(getResourceSig, []abi.Value{abi.StringValue(resourceID)})
}

// DecodeResource decodes the getResource return tuple.
func DecodeResource(data []byte) (*Resource, error) {
	decoded, err := abi.DecodeReturn(data, resourceShape)
	if err != nil {
		return nil, fmt.Errorf("decoding getResource return: %w", err)
	}
	return &Resource{
		Price:          decoded.At(0).Uint(),
		LifetimeAccess: decoded.At(1).Bool(),
		Active:         decoded.At(2).Bool(),
		Exists:         decoded.At(3).Bool(),
		ContentType:    decoded.At(4).Str(),
		ContentRef:     decoded.At(5).Str(),
		PaymentCount:   decoded.At(6).Uint(),
		TotalRevenue:   decoded.At(7).Uint(),
	}, nil
}

// EncodePayForResource builds calldata for the payable payForResource call.
// The nonce is the contract's replay protection; it is passed through as
// supplied, never generated or validated here.
func EncodePayForResource(resourceID string, nonce [32]byte) ([]byte, error) {
	return abi.EncodeCall(payForResourceSig, []abi.Value{
		abi.StringValue(resourceID),
		abi.Bytes32Value(nonce),
	})
}

// PaymentEvent is one decoded PaymentReceived log.
type PaymentEvent struct {
	Payer      string
	Creator    string
	ResourceID string
	Amount     *big.Int
	Timestamp  *big.Int
}

// EventLog is the subset of a chain log the decoder needs.
type EventLog struct {
	Topics [][32]byte
	Data   []byte
}

// DecodePaymentEvent decodes a PaymentReceived log. Payer and creator are
// indexed at topic positions 1 and 2; the remaining fields come from the
// data section. Logs of other event kinds return ErrNotPaymentEvent, while
// malformed data in a payment log is a hard decode error.
func DecodePaymentEvent(log EventLog) (*PaymentEvent, error) {
	if len(log.Topics) != 3 || log.Topics[0] != PaymentReceivedTopic {
		return nil, ErrNotPaymentEvent
	}

	decoded, err := abi.DecodeReturn(log.Data, paymentDataShape)
	if err != nil {
		return nil, fmt.Errorf("decoding PaymentReceived data: %w", err)
	}
	return &PaymentEvent{
		Payer:      topicAddress(log.Topics[1]),
		Creator:    topicAddress(log.Topics[2]),
		ResourceID: decoded.At(0).Str(),
		Amount:     decoded.At(1).Uint(),
		Timestamp:  decoded.At(2).Uint(),
	}, nil
}

// topicAddress extracts the 20-byte address right-aligned in an indexed topic.
func topicAddress(topic [32]byte) string {
	return "0x" + hex.EncodeToString(topic[12:])
}

// ChainCaller is the stateless read transport the Caller drives.
type ChainCaller interface {
	Call(ctx context.Context, to string, data []byte) ([]byte, error)
}

// Caller issues the vault's read calls against one contract address.
type Caller struct {
	reader  ChainCaller
	address string
}

// NewCaller binds a chain reader to the vault contract address.
func NewCaller(reader ChainCaller, address string) *Caller {
	return &Caller{reader: reader, address: address}
}

// Address returns the bound contract address.
func (c *Caller) Address() string {
	return c.address
}

// HasAccess reads whether the wallet currently holds access to the resource.
func (c *Caller) HasAccess(ctx context.Context, resourceID, wallet string) (bool, error) {
	data, err := EncodeHasAccess(resourceID, wallet)
	if err != nil {
		return false, err
	}
	out, err := c.reader.Call(ctx, c.address, data)
	if err != nil {
		return false, fmt.Errorf("hasAccess call: %w", err)
	}
	return DecodeHasAccess(out)
}

// Resource reads the on-chain resource record.
func (c *Caller) Resource(ctx context.Context, resourceID string) (*Resource, error) {
	data, err := EncodeGetResource(resourceID)
	if err != nil {
		return nil, err
	}
	out, err := c.reader.Call(ctx, c.address, data)
	if err != nil {
		return nil, fmt.Errorf("getResource call: %w", err)
	}
	return DecodeResource(out)
}
