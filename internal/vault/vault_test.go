package vault

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewei/gatewei/internal/abi"
)

func paddedTopic(addr byte) [32]byte {
	var topic [32]byte
	for i := 12; i < 32; i++ {
		topic[i] = addr
	}
	return topic
}

// resourceReturn builds a getResource return buffer through the codec.
func resourceReturn(t *testing.T, price int64, lifetime, active, exists bool, contentType, contentRef string) []byte {
	t.Helper()
	encoded, err := abi.EncodeCall("r(uint256,bool,bool,bool,string,string,uint256,uint256)", []abi.Value{
		abi.Uint256Value(big.NewInt(price)),
		abi.BoolValue(lifetime),
		abi.BoolValue(active),
		abi.BoolValue(exists),
		abi.StringValue(contentType),
		abi.StringValue(contentRef),
		abi.Uint256Value(big.NewInt(3)),
		abi.Uint256Value(big.NewInt(3 * price)),
	})
	require.NoError(t, err)
	return encoded[abi.SelectorSize:]
}

// paymentData builds a PaymentReceived data section through the codec.
func paymentData(t *testing.T, resourceID string, amount *big.Int, timestamp int64) []byte {
	t.Helper()
	encoded, err := abi.EncodeCall("d(string,uint256,uint256)", []abi.Value{
		abi.StringValue(resourceID),
		abi.Uint256Value(amount),
		abi.Uint256Value(big.NewInt(timestamp)),
	})
	require.NoError(t, err)
	return encoded[abi.SelectorSize:]
}

func TestEncodeHasAccessSelector(t *testing.T) {
	data, err := EncodeHasAccess("premium-post", "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)

	sel := abi.Selector("hasAccess(string,address)")
	assert.Equal(t, sel[:], data[:4])
}

func TestDecodeResource(t *testing.T) {
	data := resourceReturn(t, 1000000, true, true, true, "video", "ipfs://bafybeigdyr")

	res, err := DecodeResource(data)
	require.NoError(t, err)
	assert.Zero(t, res.Price.Cmp(big.NewInt(1000000)))
	assert.True(t, res.LifetimeAccess)
	assert.True(t, res.Active)
	assert.True(t, res.Exists)
	assert.Equal(t, "video", res.ContentType)
	assert.Equal(t, "ipfs://bafybeigdyr", res.ContentRef)
	assert.Zero(t, res.PaymentCount.Cmp(big.NewInt(3)))
	assert.Zero(t, res.TotalRevenue.Cmp(big.NewInt(3000000)))
}

func TestDecodeResourceTruncated(t *testing.T) {
	data := resourceReturn(t, 100, false, true, true, "text", "ref")
	_, err := DecodeResource(data[:64])
	assert.ErrorIs(t, err, abi.ErrTruncated)
}

func TestDecodePaymentEvent(t *testing.T) {
	amount := big.NewInt(5000)
	log := EventLog{
		Topics: [][32]byte{PaymentReceivedTopic, paddedTopic(0xaa), paddedTopic(0xbb)},
		Data:   paymentData(t, "premium-post", amount, 1700000000),
	}

	event, err := DecodePaymentEvent(log)
	require.NoError(t, err)
	assert.Equal(t, "0x"+repeatHex("aa", 20), event.Payer)
	assert.Equal(t, "0x"+repeatHex("bb", 20), event.Creator)
	assert.Equal(t, "premium-post", event.ResourceID)
	assert.Zero(t, event.Amount.Cmp(amount))
	assert.Zero(t, event.Timestamp.Cmp(big.NewInt(1700000000)))
}

func TestDecodePaymentEventSkipsOtherEvents(t *testing.T) {
	otherTopic := abi.EventTopic("AccessGranted(address,string)")

	_, err := DecodePaymentEvent(EventLog{
		Topics: [][32]byte{otherTopic, paddedTopic(0xaa), paddedTopic(0xbb)},
		Data:   paymentData(t, "x", big.NewInt(1), 1),
	})
	assert.ErrorIs(t, err, ErrNotPaymentEvent)

	// Right topic-0 but missing indexed topics is also not a payment event.
	_, err = DecodePaymentEvent(EventLog{
		Topics: [][32]byte{PaymentReceivedTopic},
		Data:   paymentData(t, "x", big.NewInt(1), 1),
	})
	assert.ErrorIs(t, err, ErrNotPaymentEvent)
}

func TestDecodePaymentEventTruncatedDataIsHardError(t *testing.T) {
	log := EventLog{
		Topics: [][32]byte{PaymentReceivedTopic, paddedTopic(0xaa), paddedTopic(0xbb)},
		Data:   paymentData(t, "premium-post", big.NewInt(1), 1)[:32],
	}

	_, err := DecodePaymentEvent(log)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotPaymentEvent)
	assert.ErrorIs(t, err, abi.ErrTruncated)
}

type fakeReader struct {
	lastTo   string
	lastData []byte
	result   []byte
	err      error
}

func (f *fakeReader) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	f.lastTo = to
	f.lastData = data
	return f.result, f.err
}

func TestCallerHasAccess(t *testing.T) {
	granted, err := abi.EncodeCall("g(bool)", []abi.Value{abi.BoolValue(true)})
	require.NoError(t, err)

	reader := &fakeReader{result: granted[abi.SelectorSize:]}
	caller := NewCaller(reader, "0xcafe00000000000000000000000000000000cafe")

	ok, err := caller.HasAccess(context.Background(), "premium-post", "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xcafe00000000000000000000000000000000cafe", reader.lastTo)

	sel := abi.Selector("hasAccess(string,address)")
	assert.Equal(t, sel[:], reader.lastData[:4])
}

func TestCallerResource(t *testing.T) {
	reader := &fakeReader{result: resourceReturn(t, 42, false, true, true, "article", "https://example.com/post")}
	caller := NewCaller(reader, "0xcafe00000000000000000000000000000000cafe")

	res, err := caller.Resource(context.Background(), "post-1")
	require.NoError(t, err)
	assert.Zero(t, res.Price.Cmp(big.NewInt(42)))
	assert.Equal(t, "article", res.ContentType)
}

func repeatHex(pair string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += pair
	}
	return out
}
