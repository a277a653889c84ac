//go:build e2e

package e2e

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVerify_SuccessfulPayment walks the happy path: mined transaction to the
// vault, matching PaymentReceived event, verified verdict, record persisted.
func TestVerify_SuccessfulPayment(t *testing.T) {
	txHash := txHashN(0x11)
	testCtx.Chain.stubReceipt(txHash, minedReceipt(1,
		paymentLogJSON(contractAddr, payerAddr, creatorAddr, "article-42", priceWei, 1700000000)))
	testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

	c := newClient(testCtx.TestServer, "")
	result, err := c.Verify(context.Background(), txHash)
	require.NoError(t, err)

	assert.True(t, result.Verified())
	assert.Equal(t, txHash, result.TxHash)
	assert.Equal(t, payerAddr, result.Payer)
	assert.Equal(t, creatorAddr, result.Beneficiary)
	assert.Equal(t, priceWei.String(), result.AmountWei)
	assert.NotEmpty(t, result.VerifiedAt)
}

// TestVerify_CaseInsensitiveIdempotent submits the same transaction with
// different hash casing and expects the stored record both times.
func TestVerify_CaseInsensitiveIdempotent(t *testing.T) {
	txHash := txHashN(0xab)
	testCtx.Chain.stubReceipt(txHash, minedReceipt(1,
		paymentLogJSON(contractAddr, payerAddr, creatorAddr, "article-42", priceWei, 1700000000)))
	testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

	c := newClient(testCtx.TestServer, "")
	first, err := c.Verify(context.Background(), txHash)
	require.NoError(t, err)
	require.True(t, first.Verified())

	second, err := c.Verify(context.Background(), "0x"+strings.ToUpper(txHash[2:]))
	require.NoError(t, err)
	assert.True(t, second.Verified())
	assert.Equal(t, txHash, second.TxHash, "hash normalized to lowercase")
	assert.Equal(t, first.Payer, second.Payer)
	assert.Equal(t, first.AmountWei, second.AmountWei)
}

// TestVerify_Pending covers a transaction the node knows but has not mined.
func TestVerify_Pending(t *testing.T) {
	txHash := txHashN(0x22)
	testCtx.Chain.stubTx(txHash, pendingTx(txHash, contractAddr))

	c := newClient(testCtx.TestServer, "")
	result, err := c.Verify(context.Background(), txHash)
	require.NoError(t, err)

	assert.True(t, result.Pending())
}

// TestVerify_Rejections drives every rejection reason through the wire.
func TestVerify_Rejections(t *testing.T) {
	c := newClient(testCtx.TestServer, "")

	t.Run("unknown transaction", func(t *testing.T) {
		result, err := c.Verify(context.Background(), txHashN(0x33))
		require.NoError(t, err)
		assert.Equal(t, "rejected", result.Status)
		assert.Equal(t, "transaction not found", result.Reason)
	})

	t.Run("reverted transaction", func(t *testing.T) {
		txHash := txHashN(0x44)
		testCtx.Chain.stubReceipt(txHash, minedReceipt(0))
		testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

		result, err := c.Verify(context.Background(), txHash)
		require.NoError(t, err)
		assert.Equal(t, "rejected", result.Status)
		assert.Equal(t, "transaction reverted", result.Reason)
	})

	t.Run("wrong destination", func(t *testing.T) {
		txHash := txHashN(0x55)
		testCtx.Chain.stubReceipt(txHash, minedReceipt(1))
		testCtx.Chain.stubTx(txHash, minedTx(txHash, "0xdddddddddddddddddddddddddddddddddddddddd"))

		result, err := c.Verify(context.Background(), txHash)
		require.NoError(t, err)
		assert.Equal(t, "rejected", result.Status)
		assert.Equal(t, "wrong destination", result.Reason)
	})

	t.Run("no contract events", func(t *testing.T) {
		txHash := txHashN(0x66)
		testCtx.Chain.stubReceipt(txHash, minedReceipt(1))
		testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

		result, err := c.Verify(context.Background(), txHash)
		require.NoError(t, err)
		assert.Equal(t, "rejected", result.Status)
		assert.Equal(t, "no contract events", result.Reason)
	})

	t.Run("insufficient amount", func(t *testing.T) {
		txHash := txHashN(0x77)
		short := new(big.Int).Sub(priceWei, big.NewInt(1))
		testCtx.Chain.stubReceipt(txHash, minedReceipt(1,
			paymentLogJSON(contractAddr, payerAddr, creatorAddr, "article-42", short, 1700000000)))
		testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

		result, err := c.Verify(context.Background(), txHash)
		require.NoError(t, err)
		assert.Equal(t, "rejected", result.Status)
		assert.Equal(t, "no matching payment event", result.Reason)
	})

	t.Run("wrong beneficiary", func(t *testing.T) {
		txHash := txHashN(0x88)
		testCtx.Chain.stubReceipt(txHash, minedReceipt(1,
			paymentLogJSON(contractAddr, payerAddr, "0xdddddddddddddddddddddddddddddddddddddddd", "article-42", priceWei, 1700000000)))
		testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

		result, err := c.Verify(context.Background(), txHash)
		require.NoError(t, err)
		assert.Equal(t, "rejected", result.Status)
		assert.Equal(t, "no matching payment event", result.Reason)
	})
}

// TestVerify_InvalidHash checks request validation at the HTTP boundary.
func TestVerify_InvalidHash(t *testing.T) {
	c := newClient(testCtx.TestServer, "")

	_, err := c.Verify(context.Background(), "not-a-hash")
	assertHTTPError(t, err, "INVALID_REQUEST")
}

// TestVerify_StatusEndpoint re-checks a verified transaction over GET.
func TestVerify_StatusEndpoint(t *testing.T) {
	txHash := txHashN(0x99)
	testCtx.Chain.stubReceipt(txHash, minedReceipt(1,
		paymentLogJSON(contractAddr, payerAddr, creatorAddr, "article-42", priceWei, 1700000000)))
	testCtx.Chain.stubTx(txHash, minedTx(txHash, contractAddr))

	c := newClient(testCtx.TestServer, "")
	_, err := c.Verify(context.Background(), txHash)
	require.NoError(t, err)

	result, err := c.VerifyStatus(context.Background(), txHash)
	require.NoError(t, err)
	assert.True(t, result.Verified())
	assert.Equal(t, payerAddr, result.Payer)
	assert.Equal(t, creatorAddr, result.Beneficiary)
}
