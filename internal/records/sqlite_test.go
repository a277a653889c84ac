package records

import (
	"context"
	"log/slog"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatewei.db")
	store, err := NewSQLiteStore(path, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	// Migrations are idempotent
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestSQLiteRecordRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	amount, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	rec := &VerificationRecord{
		TxHash:      "0xABCDEF",
		Payer:       "0x1111111111111111111111111111111111111111",
		Beneficiary: "0x2222222222222222222222222222222222222222",
		Amount:      amount,
		VerifiedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.PutRecord(ctx, rec))

	got, err := store.GetRecord(ctx, "0xabcdef")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", got.TxHash)
	assert.Equal(t, 0, amount.Cmp(got.Amount))
	assert.True(t, rec.VerifiedAt.Equal(got.VerifiedAt))

	// Overwrite keeps a single row
	rec.Amount = big.NewInt(5)
	require.NoError(t, store.PutRecord(ctx, rec))
	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "5", records[0].Amount.String())
}

func TestSQLiteDeleteRecord(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.DeleteRecord(ctx, "0x01"), ErrNotFound)

	require.NoError(t, store.PutRecord(ctx, testRecord("0x01")))
	require.NoError(t, store.DeleteRecord(ctx, "0x01"))

	_, err := store.GetRecord(ctx, "0x01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteAPIKeys(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	key, err := store.CreateAPIKey(ctx, "admin")
	require.NoError(t, err)

	k, err := store.ValidateAPIKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "admin", k.Name)

	require.NoError(t, store.RevokeAPIKey(ctx, k.ID))
	_, err = store.ValidateAPIKey(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.RevokeAPIKey(ctx, k.ID), ErrNotFound)
}
