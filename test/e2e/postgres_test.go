//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gatewei/gatewei/internal/records"
)

// TestPostgresBackend exercises the postgres record store against a real
// database in a container.
func TestPostgresBackend(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("gatewei"),
		postgres.WithUsername("gatewei"),
		postgres.WithPassword("gatewei"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store, err := records.NewPostgresStore(connString, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx), "migrations must be idempotent")

	t.Run("record round trip at full precision", func(t *testing.T) {
		amount, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
		require.True(t, ok)

		rec := &records.VerificationRecord{
			TxHash:      txHashN(0xf1),
			Payer:       payerAddr,
			Beneficiary: creatorAddr,
			Amount:      amount,
			VerifiedAt:  time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.PutRecord(ctx, rec))

		got, err := store.GetRecord(ctx, rec.TxHash)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Amount.Cmp(amount), "amount survives NUMERIC round trip")
		assert.Equal(t, payerAddr, got.Payer)

		list, err := store.ListRecords(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, store.DeleteRecord(ctx, rec.TxHash))
		_, err = store.GetRecord(ctx, rec.TxHash)
		assert.ErrorIs(t, err, records.ErrNotFound)
	})

	t.Run("api key lifecycle", func(t *testing.T) {
		key, err := store.CreateAPIKey(ctx, "pg-test-key")
		require.NoError(t, err)
		assert.Contains(t, key, "gw_key_")

		apiKey, err := store.ValidateAPIKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "pg-test-key", apiKey.Name)

		require.NoError(t, store.RevokeAPIKey(ctx, apiKey.ID))
		_, err = store.ValidateAPIKey(ctx, key)
		assert.Error(t, err)
	})
}
