// Package records stores verification records and API keys behind a
// backend-selectable Store interface.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/gatewei/gatewei/internal/config"
)

// ErrNotFound is returned when a record or key does not exist.
var ErrNotFound = errors.New("not found")

// VerificationRecord is the idempotent result of a successful verification,
// keyed by the normalized (lowercase) transaction hash.
type VerificationRecord struct {
	TxHash      string
	Payer       string
	Beneficiary string
	Amount      *big.Int
	VerifiedAt  time.Time
}

// Clone returns a deep copy, so stored records cannot be mutated by callers.
func (r *VerificationRecord) Clone() *VerificationRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Amount != nil {
		out.Amount = new(big.Int).Set(r.Amount)
	}
	return &out
}

// APIKey represents an admin API key. The plaintext key is never stored;
// only its hash is.
type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	CreatedAt  string
	LastUsedAt string
	RevokedAt  string
}

// RecordStore handles verification record operations. PutRecord must be
// value-idempotent: two racing writers storing equal records converge on
// the same stored state.
type RecordStore interface {
	GetRecord(ctx context.Context, txHash string) (*VerificationRecord, error)
	PutRecord(ctx context.Context, rec *VerificationRecord) error
	ListRecords(ctx context.Context) ([]VerificationRecord, error)
	DeleteRecord(ctx context.Context, txHash string) error
}

// APIKeyStore handles API key operations.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, name string) (key string, err error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// Store combines the storage interfaces with lifecycle methods.
// Domain services define their own minimal interfaces based on actual usage.
type Store interface {
	RecordStore
	APIKeyStore

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}

// New creates the configured store backend, wrapped with operation metrics.
func New(cfg config.RecordsConfig, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "memory":
		store = NewMemoryStore()
	case "sqlite":
		store, err = NewSQLiteStore(cfg.SQLite.Path, logger)
	case "postgres":
		store, err = NewPostgresStore(cfg.Postgres.URL, logger)
	case "redis":
		store, err = NewRedisStore(cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown records backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return instrument(store, cfg.Backend), nil
}
