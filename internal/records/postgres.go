package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	-- Verification records, keyed by normalized transaction hash
	CREATE TABLE IF NOT EXISTS verification_records (
		tx_hash TEXT PRIMARY KEY,
		payer TEXT NOT NULL,
		beneficiary TEXT NOT NULL,
		amount NUMERIC(78, 0) NOT NULL,
		verified_at TIMESTAMPTZ NOT NULL
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_used_at TIMESTAMPTZ,
		revoked_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_records_beneficiary ON verification_records(beneficiary);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

// GetRecord retrieves a verification record by transaction hash
func (s *PostgresStore) GetRecord(ctx context.Context, txHash string) (*VerificationRecord, error) {
	query := `
		SELECT tx_hash, payer, beneficiary, amount::TEXT, verified_at
		FROM verification_records
		WHERE tx_hash = $1
	`
	var rec VerificationRecord
	var amount string
	var verifiedAt time.Time
	err := s.db.QueryRowContext(ctx, query, normalizeTxHash(txHash)).Scan(
		&rec.TxHash, &rec.Payer, &rec.Beneficiary, &amount, &verifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}
	rec.VerifiedAt = verifiedAt.UTC()
	return &rec, nil
}

// PutRecord stores a verification record
func (s *PostgresStore) PutRecord(ctx context.Context, rec *VerificationRecord) error {
	query := `
		INSERT INTO verification_records (tx_hash, payer, beneficiary, amount, verified_at)
		VALUES ($1, $2, $3, $4::NUMERIC, $5)
		ON CONFLICT(tx_hash) DO UPDATE SET
			payer = EXCLUDED.payer,
			beneficiary = EXCLUDED.beneficiary,
			amount = EXCLUDED.amount,
			verified_at = EXCLUDED.verified_at
	`
	_, err := s.db.ExecContext(ctx, query,
		normalizeTxHash(rec.TxHash), rec.Payer, rec.Beneficiary,
		amountString(rec.Amount), rec.VerifiedAt.UTC())
	return err
}

// ListRecords lists all verification records, newest first
func (s *PostgresStore) ListRecords(ctx context.Context) ([]VerificationRecord, error) {
	query := `
		SELECT tx_hash, payer, beneficiary, amount::TEXT, verified_at
		FROM verification_records
		ORDER BY verified_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []VerificationRecord
	for rows.Next() {
		var rec VerificationRecord
		var amount string
		var verifiedAt time.Time
		if err := rows.Scan(&rec.TxHash, &rec.Payer, &rec.Beneficiary, &amount, &verifiedAt); err != nil {
			return nil, err
		}
		rec.Amount, err = parseAmount(amount)
		if err != nil {
			return nil, err
		}
		rec.VerifiedAt = verifiedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRecord deletes a verification record
func (s *PostgresStore) DeleteRecord(ctx context.Context, txHash string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM verification_records WHERE tx_hash = $1", normalizeTxHash(txHash))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAPIKey creates a new API key
func (s *PostgresStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (id, key_hash, name) VALUES ($1, $2, $3)", id, hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *PostgresStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, "SELECT id, key_hash, name, created_at FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err == nil {
		ak.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
	}
	// Update last used
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", ak.ID)
	return &ak, err
}

// ListAPIKeys lists all API keys
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, last_used_at FROM api_keys WHERE revoked_at IS NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var createdAt time.Time
		var lastUsed sql.NullTime
		if err := rows.Scan(&k.ID, &k.Name, &createdAt, &lastUsed); err != nil {
			return nil, err
		}
		k.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
		if lastUsed.Valid {
			k.LastUsedAt = lastUsed.Time.Format("2006-01-02 15:04:05")
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
