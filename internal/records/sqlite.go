package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	-- Verification records, keyed by normalized transaction hash
	CREATE TABLE IF NOT EXISTS verification_records (
		tx_hash TEXT PRIMARY KEY,
		payer TEXT NOT NULL,
		beneficiary TEXT NOT NULL,
		amount TEXT NOT NULL,
		verified_at TEXT NOT NULL
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now')),
		last_used_at TEXT,
		revoked_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_records_beneficiary ON verification_records(beneficiary);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// GetRecord returns the record for a transaction hash, if any.
func (s *SQLiteStore) GetRecord(ctx context.Context, txHash string) (*VerificationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT tx_hash, payer, beneficiary, amount, verified_at
		 FROM verification_records WHERE tx_hash = ?`, normalizeTxHash(txHash))
	return scanRecord(row)
}

// PutRecord stores a record, overwriting any existing row for the same hash.
func (s *SQLiteStore) PutRecord(ctx context.Context, rec *VerificationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_records (tx_hash, payer, beneficiary, amount, verified_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tx_hash) DO UPDATE SET
		   payer = excluded.payer,
		   beneficiary = excluded.beneficiary,
		   amount = excluded.amount,
		   verified_at = excluded.verified_at`,
		normalizeTxHash(rec.TxHash), rec.Payer, rec.Beneficiary,
		amountString(rec.Amount), rec.VerifiedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	return nil
}

// ListRecords returns all stored records, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]VerificationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tx_hash, payer, beneficiary, amount, verified_at
		 FROM verification_records ORDER BY verified_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []VerificationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// DeleteRecord removes a record.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, txHash string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_records WHERE tx_hash = ?`, normalizeTxHash(txHash))
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
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

// CreateAPIKey creates a new API key and returns it once.
func (s *SQLiteStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, name) VALUES (?, ?, ?)`,
		generateID(), hashAPIKey(key), name)
	if err != nil {
		return "", fmt.Errorf("creating API key: %w", err)
	}
	return key, nil
}

// ValidateAPIKey checks a presented key against the stored hashes.
func (s *SQLiteStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	var k APIKey
	var lastUsed, revoked sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key_hash, name, created_at, last_used_at, revoked_at
		 FROM api_keys WHERE key_hash = ? AND revoked_at IS NULL`,
		hashAPIKey(key)).Scan(&k.ID, &k.KeyHash, &k.Name, &k.CreatedAt, &lastUsed, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("validating API key: %w", err)
	}
	k.LastUsedAt = lastUsed.String
	k.RevokedAt = revoked.String

	_, _ = s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = datetime('now') WHERE id = ?`, k.ID)
	return &k, nil
}

// ListAPIKeys returns all keys, revoked included.
func (s *SQLiteStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key_hash, name, created_at, last_used_at, revoked_at
		 FROM api_keys ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing API keys: %w", err)
	}
	defer rows.Close()

	var out []APIKey
	for rows.Next() {
		var k APIKey
		var lastUsed, revoked sql.NullString
		if err := rows.Scan(&k.ID, &k.KeyHash, &k.Name, &k.CreatedAt, &lastUsed, &revoked); err != nil {
			return nil, err
		}
		k.LastUsedAt = lastUsed.String
		k.RevokedAt = revoked.String
		out = append(out, k)
	}
	return out, rows.Err()
}

// RevokeAPIKey marks a key revoked.
func (s *SQLiteStore) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = datetime('now') WHERE id = ? AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoking API key: %w", err)
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

// scanner abstracts *sql.Row and *sql.Rows for record scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*VerificationRecord, error) {
	var rec VerificationRecord
	var amount, verifiedAt string
	err := row.Scan(&rec.TxHash, &rec.Payer, &rec.Beneficiary, &amount, &verifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}
	rec.VerifiedAt, err = time.Parse(time.RFC3339, verifiedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing verified_at: %w", err)
	}
	return &rec, nil
}
