package records

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process maps. This is the default
// backend; records live for the process lifetime and are never evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*VerificationRecord
	keys    map[string]*APIKey // by id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*VerificationRecord),
		keys:    make(map[string]*APIKey),
	}
}

// GetRecord returns the record for a transaction hash, if any.
func (s *MemoryStore) GetRecord(ctx context.Context, txHash string) (*VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[normalizeTxHash(txHash)]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// PutRecord stores a record. Overwriting with an equal record is the
// expected convergence when two verifications of the same hash race.
func (s *MemoryStore) PutRecord(ctx context.Context, rec *VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rec.Clone()
	stored.TxHash = normalizeTxHash(stored.TxHash)
	s.records[stored.TxHash] = stored
	return nil
}

// ListRecords returns all stored records.
func (s *MemoryStore) ListRecords(ctx context.Context) ([]VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]VerificationRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec.Clone())
	}
	return out, nil
}

// DeleteRecord removes a record.
func (s *MemoryStore) DeleteRecord(ctx context.Context, txHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeTxHash(txHash)
	if _, ok := s.records[key]; !ok {
		return ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// CreateAPIKey creates a new API key and returns it once.
func (s *MemoryStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := generateAPIKey()
	id := generateID()
	s.keys[id] = &APIKey{
		ID:        id,
		Name:      name,
		KeyHash:   hashAPIKey(key),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return key, nil
}

// ValidateAPIKey checks a presented key against the stored hashes.
func (s *MemoryStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.KeyHash == hash && k.RevokedAt == "" {
			k.LastUsedAt = time.Now().UTC().Format(time.RFC3339)
			out := *k
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// ListAPIKeys returns all keys, revoked included.
func (s *MemoryStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, *k)
	}
	return out, nil
}

// RevokeAPIKey marks a key revoked.
func (s *MemoryStore) RevokeAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[id]
	if !ok {
		return ErrNotFound
	}
	k.RevokedAt = time.Now().UTC().Format(time.RFC3339)
	return nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }

// Migrate is a no-op for the memory backend.
func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
