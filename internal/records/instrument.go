package records

import (
	"context"

	"github.com/gatewei/gatewei/internal/observability/metrics"
)

// instrumentedStore wraps a Store and counts every operation.
type instrumentedStore struct {
	inner   Store
	backend string
}

func instrument(inner Store, backend string) Store {
	return &instrumentedStore{inner: inner, backend: backend}
}

func (s *instrumentedStore) observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordStoreOp(s.backend, op, status)
}

func (s *instrumentedStore) GetRecord(ctx context.Context, txHash string) (*VerificationRecord, error) {
	rec, err := s.inner.GetRecord(ctx, txHash)
	s.observe("get_record", err)
	return rec, err
}

func (s *instrumentedStore) PutRecord(ctx context.Context, rec *VerificationRecord) error {
	err := s.inner.PutRecord(ctx, rec)
	s.observe("put_record", err)
	return err
}

func (s *instrumentedStore) ListRecords(ctx context.Context) ([]VerificationRecord, error) {
	recs, err := s.inner.ListRecords(ctx)
	s.observe("list_records", err)
	return recs, err
}

func (s *instrumentedStore) DeleteRecord(ctx context.Context, txHash string) error {
	err := s.inner.DeleteRecord(ctx, txHash)
	s.observe("delete_record", err)
	return err
}

func (s *instrumentedStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key, err := s.inner.CreateAPIKey(ctx, name)
	s.observe("create_api_key", err)
	return key, err
}

func (s *instrumentedStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	k, err := s.inner.ValidateAPIKey(ctx, key)
	s.observe("validate_api_key", err)
	return k, err
}

func (s *instrumentedStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	keys, err := s.inner.ListAPIKeys(ctx)
	s.observe("list_api_keys", err)
	return keys, err
}

func (s *instrumentedStore) RevokeAPIKey(ctx context.Context, id string) error {
	err := s.inner.RevokeAPIKey(ctx, id)
	s.observe("revoke_api_key", err)
	return err
}

func (s *instrumentedStore) Migrate(ctx context.Context) error {
	return s.inner.Migrate(ctx)
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}
