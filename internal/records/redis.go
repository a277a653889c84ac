package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatewei/gatewei/internal/config"
)

const (
	recordKeyPrefix = "gatewei:record:"
	recordIndexKey  = "gatewei:records"
	apiKeyPrefix    = "gatewei:apikey:"
	apiKeyHashIndex = "gatewei:apikey:by-hash"
	apiKeyIndexKey  = "gatewei:apikeys"
)

// RedisStore implements Store using Redis hashes
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore creates a new Redis store
func NewRedisStore(cfg config.RedisConfig, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Migrate is a no-op for Redis
func (s *RedisStore) Migrate(ctx context.Context) error {
	return nil
}

// GetRecord retrieves a verification record by transaction hash
func (s *RedisStore) GetRecord(ctx context.Context, txHash string) (*VerificationRecord, error) {
	fields, err := s.client.HGetAll(ctx, recordKeyPrefix+normalizeTxHash(txHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching record: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := VerificationRecord{
		TxHash:      fields["tx_hash"],
		Payer:       fields["payer"],
		Beneficiary: fields["beneficiary"],
	}
	rec.Amount, err = parseAmount(fields["amount"])
	if err != nil {
		return nil, err
	}
	rec.VerifiedAt, err = time.Parse(time.RFC3339, fields["verified_at"])
	if err != nil {
		return nil, fmt.Errorf("parsing verified_at: %w", err)
	}
	return &rec, nil
}

// PutRecord stores a verification record
func (s *RedisStore) PutRecord(ctx context.Context, rec *VerificationRecord) error {
	hash := normalizeTxHash(rec.TxHash)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, recordKeyPrefix+hash, map[string]any{
		"tx_hash":     hash,
		"payer":       rec.Payer,
		"beneficiary": rec.Beneficiary,
		"amount":      amountString(rec.Amount),
		"verified_at": rec.VerifiedAt.UTC().Format(time.RFC3339),
	})
	pipe.ZAdd(ctx, recordIndexKey, redis.Z{
		Score:  float64(rec.VerifiedAt.Unix()),
		Member: hash,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	return nil
}

// ListRecords lists all verification records, newest first
func (s *RedisStore) ListRecords(ctx context.Context) ([]VerificationRecord, error) {
	hashes, err := s.client.ZRevRange(ctx, recordIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var records []VerificationRecord
	for _, h := range hashes {
		rec, err := s.GetRecord(ctx, h)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// DeleteRecord deletes a verification record
func (s *RedisStore) DeleteRecord(ctx context.Context, txHash string) error {
	hash := normalizeTxHash(txHash)
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, recordKeyPrefix+hash)
	pipe.ZRem(ctx, recordIndexKey, hash)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAPIKey creates a new API key
func (s *RedisStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, apiKeyPrefix+id, map[string]any{
		"id":         id,
		"key_hash":   hash,
		"name":       name,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	pipe.HSet(ctx, apiKeyHashIndex, hash, id)
	pipe.SAdd(ctx, apiKeyIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("creating API key: %w", err)
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *RedisStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	id, err := s.client.HGet(ctx, apiKeyHashIndex, hash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up API key: %w", err)
	}

	k, err := s.getAPIKey(ctx, id)
	if err != nil {
		return nil, err
	}
	if k.RevokedAt != "" {
		return nil, ErrNotFound
	}

	_ = s.client.HSet(ctx, apiKeyPrefix+id, "last_used_at", time.Now().UTC().Format(time.RFC3339)).Err()
	return k, nil
}

// ListAPIKeys lists all API keys
func (s *RedisStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	ids, err := s.client.SMembers(ctx, apiKeyIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing API keys: %w", err)
	}

	var keys []APIKey
	for _, id := range ids {
		k, err := s.getAPIKey(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if k.RevokedAt != "" {
			continue
		}
		keys = append(keys, *k)
	}
	return keys, nil
}

// RevokeAPIKey revokes an API key
func (s *RedisStore) RevokeAPIKey(ctx context.Context, id string) error {
	k, err := s.getAPIKey(ctx, id)
	if err != nil {
		return err
	}
	if k.RevokedAt != "" {
		return ErrNotFound
	}
	return s.client.HSet(ctx, apiKeyPrefix+id, "revoked_at", time.Now().UTC().Format(time.RFC3339)).Err()
}

func (s *RedisStore) getAPIKey(ctx context.Context, id string) (*APIKey, error) {
	fields, err := s.client.HGetAll(ctx, apiKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching API key: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return &APIKey{
		ID:         fields["id"],
		KeyHash:    fields["key_hash"],
		Name:       fields["name"],
		CreatedAt:  fields["created_at"],
		LastUsedAt: fields["last_used_at"],
		RevokedAt:  fields["revoked_at"],
	}, nil
}
