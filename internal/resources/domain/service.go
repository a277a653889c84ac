// Package domain contains the business logic for resource metadata and
// access-gated content delivery.
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/gatewei/gatewei/internal/config"
	"github.com/gatewei/gatewei/internal/content"
	"github.com/gatewei/gatewei/internal/observability/metrics"
	"github.com/gatewei/gatewei/internal/validation"
	"github.com/gatewei/gatewei/internal/vault"
)

// Common errors returned by the resource service.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidResourceID = errors.New("invalid resource ID")
	ErrInvalidWallet     = errors.New("invalid wallet address")
)

// VaultReader defines the contract reads the resource domain needs.
type VaultReader interface {
	HasAccess(ctx context.Context, resourceID, wallet string) (bool, error)
	Resource(ctx context.Context, resourceID string) (*vault.Resource, error)
}

// Service is the resource interface the transports consume.
type Service interface {
	Get(ctx context.Context, resourceID string) (*vault.Resource, error)
	HasAccess(ctx context.Context, resourceID, wallet string) (bool, error)
	Content(ctx context.Context, resourceID, wallet string) (*content.Descriptor, error)
}

type service struct {
	reader   VaultReader
	resolver *content.Resolver
	cache    *bigcache.BigCache
	logger   *slog.Logger
}

// NewService creates a new resource service. The metadata cache is optional;
// a nil config TTL or disabled cache means every read hits the chain.
func NewService(reader VaultReader, resolver *content.Resolver, cfg config.CacheConfig, logger *slog.Logger) (*service, error) {
	svc := &service{
		reader:   reader,
		resolver: resolver,
		logger:   logger,
	}

	if cfg.Enabled {
		cacheConfig := bigcache.DefaultConfig(time.Duration(cfg.TTLSeconds) * time.Second)
		cacheConfig.HardMaxCacheSize = cfg.MaxSizeMB
		cache, err := bigcache.New(context.Background(), cacheConfig)
		if err != nil {
			return nil, fmt.Errorf("creating resource cache: %w", err)
		}
		svc.cache = cache
	}
	return svc, nil
}

// Get returns decoded on-chain metadata for a resource.
func (s *service) Get(ctx context.Context, resourceID string) (*vault.Resource, error) {
	if err := validation.ValidateResourceID(resourceID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResourceID, err)
	}

	if res, ok := s.cached(resourceID); ok {
		return res, nil
	}

	res, err := s.reader.Resource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("reading resource: %w", err)
	}
	if !res.Exists {
		return nil, ErrNotFound
	}

	s.store(resourceID, res)
	return res, nil
}

// HasAccess reports whether a wallet has paid for a resource. Always a live
// chain read; payment state must never be served stale.
func (s *service) HasAccess(ctx context.Context, resourceID, wallet string) (bool, error) {
	if err := validation.ValidateResourceID(resourceID); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidResourceID, err)
	}
	if err := validation.ValidateAddress(wallet); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}

	ok, err := s.reader.HasAccess(ctx, resourceID, wallet)
	if err != nil {
		return false, fmt.Errorf("reading access: %w", err)
	}
	return ok, nil
}

// Content returns the classified content descriptor for a wallet that has
// paid for the resource.
func (s *service) Content(ctx context.Context, resourceID, wallet string) (*content.Descriptor, error) {
	ok, err := s.HasAccess(ctx, resourceID, wallet)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	res, err := s.Get(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	desc := s.resolver.Classify(res.ContentRef)
	return &desc, nil
}

func (s *service) cached(resourceID string) (*vault.Resource, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(resourceID)
	if err != nil {
		metrics.RecordResourceCache("miss")
		return nil, false
	}

	var res vault.Resource
	if err := json.Unmarshal(data, &res); err != nil {
		s.logger.Warn("dropping corrupt cache entry", "resourceId", resourceID, "error", err)
		_ = s.cache.Delete(resourceID)
		metrics.RecordResourceCache("miss")
		return nil, false
	}
	metrics.RecordResourceCache("hit")
	return &res, true
}

func (s *service) store(resourceID string, res *vault.Resource) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(resourceID, data); err != nil {
		s.logger.Warn("caching resource failed", "resourceId", resourceID, "error", err)
	}
}
