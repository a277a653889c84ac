package domain

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewei/gatewei/internal/config"
	"github.com/gatewei/gatewei/internal/content"
	"github.com/gatewei/gatewei/internal/vault"
)

const wallet = "0x742d35cc6634c0532925a3b844bc9e7595f0beb0"

// fakeVault serves canned contract reads and counts resource fetches.
type fakeVault struct {
	mu        sync.Mutex
	resources map[string]*vault.Resource
	access    map[string]bool
	reads     int
}

func newFakeVault() *fakeVault {
	return &fakeVault{
		resources: make(map[string]*vault.Resource),
		access:    make(map[string]bool),
	}
}

func (f *fakeVault) Resource(ctx context.Context, resourceID string) (*vault.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if res, ok := f.resources[resourceID]; ok {
		return res, nil
	}
	return &vault.Resource{
		Price:        big.NewInt(0),
		PaymentCount: big.NewInt(0),
		TotalRevenue: big.NewInt(0),
	}, nil
}

func (f *fakeVault) HasAccess(ctx context.Context, resourceID, w string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access[resourceID+"|"+w], nil
}

func testResource(ref string) *vault.Resource {
	return &vault.Resource{
		Price:          big.NewInt(1000),
		LifetimeAccess: true,
		Active:         true,
		Exists:         true,
		ContentType:    "video",
		ContentRef:     ref,
		PaymentCount:   big.NewInt(3),
		TotalRevenue:   big.NewInt(3000),
	}
}

func newTestService(t *testing.T, reader VaultReader, cacheEnabled bool) *service {
	t.Helper()
	svc, err := NewService(reader, content.NewResolver(""), config.CacheConfig{
		Enabled:    cacheEnabled,
		MaxSizeMB:  8,
		TTLSeconds: 60,
	}, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestGetUnknownResource(t *testing.T) {
	svc := newTestService(t, newFakeVault(), false)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetInvalidResourceID(t *testing.T) {
	svc := newTestService(t, newFakeVault(), false)
	_, err := svc.Get(context.Background(), "../escape")
	assert.ErrorIs(t, err, ErrInvalidResourceID)
}

func TestGetCachesMetadata(t *testing.T) {
	reader := newFakeVault()
	reader.resources["video-1"] = testResource("ipfs://QmX")

	svc := newTestService(t, reader, true)
	ctx := context.Background()

	first, err := svc.Get(ctx, "video-1")
	require.NoError(t, err)
	second, err := svc.Get(ctx, "video-1")
	require.NoError(t, err)

	assert.Equal(t, first.ContentRef, second.ContentRef)
	assert.Equal(t, 0, first.Price.Cmp(second.Price))
	assert.Equal(t, 1, reader.reads, "second read must come from the cache")
}

func TestGetWithoutCacheAlwaysReads(t *testing.T) {
	reader := newFakeVault()
	reader.resources["video-1"] = testResource("ipfs://QmX")

	svc := newTestService(t, reader, false)
	ctx := context.Background()

	_, err := svc.Get(ctx, "video-1")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "video-1")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.reads)
}

func TestHasAccessValidatesWallet(t *testing.T) {
	svc := newTestService(t, newFakeVault(), false)
	_, err := svc.HasAccess(context.Background(), "video-1", "0xnothex")
	assert.ErrorIs(t, err, ErrInvalidWallet)
}

func TestContentDeniedWithoutPayment(t *testing.T) {
	reader := newFakeVault()
	reader.resources["video-1"] = testResource("ipfs://QmX")

	svc := newTestService(t, reader, false)
	_, err := svc.Content(context.Background(), "video-1", wallet)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestContentClassifiesAfterPayment(t *testing.T) {
	reader := newFakeVault()
	reader.resources["video-1"] = testResource("ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	reader.access["video-1|"+wallet] = true

	svc := newTestService(t, reader, false)
	desc, err := svc.Content(context.Background(), "video-1", wallet)
	require.NoError(t, err)
	assert.Equal(t, content.KindIPFS, desc.Kind)
	assert.Equal(t, content.DefaultGateway+"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", desc.Locator)
}
