//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealth checks the liveness endpoints.
func TestHealth(t *testing.T) {
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		resp, err := http.Get(testCtx.TestServer.URL + path)
		require.NoError(t, err)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "ok", body["status"], path)
	}
}

// TestWidgetConfig checks the public payment parameters endpoint.
func TestWidgetConfig(t *testing.T) {
	c := newClient(testCtx.TestServer, "")

	cfg, err := c.Config(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, contractAddr, cfg.ContractAddress)
	assert.Equal(t, creatorAddr, cfg.Beneficiary)
	assert.Equal(t, priceWei.String(), cfg.PriceWei)
	assert.NotEmpty(t, cfg.PriceEther)
}
