package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/clientstate/internal/config"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/logger"
)

// doJSONRequest sends body as JSON with the session header and decodes the
// response envelope.
func doJSONRequest(t *testing.T, method, url, sessionID string, body any) (int, map[string]any) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

// extractField navigates a decoded body with a dot-separated path.
func extractField(data map[string]any, path string) any {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[part]; !ok {
			return nil
		}
	}
	return current
}

func startRedisApp(t *testing.T, mr *miniredis.Miniredis) *httptest.Server {
	t.Helper()
	cfg := testConfig()
	cfg.Storage = config.StorageRedis
	cfg.RedisAddr = mr.Addr()
	cfg.AsyncWrites = false

	a, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Shutdown()
	})
	return srv
}

// TestCartFlow_SurvivesRestart drives a cart through the HTTP API, then
// reads it back through a fresh application sharing the same Redis.
func TestCartFlow_SurvivesRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	sessionID := uuid.NewString()

	first := startRedisApp(t, mr)
	status, _ := doJSONRequest(t, http.MethodPost, first.URL+"/api/v1/cart/items", sessionID,
		map[string]any{"product_id": "p1", "name": "Widget", "price": 29.99})
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSONRequest(t, http.MethodPost, first.URL+"/api/v1/cart/items", sessionID,
		map[string]any{"product_id": "p2", "name": "Gadget", "price": 5})
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSONRequest(t, http.MethodPost, first.URL+"/api/v1/wishlist/items", sessionID,
		map[string]any{"product_id": "p3", "name": "Gizmo", "price": 12})
	require.Equal(t, http.StatusOK, status)

	status, data := doJSONRequest(t, http.MethodPost, first.URL+"/api/v1/cart/undo", sessionID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, extractField(data, "data.applied"))

	second := startRedisApp(t, mr)
	status, data = doJSONRequest(t, http.MethodGet, second.URL+"/api/v1/cart", sessionID, nil)
	require.Equal(t, http.StatusOK, status)

	items, ok := extractField(data, "data.items").([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", extractField(items[0].(map[string]any), "product_id"))
	assert.Equal(t, 29.99, extractField(data, "data.summary.total_price"))
	// History lives in memory only.
	assert.Equal(t, false, extractField(data, "data.can_undo"))

	status, data = doJSONRequest(t, http.MethodGet, second.URL+"/api/v1/wishlist", sessionID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), extractField(data, "data.count"))

	status, data = doJSONRequest(t, http.MethodGet, second.URL+"/api/v1/cart", uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, extractField(data, "data.items"))
}
