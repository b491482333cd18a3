package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount struct {
	n   int
	err error
}

func (f fixedCount) StoredCount(context.Context) (int, error) { return f.n, f.err }

func TestCollector_ObserveProvider(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	c.ObserveProvider("lrclib", "fetch", "hit", 120*time.Millisecond)
	c.ObserveProvider("lrclib", "fetch", "hit", 80*time.Millisecond)
	c.ObserveProvider("genius", "fetch", "error", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.providerRequests.WithLabelValues("lrclib", "fetch", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.providerRequests.WithLabelValues("genius", "fetch", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.providerDuration))
}

func TestCollector_ObserveImport(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	c.ObserveImport("upload", "accepted")
	c.ObserveImport("upload", "rejected")
	c.ObserveImport("upload", "rejected")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.imports.WithLabelValues("upload", "rejected")))
}

func TestCollector_StoredGauge(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry(), fixedCount{n: 42})
	require.NoError(t, err)
	assert.Equal(t, float64(42), testutil.ToFloat64(c.storedLyrics))
}

func TestCollector_DoubleRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewCollector(registry, nil)
	require.NoError(t, err)
	_, err = NewCollector(registry, nil)
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry(), fixedCount{n: 3})
	require.NoError(t, err)
	c.ObserveProvider("local_db", "fetch", "miss", time.Millisecond)

	app := fiber.New()
	RegisterRoutes(app, NewHandler(c, fixedCount{n: 3}))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `lyrics_provider_requests_total{operation="fetch",outcome="miss",provider="local_db"} 1`))
	assert.Contains(t, string(body), "lyrics_stored 3")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/metrics", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"stored_lyrics":3}`, string(body))
}

func TestOverview_StoreError(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	app := fiber.New()
	RegisterRoutes(app, NewHandler(c, fixedCount{err: errors.New("locked")}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
