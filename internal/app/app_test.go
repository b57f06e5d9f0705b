package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.Config {
	return config.Config{
		Port:               "3001",
		BaseURL:            "http://localhost:3001",
		AccountID:          "acct-1",
		StoreBackend:       config.BackendMemory,
		CORSAllowedOrigins: []string{"https://dashboard.example.com"},
	}
}

func TestHandlerEndToEnd(t *testing.T) {
	a := NewWithRepository(testConfig(), repository.NewMemoryRepository(), zap.NewNop())
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/data", "application/json", strings.NewReader(`{"value1":1,"value2":2,"value3":3,"value4":4,"value5":5}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/data/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	var latest struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&latest))
	for i, field := range []string{"value1", "value2", "value3", "value4", "value5"} {
		assert.Equal(t, float64(i+1), latest.Data[field])
	}

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `readings_api_http_requests_total{method="POST",path="/data",status="200"} 1`)
	assert.Contains(t, string(raw), `readings_api_store_operations_total{operation="create",status="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	a := NewWithRepository(testConfig(), repository.NewMemoryRepository(), zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/data", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenRepository(t *testing.T) {
	ctx := context.Background()

	repo, err := OpenRepository(ctx, testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryRepository{}, repo)

	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.StoreBackend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	repo, err = OpenRepository(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repository.RedisRepository{}, repo)
	require.NoError(t, repo.Close(ctx))

	cfg.StoreBackend = "cassandra"
	_, err = OpenRepository(ctx, cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestServerRunStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	srv := NewServer(addr, http.NotFoundHandler(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not stop")
	}
}
