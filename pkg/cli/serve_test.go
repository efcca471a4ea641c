package cli

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/canonrest/pkg/config"
	"github.com/getmockd/canonrest/pkg/logging"
)

func TestServeFlags_Apply(t *testing.T) {
	opts := &rootOptions{}
	cmd := newServeCmd(opts)
	require.NoError(t, cmd.Flags().Parse([]string{
		"--addr", "127.0.0.1:9999",
		"--log-level", "debug",
		"--seed-count", "3",
		"--no-metrics",
	}))

	cfg := config.Default()
	f := &serveFlags{addr: "127.0.0.1:9999", logLevel: "debug", seedCount: 3, noMetrics: true}
	f.apply(cmd, opts, cfg)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Seed.Count)
	assert.False(t, cfg.Server.Metrics)
	assert.Equal(t, "Resource", cfg.Seed.Prefix)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonrest.log")
	var stderr nopWriter

	log, closeLog, err := newLogger(config.LoggingConfig{Level: "info", Format: "text", File: path}, &stderr)
	require.NoError(t, err)
	log.Info("hello", "key", 1)
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLogger_BadFile(t *testing.T) {
	_, _, err := newLogger(config.LoggingConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")}, &nopWriter{})
	assert.Error(t, err)
}

func TestRunServer_ServesAndShutsDown(t *testing.T) {
	cfg := config.Default()
	cfg.Seed.Count = 2
	cfg.Server.ShutdownTimeout = 5 * time.Second

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, cfg, ln, logging.Nop()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/api/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/sample/2")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
