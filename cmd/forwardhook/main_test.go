package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EndToEnd(t *testing.T) {
	upstreamBodies := make(chan string, 1)
	upstreamMethods := make(chan string, 1)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bts, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		upstreamBodies <- string(bts)
		upstreamMethods <- r.Method

		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	cfg := fmt.Sprintf(`
version: "1"
routes:
  test:
    forward-url: %s
    fields:
      - from: [user, id]
        to: [uid]
    reply:
      ok: true
`, upstream.URL)

	tmp, err := os.CreateTemp(os.TempDir(), "forwardhook-e2e")
	require.NoError(t, err)
	_ = tmp.Close()
	defer os.Remove(tmp.Name())
	require.NoError(t, os.WriteFile(tmp.Name(), []byte(cfg), 0o600))

	port := rand.Intn(1000) + 11000
	opts.Addr = fmt.Sprintf("localhost:%d", port)
	opts.File.Name = tmp.Name()
	opts.File.CheckInterval = 50 * time.Millisecond
	opts.File.Delay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	url := fmt.Sprintf("http://localhost:%d/test", port)

	var status int
	var respBody string
	require.Eventually(t, func() bool {
		resp, err := http.Post(url, "application/json",
			bytes.NewBufferString(`{"user":{"id":42}}`))
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		bts, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}

		status, respBody = resp.StatusCode, string(bts)
		// the route table may not be loaded yet
		return status != http.StatusNotFound
	}, 5*time.Second, 50*time.Millisecond)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"ok":true}`, respBody)

	select {
	case body := <-upstreamBodies:
		assert.Equal(t, `{"uid":42}`, body)
	case <-time.After(time.Second):
		t.Fatal("upstream never received the document")
	}
	assert.Equal(t, http.MethodPost, <-upstreamMethods)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on context cancellation")
	}
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, getVersion())
}
