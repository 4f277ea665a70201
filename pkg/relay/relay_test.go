package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/forwardhook/pkg/discovery"
	"github.com/Semior001/forwardhook/pkg/jsonval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, routes RouteProvider, fwd Forwarder, opts ...Option) string {
	t.Helper()

	srv := NewServer(routes, fwd, append(opts, Version("test"))...)
	port := rand.Intn(1000) + 10000

	go func() { require.NoError(t, srv.Listen(fmt.Sprintf("localhost:%d", port))) }()
	t.Cleanup(srv.Close)

	url := fmt.Sprintf("http://localhost:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Post(url+"/ping", "application/json", bytes.NewBufferString("{}"))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	return url
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	bts, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(bts)
}

func TestServer_handle(t *testing.T) {
	reply, err := jsonval.ParseBytes([]byte(`{"ok":true}`))
	require.NoError(t, err)

	routes := &RouteProviderMock{RouteFunc: func(name string) (discovery.Route, bool) {
		if name != "test" {
			return discovery.Route{}, false
		}
		return discovery.Route{
			Name:       "test",
			ForwardURL: "http://upstream.example/x",
			Method:     http.MethodPost,
			Fields:     []discovery.FieldMapping{{From: path("user", "id"), To: path("uid")}},
			Reply:      reply,
		}, true
	}}

	fwd := &ForwarderMock{ForwardFunc: func(context.Context, string, string, *jsonval.Value) error {
		return nil
	}}

	url := startServer(t, routes, fwd)

	t.Run("successful dispatch", func(t *testing.T) {
		status, body := post(t, url+"/test", `{"user":{"id":42}}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, `{"ok":true}`, body)

		calls := fwd.ForwardCalls()
		require.NotEmpty(t, calls)

		last := calls[len(calls)-1]
		assert.Equal(t, http.MethodPost, last.Method)
		assert.Equal(t, "http://upstream.example/x", last.URL)
		assert.Equal(t, `{"uid":42}`, last.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		before := len(fwd.ForwardCalls())

		status, body := post(t, url+"/unknown", `{"user":{"id":42}}`)
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"error":"Not Found"}`, body)
		assert.Len(t, fwd.ForwardCalls(), before)
	})

	t.Run("missing required field", func(t *testing.T) {
		before := len(fwd.ForwardCalls())

		status, _ := post(t, url+"/test", `{"user":{}}`)
		assert.Equal(t, http.StatusBadRequest, status)

		// no partial forward is ever issued
		assert.Len(t, fwd.ForwardCalls(), before)
	})

	t.Run("malformed body", func(t *testing.T) {
		status, _ := post(t, url+"/test", `{"user":`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("non-object body", func(t *testing.T) {
		status, _ := post(t, url+"/test", `[1,2,3]`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestServer_handle_NoReply(t *testing.T) {
	routes := &RouteProviderMock{RouteFunc: func(string) (discovery.Route, bool) {
		return discovery.Route{
			Name:       "test",
			ForwardURL: "http://upstream.example/x",
			Method:     http.MethodPost,
		}, true
	}}
	fwd := &ForwarderMock{ForwardFunc: func(context.Context, string, string, *jsonval.Value) error {
		return nil
	}}

	url := startServer(t, routes, fwd)

	status, body := post(t, url+"/test", `{}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{}`, body)
}

func TestServer_handle_UpstreamError(t *testing.T) {
	routes := &RouteProviderMock{RouteFunc: func(string) (discovery.Route, bool) {
		return discovery.Route{
			Name:       "test",
			ForwardURL: "http://upstream.example/x",
			Method:     http.MethodPost,
		}, true
	}}
	fwd := &ForwarderMock{ForwardFunc: func(context.Context, string, string, *jsonval.Value) error {
		return fmt.Errorf("connection refused")
	}}

	url := startServer(t, routes, fwd)

	status, body := post(t, url+"/test", `{}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.JSONEq(t, `{"error":"Bad Gateway"}`, body)
}

func TestServer_handle_Debug(t *testing.T) {
	routes := &RouteProviderMock{RouteFunc: func(string) (discovery.Route, bool) {
		return discovery.Route{
			Name:       "test",
			ForwardURL: "http://upstream.example/x",
			Method:     http.MethodPost,
			Fields:     []discovery.FieldMapping{{From: path("user", "id"), To: path("uid")}},
		}, true
	}}
	fwd := &ForwarderMock{ForwardFunc: func(context.Context, string, string, *jsonval.Value) error {
		return nil
	}}

	url := startServer(t, routes, fwd, Debug())

	status, body := post(t, url+"/test", `{"user":{"id":42}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"uid":42}`, body)

	// debug mode never calls the upstream
	assert.Empty(t, fwd.ForwardCalls())
}

func TestServer_handle_ConcurrentDispatches(t *testing.T) {
	routes := &RouteProviderMock{RouteFunc: func(name string) (discovery.Route, bool) {
		return discovery.Route{
			Name:       name,
			ForwardURL: "http://upstream.example/" + name,
			Method:     http.MethodPost,
			Fields:     []discovery.FieldMapping{{From: path("value"), To: path("echo")}},
		}, true
	}}
	fwd := &ForwarderMock{ForwardFunc: func(context.Context, string, string, *jsonval.Value) error {
		return nil
	}}

	url := startServer(t, routes, fwd, Debug())

	const n = 32

	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			status, body := post(t, fmt.Sprintf("%s/route-%d", url, i),
				fmt.Sprintf(`{"value":%d}`, i))
			assert.Equal(t, http.StatusOK, status)

			// every response carries only its own request's value
			assert.Equal(t, fmt.Sprintf(`{"echo":%d}`, i), body)
		}(i)
	}
	wg.Wait()
}
