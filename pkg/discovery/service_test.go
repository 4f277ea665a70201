package discovery

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/forwardhook/pkg/jsonval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Run(t *testing.T) {
	t.Run("merge multiple providers", func(t *testing.T) {
		p1 := &ProviderMock{
			NameFunc: func() string { return "p1" },
			EventsFunc: func(context.Context) <-chan string {
				res := make(chan string, 1)
				res <- "file:/file1"
				return res
			},
			RoutesFunc: func(context.Context) ([]Route, error) {
				return []Route{
					{Name: "orders", ForwardURL: "http://upstream-1.example/hook", Method: http.MethodPost},
					{Name: "users", ForwardURL: "http://upstream-2.example/hook", Method: http.MethodPut},
				}, nil
			},
		}
		p2 := &ProviderMock{
			NameFunc: func() string { return "p2" },
			EventsFunc: func(context.Context) <-chan string {
				return make(chan string, 1)
			},
			RoutesFunc: func(context.Context) ([]Route, error) {
				return []Route{
					{Name: "users", ForwardURL: "http://upstream-3.example/hook", Method: http.MethodPost},
				}, nil
			},
		}
		p3 := &ProviderMock{
			NameFunc: func() string { return "p3" },
			EventsFunc: func(context.Context) <-chan string {
				return make(chan string, 1)
			},
			RoutesFunc: func(context.Context) ([]Route, error) {
				return nil, errors.New("failed to get routes")
			},
		}

		svc := &Service{Providers: []Provider{p1, p2, p3}}
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		err := svc.Run(ctx)
		require.Error(t, err)
		assert.Equal(t, context.DeadlineExceeded, err)

		got, ok := svc.Route("orders")
		require.True(t, ok)
		assert.Equal(t, "http://upstream-1.example/hook", got.ForwardURL)

		// the later provider overrides the route of the earlier one
		got, ok = svc.Route("users")
		require.True(t, ok)
		assert.Equal(t, "http://upstream-3.example/hook", got.ForwardURL)
		assert.Equal(t, http.MethodPost, got.Method)

		_, ok = svc.Route("unknown")
		assert.False(t, ok)
	})

	t.Run("update on event", func(t *testing.T) {
		events := make(chan string, 2)
		events <- "first"

		mu := sync.Mutex{}
		routes := []Route{{Name: "orders", ForwardURL: "http://one.example"}}
		setRoutes := func(rs []Route) { mu.Lock(); routes = rs; mu.Unlock() }

		p := &ProviderMock{
			NameFunc:   func() string { return "p" },
			EventsFunc: func(context.Context) <-chan string { return events },
			RoutesFunc: func(context.Context) ([]Route, error) {
				mu.Lock()
				defer mu.Unlock()
				return routes, nil
			},
		}

		svc := &Service{Providers: []Provider{p}}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan struct{})
		go func() { defer close(done); _ = svc.Run(ctx) }()

		require.Eventually(t, func() bool {
			_, ok := svc.Route("orders")
			return ok
		}, time.Second, 10*time.Millisecond)

		setRoutes([]Route{{Name: "orders", ForwardURL: "http://two.example"}})
		events <- "second"

		require.Eventually(t, func() bool {
			r, ok := svc.Route("orders")
			return ok && r.ForwardURL == "http://two.example"
		}, time.Second, 10*time.Millisecond)

		cancel()
		<-done
	})
}

func TestRoute_String(t *testing.T) {
	r := Route{
		Name:       "orders",
		ForwardURL: "http://upstream.example/hook",
		Method:     http.MethodPost,
		Fields: []FieldMapping{
			{From: jsonval.Path{jsonval.Key("user"), jsonval.Key("id")}, To: jsonval.Path{jsonval.Key("uid")}},
		},
	}
	assert.Equal(t, "(orders; POST http://upstream.example/hook; 1 fields)", r.String())
}
