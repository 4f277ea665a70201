package discovery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cappuccinotm/slogx"
	"github.com/samber/lo"
)

//go:generate moq -out mock_provider.go -fmt goimports . Provider

// Service provides routes to request handlers, pulling them
// from the providers on their signals.
type Service struct {
	Providers []Provider

	routes map[string]Route
	mu     sync.RWMutex
}

// Run starts a blocking loop that updates the routes
// on the signals, received from providers.
func (s *Service) Run(ctx context.Context) (err error) {
	slog.InfoContext(ctx, "starting discovery service")
	defer slog.WarnContext(ctx, "discovery service stopped", slogx.Error(err))

	chs := make([]<-chan string, 0, len(s.Providers))
	for _, p := range s.Providers {
		chs = append(chs, p.Events(ctx))
	}

	ch := lo.FanIn(0, chs...)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			slog.DebugContext(ctx, "new event update received", slog.String("event", ev))

			routes := s.mergeRoutes(ctx)
			s.mu.Lock()
			s.routes = routes
			s.mu.Unlock()

			slog.InfoContext(ctx, "updated routes", slog.Int("count", len(routes)))
		}
	}
}

// mergeRoutes pulls routes from every provider, a later provider
// overrides the routes of an earlier one on a name collision.
func (s *Service) mergeRoutes(ctx context.Context) map[string]Route {
	routes := map[string]Route{}
	for _, p := range s.Providers {
		rs, err := p.Routes(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to get routes",
				slog.String("provider", p.Name()),
				slogx.Error(err))
			continue
		}

		for _, r := range rs {
			if prev, ok := routes[r.Name]; ok {
				slog.WarnContext(ctx, "route overridden",
					slog.String("route", r.Name),
					slog.String("previous", prev.String()))
			}
			routes[r.Name] = r
		}
	}

	return routes
}

// Route returns the route registered under the given name.
func (s *Service) Route(name string) (Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.routes[name]
	return r, ok
}
