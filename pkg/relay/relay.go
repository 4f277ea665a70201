// Package relay provides the HTTP server receiving webhook calls
// and the dispatcher rebuilding and forwarding their bodies.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Semior001/forwardhook/pkg/discovery"
	"github.com/Semior001/forwardhook/pkg/jsonval"
	"github.com/Semior001/forwardhook/pkg/relay/middleware"
	"github.com/cappuccinotm/slogx"
	"github.com/go-chi/chi/v5"
)

//go:generate moq -out mock_route_provider.go -fmt goimports . RouteProvider
//go:generate moq -out mock_forwarder.go -fmt goimports . Forwarder

// RouteProvider returns the route registered under the given name.
type RouteProvider interface {
	Route(name string) (discovery.Route, bool)
}

// Forwarder delivers rebuilt documents to upstreams.
type Forwarder interface {
	Forward(ctx context.Context, method, url string, body *jsonval.Value) error
}

// Server is the HTTP server of the relay.
type Server struct {
	version string
	debug   bool

	routes RouteProvider
	fwd    Forwarder

	srv *http.Server
}

// NewServer creates a new server.
func NewServer(routes RouteProvider, fwd Forwarder, opts ...Option) *Server {
	s := &Server{routes: routes, fwd: fwd}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Listen starts the server on the given address.
// Blocking call.
func (s *Server) Listen(addr string) (err error) {
	slog.Info("starting HTTP server", slog.Any("addr", addr), slog.Bool("debug", s.debug))
	defer func() { slog.Warn("HTTP server stopped", slogx.Error(err)) }()

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.AppInfo("forwardhook", "Semior001", s.version))
	router.Use(middleware.Log(s.debug))
	router.Post("/{route}", s.handle)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err = s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// Close stops the server.
func (s *Server) Close() { _ = s.srv.Shutdown(context.Background()) }

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "route")

	route, ok := s.routes.Route(name)
	if !ok {
		s.respondError(ctx, w, http.StatusNotFound, fmt.Errorf("route %q is not configured", name))
		return
	}

	body, err := jsonval.Parse(r.Body)
	if err != nil {
		s.respondError(ctx, w, http.StatusBadRequest, fmt.Errorf("parse body: %w", err))
		return
	}

	if body.Kind() != jsonval.KindObject {
		s.respondError(ctx, w, http.StatusBadRequest,
			fmt.Errorf("body must be a JSON object, got %s", body.Kind()))
		return
	}

	doc, err := BuildDocument(route, body)
	if err != nil {
		s.respondError(ctx, w, http.StatusBadRequest,
			fmt.Errorf("build document for route %q: %w", name, err))
		return
	}

	if s.debug {
		s.respond(ctx, w, doc)
		return
	}

	if err = s.fwd.Forward(ctx, route.Method, route.ForwardURL, doc); err != nil {
		s.respondError(ctx, w, http.StatusBadGateway,
			fmt.Errorf("forward to %q: %w", route.ForwardURL, err))
		return
	}

	reply := route.Reply
	if reply == nil {
		reply = jsonval.NewObject()
	}

	s.respond(ctx, w, reply)
}

func (s *Server) respond(ctx context.Context, w http.ResponseWriter, body *jsonval.Value) {
	bts, err := body.MarshalJSON()
	if err != nil {
		s.respondError(ctx, w, http.StatusInternalServerError, fmt.Errorf("marshal response: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(bts); err != nil {
		slog.WarnContext(ctx, "failed to write response", slogx.Error(err))
	}
}

// respondError logs the reason of the rejection and replies
// with a generic error message, to not leak the configuration details.
func (s *Server) respondError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	slog.WarnContext(ctx, "rejected request",
		slog.Int("status", status),
		slogx.Error(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, http.StatusText(status))
}
