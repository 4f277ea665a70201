// Package discovery provides the route registry of the relay, matching
// inbound webhook identifiers to forwarding configurations.
package discovery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Semior001/forwardhook/pkg/jsonval"
)

// Provider provides routes for the Service.
type Provider interface {
	// Name returns the name of the provider.
	Name() string

	// Events returns the events of the route configuration.
	// It returns the name of the provider to update the routes.
	Events(ctx context.Context) <-chan string

	// Routes returns the current set of routes of the provider.
	Routes(ctx context.Context) ([]Route, error)
}

// Route describes how to dispatch a single webhook: where to forward the
// rebuilt document and which fields of the inbound body make it up.
type Route struct {
	// Name is the route identifier, the path segment
	// selecting this route on the inbound request.
	Name string

	// ForwardURL is the upstream to deliver the rebuilt document to.
	ForwardURL string

	// Method is the HTTP method of the upstream call,
	// one of POST, PUT or PATCH.
	Method string

	// Fields describe how values move from the inbound body into the
	// outgoing document. Order matters: a later mapping may overwrite
	// the location written by an earlier one.
	Fields []FieldMapping

	// Reply, if set, is returned to the caller after a successful
	// delivery instead of an empty object.
	Reply *jsonval.Value
}

// String returns a short description of the route.
func (r Route) String() string {
	return fmt.Sprintf("(%s; %s %s; %d fields)", r.Name, r.Method, r.ForwardURL, len(r.Fields))
}

// FieldMapping moves a single value from the inbound body
// into the outgoing document.
type FieldMapping struct {
	// From is the path to read from the inbound body.
	From jsonval.Path

	// To is the path to materialize in the outgoing document.
	To jsonval.Path

	// Optional makes a failed read skip the mapping
	// instead of aborting the dispatch.
	Optional bool
}

// ForwardMethods are the HTTP methods allowed for upstream calls.
var ForwardMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch}
