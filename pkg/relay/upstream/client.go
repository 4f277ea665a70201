// Package upstream provides the HTTP client for delivering
// rebuilt documents to the configured upstreams.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Semior001/forwardhook/pkg/jsonval"
)

// Client delivers JSON documents to upstreams. It is safe for concurrent
// use, the underlying http.Client owns the connection pooling.
type Client struct {
	// Client is the underlying HTTP client,
	// http.DefaultClient if not set.
	Client *http.Client

	// UserAgent is sent with every upstream call.
	UserAgent string
}

// Forward delivers the document to the given URL. Only transport failures
// are errors: an upstream replying with a non-2xx status has still received
// the document, the status is only logged.
func (c *Client) Forward(ctx context.Context, method, url string, body *jsonval.Value) error {
	bts, err := body.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bts))
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	// drain the body to let the transport reuse the connection
	if _, err = io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain response body: %w", err)
	}

	slog.DebugContext(ctx, "forwarded document",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Int("size", len(bts)))

	return nil
}
