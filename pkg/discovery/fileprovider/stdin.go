package fileprovider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Semior001/forwardhook/pkg/discovery"
	"gopkg.in/yaml.v3"
)

// Stdin discovers routes from standard input.
type Stdin struct {
	// Reader is the source of configuration data.
	// Defaults to os.Stdin if not specified.
	Reader io.Reader
}

// Name returns the name of the provider.
func (s *Stdin) Name() string {
	return "stdin"
}

// Events sends a single event when the provider is created.
// Since stdin can only be read once, this provider will only emit one event.
func (s *Stdin) Events(ctx context.Context) <-chan string {
	res := make(chan string, 1)
	res <- s.Name()

	go func() {
		<-ctx.Done()
		close(res)
	}()

	return res
}

// Routes parses stdin and returns the routes from it.
func (s *Stdin) Routes(ctx context.Context) ([]discovery.Route, error) {
	reader := s.Reader
	if reader == nil {
		reader = os.Stdin
	}

	var cfg Config
	if err := yaml.NewDecoder(reader).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode stdin: %w", err)
	}

	slog.DebugContext(ctx, "parsed configuration from stdin")

	return routes(cfg)
}
