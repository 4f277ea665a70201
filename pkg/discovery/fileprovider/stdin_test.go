package fileprovider

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdin_Events(t *testing.T) {
	stdin := &Stdin{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := stdin.Events(ctx)

	// should receive one event immediately
	event := <-events
	assert.Equal(t, "stdin", event)

	cancel()

	_, ok := <-events
	assert.False(t, ok, "events channel should be closed")
}

func TestStdin_Routes(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "valid config",
			config: `
version: "1"
routes:
  test:
    forward-url: http://upstream.example/x
    fields:
      - from: [user, id]
        to: [uid]
`,
		},
		{
			name:    "empty config",
			config:  "",
			wantErr: "decode stdin",
		},
		{
			name: "unsupported version",
			config: `
version: "2"
routes: {}
`,
			wantErr: "unsupported version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdin := &Stdin{Reader: strings.NewReader(tt.config)}

			routes, err := stdin.Routes(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, routes, 1)
			assert.Equal(t, "test", routes[0].Name)
			assert.Equal(t, "http://upstream.example/x", routes[0].ForwardURL)
		})
	}
}
