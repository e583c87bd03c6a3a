// Package guide provides the Namma Guide SDK for Go.
//
// The SDK centers on Live: a realtime bidirectional voice session against the
// Gemini Live API with tool calling for Bengaluru transport, discovery and
// camera capture.
package guide

import (
	"log/slog"
	"os"

	"github.com/gorilla/websocket"

	"github.com/namma-guide/guide-go/pkg/live/protocol"
)

// Client is the main entry point for the SDK.
type Client struct {
	Live *LiveService

	// Internal
	apiKey   string
	endpoint string
	logger   *slog.Logger
	dialer   *websocket.Dialer
}

// NewClient creates a new client.
// The API key is loaded from GEMINI_API_KEY (or GOOGLE_API_KEY) by default.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		endpoint: protocol.DefaultEndpoint,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}

	c.Live = &LiveService{client: c}
	return c
}
