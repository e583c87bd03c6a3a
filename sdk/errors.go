package guide

import (
	"fmt"
	"net/url"

	"github.com/namma-guide/guide-go/pkg/core"
)

// SDK-level error type that wraps core errors
type Error = core.Error

// Error types
const (
	ErrTransport         = core.ErrTransport
	ErrDeviceUnavailable = core.ErrDeviceUnavailable
	ErrProtocol          = core.ErrProtocol
	ErrToolExecution     = core.ErrToolExecution
	ErrUnknownTool       = core.ErrUnknownTool
	ErrInvalidRequest    = core.ErrInvalidRequest
)

// Error constructors
var (
	NewTransportError         = core.NewTransportError
	NewDeviceUnavailableError = core.NewDeviceUnavailableError
	NewProtocolError          = core.NewProtocolError
	NewInvalidRequestError    = core.NewInvalidRequestError
)

// TransportError represents websocket transport-level failures (DNS,
// timeouts, connection reset, TLS handshake, etc.) while talking to the Live
// endpoint.
//
// Use errors.As(err, &TransportError{}) to distinguish transport failures
// from canonical API errors (*core.Error).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Op != "" && e.URL != "":
		return fmt.Sprintf("transport error during %s %s: %v", e.Op, redactURL(e.URL), e.Err)
	case e.Op != "":
		return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// redactURL strips user info and the api key query parameter so credentials
// never end up in error messages or logs.
func redactURL(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}
	parsed.User = nil
	query := parsed.Query()
	if query.Has("key") {
		query.Set("key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}
