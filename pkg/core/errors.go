package core

import (
	"fmt"
)

// Error is the canonical error for a live guide session.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrTransport covers connection open/send failures. Fatal: the session
	// moves to Closed.
	ErrTransport ErrorType = "transport_error"

	// ErrDeviceUnavailable covers microphone/camera permission or hardware
	// failures. Fatal for the microphone, non-fatal for the camera.
	ErrDeviceUnavailable ErrorType = "device_unavailable"

	// ErrProtocol covers malformed or undecodable inbound messages. The
	// message is dropped and the session continues.
	ErrProtocol ErrorType = "protocol_error"

	// ErrToolExecution covers tool handler failures. Answered as an error
	// result for that call; the session continues.
	ErrToolExecution ErrorType = "tool_execution_error"

	// ErrUnknownTool covers calls to unregistered function names. Answered as
	// an error result; the session continues.
	ErrUnknownTool ErrorType = "unknown_tool_error"

	// ErrInvalidRequest covers caller mistakes before any connection exists.
	ErrInvalidRequest ErrorType = "invalid_request_error"
)

// NewTransportError creates a transport error.
func NewTransportError(message string) *Error {
	return &Error{
		Type:    ErrTransport,
		Message: message,
	}
}

// NewDeviceUnavailableError creates a device unavailable error for the named
// device ("microphone" or "camera").
func NewDeviceUnavailableError(device string, underlying error) *Error {
	return &Error{
		Type:    ErrDeviceUnavailable,
		Message: fmt.Sprintf("%s: %v", device, underlying),
		Code:    device,
	}
}

// NewProtocolError creates a protocol error.
func NewProtocolError(message string) *Error {
	return &Error{
		Type:    ErrProtocol,
		Message: message,
	}
}

// NewToolExecutionError creates a tool execution error.
func NewToolExecutionError(name string, underlying error) *Error {
	return &Error{
		Type:    ErrToolExecution,
		Message: fmt.Sprintf("%s: %v", name, underlying),
		Code:    name,
	}
}

// NewUnknownToolError creates an unknown tool error.
func NewUnknownToolError(name string) *Error {
	return &Error{
		Type:    ErrUnknownTool,
		Message: fmt.Sprintf("no handler registered for %q", name),
		Code:    name,
	}
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// IsFatal reports whether the error terminates the session.
// Device failures are fatal only for the microphone; the camera is optional.
func (e *Error) IsFatal() bool {
	switch e.Type {
	case ErrTransport:
		return true
	case ErrDeviceUnavailable:
		return e.Code == "microphone"
	default:
		return false
	}
}
