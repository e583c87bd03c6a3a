// Package protocol defines the wire messages exchanged with the Gemini
// BidiGenerateContent websocket endpoint.
//
// Client frames are JSON objects keyed by exactly one of "setup",
// "realtimeInput" or "toolResponse". Server frames are keyed by
// "setupComplete", "serverContent", "toolCall" or "error". There is no type
// envelope; a frame is identified by which key is present.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultEndpoint is the bidirectional streaming endpoint of the
	// Generative Language API. The API key is appended as a query parameter.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent"

	// DefaultModel is the native-audio live model the voice guide targets.
	DefaultModel = "models/gemini-2.5-flash-native-audio-preview-12-2025"

	ResponseModalityAudio = "audio"
	ResponseModalityText  = "text"

	MIMEAudioPCM16k = "audio/pcm;rate=16000"
	MIMEImageJPEG   = "image/jpeg"

	CaptureSampleRateHz  = 16000
	PlaybackSampleRateHz = 24000
)

// DecodeError reports an inbound frame that could not be decoded.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func undecodable(format string, args ...any) *DecodeError {
	return &DecodeError{Message: fmt.Sprintf(format, args...)}
}

// Schema is the parameter schema subset accepted by function declarations:
// type, description, enum, object properties with a required set, and array
// items.
type Schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
	Items       *Schema           `json:"items,omitempty"`
}

// FunctionDeclaration advertises one locally implemented capability to the
// model at setup time.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Tool groups function declarations inside the setup message.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// GenerationConfig requests the response modality for the session.
// The live endpoint accepts a bare string here ("audio" or "text").
type GenerationConfig struct {
	ResponseModalities string `json:"responseModalities"`
}

// SystemInstruction carries the session system prompt.
type SystemInstruction struct {
	Parts []Part `json:"parts"`
}

// Setup is the mandatory first client frame. No other outbound frame may be
// sent before the server acknowledges it with setupComplete.
type Setup struct {
	Model             string             `json:"model"`
	GenerationConfig  GenerationConfig   `json:"generationConfig"`
	SystemInstruction *SystemInstruction `json:"systemInstruction,omitempty"`
	Tools             []Tool             `json:"tools,omitempty"`
}

// SetupMessage wraps Setup into a client frame.
type SetupMessage struct {
	Setup Setup `json:"setup"`
}

// MediaChunk is one outbound unit of media. Data is base64.
type MediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// RealtimeInput carries captured media towards the model.
type RealtimeInput struct {
	MediaChunks []MediaChunk `json:"mediaChunks"`
}

// RealtimeInputMessage wraps RealtimeInput into a client frame.
type RealtimeInputMessage struct {
	RealtimeInput RealtimeInput `json:"realtimeInput"`
}

// FunctionResponse answers one function call, keyed by the originating call
// identifier. Response is an arbitrary JSON object.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// ToolResponse groups function responses.
type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

// ToolResponseMessage wraps ToolResponse into a client frame.
type ToolResponseMessage struct {
	ToolResponse ToolResponse `json:"toolResponse"`
}

// InlineData is a binary part payload, base64 on the wire.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FunctionCall asks the client to invoke a declared capability.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Part is one unit of model content: text, inline binary data, or an embedded
// function call. Exactly one field is set.
type Part struct {
	Text         string        `json:"text,omitempty"`
	InlineData   *InlineData   `json:"inlineData,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// IsAudio reports whether the part carries inline audio data.
func (p Part) IsAudio() bool {
	return p.InlineData != nil && strings.Contains(p.InlineData.MIMEType, "audio")
}

// ModelTurn is the model's content for the current turn.
type ModelTurn struct {
	Parts []Part `json:"parts,omitempty"`
}

// ServerContent carries model output parts.
type ServerContent struct {
	ModelTurn    *ModelTurn `json:"modelTurn,omitempty"`
	TurnComplete bool       `json:"turnComplete,omitempty"`
	Interrupted  bool       `json:"interrupted,omitempty"`
}

// ToolCall is the batched function-call frame.
type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls,omitempty"`
}

// ServerError is the error frame.
type ServerError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ServerMessage is a decoded server frame. Exactly one field is non-zero.
// SetupComplete is kept raw: the endpoint has sent both `true` and `{}`.
type ServerMessage struct {
	SetupComplete json.RawMessage `json:"setupComplete,omitempty"`
	ServerContent *ServerContent  `json:"serverContent,omitempty"`
	ToolCall      *ToolCall       `json:"toolCall,omitempty"`
	Error         *ServerError    `json:"error,omitempty"`
}

// IsSetupComplete reports whether the frame acknowledges setup.
func (m *ServerMessage) IsSetupComplete() bool {
	if m == nil || len(m.SetupComplete) == 0 {
		return false
	}
	s := strings.TrimSpace(string(m.SetupComplete))
	return s != "false" && s != "null"
}

// DecodeServerMessage parses one inbound frame. A frame that is valid JSON but
// carries none of the known keys decodes to an error so the session can drop
// it as a protocol violation.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, undecodable("invalid json frame: %v", err)
	}
	if !msg.IsSetupComplete() && msg.ServerContent == nil && msg.ToolCall == nil && msg.Error == nil {
		return nil, undecodable("frame carries no known server message key")
	}
	return &msg, nil
}

// NewMediaMessage builds a realtime-input frame carrying a single chunk with
// the payload already base64-encoded.
func NewMediaMessage(mimeType, dataB64 string) RealtimeInputMessage {
	return RealtimeInputMessage{
		RealtimeInput: RealtimeInput{
			MediaChunks: []MediaChunk{{MIMEType: mimeType, Data: dataB64}},
		},
	}
}
