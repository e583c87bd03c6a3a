package guide

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/namma-guide/guide-go/pkg/audio"
	"github.com/namma-guide/guide-go/pkg/core"
	"github.com/namma-guide/guide-go/pkg/live/protocol"
)

const (
	defaultLiveConnectTimeout = 15 * time.Second
	defaultToolTimeout        = 30 * time.Second
)

// DefaultSystemInstruction is the voice persona used when a request does not
// supply its own system instruction.
const DefaultSystemInstruction = `You are Namma Guide, a friendly AI assistant for Bengaluru.

CORE CAPABILITIES:
- Transport: Help with metro routes, bus info, cab estimates, traffic updates
- Discovery: Recommend restaurants, cafes, parks, shopping, attractions
- Translation: Understand and respond in Kannada, English, or mix

PERSONALITY:
- Brief and conversational for voice
- Use local Kannada terms naturally (anna, akka, swalpa, etc)
- Friendly and helpful like a Bengaluru local

Keep responses short and to the point for voice interaction.`

// LiveService opens realtime sessions against the BidiGenerateContent
// websocket endpoint.
type LiveService struct {
	client *Client
}

// LiveConnectRequest configures a live voice session.
//
// Devices are optional: without a Microphone the caller feeds audio through
// SendAudio, without a Player model audio is only emitted as events, and
// without a Camera the captureImage tool reports the camera as off.
type LiveConnectRequest struct {
	Model             string
	SystemInstruction string
	ResponseModality  string
	Tools             []ToolWithHandler

	Microphone Microphone
	Camera     Camera
	Player     Player
}

// sessionState tracks the session lifecycle. Closed is terminal; a new
// session gets a fresh machine.
type sessionState int32

const (
	stateIdle sessionState = iota
	stateConnecting
	stateAwaitingSetupAck
	stateStreaming
	stateClosing
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateConnecting:
		return "connecting"
	case stateAwaitingSetupAck:
		return "awaiting_setup_ack"
	case stateStreaming:
		return "streaming"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// LiveEvent is an event emitted by LiveSession.Events().
type LiveEvent interface {
	liveEventType() string
}

// LiveSetupCompleteEvent is emitted once when the server acknowledges setup.
type LiveSetupCompleteEvent struct{}

func (e LiveSetupCompleteEvent) liveEventType() string { return "setup_complete" }

// LiveAudioEvent carries one chunk of model speech, PCM16 little-endian mono
// at audio.PlaybackSampleRateHz. The same chunk is also queued on the
// session player.
type LiveAudioEvent struct {
	PCM []byte
}

func (e LiveAudioEvent) liveEventType() string { return "audio" }

// LiveTextEvent carries a text part of the model turn.
type LiveTextEvent struct {
	Text string
}

func (e LiveTextEvent) liveEventType() string { return "text" }

// LiveToolCallEvent reports that the model requested a tool invocation.
type LiveToolCallEvent struct {
	ID   string
	Name string
	Args map[string]any
}

func (e LiveToolCallEvent) liveEventType() string { return "tool_call" }

// LiveToolResultEvent reports the response sent back for one tool call.
type LiveToolResultEvent struct {
	ID       string
	Name     string
	Response map[string]any
	IsError  bool
}

func (e LiveToolResultEvent) liveEventType() string { return "tool_result" }

// LiveTurnCompleteEvent marks the end of a model turn.
type LiveTurnCompleteEvent struct{}

func (e LiveTurnCompleteEvent) liveEventType() string { return "turn_complete" }

// LiveInterruptedEvent reports a barge-in; queued playback has been dropped.
type LiveInterruptedEvent struct{}

func (e LiveInterruptedEvent) liveEventType() string { return "interrupted" }

// LiveErrorEvent surfaces session errors. Fatal errors are followed by
// channel close; protocol errors leave the session running.
type LiveErrorEvent struct {
	Err error
}

func (e LiveErrorEvent) liveEventType() string { return "error" }

// LiveSession is a realtime voice session.
type LiveSession struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	mic    Microphone
	camera Camera
	player Player
	queue  *audio.Queue
	tools  *ToolSet

	events chan LiveEvent
	done   chan struct{}

	eventsMu     sync.Mutex
	eventsClosed bool

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	state     atomic.Int32

	errMu sync.Mutex
	err   error
}

// ID returns the session identifier.
func (s *LiveSession) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// State returns the current lifecycle state name.
func (s *LiveSession) State() string {
	if s == nil {
		return stateClosed.String()
	}
	return sessionState(s.state.Load()).String()
}

func (s *LiveSession) setState(state sessionState) {
	s.state.Store(int32(state))
}

// Events yields session events. The channel closes when the session ends.
func (s *LiveSession) Events() <-chan LiveEvent {
	if s == nil {
		return nil
	}
	return s.events
}

// SendAudio encodes captured float samples as PCM16 and streams them to the
// model.
func (s *LiveSession) SendAudio(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	return s.SendAudioPCM(audio.EncodePCM16(samples))
}

// SendAudioPCM streams raw PCM16 little-endian mono audio to the model.
func (s *LiveSession) SendAudioPCM(pcm []byte) error {
	if s == nil {
		return fmt.Errorf("session must not be nil")
	}
	if len(pcm) == 0 {
		return nil
	}
	b64 := base64.StdEncoding.EncodeToString(pcm)
	return s.sendJSON(protocol.NewMediaMessage(protocol.MIMEAudioPCM16k, b64))
}

// SendImage downscales and JPEG-encodes a frame and streams it to the model.
func (s *LiveSession) SendImage(img image.Image) error {
	if s == nil {
		return fmt.Errorf("session must not be nil")
	}
	data, err := encodeFrameJPEG(img)
	if err != nil {
		return err
	}
	return s.SendImageJPEG(data)
}

// SendImageJPEG streams an already-encoded JPEG frame to the model.
func (s *LiveSession) SendImageJPEG(data []byte) error {
	if s == nil {
		return fmt.Errorf("session must not be nil")
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	return s.sendJSON(protocol.NewMediaMessage(protocol.MIMEImageJPEG, b64))
}

func (s *LiveSession) sendJSON(v any) error {
	if s == nil {
		return fmt.Errorf("session must not be nil")
	}
	if s.closed.Load() {
		return fmt.Errorf("live session is closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Close tears the session down: capture devices stop, queued playback is
// dropped, the player and socket close. Safe to call repeatedly and from
// transport callbacks.
func (s *LiveSession) Close() error {
	if s == nil {
		return nil
	}
	s.teardown()
	<-s.done
	return nil
}

func (s *LiveSession) teardown() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.setState(stateClosing)
		if s.mic != nil {
			s.mic.Stop()
		}
		if s.camera != nil {
			s.camera.Stop()
		}
		s.queue.Reset()
		if s.player != nil {
			_ = s.player.Close()
		}
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
		s.setState(stateClosed)
	})
}

// Err returns the terminal session error (if any).
func (s *LiveSession) Err() error {
	if s == nil {
		return nil
	}
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *LiveSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *LiveSession) readLoop() {
	defer close(s.done)
	defer s.closeEvents()
	defer s.teardown()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			transportErr := core.NewTransportError(err.Error())
			s.setErr(transportErr)
			s.emitEvent(LiveErrorEvent{Err: transportErr})
			return
		}

		msg, decodeErr := protocol.DecodeServerMessage(data)
		if decodeErr != nil {
			// Undecodable frames are dropped; the session continues.
			protoErr := core.NewProtocolError(decodeErr.Error())
			s.logger.Warn("dropping undecodable frame", "session_id", s.id, "error", decodeErr)
			s.emitEvent(LiveErrorEvent{Err: protoErr})
			continue
		}

		switch {
		case msg.IsSetupComplete():
			s.logger.Debug("setupComplete after streaming start ignored", "session_id", s.id)
		case msg.ServerContent != nil:
			s.handleServerContent(msg.ServerContent)
		case msg.ToolCall != nil:
			for _, call := range msg.ToolCall.FunctionCalls {
				s.dispatchToolCall(call)
			}
		case msg.Error != nil:
			serverErr := &core.Error{
				Type:    core.ErrTransport,
				Message: msg.Error.Message,
				Code:    strconv.Itoa(msg.Error.Code),
			}
			s.setErr(serverErr)
			s.emitEvent(LiveErrorEvent{Err: serverErr})
			return
		}
	}
}

func (s *LiveSession) handleServerContent(sc *protocol.ServerContent) {
	if sc.Interrupted {
		s.queue.Reset()
		s.emitEvent(LiveInterruptedEvent{})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			switch {
			case part.IsAudio():
				pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					protoErr := core.NewProtocolError(fmt.Sprintf("decode audio part: %v", err))
					s.logger.Warn("dropping audio part", "session_id", s.id, "error", err)
					s.emitEvent(LiveErrorEvent{Err: protoErr})
					continue
				}
				s.queue.Enqueue(pcm)
				s.emitEvent(LiveAudioEvent{PCM: pcm})
			case part.FunctionCall != nil:
				// Some server builds embed calls in the model turn instead of
				// a toolCall frame.
				s.dispatchToolCall(*part.FunctionCall)
			case part.Text != "":
				s.emitEvent(LiveTextEvent{Text: part.Text})
			}
		}
	}
	if sc.TurnComplete {
		s.emitEvent(LiveTurnCompleteEvent{})
	}
}

// dispatchToolCall answers every call exactly once, on its own goroutine.
// Unknown tools, handler errors and handler panics all become error results;
// the session keeps streaming.
func (s *LiveSession) dispatchToolCall(call protocol.FunctionCall) {
	s.emitEvent(LiveToolCallEvent{ID: call.ID, Name: call.Name, Args: call.Args})
	go func() {
		response, isErr := s.runTool(call)
		s.emitEvent(LiveToolResultEvent{ID: call.ID, Name: call.Name, Response: response, IsError: isErr})

		msg := protocol.ToolResponseMessage{ToolResponse: protocol.ToolResponse{
			FunctionResponses: []protocol.FunctionResponse{{
				ID:       call.ID,
				Name:     call.Name,
				Response: response,
			}},
		}}
		if err := s.sendJSON(msg); err != nil {
			s.logger.Warn("tool response not delivered", "session_id", s.id, "tool", call.Name, "error", err)
		}
	}()
}

func (s *LiveSession) runTool(call protocol.FunctionCall) (response map[string]any, isErr bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panicked", "session_id", s.id, "tool", call.Name, "panic", r)
			response = map[string]any{"error": fmt.Sprintf("tool handler panicked: %v", r)}
			isErr = true
		}
	}()

	handler, ok := s.tools.Handler(call.Name)
	if !ok {
		return map[string]any{"error": "Unknown tool: " + call.Name}, true
	}

	args, err := json.Marshal(call.Args)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("invalid args: %v", err)}, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultToolTimeout)
	defer cancel()

	result, err := handler(ctx, args)
	if err != nil {
		return map[string]any{"error": err.Error()}, true
	}
	if m, ok := result.(map[string]any); ok {
		return m, false
	}
	return map[string]any{"result": result}, false
}

// emitEvent and closeEvents share eventsMu: tool goroutines emit results
// after their handler returns, which can be after the read loop has exited,
// so the close and every send must exclude each other. A late emit is a
// no-op, not a send on a closed channel.
func (s *LiveSession) emitEvent(event LiveEvent) {
	if event == nil {
		return
	}
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- event:
	default:
		// Avoid deadlocking read loop if caller stops consuming.
	}
}

func (s *LiveSession) closeEvents() {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if s.eventsClosed {
		return
	}
	s.eventsClosed = true
	close(s.events)
}

// captureImageHandler backs the built-in captureImage tool: it grabs a frame
// from the session camera, streams it to the model as a media chunk, and
// reports the outcome as the tool result.
func (s *LiveSession) captureImageHandler(ctx context.Context, _ json.RawMessage) (any, error) {
	if s.camera == nil || !s.camera.Active() {
		return map[string]any{"error": cameraOffMessage}, nil
	}
	img, err := s.camera.Frame()
	if err != nil {
		return map[string]any{"error": err.Error()}, nil
	}
	if err := s.SendImage(img); err != nil {
		return nil, err
	}
	return map[string]any{"result": "Image captured and sent"}, nil
}

// Connect opens a live session: dial, send the setup frame, wait for the
// server ack, then start the read loop and (when provided) the microphone.
// No media leaves the client before the ack.
func (s *LiveService) Connect(ctx context.Context, req *LiveConnectRequest) (*LiveSession, error) {
	if s == nil || s.client == nil {
		return nil, core.NewInvalidRequestError("live service is not initialized")
	}
	if req == nil {
		return nil, core.NewInvalidRequestError("req must not be nil")
	}
	c := s.client
	if c.apiKey == "" {
		return nil, core.NewInvalidRequestError("missing API key (set GEMINI_API_KEY)")
	}

	model := req.Model
	if model == "" {
		model = protocol.DefaultModel
	}
	modality := req.ResponseModality
	if modality == "" {
		modality = protocol.ResponseModalityAudio
	}
	if modality != protocol.ResponseModalityAudio && modality != protocol.ResponseModalityText {
		return nil, core.NewInvalidRequestError("response modality must be audio or text")
	}
	instruction := req.SystemInstruction
	if instruction == "" {
		instruction = DefaultSystemInstruction
	}

	session := &LiveSession{
		id:     uuid.NewString(),
		logger: c.logger,
		mic:    req.Microphone,
		camera: req.Camera,
		player: req.Player,
		tools:  NewToolSet(),
		events: make(chan LiveEvent, 256),
		done:   make(chan struct{}),
	}
	session.queue = audio.NewQueue(req.Player)
	for _, tool := range req.Tools {
		session.tools.Add(tool)
	}
	if _, exists := session.tools.Handler("captureImage"); !exists {
		session.tools.Add(ToolWithHandler{
			FunctionDeclaration: protocol.FunctionDeclaration{
				Name:        "captureImage",
				Description: "Capture a photo with the user's camera and look at it",
			},
			Handler: session.captureImageHandler,
		})
	}

	wsURL := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)

	dialer := c.dialer
	if dialer == nil {
		dialer = &websocket.Dialer{}
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultLiveConnectTimeout)
		defer cancel()
	}

	session.setState(stateConnecting)
	conn, resp, err := dialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		session.setState(stateClosed)
		if resp != nil {
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			return nil, &TransportError{Op: "GET", URL: wsURL, Err: fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)}
		}
		return nil, &TransportError{Op: "GET", URL: wsURL, Err: err}
	}
	session.conn = conn
	session.setState(stateAwaitingSetupAck)

	setup := protocol.SetupMessage{Setup: protocol.Setup{
		Model:             model,
		GenerationConfig:  protocol.GenerationConfig{ResponseModalities: modality},
		SystemInstruction: &protocol.SystemInstruction{Parts: []protocol.Part{{Text: instruction}}},
	}}
	if decls := session.tools.Declarations(); len(decls) > 0 {
		setup.Setup.Tools = []protocol.Tool{{FunctionDeclarations: decls}}
	}

	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		session.setState(stateClosed)
		return nil, core.NewTransportError(fmt.Sprintf("send setup: %v", err))
	}

	_ = conn.SetReadDeadline(time.Now().Add(defaultLiveConnectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		session.setState(stateClosed)
		return nil, core.NewTransportError(fmt.Sprintf("read setup ack: %v", err))
	}
	_ = conn.SetReadDeadline(time.Time{})

	msg, err := protocol.DecodeServerMessage(payload)
	if err != nil {
		_ = conn.Close()
		session.setState(stateClosed)
		return nil, core.NewProtocolError(fmt.Sprintf("decode setup ack: %v", err))
	}
	switch {
	case msg.IsSetupComplete():
	case msg.Error != nil:
		_ = conn.Close()
		session.setState(stateClosed)
		return nil, &core.Error{
			Type:    core.ErrTransport,
			Message: msg.Error.Message,
			Code:    strconv.Itoa(msg.Error.Code),
		}
	default:
		_ = conn.Close()
		session.setState(stateClosed)
		return nil, core.NewProtocolError("unexpected first frame before setup ack")
	}

	session.setState(stateStreaming)
	session.emitEvent(LiveSetupCompleteEvent{})
	go session.readLoop()

	// Capture starts only after the ack, so no media precedes setupComplete.
	if session.mic != nil {
		if err := session.mic.Start(func(samples []float32) {
			_ = session.SendAudio(samples)
		}); err != nil {
			devErr := core.NewDeviceUnavailableError("microphone", err)
			session.setErr(devErr)
			_ = session.Close()
			return nil, devErr
		}
	}

	c.logger.Info("live session connected", "session_id", session.id, "model", model)
	return session, nil
}
