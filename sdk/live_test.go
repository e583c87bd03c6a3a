package guide

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/namma-guide/guide-go/pkg/core"
	"github.com/namma-guide/guide-go/pkg/discovery"
	"github.com/namma-guide/guide-go/pkg/transport"
)

func newLiveWebsocketTestServer(t *testing.T, handler func(conn *websocket.Conn)) (string, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return wsURL, server.Close
}

// ackSetup consumes the client setup frame and acknowledges it.
func ackSetup(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var setup map[string]any
	if err := conn.ReadJSON(&setup); err != nil {
		t.Errorf("read setup: %v", err)
		return nil
	}
	if _, ok := setup["setup"]; !ok {
		t.Errorf("first client frame is not a setup message: %v", setup)
	}
	_ = conn.WriteJSON(map[string]any{"setupComplete": true})
	return setup
}

func audioFrame(pcm []byte) map[string]any {
	return map[string]any{
		"serverContent": map[string]any{
			"modelTurn": map[string]any{
				"parts": []any{
					map[string]any{"inlineData": map[string]any{
						"mimeType": "audio/pcm;rate=24000",
						"data":     base64.StdEncoding.EncodeToString(pcm),
					}},
				},
			},
		},
	}
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
}

func waitEvent(t *testing.T, events <-chan LiveEvent, match func(LiveEvent) bool) LiveEvent {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				t.Fatalf("events channel closed before expected event")
			}
			if match(event) {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event")
		}
	}
}

// syncPlayer completes every chunk synchronously and records playback order.
type syncPlayer struct {
	mu     sync.Mutex
	played [][]byte
	closes int
}

func (p *syncPlayer) Play(pcm []byte, done func()) error {
	p.mu.Lock()
	p.played = append(p.played, pcm)
	p.mu.Unlock()
	done()
	return nil
}

func (p *syncPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return nil
}

func (p *syncPlayer) playedCopy() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.played...)
}

// holdPlayer never completes chunks on its own.
type holdPlayer struct {
	mu     sync.Mutex
	played [][]byte
	dones  []func()
}

func (p *holdPlayer) Play(pcm []byte, done func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, pcm)
	p.dones = append(p.dones, done)
	return nil
}

func (p *holdPlayer) Close() error { return nil }

type fakeMic struct {
	mu       sync.Mutex
	startErr error
	onFrame  func([]float32)
	stops    int
}

func (m *fakeMic) Start(onFrame func([]float32)) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFrame = onFrame
	return nil
}

func (m *fakeMic) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *fakeMic) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

type fakeCamera struct {
	active   bool
	img      image.Image
	frameErr error
	stops    int
}

func (c *fakeCamera) Active() bool { return c.active }

func (c *fakeCamera) Frame() (image.Image, error) {
	if c.frameErr != nil {
		return nil, c.frameErr
	}
	return c.img, nil
}

func (c *fakeCamera) Stop() { c.stops++ }

func TestLiveConnect_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	client := NewClient(WithEndpoint("ws://127.0.0.1:1"))
	_, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err == nil {
		t.Fatalf("expected missing API key error")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("error=%q, expected GEMINI_API_KEY hint", err.Error())
	}
}

func TestLiveConnect_SendsSetupBeforeAnythingElse(t *testing.T) {
	t.Parallel()

	setupCh := make(chan map[string]any, 1)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		if setup := ackSetup(t, conn); setup != nil {
			setupCh <- setup
		}
		// Hold the connection open until the client closes it.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{
		Tools: GuideTools(transport.NewService(), discovery.NewService()),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	if got := session.State(); got != "streaming" {
		t.Fatalf("state=%q after connect, want streaming", got)
	}
	waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveSetupCompleteEvent)
		return ok
	})

	setup := <-setupCh
	raw := fmt.Sprintf("%v", setup)
	for _, want := range []string{"models/gemini-2.5-flash-native-audio-preview-12-2025", "audio", "Namma Guide", "findRoutes", "findPlaces", "captureImage"} {
		if !strings.Contains(raw, want) {
			t.Errorf("setup frame missing %q:\n%v", want, setup)
		}
	}

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := session.State(); got != "closed" {
		t.Fatalf("state=%q after close, want closed", got)
	}
}

func TestLiveSession_AudioChunksPlayInArrivalOrder(t *testing.T) {
	t.Parallel()

	chunks := [][]byte{{1, 0}, {2, 0}, {3, 0}}
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		for _, c := range chunks {
			_ = conn.WriteJSON(audioFrame(c))
		}
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
		closeNormally(conn)
	})
	defer closeServer()

	player := &syncPlayer{}
	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{Player: player})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveTurnCompleteEvent)
		return ok
	})

	played := player.playedCopy()
	if len(played) != len(chunks) {
		t.Fatalf("played=%d chunks, want %d", len(played), len(chunks))
	}
	for i, c := range chunks {
		if played[i][0] != c[0] {
			t.Fatalf("playback order %v, want %v", played, chunks)
		}
	}
}

func TestLiveSession_InterruptedDropsQueuedPlayback(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		for _, c := range [][]byte{{1, 0}, {2, 0}, {3, 0}} {
			_ = conn.WriteJSON(audioFrame(c))
		}
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"interrupted": true}})
		closeNormally(conn)
	})
	defer closeServer()

	player := &holdPlayer{}
	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{Player: player})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveInterruptedEvent)
		return ok
	})

	player.mu.Lock()
	plays := len(player.played)
	var late func()
	if len(player.dones) > 0 {
		late = player.dones[0]
	}
	player.mu.Unlock()
	if plays != 1 {
		t.Fatalf("plays=%d before barge-in completion, want 1", plays)
	}

	// Completing the chunk that was mid-playback must not resurrect the
	// chunks dropped by the interruption.
	if late != nil {
		late()
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	if len(player.played) != 1 {
		t.Fatalf("plays=%d after stale completion, want 1", len(player.played))
	}
}

func TestLiveSession_ToolCallRoundTrip(t *testing.T) {
	t.Parallel()

	responseCh := make(chan map[string]any, 1)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c1", "name": "findPlaces", "args": map[string]any{"query": "dosa"}},
		}}})

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var resp map[string]any
		if err := conn.ReadJSON(&resp); err == nil {
			responseCh <- resp
		}
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{
		Tools: GuideTools(transport.NewService(), discovery.NewService()),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolResultEvent)
		return ok
	}).(LiveToolResultEvent)
	if result.ID != "c1" || result.IsError {
		t.Fatalf("tool result = %+v", result)
	}

	select {
	case resp := <-responseCh:
		toolResponse, _ := resp["toolResponse"].(map[string]any)
		responses, _ := toolResponse["functionResponses"].([]any)
		if len(responses) != 1 {
			t.Fatalf("functionResponses=%v", resp)
		}
		first, _ := responses[0].(map[string]any)
		if first["id"] != "c1" || first["name"] != "findPlaces" {
			t.Fatalf("function response=%v", first)
		}
		payload, _ := first["response"].(map[string]any)
		places, _ := payload["places"].([]any)
		if len(places) == 0 {
			t.Fatalf("expected places in response, got %v", payload)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no toolResponse frame received")
	}
}

func TestLiveSession_UnknownToolAnswersError(t *testing.T) {
	t.Parallel()

	responseCh := make(chan map[string]any, 1)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c9", "name": "doesNotExist"},
		}}})

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var resp map[string]any
		if err := conn.ReadJSON(&resp); err == nil {
			responseCh <- resp
		}
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolResultEvent)
		return ok
	}).(LiveToolResultEvent)
	if !result.IsError {
		t.Fatalf("expected error result, got %+v", result)
	}
	if got := result.Response["error"]; got != "Unknown tool: doesNotExist" {
		t.Fatalf("error=%v", got)
	}

	select {
	case <-responseCh:
	case <-time.After(3 * time.Second):
		t.Fatalf("unknown tool call was never answered")
	}
}

func TestLiveSession_HandlerPanicStillAnswered(t *testing.T) {
	t.Parallel()

	responseCh := make(chan map[string]any, 1)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c2", "name": "explode"},
		}}})

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var resp map[string]any
		if err := conn.ReadJSON(&resp); err == nil {
			responseCh <- resp
		}
		closeNormally(conn)
	})
	defer closeServer()

	explode := MakeTool("explode", "always panics", func(ctx context.Context, _ struct{}) (string, error) {
		panic("boom")
	})

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{
		Tools: []ToolWithHandler{explode},
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolResultEvent)
		return ok
	}).(LiveToolResultEvent)
	if !result.IsError {
		t.Fatalf("expected error result, got %+v", result)
	}
	msg, _ := result.Response["error"].(string)
	if !strings.Contains(msg, "panicked") {
		t.Fatalf("error=%q, want panic message", msg)
	}

	select {
	case <-responseCh:
	case <-time.After(3 * time.Second):
		t.Fatalf("panicking tool call was never answered")
	}
}

func TestLiveSession_CaptureImageWithoutCamera(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c3", "name": "captureImage"},
		}}})
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, _ = conn.ReadMessage()
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolResultEvent)
		return ok
	}).(LiveToolResultEvent)
	if got := result.Response["error"]; got != "Camera not turned on" {
		t.Fatalf(`error=%v, want "Camera not turned on"`, got)
	}
}

func TestLiveSession_CaptureImageSendsFrameThenResult(t *testing.T) {
	t.Parallel()

	framesCh := make(chan map[string]any, 2)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c4", "name": "captureImage"},
		}}})

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for i := 0; i < 2; i++ {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				break
			}
			framesCh <- frame
		}
		closeNormally(conn)
	})
	defer closeServer()

	camera := &fakeCamera{active: true, img: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{Camera: camera})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolResultEvent)
		return ok
	}).(LiveToolResultEvent)
	if result.IsError {
		t.Fatalf("capture result = %+v", result)
	}

	// The image chunk must hit the wire before the tool result.
	first := <-framesCh
	realtime, ok := first["realtimeInput"].(map[string]any)
	if !ok {
		t.Fatalf("first frame after capture is not realtimeInput: %v", first)
	}
	mediaChunks, _ := realtime["mediaChunks"].([]any)
	if len(mediaChunks) != 1 {
		t.Fatalf("mediaChunks=%v", realtime)
	}
	chunk, _ := mediaChunks[0].(map[string]any)
	if chunk["mimeType"] != "image/jpeg" {
		t.Fatalf("mimeType=%v, want image/jpeg", chunk["mimeType"])
	}

	second := <-framesCh
	if _, ok := second["toolResponse"]; !ok {
		t.Fatalf("second frame is not a toolResponse: %v", second)
	}
}

func TestLiveSession_CaptureImageSurfaceErrors(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c5", "name": "captureImage"},
		}}})
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, _ = conn.ReadMessage()
		closeNormally(conn)
	})
	defer closeServer()

	camera := &fakeCamera{active: true, frameErr: ErrNoFrameAvailable}
	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{Camera: camera})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	result := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolResultEvent)
		return ok
	}).(LiveToolResultEvent)
	if got := result.Response["error"]; got != "No frame available yet" {
		t.Fatalf(`error=%v, want "No frame available yet"`, got)
	}
}

func TestLiveSession_UndecodableFrameDoesNotKillSession(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"ping":1}`))
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{
			"modelTurn": map[string]any{"parts": []any{map[string]any{"text": "still here"}}},
		}})
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	errEvent := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveErrorEvent)
		return ok
	}).(LiveErrorEvent)
	var coreErr *core.Error
	if !errors.As(errEvent.Err, &coreErr) || coreErr.Type != core.ErrProtocol {
		t.Fatalf("error=%v, want protocol error", errEvent.Err)
	}

	text := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveTextEvent)
		return ok
	}).(LiveTextEvent)
	if text.Text != "still here" {
		t.Fatalf("text=%q", text.Text)
	}
	if err := session.Err(); err != nil {
		t.Fatalf("session err=%v, want clean close", err)
	}
}

func TestLiveSession_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	mic := &fakeMic{}
	camera := &fakeCamera{active: true, img: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	player := &syncPlayer{}
	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{
		Microphone: mic,
		Camera:     camera,
		Player:     player,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if mic.stopCount() != 1 {
		t.Fatalf("mic stops=%d, want 1", mic.stopCount())
	}
	if camera.stops != 1 {
		t.Fatalf("camera stops=%d, want 1", camera.stops)
	}
	player.mu.Lock()
	closes := player.closes
	player.mu.Unlock()
	if closes != 1 {
		t.Fatalf("player closes=%d, want 1", closes)
	}

	if err := session.SendAudio([]float32{0.1}); err == nil {
		t.Fatalf("SendAudio after close should fail")
	}
	if got := session.State(); got != "closed" {
		t.Fatalf("state=%q, want closed", got)
	}
}

func TestLiveConnect_MicrophoneFailureIsFatal(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	mic := &fakeMic{startErr: errors.New("permission denied")}
	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	_, err := client.Live.Connect(context.Background(), &LiveConnectRequest{Microphone: mic})
	if err == nil {
		t.Fatalf("expected microphone failure")
	}
	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		t.Fatalf("error=%T, want *core.Error", err)
	}
	if coreErr.Type != core.ErrDeviceUnavailable || !coreErr.IsFatal() {
		t.Fatalf("error=%+v, want fatal device_unavailable", coreErr)
	}
}

func TestLiveConnect_FirstFrameErrorSurfaces(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var setup map[string]any
		_ = conn.ReadJSON(&setup)
		_ = conn.WriteJSON(map[string]any{"error": map[string]any{"code": 7, "message": "quota exceeded"}})
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	_, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err == nil {
		t.Fatalf("expected connect error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error=%q", err.Error())
	}
}

func TestLiveSession_ToolResultAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	slow := MakeTool("slowLookup", "finishes after the session is gone", func(ctx context.Context, _ struct{}) (string, error) {
		<-release
		return "late", nil
	})

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"toolCall": map[string]any{"functionCalls": []any{
			map[string]any{"id": "c6", "name": "slowLookup"},
		}}})
		// Drop the connection while the handler is still running.
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{
		Tools: []ToolWithHandler{slow},
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveToolCallEvent)
		return ok
	})
	// Drain until the read loop ends; the handler is still blocked.
	for range session.Events() {
	}

	// The handler now completes against a torn-down session. Its result emit
	// and toolResponse write must be no-ops, not a crash.
	close(release)
	time.Sleep(200 * time.Millisecond)

	if err := session.Err(); err != nil {
		t.Fatalf("session err=%v, want clean close", err)
	}
	if got := session.State(); got != "closed" {
		t.Fatalf("state=%q, want closed", got)
	}
}

func TestLiveSession_SetupCompleteAfterStreamingIgnored(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		ackSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}})
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{
			"modelTurn": map[string]any{"parts": []any{map[string]any{"text": "carrying on"}}},
		}})
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithEndpoint(serverURL), WithAPIKey("test-key"))
	session, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	text := waitEvent(t, session.Events(), func(e LiveEvent) bool {
		_, ok := e.(LiveTextEvent)
		return ok
	}).(LiveTextEvent)
	if text.Text != "carrying on" {
		t.Fatalf("text=%q", text.Text)
	}
	if err := session.Err(); err != nil {
		t.Fatalf("session err=%v, want clean close", err)
	}
}

func TestLiveConnect_DialRejectedSurfacesStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(WithEndpoint("ws"+strings.TrimPrefix(server.URL, "http")), WithAPIKey("test-key"))
	_, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err == nil {
		t.Fatalf("expected dial rejection")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error=%T, want *TransportError", err)
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("error=%q, want rejection status", err.Error())
	}
}

func TestLiveConnect_DialFailureRedactsKey(t *testing.T) {
	t.Parallel()

	client := NewClient(WithEndpoint("ws://127.0.0.1:1"), WithAPIKey("super-secret"))
	_, err := client.Live.Connect(context.Background(), &LiveConnectRequest{})
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error=%T, want *TransportError", err)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Fatalf("error leaks API key: %q", err.Error())
	}
}
