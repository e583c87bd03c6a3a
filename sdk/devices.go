package guide

import (
	"errors"
	"image"

	"github.com/namma-guide/guide-go/pkg/audio"
)

// Microphone captures mono float samples at audio.CaptureSampleRateHz.
// Start begins delivering frames to onFrame from a device-owned goroutine;
// Stop ends capture and must be safe to call more than once.
type Microphone interface {
	Start(onFrame func(samples []float32)) error
	Stop()
}

// Camera provides still frames for the captureImage tool.
//
// Frame errors use the sentinel values below so tool results carry the exact
// wording the model was prompted with.
type Camera interface {
	Active() bool
	Frame() (image.Image, error)
	Stop()
}

// Player plays PCM16 chunks; see audio.Player.
type Player = audio.Player

// Camera frame failure modes surfaced to the model as tool error results.
var (
	ErrCaptureSurfaceNotReady = errors.New("Capture surface not ready")
	ErrNoFrameAvailable       = errors.New("No frame available yet")
)

// cameraOffMessage is the tool error result when no active camera exists.
const cameraOffMessage = "Camera not turned on"
