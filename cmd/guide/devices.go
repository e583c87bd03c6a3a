package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/namma-guide/guide-go/pkg/audio"
	guide "github.com/namma-guide/guide-go/sdk"
)

// micFrameBytes is 100ms of mono PCM16 at the capture rate.
const micFrameBytes = audio.CaptureSampleRateHz / 10 * 2

// ffmpegMicrophone captures mono 16 kHz PCM16 from the default input device
// via an ffmpeg child process and delivers decoded float frames.
type ffmpegMicrophone struct {
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stopped bool
}

func newFFmpegMicrophone(logger *slog.Logger) *ffmpegMicrophone {
	return &ffmpegMicrophone{logger: logger}
}

func micFFmpegArgs() []string {
	var in []string
	switch runtime.GOOS {
	case "darwin":
		in = []string{"-f", "avfoundation", "-i", ":0"}
	default:
		in = []string{"-f", "pulse", "-i", "default"}
	}
	return append(in,
		"-ac", "1",
		"-ar", fmt.Sprint(audio.CaptureSampleRateHz),
		"-f", "s16le",
		"-loglevel", "error",
		"-",
	)
}

func (m *ffmpegMicrophone) Start(onFrame func(samples []float32)) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH (required for microphone capture): %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil {
		return fmt.Errorf("microphone already started")
	}

	cmd := exec.Command("ffmpeg", micFFmpegArgs()...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	m.cmd = cmd
	m.stdout = stdout

	go m.readLoop(stdout, onFrame)
	return nil
}

func (m *ffmpegMicrophone) readLoop(r io.Reader, onFrame func([]float32)) {
	buf := make([]byte, micFrameBytes)
	var leftover []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(leftover, buf[:n]...)
			// PCM16 frames are two bytes per sample; carry an odd byte
			// over to the next read.
			usable := len(chunk) &^ 1
			if usable > 0 {
				onFrame(audio.DecodePCM16(chunk[:usable]))
			}
			leftover = append(leftover[:0], chunk[usable:]...)
		}
		if err != nil {
			m.mu.Lock()
			stopped := m.stopped
			m.mu.Unlock()
			if !stopped {
				m.logger.Warn("microphone capture ended", "error", err)
			}
			return
		}
	}
}

func (m *ffmpegMicrophone) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		go func(cmd *exec.Cmd) { _ = cmd.Wait() }(m.cmd)
	}
	if m.stdout != nil {
		_ = m.stdout.Close()
	}
}

// ffplaySpeaker plays PCM16 chunks by streaming them into a long-lived ffplay
// process. ffplay gives no per-chunk completion signal, so done callbacks are
// scheduled on the chunk's wall-clock duration.
type ffplaySpeaker struct {
	logger *slog.Logger
	volume int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	closed bool
}

func newFFplaySpeaker(logger *slog.Logger, volume int) *ffplaySpeaker {
	return &ffplaySpeaker{logger: logger, volume: volume}
}

func (p *ffplaySpeaker) ensureRunning() error {
	if p.cmd != nil {
		return nil
	}
	if _, err := exec.LookPath("ffplay"); err != nil {
		return fmt.Errorf("ffplay not found in PATH (required for audio playback): %w", err)
	}

	cmd := exec.Command("ffplay",
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-volume", fmt.Sprint(p.volume),
		"-nodisp",
		"-f", "s16le",
		"-ch_layout", "mono",
		"-ar", fmt.Sprint(audio.PlaybackSampleRateHz),
		"-i", "-",
	)
	if runtime.GOOS == "darwin" {
		cmd.Env = append(os.Environ(), "SDL_AUDIODRIVER=coreaudio")
	}
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffplay stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}
	p.cmd = cmd
	p.stdin = stdin
	go func() {
		_ = cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
			p.stdin = nil
		}
		p.mu.Unlock()
	}()
	return nil
}

func (p *ffplaySpeaker) Play(pcm []byte, done func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("speaker closed")
	}
	if err := p.ensureRunning(); err != nil {
		return err
	}
	if _, err := p.stdin.Write(pcm); err != nil {
		return fmt.Errorf("write to ffplay: %w", err)
	}
	ms := audio.DurationMS(len(pcm), audio.PlaybackSampleRateHz)
	time.AfterFunc(time.Duration(ms)*time.Millisecond, done)
	return nil
}

func (p *ffplaySpeaker) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.stdin != nil {
		_ = p.stdin.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	return nil
}

// fileCamera serves a still image from disk as the capture surface. It stands
// in for a live camera so the captureImage tool works from a terminal.
type fileCamera struct {
	path string
}

func (c *fileCamera) Active() bool { return c != nil && c.path != "" }

func (c *fileCamera) Frame() (image.Image, error) {
	if !c.Active() {
		return nil, guide.ErrCaptureSurfaceNotReady
	}
	f, err := os.Open(c.path)
	if err != nil {
		return nil, guide.ErrNoFrameAvailable
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, guide.ErrNoFrameAvailable
	}
	return img, nil
}

func (c *fileCamera) Stop() {}
