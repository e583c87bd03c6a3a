package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/namma-guide/guide-go/pkg/discovery"
	"github.com/namma-guide/guide-go/pkg/transport"
	guide "github.com/namma-guide/guide-go/sdk"
)

var (
	voiceModel       string
	voiceModality    string
	voiceVolume      int
	voiceCameraImage string
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Talk to Namma Guide over the microphone",
	Long: `Opens a realtime voice session. Speech is captured with ffmpeg and
replies play through ffplay. Ctrl-C ends the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVoice(cmd.Context())
	},
}

func init() {
	voiceCmd.Flags().StringVar(&voiceModel, "model", "", "override the live model")
	voiceCmd.Flags().StringVar(&voiceModality, "modality", "", "response modality: audio or text")
	voiceCmd.Flags().IntVar(&voiceVolume, "volume", 80, "playback volume (0-100)")
	voiceCmd.Flags().StringVar(&voiceCameraImage, "camera-image", "", "image file served to the captureImage tool")
	rootCmd.AddCommand(voiceCmd)
}

func runVoice(parent context.Context) error {
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	client := newGuideClient()

	mic := newFFmpegMicrophone(logger)
	speaker := newFFplaySpeaker(logger, voiceVolume)

	req := &guide.LiveConnectRequest{
		Model:            voiceModel,
		ResponseModality: voiceModality,
		Tools:            guide.GuideTools(transport.NewService(), discovery.NewService()),
		Microphone:       mic,
		Player:           speaker,
	}
	if voiceCameraImage != "" {
		req.Camera = &fileCamera{path: voiceCameraImage}
	}

	session, err := client.Live.Connect(sigCtx, req)
	if err != nil {
		return err
	}

	fmt.Println("Namaskara! Namma Guide is listening. Ctrl-C to hang up.")

	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g := new(errgroup.Group)
	g.Go(func() error {
		defer cancel()
		for ev := range session.Events() {
			printLiveEvent(ev)
		}
		return session.Err()
	})
	g.Go(func() error {
		<-ctx.Done()
		return session.Close()
	})
	return g.Wait()
}

func printLiveEvent(ev guide.LiveEvent) {
	switch e := ev.(type) {
	case guide.LiveTextEvent:
		fmt.Print(e.Text)
	case guide.LiveTurnCompleteEvent:
		fmt.Println()
	case guide.LiveInterruptedEvent:
		fmt.Println("\n(interrupted)")
	case guide.LiveToolCallEvent:
		fmt.Printf("\n[tool] %s(%s)\n", e.Name, compactArgs(e.Args))
	case guide.LiveToolResultEvent:
		if e.IsError {
			fmt.Printf("[tool] %s failed: %v\n", e.Name, e.Response["error"])
		}
	case guide.LiveErrorEvent:
		fmt.Fprintf(os.Stderr, "session error: %v\n", e.Err)
	}
}

func compactArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for k, v := range args {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ", ")
}
