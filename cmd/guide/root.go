package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	guide "github.com/namma-guide/guide-go/sdk"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "guide",
	Short: "Namma Guide - a Bengaluru voice companion",
	Long: `Namma Guide answers Bengaluru questions over a realtime voice session:
metro and bus routes, food and places, camera capture, and Kannada
translation. Set GEMINI_API_KEY (a .env file works too).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the environment may already be set.
		_ = godotenv.Load()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newGuideClient() *guide.Client {
	return guide.NewClient(guide.WithLogger(slog.Default()))
}
