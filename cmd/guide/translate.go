package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/namma-guide/guide-go/pkg/translate"
)

var translateToEnglish bool

var translateCmd = &cobra.Command{
	Use:   "translate <text>...",
	Short: "Translate between English and Bangalore Kannada",
	Example: `  guide translate "How much does this cost?"
  guide translate --to-english "Eshtu sir?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := apiKeyFromEnv()
		if apiKey == "" {
			return fmt.Errorf("missing API key (set GEMINI_API_KEY)")
		}

		client := translate.NewClient(apiKey)
		text := strings.Join(args, " ")

		var (
			out string
			err error
		)
		if translateToEnglish {
			out, err = client.ToEnglish(cmd.Context(), text)
		} else {
			out, err = client.ToKannada(cmd.Context(), text)
		}
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	translateCmd.Flags().BoolVar(&translateToEnglish, "to-english", false, "translate Kannada to English instead")
	rootCmd.AddCommand(translateCmd)
}

func apiKeyFromEnv() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}
