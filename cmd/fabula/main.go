package main

import (
	"cmp"
	"os"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"fabula/pkg/inference"
)

var rootCmd = &cobra.Command{
	Use:   "fabula",
	Short: "Reversal-driven fantasy novel generation",
	Long: `Fabula generates full-length fantasy novels around engineered emotional
reversals: it plans a plot, optimizes its reversal structure, designs a
non-linear chapter order, writes the manuscript, and verifies the result
against narrative metrics.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newInferencer picks a provider from the environment. Gemini, Groq, and
// Moonshot win over OpenAI when their keys are set; with no key at all the
// OpenAI client points at a local server.
func newInferencer() inference.Inferencer {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		inf, err := inference.NewGeminiInferencer(key, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatal("failed creating gemini client", "error", err)
		}
		return inf
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return inference.NewGroqInferencer(key, os.Getenv("GROQ_MODEL"))
	}
	if key := os.Getenv("MOONSHOT_API_KEY"); key != "" {
		return inference.NewMoonshotInferencer(key, os.Getenv("MOONSHOT_MODEL"))
	}

	model := cmp.Or(os.Getenv("OPENAI_MODEL"), "gpt-4o-mini")
	apiKey := os.Getenv("OPENAI_API_KEY")
	openAI := inference.NewOpenAIInferencer(apiKey, model)
	if apiKey == "" {
		openAI.ChangeBaseURL("http://localhost:1234/v1")
		openAI.SetModel("")
	}
	return openAI
}
