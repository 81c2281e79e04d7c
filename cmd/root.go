package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/paperlens/paperlens/internal/analyzer"
	"github.com/paperlens/paperlens/internal/gemini"
	"github.com/paperlens/paperlens/internal/ollama"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paperlens",
		Short: "Scientific paper analysis tool with LLM-powered structured extraction",
		Long: `Paperlens turns scientific documents into structured analyses using multimodal LLMs.

Upload PDFs or paste text through the web interface to extract the hypothesis,
methodology, key results, and figure data, then ask follow-up questions about
the paper.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

// newAnalyzer selects the analysis provider from the environment.
func newAnalyzer() (analyzer.Analyzer, error) {
	provider := os.Getenv("PAPERLENS_PROVIDER")
	switch provider {
	case "", "gemini":
		return gemini.New(), nil
	case "ollama":
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
