package cmd

import (
	"os"

	"github.com/paperlens/paperlens/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var datasetPath string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate analysis quality against a dataset of paper abstracts",
		Long: `Runs the configured analyzer against every abstract in a dataset
(Parquet or JSONL with id/title/abstract fields) and writes a YAML report
under evals/.`,
		Example: `  # Evaluate 10 abstracts with 2 concurrent requests
  paperlens eval --dataset abstracts.parquet --sample 10 --concurrency 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := newAnalyzer()
			if err != nil {
				return err
			}

			provider := os.Getenv("PAPERLENS_PROVIDER")
			if provider == "" {
				provider = "gemini"
			}

			return evalcmd.Run(cmd.Context(), model, provider, datasetPath, sampleSize, concurrency)
		},
	}

	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Path to the dataset file (.parquet or .jsonl)")
	cmd.Flags().IntVarP(&sampleSize, "sample", "s", 0, "Limit the run to the first N records (0 = all)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "Concurrent analysis requests")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}
