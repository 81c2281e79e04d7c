// Package evalcmd runs batch evaluations of the analyzer against
// datasets of paper abstracts.
package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paperlens/paperlens/internal/analyzer"
	"github.com/paperlens/paperlens/internal/eval/dataset"
	"github.com/paperlens/paperlens/internal/eval/results"
)

// Run analyzes every abstract in the dataset and writes a YAML report
// under evals/. Quota checks deliberately do not apply here: an
// evaluation run is an operator action against the operator's own key,
// not end-user traffic.
func Run(ctx context.Context, model analyzer.Analyzer, provider, datasetPath string, sampleSize, concurrency int) error {
	slog.Info("Starting evaluation run", "dataset", datasetPath, "provider", provider, "sample", sampleSize)

	loader := dataset.NewLoader(datasetPath)

	var records []dataset.Record
	var err error
	if sampleSize > 0 {
		records, err = loader.LoadSample(sampleSize)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	slog.Info("Dataset loaded", "items", len(records))
	if len(records) == 0 {
		return fmt.Errorf("dataset is empty: %s", datasetPath)
	}

	// Process items with concurrency control
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	out := make([]results.EvalResult, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.Record) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing item", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			out[idx] = processRecord(ctx, model, record)
		}(i, record)
	}
	wg.Wait()

	path, err := results.SaveToYAML(provider, datasetPath, sampleSize, concurrency, out)
	if err != nil {
		return err
	}

	slog.Info("Evaluation complete", "results", path)
	return nil
}

func processRecord(ctx context.Context, model analyzer.Analyzer, record dataset.Record) results.EvalResult {
	result := results.EvalResult{
		Identifier:     record.ID,
		ReferenceTitle: record.Title,
	}

	start := time.Now()
	analysis, err := model.Analyze(ctx, analyzer.Input{Text: record.Abstract})
	result.DurationSeconds = time.Since(start).Seconds()

	if err != nil {
		slog.Error("Analysis failed", "id", record.ID, "error", err)
		result.Error = err.Error()
		return result
	}

	result.ExtractedTitle = analysis.PaperTitle
	result.KeyResults = len(analysis.KeyResults)
	return result
}
