package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string `yaml:"provider"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Concurrency int    `yaml:"concurrency"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier      string  `yaml:"identifier"`
	ReferenceTitle  string  `yaml:"referencetitle"`
	ExtractedTitle  string  `yaml:"extractedtitle,omitempty"`
	KeyResults      int     `yaml:"keyresults"`
	DurationSeconds float64 `yaml:"durationseconds"`
	Error           string  `yaml:"error,omitempty"`
}

// EvalSummary aggregates a run
type EvalSummary struct {
	Total     int `yaml:"total"`
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML saves evaluation results to a YAML file in evals/ directory
func SaveToYAML(provider, datasetPath string, sampleSize, concurrency int, results []EvalResult) (string, error) {
	// Create evals directory
	if err := os.MkdirAll("evals", 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	// Generate timestamp
	timestamp := time.Now().Format("2006-01-02_15-04-05")

	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    provider,
			DatasetPath: datasetPath,
			SampleSize:  sampleSize,
			Concurrency: concurrency,
			Timestamp:   timestamp,
		},
		Results: results,
	}

	spec.Summary.Total = len(results)
	for _, r := range results {
		if r.Error == "" {
			spec.Summary.Succeeded++
		} else {
			spec.Summary.Failed++
		}
	}

	data, err := yaml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal eval results: %w", err)
	}

	path := filepath.Join("evals", fmt.Sprintf("eval_%s_%s.yaml", provider, timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write eval results: %w", err)
	}

	return path, nil
}
