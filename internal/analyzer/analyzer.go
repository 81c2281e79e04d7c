// Package analyzer defines the interface to the external analysis model
// and the prompts shared by its implementations.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/paperlens/paperlens/internal/models"
)

// Input is the document content submitted for analysis: raw text, page
// images, or both.
type Input struct {
	Text   string
	Images [][]byte
}

// Analyzer is the external analysis collaborator. Both operations are
// opaque fallible calls; no retry happens at this layer.
type Analyzer interface {
	// Analyze extracts a structured analysis from the document content.
	Analyze(ctx context.Context, in Input) (*models.PaperAnalysis, error)

	// Chat answers a follow-up question grounded in a prior analysis.
	Chat(ctx context.Context, analysis *models.PaperAnalysis, question string, transcript []models.Message) (string, error)
}

// BuildAnalysisPrompt returns the extraction prompt. Text-only analyses
// must not invent figures, so the figure instructions differ.
func BuildAnalysisPrompt(textOnly bool) string {
	medium := "images"
	visual := " and visually interpret all figures, tables, and charts"
	figures := `- 'findings': Provide a detailed list of observations. If it's a chart, cite values. If it's a micrograph, describe features.
- 'data_points': If the figure is a chart (bar, line, scatter, etc.), extract representative data points.`
	if textOnly {
		medium = "text"
		visual = ""
		figures = "- Since no images are provided, strictly return an empty array []."
	}

	return fmt.Sprintf(`You are a precise scientific research assistant. Analyze the provided %s of a research paper.
Perform a multimodal analysis: extract text%s.

Return a strictly valid JSON object matching the requested schema.

For 'methodology_steps':
- Group the methods into distinct chronological or logical phases (e.g., "1. Material Synthesis", "2. Device Fabrication", "3. Optical Characterization").
- Within each phase, list the specific procedural steps.

For 'figures_data':
%s`, medium, visual, figures)
}

// BuildChatPrompt condenses the structured analysis into context for a
// follow-up question. The model answers from the extracted data only.
func BuildChatPrompt(analysis *models.PaperAnalysis, question string) string {
	return fmt.Sprintf(`You are a helpful research assistant. You have already analyzed a paper.
Here is the structured data you extracted:
Title: %s
Hypothesis: %s
Key Results: %s
Methodology: %s
Conclusions: %s

User Question: %s

Answer the user's question based strictly on the paper's data provided above.
Be concise, scientific, and direct. Do not make up facts not present in the analysis.`,
		analysis.PaperTitle,
		analysis.CoreHypothesis,
		strings.Join(analysis.KeyResults, "; "),
		analysis.MethodologySummary,
		analysis.Conclusions,
		question,
	)
}
