// Package gemini implements the analyzer against Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/paperlens/paperlens/internal/analyzer"
	"github.com/paperlens/paperlens/internal/models"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

// Low temperature for factual extraction
const temperature = 0.2

// Gemini is an analyzer backed by Google Gemini
type Gemini struct {
	model string
}

// New returns a new Gemini analyzer
func New() *Gemini {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Gemini{model: model}
}

// Analyze extracts a structured paper analysis from text and/or page images.
func (g *Gemini) Analyze(ctx context.Context, in analyzer.Input) (*models.PaperAnalysis, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = analysisSchema

	textOnly := len(in.Images) == 0

	var parts []genai.Part
	for _, img := range in.Images {
		parts = append(parts, genai.ImageData("jpeg", img))
	}
	if in.Text != "" {
		parts = append(parts, genai.Text(in.Text))
	}
	// Prompt goes last, after the document content
	parts = append(parts, genai.Text(analyzer.BuildAnalysisPrompt(textOnly)))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	raw, err := textFromResponse(resp)
	if err != nil {
		return nil, err
	}

	var analysis models.PaperAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	slog.Info("Gemini analysis complete", "model", g.model, "title", analysis.PaperTitle, "figures", len(analysis.FiguresData))
	return &analysis, nil
}

// Chat answers a follow-up question from the structured analysis.
func (g *Gemini) Chat(ctx context.Context, analysis *models.PaperAnalysis, question string, transcript []models.Message) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(analyzer.BuildChatPrompt(analysis, question)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return textFromResponse(resp)
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
