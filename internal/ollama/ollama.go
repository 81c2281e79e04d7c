// Package ollama implements the analyzer against a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/paperlens/paperlens/internal/analyzer"
	"github.com/paperlens/paperlens/internal/models"
)

// Ollama is an analyzer backed by a vision-capable Ollama model
type Ollama struct{}

// New returns a new Ollama analyzer
func New() *Ollama {
	return &Ollama{}
}

func baseURL() string {
	url := os.Getenv("OLLAMA_URL")
	if url == "" {
		url = os.Getenv("OLLAMA_HOST")
	}
	if url == "" {
		url = "http://localhost:11434"
	}
	return url
}

func modelName() string {
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "mistral-small3.2:24b"
	}
	return model
}

// Analyze extracts a structured paper analysis from text and/or page images.
func (o *Ollama) Analyze(ctx context.Context, in analyzer.Input) (*models.PaperAnalysis, error) {
	textOnly := len(in.Images) == 0

	prompt := analyzer.BuildAnalysisPrompt(textOnly)
	if in.Text != "" {
		prompt = in.Text + "\n\n" + prompt
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		images = append(images, base64.StdEncoding.EncodeToString(img))
	}

	requestBody := map[string]interface{}{
		"model":  modelName(),
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]interface{}{
			"temperature": 0.2,
		},
	}
	if len(images) > 0 {
		requestBody["images"] = images
	}

	raw, err := o.generate(ctx, requestBody)
	if err != nil {
		return nil, err
	}

	var result models.PaperAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	slog.Info("Ollama analysis complete", "model", modelName(), "title", result.PaperTitle)
	return &result, nil
}

// Chat answers a follow-up question from the structured analysis.
func (o *Ollama) Chat(ctx context.Context, analysis *models.PaperAnalysis, question string, transcript []models.Message) (string, error) {
	requestBody := map[string]interface{}{
		"model":  modelName(),
		"prompt": analyzer.BuildChatPrompt(analysis, question),
		"stream": false,
	}
	return o.generate(ctx, requestBody)
}

func (o *Ollama) generate(ctx context.Context, requestBody map[string]interface{}) (string, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL()+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}

// stripCodeFences trims markdown code blocks some models wrap around JSON
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
