package ai

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"yawlit/models"
	"yawlit/services/conversation"
)

// GeminiExtractor implements conversation.Extractor on top of the Gemini
// API. Each Infer call sends a single per-family prompt and expects a flat
// JSON object back.
type GeminiExtractor struct {
	model *genai.GenerativeModel
}

// NewGeminiExtractor builds the client. The model name comes from
// configuration, e.g. "models/gemini-1.5-pro".
func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &GeminiExtractor{model: model}, nil
}

// Infer runs one extraction family against the model. The caller's context
// carries the deadline; a slow call surfaces as a context error and the
// caller falls back to pattern extraction.
func (g *GeminiExtractor) Infer(ctx context.Context, task conversation.Task, input string, history []models.Turn) (conversation.Prediction, error) {
	prompt, err := promptFor(task.Kind, input, history)
	if err != nil {
		return nil, err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return parsePrediction(sb.String())
}
