package llm

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
)

const defaultModel = "gemini-1.5-flash"

// VertexAIClient wraps the Vertex AI Gemini API as a judgment provider.
// Responses are requested as structured JSON with low-temperature decoding
// and a bounded output length.
type VertexAIClient struct {
	client    *genai.Client
	modelName string
	projectID string
	location  string
}

// NewVertexAIClient creates a new Vertex AI client from the environment.
func NewVertexAIClient(ctx context.Context) (*VertexAIClient, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable not set")
	}

	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	if location == "" {
		location = "us-central1" // Default location
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexAIClient{
		client:    client,
		modelName: defaultModel,
		projectID: projectID,
		location:  location,
	}, nil
}

// GenerateContent sends a system/user prompt pair to the model and returns
// the raw textual response. A fresh model handle is configured per call so
// concurrent matches never share mutable state.
func (v *VertexAIClient) GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := v.client.GenerativeModel(v.modelName)
	model.SetTemperature(0.1) // Low temperature for consistent scoring
	model.SetMaxOutputTokens(1500)
	model.ResponseMIMEType = "application/json"

	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

// Probe issues a minimal request to validate credentials and connectivity.
func (v *VertexAIClient) Probe(ctx context.Context) error {
	model := v.client.GenerativeModel(v.modelName)
	model.SetMaxOutputTokens(2)

	if _, err := model.GenerateContent(ctx, genai.Text("test")); err != nil {
		return fmt.Errorf("provider probe failed: %w", err)
	}
	return nil
}

// Close closes the Vertex AI client.
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}
