package summarize

import (
	"context"
	"fmt"

	"ewintr.nl/councilbrief/model"
	"google.golang.org/genai"
)

type GeminiBackend struct {
	apiKey string
	spec   model.BackendSpec
}

func NewGeminiBackend(apiKey string, spec model.BackendSpec) *GeminiBackend {
	return &GeminiBackend{
		apiKey: apiKey,
		spec:   spec,
	}
}

func (g *GeminiBackend) Spec() model.BackendSpec {
	return g.spec
}

func (g *GeminiBackend) Summarize(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.spec.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch summary: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	return text, nil
}
