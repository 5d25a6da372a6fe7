package summarize

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const evalPrompt = `You are a civic auditor. Rate this city council summary based on the transcript.
TRANSCRIPT SNIPPET: %s

SUMMARY: %s

Rate 1-5 for:
1. Faithfulness (Accuracy)
2. Coverage (Key votes found)
Return format: 'Score: F=X, C=X'`

const evalSnippetChars = 5000

// Evaluator scores a generated summary against the transcript it came
// from. Advisory only, scores are logged by the caller and never gate the
// pipeline.
type Evaluator struct {
	apiKey string
	model  string
}

func NewEvaluator(apiKey, model string) *Evaluator {
	return &Evaluator{
		apiKey: apiKey,
		model:  model,
	}
}

func (e *Evaluator) Score(ctx context.Context, transcript, summary string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	prompt := fmt.Sprintf(evalPrompt, Truncate(transcript, evalSnippetChars), summary)
	result, err := client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to score summary: %w", err)
	}

	return result.Text(), nil
}
