package summarize

import (
	"context"
	"fmt"

	"ewintr.nl/councilbrief/model"
	"github.com/sashabaranov/go-openai"
)

const openAISystemPrompt = `You are a senior political analyst. Report facts only. Use clean Markdown with ## headers and bullet points. Start with ## Executive Summary. No preamble.`

// OpenAIBackend talks to any service speaking the OpenAI chat protocol.
// Groq and OpenRouter both do, so one client type covers all three
// providers, distinguished only by base URL and model name.
type OpenAIBackend struct {
	client *openai.Client
	spec   model.BackendSpec
}

func NewOpenAIBackend(apiKey, baseURL string, spec model.BackendSpec) *OpenAIBackend {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(config),
		spec:   spec,
	}
}

func (o *OpenAIBackend) Spec() model.BackendSpec {
	return o.spec
}

func (o *OpenAIBackend) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       o.spec.Model,
			Temperature: 0.1,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: openAISystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to fetch summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}
