package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type GroqInferencer struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewGroqInferencer creates an inferencer backed by Groq's
// OpenAI-compatible API.
func NewGroqInferencer(apiKey string, model string) *GroqInferencer {
	if model == "" {
		model = "qwen/qwen3-32b"
	}
	client := openai.NewClient(
		option.WithBaseURL("https://api.groq.com/openai/v1"),
		option.WithAPIKey(apiKey),
	)
	return &GroqInferencer{
		client: &client,
		apiKey: apiKey,
		model:  model,
	}
}

func (o *GroqInferencer) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
	)
	o.client = &client
}

func (o *GroqInferencer) SetModel(model string) {
	o.model = model
}

// Infer sends text to the Groq chat completion endpoint and returns the output.
func (o *GroqInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	} else {
		params = &(*params)
	}
	params.Model = cmp.Or(params.Model, o.model)
	params.Messages = chatMessages(system, user)

	params.MaxCompletionTokens = openai.Int(cmp.Or(params.MaxCompletionTokens.Value, 4096*2))
	params.Temperature = openai.Float(cmp.Or(params.Temperature.Value, 0.8))
	params.TopP = openai.Float(cmp.Or(params.TopP.Value, 1.0))

	resp, err := o.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return "", fmt.Errorf("groq inference error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}

// Edit wraps Infer with lower-temperature defaults for grounded rewrites.
func (o *GroqInferencer) Edit(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	if params.MaxCompletionTokens.Value == 0 {
		params.MaxCompletionTokens = openai.Int(int64(len(user) * 2))
	}
	if params.Temperature.Value == 0 {
		params.Temperature = openai.Float(0.2)
	}
	return o.Infer(ctx, params, system, user)
}

// Verify checks that the result is non-empty.
func (o *GroqInferencer) Verify(ctx context.Context, result string) (bool, error) {
	if result == "" {
		return false, errors.New("empty result")
	}
	return true, nil
}
