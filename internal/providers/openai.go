package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"os"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Improver interface for OpenAI's API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	retries int
	client  *http.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("REWORK_OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: baseURL,
		retries: opts.Retries,
		client:  &http.Client{Timeout: opts.timeout(300 * time.Second)},
	}, nil
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Improve(ctx context.Context, req Request) iter.Seq2[string, error] {
	return single(func() (string, error) {
		headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
		return chatCompletion(ctx, o.client, o.Name(), o.baseURL, headers, o.model, o.retries, req)
	})
}

// chatCompletion performs an OpenAI-compatible chat completion request.
// Ollama and LM Studio speak the same protocol.
func chatCompletion(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, model string, retries int, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 16384
	}

	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", failure(provider, "marshaling request: %w", err)
	}

	var content string
	err = retryWithBackoff(ctx, retries, func() error {
		respBody, err := postJSON(ctx, client, provider, url, headers, payload)
		if err != nil {
			return err
		}

		var result openaiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return failure(provider, "parsing response: %w", err)
		}
		if len(result.Choices) == 0 {
			return failure(provider, "no choices in response")
		}

		content = result.Choices[0].Message.Content
		return nil
	})
	return content, err
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
