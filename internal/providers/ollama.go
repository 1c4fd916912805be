package providers

import (
	"context"
	"iter"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Improver interface for Ollama and LM Studio
// (OpenAI-compatible API).
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	retries int
	client  *http.Client
}

// NewOllama creates a new Ollama provider. No API key is required by default.
func NewOllama(opts Options) (*Ollama, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	// Normalize URL: strip trailing /, /v1, /v1/chat/completions
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	return &Ollama{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: baseURL + "/v1/chat/completions",
		retries: opts.Retries,
		client:  &http.Client{Timeout: opts.timeout(600 * time.Second)},
	}, nil
}

func (o *Ollama) Name() string  { return "ollama" }
func (o *Ollama) Model() string { return o.model }

func (o *Ollama) Improve(ctx context.Context, req Request) iter.Seq2[string, error] {
	return single(func() (string, error) {
		headers := map[string]string{}
		if o.apiKey != "" {
			headers["Authorization"] = "Bearer " + o.apiKey
		}
		return chatCompletion(ctx, o.client, o.Name(), o.baseURL, headers, o.model, o.retries, req)
	})
}
