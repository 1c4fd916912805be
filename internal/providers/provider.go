package providers

import (
	"context"
	"fmt"
	"iter"
	"os"
	"time"
)

// Request contains the data sent to a provider for one file.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Improver is the provider abstraction. Improve returns the proposed
// rewrite as an ordered sequence of text fragments; batched providers yield
// a single fragment. A failure is yielded as the final element, normally a
// *Error.
type Improver interface {
	Improve(ctx context.Context, req Request) iter.Seq2[string, error]
	Name() string
	Model() string
}

// Options configures a provider client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Retries int
	Timeout time.Duration
}

func (o Options) timeout(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return def
}

// New creates a provider by name.
func New(provider string, opts Options) (Improver, error) {
	switch provider {
	case "gemini", "google":
		return NewGemini(opts)
	case "anthropic":
		return NewAnthropic(opts)
	case "openai":
		return NewOpenAI(opts)
	case "ollama", "lmstudio":
		return NewOllama(opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// Canonical returns the canonical provider name for an alias.
func Canonical(provider string) string {
	switch provider {
	case "google":
		return "gemini"
	case "lmstudio":
		return "ollama"
	default:
		return provider
	}
}

// RequiresKey reports whether the provider needs an API key.
func RequiresKey(provider string) bool {
	switch Canonical(provider) {
	case "ollama":
		return false
	default:
		return true
	}
}

// EnvKey returns the first non-empty API key found in the provider's
// conventional environment variables.
func EnvKey(provider string) string {
	var vars []string
	switch Canonical(provider) {
	case "gemini":
		vars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "anthropic":
		vars = []string{"ANTHROPIC_API_KEY"}
	case "openai":
		vars = []string{"OPENAI_API_KEY"}
	case "ollama":
		vars = []string{"REWORK_OLLAMA_API_KEY"}
	}
	for _, v := range vars {
		if key := os.Getenv(v); key != "" {
			return key
		}
	}
	return ""
}

// single adapts a batched call into a one-fragment sequence.
func single(call func() (string, error)) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		text, err := call()
		if err != nil {
			yield("", err)
			return
		}
		yield(text, nil)
	}
}
