package providers

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// Gemini implements the Improver interface on top of the Google GenAI SDK.
// Responses are streamed and yielded fragment by fragment.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini provider.
func NewGemini(opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: opts.timeout(300 * time.Second)},
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}

	return &Gemini{client: client, model: opts.Model}, nil
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Improve(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		cfg := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		}
		if req.MaxTokens > 0 {
			cfg.MaxOutputTokens = int32(req.MaxTokens)
		}
		if req.Temperature > 0 {
			cfg.Temperature = genai.Ptr(float32(req.Temperature))
		}

		stream := g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(req.UserPrompt), cfg)
		for resp, err := range stream {
			if err != nil {
				yield("", geminiError(err))
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// geminiError converts SDK errors into provider errors.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiError("gemini", apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiError("gemini", *apiErrPtr, err)
	}
	return &Error{Kind: KindUnknown, Provider: "gemini", Message: err.Error(), Err: err}
}

func apiError(provider string, apiErr genai.APIError, cause error) *Error {
	return &Error{
		Kind:       KindForStatus(apiErr.Code),
		Provider:   provider,
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
		Body:       apiErr.Status,
		Err:        cause,
	}
}
