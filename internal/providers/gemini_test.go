package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGemini(t *testing.T) {
	_, err := NewGemini(Options{Model: "gemini-2.5-flash-lite"})
	assert.Error(t, err)

	g, err := NewGemini(Options{APIKey: "k", Model: "gemini-2.5-flash-lite"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Name())
	assert.Equal(t, "gemini-2.5-flash-lite", g.Model())
}

func TestGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
		code int
	}{
		{"value", genai.APIError{Code: 429, Message: "quota", Status: "RESOURCE_EXHAUSTED"}, KindRateLimited, 429},
		{"pointer", &genai.APIError{Code: 401, Message: "bad key"}, KindUnauthorized, 401},
		{"wrapped", fmt.Errorf("stream: %w", genai.APIError{Code: 403}), KindForbidden, 403},
		{"too large", genai.APIError{Code: 413}, KindPayloadTooLarge, 413},
		{"server", genai.APIError{Code: 503}, KindServer, 503},
		{"bad request", genai.APIError{Code: 400}, KindUnknown, 400},
		{"transport", errors.New("dial tcp: timeout"), KindUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := geminiError(tt.err)
			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.want, pe.Kind)
			assert.Equal(t, tt.code, pe.StatusCode)
			assert.Equal(t, "gemini", pe.Provider)
			assert.NotNil(t, pe.Unwrap())
		})
	}
}
