package providers

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain collects every fragment of seq and the first error, if any.
func drain(seq iter.Seq2[string, error]) ([]string, error) {
	var frags []string
	for frag, err := range seq {
		if err != nil {
			return frags, err
		}
		frags = append(frags, frag)
	}
	return frags, nil
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("unknown", Options{APIKey: "key", Model: "model"})
	assert.Error(t, err)
}

func TestNew_Aliases(t *testing.T) {
	p, err := New("google", Options{APIKey: "key", Model: "gemini-2.5-flash-lite"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, "gemini-2.5-flash-lite", p.Model())

	p, err = New("lmstudio", Options{Model: "qwen"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestNew_MissingKey(t *testing.T) {
	for _, name := range []string{"gemini", "anthropic", "openai"} {
		_, err := New(name, Options{Model: "m"})
		assert.Error(t, err, name)
	}
	_, err := New("ollama", Options{Model: "m"})
	assert.NoError(t, err)
}

func TestCanonicalAndRequiresKey(t *testing.T) {
	assert.Equal(t, "gemini", Canonical("google"))
	assert.Equal(t, "ollama", Canonical("lmstudio"))
	assert.Equal(t, "openai", Canonical("openai"))
	assert.True(t, RequiresKey("google"))
	assert.False(t, RequiresKey("lmstudio"))
}

func TestEnvKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "from-google")
	assert.Equal(t, "from-google", EnvKey("gemini"))

	t.Setenv("GEMINI_API_KEY", "from-gemini")
	assert.Equal(t, "from-gemini", EnvKey("google"))

	t.Setenv("ANTHROPIC_API_KEY", "")
	assert.Empty(t, EnvKey("anthropic"))
	assert.Empty(t, EnvKey("nope"))
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindForbidden},
		{http.StatusRequestEntityTooLarge, KindPayloadTooLarge},
		{http.StatusInternalServerError, KindServer},
		{http.StatusServiceUnavailable, KindServer},
		{599, KindServer},
		{http.StatusBadRequest, KindUnknown},
		{http.StatusNotFound, KindUnknown},
		{0, KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForStatus(tt.status), "status %d", tt.status)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "payload_too_large", KindPayloadTooLarge.String())
	assert.Equal(t, "server_error", KindServer.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestError_Message(t *testing.T) {
	err := statusError("openai", 429, []byte(`{"error":"slow down"}`))
	assert.Equal(t, "openai: rate_limited (status 429): Too Many Requests", err.Error())
	assert.Equal(t, `{"error":"slow down"}`, err.Body)

	cause := errors.New("connection refused")
	f := failure("anthropic", "sending request: %w", cause)
	assert.ErrorIs(t, f, cause)
	assert.Equal(t, KindUnknown, f.Kind)
	assert.Contains(t, f.Error(), "connection refused")
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), statusError("gemini", 403, nil))
	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func shortBackoff(t *testing.T) {
	t.Helper()
	orig := retryBase
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = orig })
}

func TestRetryWithBackoff_RateLimitRetried(t *testing.T) {
	shortBackoff(t)
	calls := 0
	err := retryWithBackoff(context.Background(), 2, func() error {
		calls++
		if calls < 3 {
			return statusError("x", 429, nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ZeroRetries(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 0, func() error {
		calls++
		return statusError("x", 429, nil)
	})
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_OtherKindsNotRetried(t *testing.T) {
	for _, status := range []int{401, 403, 413, 500} {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			return statusError("x", status, nil)
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls, "status %d", status)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	orig := retryBase
	retryBase = time.Hour
	t.Cleanup(func() { retryBase = orig })

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, 3, func() error {
		calls++
		cancel()
		return statusError("x", 429, nil)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSingle(t *testing.T) {
	frags, err := drain(single(func() (string, error) { return "whole", nil }))
	require.NoError(t, err)
	assert.Equal(t, []string{"whole"}, frags)

	boom := errors.New("boom")
	frags, err = drain(single(func() (string, error) { return "", boom }))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, frags)
}
