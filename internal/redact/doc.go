// Package redact keeps secrets out of logs and out of provider requests.
//
// Detection uses regex heuristics covering common secret shapes: API keys
// (including Google keys used by Gemini), JWTs, private keys, AWS access key
// IDs, bearer tokens, and provider-specific tokens (Anthropic, OpenAI,
// GitHub). Raw provider response bodies pass through [ForLog] before they are
// logged.
//
// Path-based withholding is also supported: files whose paths match the
// configured glob patterns are never sent to a provider.
package redact
