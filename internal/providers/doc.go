// Package providers implements the Improver interface for each supported LLM
// provider.
//
// Supported providers: Google (Gemini, via the GenAI SDK with streaming),
// Anthropic (Claude), OpenAI (GPT), and Ollama / LMStudio for local models.
//
// Every failure surfaces as an [*Error] whose [Kind] is derived from the
// HTTP status reported by the service. Rate-limit failures may be retried
// with exponential back-off; all other kinds are returned immediately so the
// caller can classify them.
//
// Use [New] to obtain an Improver by provider name and [WithCache] to put
// the response cache in front of it.
package providers
