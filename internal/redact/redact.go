package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// maxLogBody bounds how much of a provider body is kept for logging.
const maxLogBody = 4096

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// Google API keys (Gemini)
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// key= query parameters echoed back in error URLs
	regexp.MustCompile(`([?&]key=)[A-Za-z0-9_-]{16,}`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// ForLog prepares a raw provider body for the log: it is truncated and,
// when redact is set, scrubbed of secrets.
func ForLog(body string, redact bool) string {
	if len(body) > maxLogBody {
		body = body[:maxLogBody] + "...(truncated)"
	}
	if redact {
		body = Secrets(body)
	}
	return body
}

// Withheld reports whether path matches one of the glob patterns. Patterns
// are matched against every trailing run of path elements, so "config/*.json"
// matches "/home/me/app/config/db.json"; a leading "**/" matches the base
// name at any depth.
func Withheld(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashed := filepath.ToSlash(path)
	parts := strings.Split(strings.TrimPrefix(slashed, "/"), "/")
	base := parts[len(parts)-1]

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, err := filepath.Match(rest, base); err == nil && matched {
				return true
			}
			pattern = rest
		}
		for i := range parts {
			suffix := strings.Join(parts[i:], "/")
			if matched, err := filepath.Match(pattern, suffix); err == nil && matched {
				return true
			}
		}
	}
	return false
}
