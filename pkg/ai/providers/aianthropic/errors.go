package aianthropic

import (
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var (
	anthropicErrors = errx.NewRegistry("ANTHROPIC")

	ErrRequestFailed   = anthropicErrors.Register("REQUEST_FAILED", errx.TypeExternal, 502, "Anthropic API request failed")
	ErrUnauthorized    = anthropicErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "Invalid or missing Anthropic API key")
	ErrRateLimited     = anthropicErrors.Register("RATE_LIMITED", errx.TypeRateLimit, 429, "Anthropic API rate limit exceeded")
	ErrOverloaded      = anthropicErrors.Register("OVERLOADED", errx.TypeExternal, 503, "Anthropic API overloaded or quota exhausted")
	ErrModelNotFound   = anthropicErrors.Register("MODEL_NOT_FOUND", errx.TypeValidation, 404, "Requested model not found or not accessible")
	ErrContextTooLong  = anthropicErrors.Register("CONTEXT_TOO_LONG", errx.TypeValidation, 400, "Conversation exceeds the model context window")
	ErrEmptyMessages   = anthropicErrors.Register("EMPTY_MESSAGES", errx.TypeValidation, 400, "Chat requires at least one message")
	ErrUnsupportedRole = anthropicErrors.Register("UNSUPPORTED_ROLE", errx.TypeValidation, 400, "Message role not supported by the Messages API")
	ErrMissingAPIKey   = anthropicErrors.Register("MISSING_API_KEY", errx.TypeValidation, 400, "Anthropic API key not provided")
)

// ParseAnthropicError maps an SDK error onto one of the registered codes so
// callers can branch on the error type instead of matching message text.
func ParseAnthropicError(err error) *errx.Error {
	if err == nil {
		return nil
	}

	var appErr *errx.Error
	if errx.As(err, &appErr) {
		return appErr
	}

	msg := strings.ToLower(err.Error())

	code := ErrRequestFailed
	switch {
	case hasAny(msg, "unauthorized", "invalid x-api-key", "authentication"):
		code = ErrUnauthorized
	case hasAny(msg, "rate limit", "rate_limit"):
		code = ErrRateLimited
	case hasAny(msg, "quota", "overloaded"):
		code = ErrOverloaded
	case hasAny(msg, "not found", "model"):
		code = ErrModelNotFound
	case hasAny(msg, "context length", "too many tokens"):
		code = ErrContextTooLong
	}

	return anthropicErrors.NewWithCause(code, err)
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
