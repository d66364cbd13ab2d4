package aiopenai

import (
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var (
	openaiErrors = errx.NewRegistry("OPENAI")

	ErrRequestFailed   = openaiErrors.Register("REQUEST_FAILED", errx.TypeExternal, 502, "OpenAI API request failed")
	ErrUnauthorized    = openaiErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "Invalid or missing OpenAI API key")
	ErrRateLimited     = openaiErrors.Register("RATE_LIMITED", errx.TypeRateLimit, 429, "OpenAI API rate limit exceeded")
	ErrQuotaExceeded   = openaiErrors.Register("QUOTA_EXCEEDED", errx.TypeExternal, 403, "OpenAI API quota exceeded")
	ErrModelNotFound   = openaiErrors.Register("MODEL_NOT_FOUND", errx.TypeValidation, 404, "Requested model not found or not accessible")
	ErrContextTooLong  = openaiErrors.Register("CONTEXT_TOO_LONG", errx.TypeValidation, 400, "Conversation exceeds the model context window")
	ErrInvalidRequest  = openaiErrors.Register("INVALID_REQUEST", errx.TypeValidation, 400, "Invalid request parameters")
	ErrEmptyMessages   = openaiErrors.Register("EMPTY_MESSAGES", errx.TypeValidation, 400, "Chat requires at least one message")
	ErrUnsupportedRole = openaiErrors.Register("UNSUPPORTED_ROLE", errx.TypeValidation, 400, "Message role not supported by the Chat Completions API")
	ErrEmptyCompletion = openaiErrors.Register("EMPTY_COMPLETION", errx.TypeExternal, 502, "Completion returned no choices")
	ErrMissingAPIKey   = openaiErrors.Register("MISSING_API_KEY", errx.TypeValidation, 400, "OpenAI API key not provided")
)

// ParseOpenAIError maps an SDK error onto one of the registered codes so
// callers can branch on the error type instead of matching message text.
func ParseOpenAIError(err error) *errx.Error {
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
	case hasAny(msg, "unauthorized", "invalid api key", "incorrect api key"):
		code = ErrUnauthorized
	case hasAny(msg, "rate limit", "rate_limit"):
		code = ErrRateLimited
	case hasAny(msg, "quota", "insufficient_quota"):
		code = ErrQuotaExceeded
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		code = ErrModelNotFound
	case hasAny(msg, "context length", "maximum context"):
		code = ErrContextTooLong
	case strings.Contains(msg, "invalid"):
		code = ErrInvalidRequest
	}

	return openaiErrors.NewWithCause(code, err)
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
