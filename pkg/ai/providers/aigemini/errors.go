package aigemini

import (
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var (
	geminiErrors = errx.NewRegistry("GEMINI")

	ErrRequestFailed   = geminiErrors.Register("REQUEST_FAILED", errx.TypeExternal, 502, "Gemini API request failed")
	ErrClientInit      = geminiErrors.Register("CLIENT_INIT", errx.TypeExternal, 502, "Gemini client could not be created")
	ErrEmptyCandidates = geminiErrors.Register("EMPTY_CANDIDATES", errx.TypeExternal, 502, "Response contained no candidates")
	ErrUnauthorized    = geminiErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "Invalid or missing Gemini API key")
	ErrRateLimited     = geminiErrors.Register("RATE_LIMITED", errx.TypeRateLimit, 429, "Gemini API rate limit exceeded")
	ErrQuotaExceeded   = geminiErrors.Register("QUOTA_EXCEEDED", errx.TypeExternal, 403, "Gemini API quota exceeded")
	ErrModelNotFound   = geminiErrors.Register("MODEL_NOT_FOUND", errx.TypeValidation, 404, "Requested model not found or not accessible")
	ErrContextTooLong  = geminiErrors.Register("CONTEXT_TOO_LONG", errx.TypeValidation, 400, "Conversation exceeds the model context window")
	ErrEmptyMessages   = geminiErrors.Register("EMPTY_MESSAGES", errx.TypeValidation, 400, "Chat requires at least one message")
	ErrMissingAPIKey   = geminiErrors.Register("MISSING_API_KEY", errx.TypeValidation, 400, "Gemini API key not provided")
)

// ParseGeminiError maps an SDK error onto one of the registered codes so
// callers can branch on the error type instead of matching message text.
func ParseGeminiError(err error) *errx.Error {
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
	case hasAny(msg, "unauthorized", "invalid api key", "permission denied"):
		code = ErrUnauthorized
	case hasAny(msg, "rate limit", "resource exhausted"):
		code = ErrRateLimited
	case strings.Contains(msg, "quota"):
		code = ErrQuotaExceeded
	case hasAny(msg, "not found", "model"):
		code = ErrModelNotFound
	case hasAny(msg, "context", "too many tokens"):
		code = ErrContextTooLong
	}

	return geminiErrors.NewWithCause(code, err)
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
