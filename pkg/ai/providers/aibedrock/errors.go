package aibedrock

import (
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var (
	bedrockErrors = errx.NewRegistry("BEDROCK")

	ErrRequestFailed    = bedrockErrors.Register("REQUEST_FAILED", errx.TypeExternal, 502, "Bedrock API request failed")
	ErrUnexpectedOutput = bedrockErrors.Register("UNEXPECTED_OUTPUT", errx.TypeExternal, 502, "Converse returned an unexpected output type")
	ErrUnauthorized     = bedrockErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "Invalid or missing AWS credentials")
	ErrThrottled        = bedrockErrors.Register("THROTTLED", errx.TypeRateLimit, 429, "Bedrock API request throttled")
	ErrModelNotFound    = bedrockErrors.Register("MODEL_NOT_FOUND", errx.TypeValidation, 404, "Requested model not found or not accessible")
	ErrContextTooLong   = bedrockErrors.Register("CONTEXT_TOO_LONG", errx.TypeValidation, 400, "Conversation exceeds the model context window")
	ErrEmptyMessages    = bedrockErrors.Register("EMPTY_MESSAGES", errx.TypeValidation, 400, "Chat requires at least one message")
	ErrUnsupportedRole  = bedrockErrors.Register("UNSUPPORTED_ROLE", errx.TypeValidation, 400, "Message role not supported by the Converse API")
	ErrInvalidRequest   = bedrockErrors.Register("INVALID_REQUEST", errx.TypeValidation, 400, "Invalid request parameters")
)

// ParseBedrockError maps an SDK error onto one of the registered codes so
// callers can branch on the error type instead of matching message text.
func ParseBedrockError(err error) *errx.Error {
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
	case strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "accessdenied"),
		strings.Contains(msg, "access denied"),
		strings.Contains(msg, "credentials"):
		code = ErrUnauthorized
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate"):
		code = ErrThrottled
	case strings.Contains(msg, "not found"), strings.Contains(msg, "model"):
		code = ErrModelNotFound
	case strings.Contains(msg, "context"),
		strings.Contains(msg, "too many tokens"),
		strings.Contains(msg, "input is too long"):
		code = ErrContextTooLong
	case strings.Contains(msg, "validation"):
		code = ErrInvalidRequest
	}

	return bedrockErrors.NewWithCause(code, err)
}
