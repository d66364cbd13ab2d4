package aiazure

import (
	"strings"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var (
	azureErrors = errx.NewRegistry("AZURE_OPENAI")

	ErrRequestFailed      = azureErrors.Register("REQUEST_FAILED", errx.TypeExternal, 502, "Azure OpenAI API request failed")
	ErrUnauthorized       = azureErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "Invalid or missing Azure OpenAI credentials")
	ErrRateLimited        = azureErrors.Register("RATE_LIMITED", errx.TypeRateLimit, 429, "Azure OpenAI API rate limit exceeded")
	ErrQuotaExceeded      = azureErrors.Register("QUOTA_EXCEEDED", errx.TypeExternal, 403, "Azure OpenAI API quota exceeded")
	ErrDeploymentNotFound = azureErrors.Register("DEPLOYMENT_NOT_FOUND", errx.TypeValidation, 404, "Requested deployment not found or not accessible")
	ErrContextTooLong     = azureErrors.Register("CONTEXT_TOO_LONG", errx.TypeValidation, 400, "Conversation exceeds the model context window")
	ErrEmptyMessages      = azureErrors.Register("EMPTY_MESSAGES", errx.TypeValidation, 400, "Chat requires at least one message")
	ErrUnsupportedRole    = azureErrors.Register("UNSUPPORTED_ROLE", errx.TypeValidation, 400, "Message role not supported by the Chat Completions API")
	ErrEmptyCompletion    = azureErrors.Register("EMPTY_COMPLETION", errx.TypeExternal, 502, "Completion returned no choices")
	ErrMissingEndpoint    = azureErrors.Register("MISSING_ENDPOINT", errx.TypeValidation, 400, "Azure OpenAI endpoint not provided")
	ErrMissingDeployment  = azureErrors.Register("MISSING_DEPLOYMENT", errx.TypeValidation, 400, "Azure OpenAI deployment name not provided")
)

// ParseAzureError maps an SDK error onto one of the registered codes so
// callers can branch on the error type instead of matching message text.
func ParseAzureError(err error) *errx.Error {
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
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "access denied"):
		code = ErrUnauthorized
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "rate_limit"):
		code = ErrRateLimited
	case strings.Contains(msg, "quota"), strings.Contains(msg, "insufficient_quota"):
		code = ErrQuotaExceeded
	case strings.Contains(msg, "not found"), strings.Contains(msg, "deployment"):
		code = ErrDeploymentNotFound
	case strings.Contains(msg, "context length"), strings.Contains(msg, "maximum context"):
		code = ErrContextTooLong
	}

	return azureErrors.NewWithCause(code, err)
}
