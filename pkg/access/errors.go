package access

import (
	"net/http"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ACCESS")

var (
	CodeUnauthorized    = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "A valid table token is required")
	CodeInvalidGMKey    = ErrRegistry.Register("INVALID_GM_KEY", errx.TypeAuthorization, http.StatusUnauthorized, "The game master key does not match")
	CodeTokenGeneration = ErrRegistry.Register("TOKEN_GENERATION", errx.TypeInternal, http.StatusInternalServerError, "Table token could not be signed")
)

func ErrUnauthorized() *errx.Error               { return ErrRegistry.New(CodeUnauthorized) }
func ErrInvalidGMKey() *errx.Error               { return ErrRegistry.New(CodeInvalidGMKey) }
func ErrTokenGeneration(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeTokenGeneration, cause) }
