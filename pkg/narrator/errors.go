package narrator

import (
	"net/http"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("NARRATOR")

var (
	CodeProviderFailed  = ErrRegistry.Register("PROVIDER_FAILED", errx.TypeExternal, http.StatusBadGateway, "The model provider call failed")
	CodeMalformedOutput = ErrRegistry.Register("MALFORMED_OUTPUT", errx.TypeExternal, http.StatusBadGateway, "The model reply did not follow the narration JSON contract")
)

func ErrProviderFailed(cause error) *errx.Error  { return ErrRegistry.NewWithCause(CodeProviderFailed, cause) }
func ErrMalformedOutput(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeMalformedOutput, cause) }
