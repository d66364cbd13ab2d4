package session

import (
	"net/http"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeEmptyInput     = ErrRegistry.Register("EMPTY_INPUT", errx.TypeValidation, http.StatusBadRequest, "Player input must not be empty")
	CodeJournalFailure = ErrRegistry.Register("JOURNAL_FAILURE", errx.TypeInternal, http.StatusInternalServerError, "Turn journal could not be read or written")
	CodeLockTimeout    = ErrRegistry.Register("LOCK_TIMEOUT", errx.TypeConflict, http.StatusConflict, "Another turn is still being processed")
)

func ErrEmptyInput() *errx.Error                { return ErrRegistry.New(CodeEmptyInput) }
func ErrJournalFailure(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeJournalFailure, cause) }
func ErrLockTimeout(cause error) *errx.Error    { return ErrRegistry.NewWithCause(CodeLockTimeout, cause) }
