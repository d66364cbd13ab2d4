package usage

import (
	"net/http"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("USAGE")

var (
	CodeStorageFailure   = ErrRegistry.Register("STORAGE_FAILURE", errx.TypeInternal, http.StatusInternalServerError, "Usage ledger could not be read or written")
	CodeLedgerUnreadable = ErrRegistry.Register("LEDGER_UNREADABLE", errx.TypeInternal, http.StatusInternalServerError, "Usage ledger exists but could not be parsed")
	CodeBudgetBlocked    = ErrRegistry.Register("BUDGET_BLOCKED", errx.TypeRateLimit, http.StatusTooManyRequests, "Monthly token budget reached")
)

func ErrStorageFailure(cause error) *errx.Error   { return ErrRegistry.NewWithCause(CodeStorageFailure, cause) }
func ErrLedgerUnreadable(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeLedgerUnreadable, cause) }
func ErrBudgetBlocked() *errx.Error               { return ErrRegistry.New(CodeBudgetBlocked) }
