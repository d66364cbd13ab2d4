package campaign

import (
	"net/http"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CAMPAIGN")

var (
	CodeStorageFailure   = ErrRegistry.Register("STORAGE_FAILURE", errx.TypeInternal, http.StatusInternalServerError, "Campaign state could not be read or written")
	CodeSnapshotNotFound = ErrRegistry.Register("SNAPSHOT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Campaign snapshot does not exist")
)

func ErrStorageFailure(cause error) *errx.Error { return ErrRegistry.NewWithCause(CodeStorageFailure, cause) }
func ErrSnapshotNotFound() *errx.Error          { return ErrRegistry.New(CodeSnapshotNotFound) }
