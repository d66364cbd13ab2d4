package jobx

import "github.com/Abraxas-365/fateweaver/pkg/errx"

var jobxErrors = errx.NewRegistry("JOBX")

var (
	ErrAlreadyRunning = jobxErrors.Register("ALREADY_RUNNING", errx.TypeConflict, 409, "Worker pool is already running")
	ErrNoHandler      = jobxErrors.Register("NO_HANDLER", errx.TypeValidation, 400, "No handler registered for job type")
)
