package jobxredis

import "github.com/Abraxas-365/fateweaver/pkg/errx"

var redisErrors = errx.NewRegistry("JOBX_REDIS")

var (
	ErrEnqueue  = redisErrors.Register("ENQUEUE", errx.TypeExternal, 500, "Redis enqueue failed")
	ErrDequeue  = redisErrors.Register("DEQUEUE", errx.TypeExternal, 500, "Redis dequeue failed")
	ErrPersist  = redisErrors.Register("PERSIST", errx.TypeExternal, 500, "Redis job write failed")
	ErrRevive   = redisErrors.Register("REVIVE", errx.TypeExternal, 500, "Redis retry handling failed")
	ErrDecode   = redisErrors.Register("DECODE", errx.TypeInternal, 500, "Stored job body is not valid JSON")
	ErrNotFound = redisErrors.Register("NOT_FOUND", errx.TypeNotFound, 404, "Job not found in Redis")
)
