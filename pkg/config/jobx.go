package config

import "time"

// JobxConfig configures the background job queue and the periodic
// snapshot job it runs.
type JobxConfig struct {
	Concurrency     int
	Queue           string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration

	// SnapshotInterval schedules automatic save-game snapshots.
	// Zero disables them.
	SnapshotInterval time.Duration
}

func loadJobxConfig() JobxConfig {
	return JobxConfig{
		Concurrency:      getEnvInt("JOBX_CONCURRENCY", 2),
		Queue:            getEnv("JOBX_QUEUE", "default"),
		PollInterval:     getEnvDuration("JOBX_POLL_INTERVAL", time.Second),
		ShutdownTimeout:  getEnvDuration("JOBX_SHUTDOWN_TIMEOUT", 30*time.Second),
		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 0),
	}
}
