package jobx

import "time"

// Options tunes the worker pool.
type Options struct {
	// Queues lists the queues workers pull from, in priority order.
	Queues []string

	// Concurrency is the number of worker goroutines.
	Concurrency int

	// PollInterval bounds how long a worker blocks waiting for a job and
	// how often due retries are revived.
	PollInterval time.Duration

	// RetryDelay is how long a failed job is parked before its next attempt.
	RetryDelay time.Duration

	// ShutdownTimeout is the drain deadline after Start's context ends.
	ShutdownTimeout time.Duration
}

func defaultOptions() Options {
	return Options{
		Queues:          []string{DefaultQueue},
		Concurrency:     2,
		PollInterval:    time.Second,
		RetryDelay:      30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// normalize clamps zero or negative settings back to usable values.
func (o *Options) normalize() {
	def := defaultOptions()
	if len(o.Queues) == 0 {
		o.Queues = def.Queues
	}
	if o.Concurrency <= 0 {
		o.Concurrency = def.Concurrency
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = def.RetryDelay
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = def.ShutdownTimeout
	}
}

// Option configures the client.
type Option func(*Options)

// WithQueues sets the queues to process.
func WithQueues(queues ...string) Option {
	return func(o *Options) {
		o.Queues = queues
	}
}

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithPollInterval sets the idle wakeup interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = d
	}
}

// WithRetryDelay sets how long failed jobs wait before retrying.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) {
		o.RetryDelay = d
	}
}

// WithShutdownTimeout sets the drain deadline on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}
