// Package jobx runs background maintenance jobs for the service. It is a
// small producer/worker kit: producers enqueue typed jobs, a worker pool
// dequeues them and dispatches to registered handlers, and failed jobs are
// retried with a delay until their attempt budget runs out.
package jobx

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/logx"
)

// HandlerFunc processes one job. A nil return completes the job; an error
// sends it to the retry set until MaxRetries is exhausted.
type HandlerFunc func(ctx context.Context, job *JobInfo) error

// Enqueuer is the producer side of the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) (string, error)
}

// Queue is the storage backend the worker pool runs against.
type Queue interface {
	Enqueuer

	// Dequeue blocks up to timeout for a job on one of the queues.
	// A (nil, nil) return means the timeout elapsed with nothing to do.
	Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*JobInfo, error)

	// Complete marks a job as done.
	Complete(ctx context.Context, jobID string) error

	// Fail records a failure and reports whether the job has retries left.
	Fail(ctx context.Context, jobID string, errMsg string) (retry bool, err error)

	// Retry parks a failed job until now+delay.
	Retry(ctx context.Context, jobID string, delay time.Duration) error

	// ReviveDue moves parked jobs whose delay has passed back onto the
	// ready queues.
	ReviveDue(ctx context.Context, queues []string) error
}

// Client enqueues jobs and runs the worker pool.
type Client struct {
	queue    Queue
	opts     Options
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	running  bool
}

// NewClient creates a job client for the given backend.
func NewClient(queue Queue, options ...Option) *Client {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	opts.normalize()

	return &Client{
		queue:    queue,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a handler to a job type. Jobs of unregistered types are
// failed on arrival.
func (c *Client) Register(jobType string, handler HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[jobType] = handler
}

// Enqueue submits a job for processing and returns its id.
func (c *Client) Enqueue(ctx context.Context, job Job) (string, error) {
	if job.Queue == "" {
		job.Queue = DefaultQueue
	}
	if job.MaxRetries < 0 {
		job.MaxRetries = 0
	}
	return c.queue.Enqueue(ctx, job)
}

// Start runs the worker pool until ctx is cancelled, then drains in-flight
// jobs for up to the configured shutdown timeout.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return jobxErrors.New(ErrAlreadyRunning)
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	logx.WithFields(logx.Fields{
		"workers": c.opts.Concurrency,
		"queues":  c.opts.Queues,
	}).Info("jobx: worker pool started")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.reviveLoop(ctx)
	}()

	for i := 0; i < c.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.workLoop(ctx)
		}()
	}

	<-ctx.Done()
	logx.Info("jobx: draining workers...")

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		logx.Info("jobx: worker pool stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("jobx: drain timed out with jobs still in flight")
	}

	return nil
}

// reviveLoop periodically puts due retries back on the ready queues.
func (c *Client) reviveLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.queue.ReviveDue(ctx, c.opts.Queues); err != nil && ctx.Err() == nil {
				logx.WithError(err).Warn("jobx: reviving retries failed")
			}
		}
	}
}

func (c *Client) workLoop(ctx context.Context) {
	for ctx.Err() == nil {
		job, err := c.queue.Dequeue(ctx, c.opts.Queues, c.opts.PollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warn("jobx: dequeue failed")
			time.Sleep(c.opts.PollInterval)
			continue
		}
		if job == nil {
			continue
		}
		c.run(ctx, job)
	}
}

func (c *Client) run(ctx context.Context, job *JobInfo) {
	c.mu.RLock()
	handler, ok := c.handlers[job.Type]
	c.mu.RUnlock()

	log := logx.WithFields(logx.Fields{"job_id": job.ID, "job_type": job.Type})

	if !ok {
		log.Warn("jobx: no handler for job type")
		_, _ = c.queue.Fail(ctx, job.ID, jobxErrors.New(ErrNoHandler).Error())
		return
	}

	if err := handler(ctx, job); err != nil {
		log.WithError(err).Warnf("jobx: job failed (attempt %d/%d)", job.Attempts, job.MaxRetries+1)

		retry, failErr := c.queue.Fail(ctx, job.ID, err.Error())
		if failErr != nil {
			log.WithError(failErr).Error("jobx: could not record job failure")
			return
		}
		if retry {
			if err := c.queue.Retry(ctx, job.ID, c.opts.RetryDelay); err != nil {
				log.WithError(err).Error("jobx: could not park job for retry")
			}
		}
		return
	}

	if err := c.queue.Complete(ctx, job.ID); err != nil {
		log.WithError(err).Error("jobx: could not mark job complete")
	}
}
