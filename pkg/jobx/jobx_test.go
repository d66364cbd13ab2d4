package jobx_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/Abraxas-365/fateweaver/pkg/jobx"
)

// fakeQueue is an in-memory jobx.Queue. Ready ids travel through a
// channel so Dequeue blocks exactly like the Redis backend.
type fakeQueue struct {
	mu        sync.Mutex
	ch        chan string
	bodies    map[string]*jobx.JobInfo
	parked    map[string]time.Time
	completed []string
	failed    []string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		ch:     make(chan string, 16),
		bodies: make(map[string]*jobx.JobInfo),
		parked: make(map[string]time.Time),
	}
}

func (q *fakeQueue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	q.mu.Lock()
	id := fmt.Sprintf("job-%d", len(q.bodies)+1)
	now := time.Now()
	q.bodies[id] = &jobx.JobInfo{
		ID:         id,
		Type:       job.Type,
		Queue:      job.Queue,
		Payload:    job.Payload,
		Status:     jobx.JobStatusPending,
		MaxRetries: job.MaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	q.mu.Unlock()

	q.ch <- id
	return id, nil
}

func (q *fakeQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	select {
	case id := <-q.ch:
		q.mu.Lock()
		defer q.mu.Unlock()
		info := q.bodies[id]
		info.Status = jobx.JobStatusActive
		info.Attempts++
		claimed := *info
		return &claimed, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, nil
	}
}

func (q *fakeQueue) Complete(ctx context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.bodies[jobID].Status = jobx.JobStatusCompleted
	q.completed = append(q.completed, jobID)
	return nil
}

func (q *fakeQueue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info := q.bodies[jobID]
	info.Error = errMsg
	if info.Attempts <= info.MaxRetries {
		info.Status = jobx.JobStatusRetrying
		return true, nil
	}
	info.Status = jobx.JobStatusFailed
	q.failed = append(q.failed, jobID)
	return false, nil
}

func (q *fakeQueue) Retry(ctx context.Context, jobID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.parked[jobID] = time.Now().Add(delay)
	return nil
}

func (q *fakeQueue) ReviveDue(ctx context.Context, queues []string) error {
	q.mu.Lock()
	var due []string
	now := time.Now()
	for id, at := range q.parked {
		if !at.After(now) {
			due = append(due, id)
			delete(q.parked, id)
		}
	}
	q.mu.Unlock()

	for _, id := range due {
		q.ch <- id
	}
	return nil
}

func (q *fakeQueue) completedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.completed...)
}

func (q *fakeQueue) failedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.failed...)
}

// startPool runs the client until the returned stop function is called.
func startPool(t *testing.T, c *jobx.Client) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker pool did not stop")
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// --- Worker pool tests ---

func TestClient_RunsRegisteredHandler(t *testing.T) {
	queue := newFakeQueue()
	client := jobx.NewClient(queue,
		jobx.WithConcurrency(1),
		jobx.WithPollInterval(10*time.Millisecond),
		jobx.WithShutdownTimeout(time.Second),
	)

	var got string
	var mu sync.Mutex
	client.Register("echo", func(ctx context.Context, job *jobx.JobInfo) error {
		mu.Lock()
		got = string(job.Payload)
		mu.Unlock()
		return nil
	})

	stop := startPool(t, client)
	defer stop()

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "echo", Payload: []byte(`"hello"`)})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	waitFor(t, "job completion", func() bool {
		done := queue.completedIDs()
		return len(done) == 1 && done[0] == id
	})

	mu.Lock()
	defer mu.Unlock()
	if got != `"hello"` {
		t.Fatalf("expected handler to see payload, got %q", got)
	}
}

func TestClient_DefaultsEmptyQueueName(t *testing.T) {
	queue := newFakeQueue()
	client := jobx.NewClient(queue)

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "noop"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	queue.mu.Lock()
	defer queue.mu.Unlock()
	if queue.bodies[id].Queue != jobx.DefaultQueue {
		t.Fatalf("expected queue %q, got %q", jobx.DefaultQueue, queue.bodies[id].Queue)
	}
}

func TestClient_RetriesFailedJob(t *testing.T) {
	queue := newFakeQueue()
	client := jobx.NewClient(queue,
		jobx.WithConcurrency(1),
		jobx.WithPollInterval(10*time.Millisecond),
		jobx.WithRetryDelay(10*time.Millisecond),
		jobx.WithShutdownTimeout(time.Second),
	)

	client.Register("flaky", func(ctx context.Context, job *jobx.JobInfo) error {
		if job.Attempts == 1 {
			return fmt.Errorf("transient failure")
		}
		return nil
	})

	stop := startPool(t, client)
	defer stop()

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "flaky", MaxRetries: 2})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	waitFor(t, "retried job completion", func() bool {
		done := queue.completedIDs()
		return len(done) == 1 && done[0] == id
	})

	queue.mu.Lock()
	attempts := queue.bodies[id].Attempts
	queue.mu.Unlock()
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestClient_ExhaustedRetriesFailJob(t *testing.T) {
	queue := newFakeQueue()
	client := jobx.NewClient(queue,
		jobx.WithConcurrency(1),
		jobx.WithPollInterval(10*time.Millisecond),
		jobx.WithRetryDelay(10*time.Millisecond),
		jobx.WithShutdownTimeout(time.Second),
	)

	client.Register("doomed", func(ctx context.Context, job *jobx.JobInfo) error {
		return fmt.Errorf("always broken")
	})

	stop := startPool(t, client)
	defer stop()

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "doomed", MaxRetries: 1})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	waitFor(t, "job to exhaust retries", func() bool {
		dead := queue.failedIDs()
		return len(dead) == 1 && dead[0] == id
	})

	queue.mu.Lock()
	defer queue.mu.Unlock()
	if queue.bodies[id].Attempts != 2 {
		t.Fatalf("expected 2 attempts for MaxRetries 1, got %d", queue.bodies[id].Attempts)
	}
	if queue.bodies[id].Error != "always broken" {
		t.Fatalf("expected last error recorded, got %q", queue.bodies[id].Error)
	}
}

func TestClient_UnregisteredTypeIsFailed(t *testing.T) {
	queue := newFakeQueue()
	client := jobx.NewClient(queue,
		jobx.WithConcurrency(1),
		jobx.WithPollInterval(10*time.Millisecond),
		jobx.WithShutdownTimeout(time.Second),
	)

	stop := startPool(t, client)
	defer stop()

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "mystery"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	waitFor(t, "unhandled job to fail", func() bool {
		dead := queue.failedIDs()
		return len(dead) == 1 && dead[0] == id
	})
}

func TestClient_StartTwiceIsRejected(t *testing.T) {
	queue := newFakeQueue()
	client := jobx.NewClient(queue,
		jobx.WithConcurrency(1),
		jobx.WithPollInterval(10*time.Millisecond),
		jobx.WithShutdownTimeout(time.Second),
	)
	client.Register("noop", func(ctx context.Context, job *jobx.JobInfo) error {
		return nil
	})

	stop := startPool(t, client)
	defer stop()

	// Prove the pool is running by watching it process a job.
	if _, err := client.Enqueue(context.Background(), jobx.Job{Type: "noop"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	waitFor(t, "pool to process a job", func() bool {
		return len(queue.completedIDs()) == 1
	})

	err := client.Start(context.Background())
	var ex *errx.Error
	if !errx.As(err, &ex) || ex.Code != "JOBX.ALREADY_RUNNING" {
		t.Fatalf("expected JOBX.ALREADY_RUNNING, got %v", err)
	}
}
