// Package jobxredis implements jobx.Queue on Redis. Ready jobs live in a
// list per queue, parked retries in a sorted set scored by their due time,
// and job bodies in plain keys. Finished jobs expire after a day so the
// history does not grow without bound.
package jobxredis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/fateweaver/pkg/jobx"
)

// doneTTL is how long completed and dead job bodies stay readable.
const doneTTL = 24 * time.Hour

// RedisQueue is a jobx.Queue backed by a Redis server.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue creates a Redis-backed job queue.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func readyKey(queue string) string { return "jobx:ready:" + queue }
func retryKey(queue string) string { return "jobx:retry:" + queue }
func bodyKey(id string) string     { return "jobx:body:" + id }

// Enqueue stores the job body and pushes its id onto the ready list.
func (q *RedisQueue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	now := time.Now().UTC()
	info := jobx.JobInfo{
		ID:         uuid.NewString(),
		Type:       job.Type,
		Queue:      job.Queue,
		Payload:    job.Payload,
		Status:     jobx.JobStatusPending,
		MaxRetries: job.MaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	body, err := json.Marshal(info)
	if err != nil {
		return "", redisErrors.NewWithCause(ErrPersist, err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.Set(ctx, bodyKey(info.ID), body, 0)
	pipe.LPush(ctx, readyKey(job.Queue), info.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", redisErrors.NewWithCause(ErrEnqueue, err).WithDetail("queue", job.Queue)
	}

	return info.ID, nil
}

// Dequeue pops the next ready job id and claims it for the caller. BRPOP
// hands each id to exactly one worker, so the claim needs no lock.
func (q *RedisQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	keys := make([]string, len(queues))
	for i, name := range queues {
		keys[i] = readyKey(name)
	}

	popped, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if err != nil {
		if err == redis.Nil || ctx.Err() != nil {
			return nil, nil
		}
		return nil, redisErrors.NewWithCause(ErrDequeue, err)
	}

	info, err := q.loadBody(ctx, popped[1])
	if err != nil {
		return nil, err
	}

	info.Status = jobx.JobStatusActive
	info.Attempts++
	return info, q.saveBody(ctx, info, 0)
}

// Complete marks the job done and lets its body expire.
func (q *RedisQueue) Complete(ctx context.Context, jobID string) error {
	info, err := q.loadBody(ctx, jobID)
	if err != nil {
		return err
	}

	info.Status = jobx.JobStatusCompleted
	info.Error = ""
	return q.saveBody(ctx, info, doneTTL)
}

// Fail records the error. Jobs with attempts left go to retrying; the rest
// are marked failed and their body expires.
func (q *RedisQueue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	info, err := q.loadBody(ctx, jobID)
	if err != nil {
		return false, err
	}

	retry := info.Attempts <= info.MaxRetries
	info.Error = errMsg
	if retry {
		info.Status = jobx.JobStatusRetrying
		return true, q.saveBody(ctx, info, 0)
	}

	info.Status = jobx.JobStatusFailed
	return false, q.saveBody(ctx, info, doneTTL)
}

// Retry parks the job in the retry set, due at now+delay.
func (q *RedisQueue) Retry(ctx context.Context, jobID string, delay time.Duration) error {
	info, err := q.loadBody(ctx, jobID)
	if err != nil {
		return err
	}

	due := redis.Z{
		Score:  float64(time.Now().UTC().Add(delay).Unix()),
		Member: jobID,
	}
	if err := q.rdb.ZAdd(ctx, retryKey(info.Queue), due).Err(); err != nil {
		return redisErrors.NewWithCause(ErrRevive, err).WithDetail("job_id", jobID)
	}
	return nil
}

// reviveScript atomically moves due ids from the retry set to the ready
// list so no other worker sees them in between.
var reviveScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 100)
for _, id in ipairs(due) do
    redis.call('LPUSH', KEYS[2], id)
    redis.call('ZREM', KEYS[1], id)
end
return #due
`)

// ReviveDue returns parked jobs whose delay has elapsed to their queues.
func (q *RedisQueue) ReviveDue(ctx context.Context, queues []string) error {
	now := strconv.FormatInt(time.Now().UTC().Unix(), 10)

	for _, name := range queues {
		keys := []string{retryKey(name), readyKey(name)}
		if err := reviveScript.Run(ctx, q.rdb, keys, now).Err(); err != nil && err != redis.Nil {
			return redisErrors.NewWithCause(ErrRevive, err).WithDetail("queue", name)
		}
	}
	return nil
}

func (q *RedisQueue) loadBody(ctx context.Context, jobID string) (*jobx.JobInfo, error) {
	raw, err := q.rdb.Get(ctx, bodyKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, redisErrors.New(ErrNotFound).WithDetail("job_id", jobID)
		}
		return nil, redisErrors.NewWithCause(ErrDequeue, err).WithDetail("job_id", jobID)
	}

	var info jobx.JobInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, redisErrors.NewWithCause(ErrDecode, err).WithDetail("job_id", jobID)
	}
	return &info, nil
}

func (q *RedisQueue) saveBody(ctx context.Context, info *jobx.JobInfo, ttl time.Duration) error {
	info.UpdatedAt = time.Now().UTC()

	body, err := json.Marshal(info)
	if err != nil {
		return redisErrors.NewWithCause(ErrPersist, err).WithDetail("job_id", info.ID)
	}
	if err := q.rdb.Set(ctx, bodyKey(info.ID), body, ttl).Err(); err != nil {
		return redisErrors.NewWithCause(ErrPersist, err).WithDetail("job_id", info.ID)
	}
	return nil
}
