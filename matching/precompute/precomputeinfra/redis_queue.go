package precomputeinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/heyitsgautham/skil-sync-fullstack/matching/precompute"
)

// RedisQueue is the Redis-backed recompute job queue. Ready jobs live in a
// list, delayed jobs in a sorted set scored by their ready-at time.
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

func NewRedisQueue(client *redis.Client, queueName string) *RedisQueue {
	return &RedisQueue{client: client, queueName: queueName}
}

func (q *RedisQueue) delayedName() string    { return q.queueName + ":delayed" }
func (q *RedisQueue) processingName() string { return q.queueName + ":processing" }

// Enqueue pushes a job onto the ready queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job precompute.RecomputeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.JobID, err)
	}
	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.JobID, err)
	}
	return nil
}

// EnqueueDelayed schedules a job to become ready after the delay. Used for
// retries after transient failures.
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, job precompute.RecomputeJob, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal delayed job %s: %w", job.JobID, err)
	}
	score := float64(time.Now().Add(delay).Unix())
	if err := q.client.ZAdd(ctx, q.delayedName(), &redis.Z{Score: score, Member: data}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed job %s: %w", job.JobID, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next ready job. A nil job with a nil
// error means the timeout elapsed with nothing to do.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*precompute.RecomputeJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	if len(result) < 2 {
		return nil, fmt.Errorf("dequeue: expected 2 elements, got %d", len(result))
	}

	job := &precompute.RecomputeJob{}
	if err := json.Unmarshal([]byte(result[1]), job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

// MoveDelayedToReady promotes due delayed jobs onto the ready queue.
func (q *RedisQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	now := float64(time.Now().Unix())
	jobs, err := q.client.ZRangeByScore(ctx, q.delayedName(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", now),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, job := range jobs {
		pipe.LPush(ctx, q.queueName, job)
		pipe.ZRem(ctx, q.delayedName(), job)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("move delayed jobs: %w", err)
	}
	return len(jobs), nil
}

// MarkProcessing adjusts the in-flight gauge by delta.
func (q *RedisQueue) MarkProcessing(ctx context.Context, delta int64) {
	q.client.IncrBy(ctx, q.processingName(), delta)
}

// Stats reports queue depths.
func (q *RedisQueue) Stats(ctx context.Context) (precompute.QueueStats, error) {
	pending, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return precompute.QueueStats{}, fmt.Errorf("queue size: %w", err)
	}
	delayed, err := q.client.ZCard(ctx, q.delayedName()).Result()
	if err != nil {
		return precompute.QueueStats{}, fmt.Errorf("delayed size: %w", err)
	}
	processing, err := q.client.Get(ctx, q.processingName()).Int64()
	if err != nil && err != redis.Nil {
		return precompute.QueueStats{}, fmt.Errorf("processing gauge: %w", err)
	}
	return precompute.QueueStats{Pending: pending, Processing: processing, Delayed: delayed}, nil
}

// Clear drops all queued and delayed jobs. Maintenance use only.
func (q *RedisQueue) Clear(ctx context.Context) error {
	pipe := q.client.Pipeline()
	pipe.Del(ctx, q.queueName)
	pipe.Del(ctx, q.delayedName())
	pipe.Del(ctx, q.processingName())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}
