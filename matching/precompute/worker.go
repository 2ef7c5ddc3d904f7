package precompute

import (
	"context"
	"sync"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
)

const (
	dequeueTimeout     = 5 * time.Second
	delayedMoveEvery   = 30 * time.Second
	retryDelay         = 30 * time.Second
	maxJobAttempts     = 3
	DefaultConcurrency = 2
)

// Queue is the full queue surface the worker drives.
type Queue interface {
	Enqueuer
	Dequeue(ctx context.Context, timeout time.Duration) (*RecomputeJob, error)
	MoveDelayedToReady(ctx context.Context) (int, error)
	MarkProcessing(ctx context.Context, delta int64)
}

// Worker consumes recompute jobs with a small goroutine pool and a ticker
// that promotes due delayed jobs.
type Worker struct {
	queue       Queue
	service     *Service
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(queue Queue, service *Service, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Worker{queue: queue, service: service, concurrency: concurrency}
}

// Start launches the pool. It returns immediately; cancel the context to
// stop, then Wait for drain.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.consume(ctx, i)
	}

	w.wg.Add(1)
	go w.moveDelayed(ctx)

	logx.Infof("recompute worker started: concurrency=%d", w.concurrency)
}

// Wait blocks until every goroutine has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) consume(ctx context.Context, id int) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.Errorf("recompute worker %d: dequeue failed: %v", id, err)
			sleepCtx(ctx, time.Second)
			continue
		}
		if job == nil {
			continue
		}

		w.queue.MarkProcessing(ctx, 1)
		if _, err := w.service.Run(ctx, *job); err != nil {
			w.retry(ctx, *job, err)
		}
		w.queue.MarkProcessing(ctx, -1)
	}
}

func (w *Worker) retry(ctx context.Context, job RecomputeJob, cause error) {
	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		logx.Errorf("recompute job dropped after %d attempts: job=%s err=%v", job.Attempts, job.JobID, cause)
		return
	}
	logx.Warnf("recompute job failed, retrying in %s: job=%s attempt=%d err=%v",
		retryDelay, job.JobID, job.Attempts, cause)
	if err := w.queue.EnqueueDelayed(ctx, job, retryDelay); err != nil {
		logx.Errorf("recompute retry enqueue failed: job=%s err=%v", job.JobID, err)
	}
}

func (w *Worker) moveDelayed(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(delayedMoveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			moved, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("recompute delayed move failed: %v", err)
				continue
			}
			if moved > 0 {
				logx.Debugf("recompute delayed jobs promoted: %d", moved)
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
