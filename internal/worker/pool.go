package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/quizdeck/internal/logger"
)

type Job interface {
	Run(context.Context) error
	Name() string
}

type Pool struct {
	jobs      chan Job
	wg        sync.WaitGroup
	workers   int
	queue     int
	cancel    context.CancelFunc
	closeOnce sync.Once
	log       *logger.Logger

	completed atomic.Int64
	failed    atomic.Int64
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		queue:   queueSize,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok || job == nil {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					p.run(ctx, workerLog, job)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) run(ctx context.Context, workerLog *logger.Logger, job Job) {
	jobLog := workerLog.WithField("job", job.Name())
	jobLog.Debug("starting job")
	start := time.Now()

	jobCtx := logger.NewContext(ctx, jobLog)

	if err := job.Run(jobCtx); err != nil {
		p.failed.Add(1)
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
		return
	}
	p.completed.Add(1)
	jobLog.Info("job completed in %v", time.Since(start))
}

// Stop cancels running jobs and waits for the workers to exit. Queued jobs
// that have not started are dropped.
func (p *Pool) Stop() {
	p.log.Info("stopping worker pool")
	if p.cancel != nil {
		p.cancel()
	}
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Drain stops accepting jobs and waits until every queued job has run.
func (p *Pool) Drain() {
	p.log.Debug("draining worker pool")
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
}

// Submit queues a job, blocking while the queue is full. It must not be
// called after Stop or Drain.
func (p *Pool) Submit(job Job) {
	p.log.Debug("submitting job: %s", job.Name())
	p.jobs <- job
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// Completed and Failed count finished jobs by outcome.
func (p *Pool) Completed() int64 { return p.completed.Load() }
func (p *Pool) Failed() int64    { return p.failed.Load() }
