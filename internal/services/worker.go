package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/models"
)

// ReviewJob is one queued dispatch. ctx carries the request timeout and the
// session's abort handle.
type ReviewJob struct {
	Session *Session
	Gen     uint64
	Request *models.UploadRequest

	ctx    context.Context
	cancel context.CancelFunc
}

// JobProcessor runs queued jobs and sweeps idle sessions.
type JobProcessor interface {
	Process(job ReviewJob)
	PruneIdle(now time.Time) int
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(job ReviewJob) bool
}

type worker struct {
	processor     JobProcessor
	jobQueue      chan ReviewJob
	concurrency   int
	sweepInterval time.Duration
	log           *zap.Logger
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once

	// mu orders sends on jobQueue against Stop, so no job is queued after
	// the final drain.
	mu      sync.Mutex
	stopped bool
}

func NewWorker(processor JobProcessor, concurrency int, sweepInterval time.Duration, log *zap.Logger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &worker{
		processor:     processor,
		jobQueue:      make(chan ReviewJob, 100),
		concurrency:   concurrency,
		sweepInterval: sweepInterval,
		log:           log,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting review workers", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i+1)
	}

	w.wg.Add(1)
	go w.sweepSessions(ctx)

	// Cancelling the start context shuts the pool down the same way Stop does.
	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()
}

// Stop implements Worker. Queued jobs that never ran are failed so their
// sessions do not stay in the loading state.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping review workers")

		w.mu.Lock()
		w.stopped = true
		close(w.stopChan)
		w.mu.Unlock()

		w.wg.Wait()

		for {
			select {
			case job := <-w.jobQueue:
				job.cancel()
				w.processor.Process(job)
			default:
				w.log.Info("review workers stopped")
				return
			}
		}
	})
}

// EnqueueJob implements Worker. It reports false when the worker has stopped
// or the queue is full.
func (w *worker) EnqueueJob(job ReviewJob) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		w.log.Warn("worker stopped, cannot enqueue review", zap.String("session", job.Session.ID))
		return false
	}

	select {
	case w.jobQueue <- job:
		w.log.Debug("review enqueued", zap.String("session", job.Session.ID), zap.Uint64("gen", job.Gen))
		return true
	default:
		w.log.Warn("review queue full", zap.String("session", job.Session.ID))
		return false
	}
}

func (w *worker) processJobs(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.log.Debug("review worker stopped", zap.Int("worker", workerID))
			return
		case job := <-w.jobQueue:
			w.processor.Process(job)
		}
	}
}

func (w *worker) sweepSessions(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := w.processor.PruneIdle(now); n > 0 {
				w.log.Info("pruned idle sessions", zap.Int("count", n))
			}
		}
	}
}
