package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrWorkerStopped = errors.New("worker stopped")

// ScreeningJob is one dispatched submission waiting for the network call.
type ScreeningJob struct {
	SessionID  string
	StagingKey string
	Dispatch   Dispatch
}

// JobHandler runs a job to completion. It is called from worker goroutines.
type JobHandler func(ctx context.Context, job ScreeningJob)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(job ScreeningJob) error
}

type worker struct {
	handler     JobHandler
	jobQueue    chan ScreeningJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewWorker(handler JobHandler, concurrency, queueSize int) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	return &worker{
		handler:     handler,
		jobQueue:    make(chan ScreeningJob, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Info().Int("concurrency", w.concurrency).Msg("🚀 Starting screening workers")

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Info().Msg("🛑 Stopping screening workers...")
		close(w.stopChan)
		w.wg.Wait()
		log.Info().Msg("✅ Screening workers stopped")
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(job ScreeningJob) error {
	select {
	case <-w.stopChan:
		return ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- job:
		log.Debug().
			Str("session", job.SessionID).
			Uint64("generation", job.Dispatch.Generation).
			Msg("📥 Screening job enqueued")
		return nil
	case <-w.stopChan:
		return ErrWorkerStopped
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Debug().Int("worker", workerID).Msg("👷 Worker stopped")
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			log.Debug().
				Int("worker", workerID).
				Str("session", job.SessionID).
				Msg("👷 Processing screening job")
			w.handler(ctx, job)
		}
	}
}
